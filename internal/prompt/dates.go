package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// namedHoliday resolves to a month/day in the current or next year,
// whichever comes first from now.
type namedHoliday struct {
	month time.Month
	day   int
}

var holidays = map[string]namedHoliday{
	"new year":         {time.January, 1},
	"new years":        {time.January, 1},
	"valentines":       {time.February, 14},
	"valentine's day":  {time.February, 14},
	"july 4th":         {time.July, 4},
	"4th of july":      {time.July, 4},
	"independence day": {time.July, 4},
	"halloween":        {time.October, 31},
	"christmas":        {time.December, 25},
	"christmas eve":    {time.December, 24},
	"new years eve":    {time.December, 31},
}

var daysUntilRe = regexp.MustCompile(`(?i)how (?:many|much) (?:days?|long) (?:until|till|to)\s+(.+?)[?.!]*\s*$`)

var monthDayRe = regexp.MustCompile(`(?i)^(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?$`)

// DateAnnotation resolves "how many days until <date or holiday>" against
// now and returns a note for the model, or "" when the message has no such
// pattern. Whole days, target at midnight local time.
func DateAnnotation(content string, now time.Time) string {
	m := daysUntilRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	target, label, ok := resolveTarget(strings.TrimSpace(strings.ToLower(m[1])), now)
	if !ok {
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Count calendar days; a wall-clock quotient comes up short across a
	// DST spring-forward.
	days := 0
	for d := today; d.Before(target); d = d.AddDate(0, 0, 1) {
		days++
	}
	if days == 0 {
		return fmt.Sprintf("Note: %s is today.", label)
	}
	return fmt.Sprintf("Note: there are exactly %d days until %s (%s).", days, label, target.Format("January 2, 2006"))
}

// resolveTarget maps a phrase to the next occurrence of the date it names.
func resolveTarget(phrase string, now time.Time) (time.Time, string, bool) {
	if h, ok := holidays[phrase]; ok {
		return nextOccurrence(h.month, h.day, now), phrase, true
	}
	if m := monthDayRe.FindStringSubmatch(phrase); m != nil {
		month, ok := monthByName(m[1])
		if !ok {
			return time.Time{}, "", false
		}
		day, err := strconv.Atoi(m[2])
		if err != nil || day < 1 || day > 31 {
			return time.Time{}, "", false
		}
		return nextOccurrence(month, day, now), phrase, true
	}
	return time.Time{}, "", false
}

func nextOccurrence(month time.Month, day int, now time.Time) time.Time {
	t := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if t.Before(today) {
		t = time.Date(now.Year()+1, month, day, 0, 0, 0, 0, now.Location())
	}
	return t
}

func monthByName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}
