package discord

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessageShortPassthrough(t *testing.T) {
	assert.Equal(t, []string{"hello"}, splitMessage("hello", 2000))
	assert.Nil(t, splitMessage("", 2000))
}

func TestSplitMessagePrefersLineBreaks(t *testing.T) {
	msg := strings.Repeat("x", 90) + "\n" + strings.Repeat("y", 90)
	chunks := splitMessage(msg, 100)
	assert.Equal(t, []string{strings.Repeat("x", 90), strings.Repeat("y", 90)}, chunks)
}

func TestSplitMessageKeepsValidUTF8(t *testing.T) {
	// A hard cut must land on a rune boundary and the limit counts
	// characters, not bytes.
	msg := strings.Repeat("é", 2500)
	chunks := splitMessage(msg, 2000)
	assert.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 2000)
	}
	assert.Equal(t, 2500, utf8.RuneCountInString(strings.Join(chunks, "")))
}
