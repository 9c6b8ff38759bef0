package orchestrator

import "snurbo/internal/ollama"

// Canned pools. One is picked at random so repeated failures don't read
// like a broken record.
var supportThanks = []string{
	"ayy thanks for having my back 🫡",
	"appreciate you sticking up for me, fr",
	"haha thanks, glad somebody's on my side",
	"my hero 🙏 appreciate it",
}

var unavailableReplies = []string{
	"my brain's offline rn, give me a minute",
	"can't reach my backend, try again in a bit",
	"having trouble thinking right now, back soon hopefully",
}

var timeoutReplies = []string{
	"that one took too long to think about, mind asking again?",
	"i zoned out halfway through, try me again",
}

var modelMissingReplies = []string{
	"my model's gone missing, someone should probably fix that",
	"can't load my brain model rn, sorry",
}

var badRequestReplies = []string{
	"that one confused me, can you rephrase?",
	"i couldn't process that, try wording it differently",
}

var genericFailureReplies = []string{
	"something went sideways on my end, sorry",
	"oops, hit a snag. try again?",
	"brain glitch, give me another shot",
}

// failurePool maps a backend failure category to its reply pool.
func failurePool(cat ollama.Category) []string {
	switch cat {
	case ollama.CategoryUnavailable:
		return unavailableReplies
	case ollama.CategoryTimeout:
		return timeoutReplies
	case ollama.CategoryModelNotFound:
		return modelMissingReplies
	case ollama.CategoryBadRequest:
		return badRequestReplies
	default:
		return genericFailureReplies
	}
}

// quickReplies maps common short messages (after cache-style normalization)
// to canned reply pools, skipping the model entirely.
var quickReplies = map[string][]string{
	"hi":           {"hey", "yo", "hi hi"},
	"hello":        {"hello hello", "hey there"},
	"hey":          {"hey yourself", "yo", "sup"},
	"yo":           {"yo", "what's good"},
	"sup":          {"not much, you?", "chillin. sup"},
	"thanks":       {"np", "anytime", "got you 👍"},
	"thank you":    {"no worries", "anytime"},
	"ok":           {"👍", "cool"},
	"lol":          {"😄", "right?"},
	"good morning": {"morning ☀️", "gm"},
	"good night":   {"night 🌙", "sleep well"},
	"bye":          {"later!", "cya"},
}
