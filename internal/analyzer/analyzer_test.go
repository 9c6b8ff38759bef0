package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snurbo/internal/session"
)

func TestIsQuestion(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"does this work?", true},
		{"how do streams work in go", true},
		{"can you explain generics", true},
		{"anyone know a good editor", true},
		{"i fixed the thing yesterday", false},
		{"nice weather today", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsQuestion(tc.content), tc.content)
	}
}

func TestQuestionConfidence(t *testing.T) {
	// Base only.
	assert.InDelta(t, 0.1, QuestionConfidence("ok"), 1e-9)
	// Question start + length + '?': 0.1+0.4+0.1+0.2.
	assert.InDelta(t, 0.8, QuestionConfidence("how does the garbage collector work?"), 1e-9)
	// Everything at once caps at 1.
	assert.InDelta(t, 1.0, QuestionConfidence("can you help me and explain how this long thing works?"), 1e-9)
}

func TestRequiresCode(t *testing.T) {
	assert.True(t, RequiresCode("write a function that sorts a slice"))
	assert.True(t, RequiresCode("how do i implement binary search"))
	assert.True(t, RequiresCode("fix this bug in my script"))
	assert.False(t, RequiresCode("what should i eat for dinner"))
}

func TestDetectDefenseScoresStrongestRule(t *testing.T) {
	history := []session.Message{
		{Role: "user", Content: "snurbo is kind of slow sometimes"},
	}
	res := DetectDefense(history, "stop messing with snurbo, be nice", "snurbo")
	assert.InDelta(t, 0.8, res.Score, 1e-9)
	assert.True(t, res.DefendingBot)
}

func TestDefenseIgnoresBotTurnsAndOldMessages(t *testing.T) {
	history := []session.Message{
		{Role: "user", Content: "leave snurbo alone!"}, // too old, outside window
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "user", Content: "c"},
		{Role: "user", Content: "d"},
	}
	res := DetectDefense(history, "nothing special here today", "snurbo")
	assert.Zero(t, res.Score)
	assert.False(t, res.DefendingBot)
}

func TestShouldAcknowledgeSupport(t *testing.T) {
	assert.True(t, ShouldAcknowledgeSupport(DefenseResult{Score: 0.7, DefendingBot: true}))
	assert.False(t, ShouldAcknowledgeSupport(DefenseResult{Score: 0.7, DefendingBot: false}))
	assert.False(t, ShouldAcknowledgeSupport(DefenseResult{Score: 0.5, DefendingBot: true}))
}

func TestFindPriorCriticismReturnsMostRecent(t *testing.T) {
	history := []session.Message{
		{Role: "user", Content: "snurbo is stupid"},
		{Role: "assistant", Content: "noted"},
		{Role: "user", Content: "this bot is useless too"},
		{Role: "user", Content: "anyway, moving on"},
	}
	m := FindPriorCriticism(history, "snurbo")
	require.NotNil(t, m)
	assert.Equal(t, "this bot is useless too", m.Content)

	assert.Nil(t, FindPriorCriticism([]session.Message{
		{Role: "user", Content: "snurbo is great"},
		{Role: "user", Content: "everything is terrible today"}, // no bot reference
	}, "snurbo"))
}

func TestDetectTone(t *testing.T) {
	assert.Equal(t, "excited", DetectTone("WHAT IS GOING ON!!"))
	assert.Equal(t, "joking", DetectTone("lol that was funny"))
	assert.Equal(t, "serious", DetectTone("this is important, please focus"))
	assert.Equal(t, "neutral", DetectTone("the meeting is at three"))
}
