package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreCompletions(t *testing.T) {
	tags := []string{"welcome", "guide", "meeting", "project"}

	assert.Equal(t, tags, ScoreCompletions("", tags, 0))
	assert.Equal(t, []string{"welcome", "guide"}, ScoreCompletions("", tags, 2))
	assert.Equal(t, []string{"meeting"}, ScoreCompletions("mtg", tags, 5))
	assert.Empty(t, ScoreCompletions("zzz", tags, 5))
}
