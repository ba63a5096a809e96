package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollResults_Percentages(t *testing.T) {
	p := Poll{
		ID: "p1",
		Options: []PollOption{
			{ID: "a", Text: "A", Votes: 3},
			{ID: "b", Text: "B", Votes: 1},
		},
	}

	results := p.Results()
	require.Len(t, results, 2)
	assert.Equal(t, 75.0, results[0].Percent)
	assert.Equal(t, 25.0, results[1].Percent)
}

func TestPollResults_ZeroVotes(t *testing.T) {
	p := Poll{
		Options: []PollOption{
			{ID: "a", Votes: 0},
			{ID: "b", Votes: 0},
		},
	}

	for _, r := range p.Results() {
		assert.Equal(t, 0.0, r.Percent)
	}
}

func TestPollOption_Lookup(t *testing.T) {
	p := Poll{Options: []PollOption{{ID: "a", Text: "A"}}}

	opt, ok := p.Option("a")
	assert.True(t, ok)
	assert.Equal(t, "A", opt.Text)

	_, ok = p.Option("zzz")
	assert.False(t, ok)
}

func TestSessionLookups(t *testing.T) {
	s := NewSession("room", Settings{})
	s.Participants = []Participant{{ID: "alice"}}
	s.Messages = []ChatMessage{{ID: "m1"}}
	s.Whiteboard = []WhiteboardObject{{ID: "o1"}}

	_, ok := s.Participant("alice")
	assert.True(t, ok)
	_, ok = s.Participant("bob")
	assert.False(t, ok)

	assert.True(t, s.HasMessage("m1"))
	assert.False(t, s.HasMessage("m2"))

	_, ok = s.WhiteboardObject("o1")
	assert.True(t, ok)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleHost))
	assert.True(t, ValidRole(RoleObserver))
	assert.False(t, ValidRole("admin"))
}
