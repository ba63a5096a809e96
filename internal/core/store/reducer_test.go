package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classlink/internal/core/domain"
)

func baseSession() domain.Session {
	s := domain.NewSession("room-1", domain.Settings{
		ChatEnabled:     true,
		PollsEnabled:    true,
		MaxParticipants: 10,
	})
	s.Participants = []domain.Participant{
		{ID: "alice", Name: "Alice", Role: domain.RoleHost, Status: domain.StatusActive},
		{ID: "bob", Name: "Bob", Role: domain.RoleParticipant, Status: domain.StatusActive},
	}
	s.Polls = []domain.Poll{
		{
			ID:       "poll-1",
			Question: "ready?",
			Options: []domain.PollOption{
				{ID: "yes", Text: "Yes", Votes: 3},
				{ID: "no", Text: "No", Votes: 1},
			},
			Status: domain.PollActive,
		},
	}
	s.Whiteboard = []domain.WhiteboardObject{
		{ID: "obj-1", Type: domain.ObjectPath, Payload: json.RawMessage(`{"points":[0,0]}`), CreatorID: "alice"},
	}
	return s
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	prev := baseSession()
	next := Reduce(prev, AddParticipant{Participant: domain.Participant{ID: "carol"}})

	assert.Len(t, prev.Participants, 2, "input state must stay untouched")
	assert.Len(t, next.Participants, 3)

	next2 := Reduce(prev, ReplaceObjectPayload{ID: "obj-1", Payload: json.RawMessage(`{"points":[9,9]}`)})
	assert.JSONEq(t, `{"points":[0,0]}`, string(prev.Whiteboard[0].Payload))
	assert.JSONEq(t, `{"points":[9,9]}`, string(next2.Whiteboard[0].Payload))
}

func TestReduce_ParticipantRemove(t *testing.T) {
	next := Reduce(baseSession(), RemoveParticipant{ID: "bob"})

	require.Len(t, next.Participants, 1)
	assert.Equal(t, domain.ParticipantID("alice"), next.Participants[0].ID)
}

func TestReduce_ParticipantUpdate_ReplacesInPlace(t *testing.T) {
	next := Reduce(baseSession(), UpdateParticipant{Participant: domain.Participant{
		ID: "bob", Name: "Bob", Role: domain.RoleParticipant, Status: domain.StatusRaisedHand,
	}})

	require.Len(t, next.Participants, 2, "update must never introduce a duplicate")
	p, ok := next.Participant("bob")
	require.True(t, ok)
	assert.Equal(t, domain.StatusRaisedHand, p.Status)
	// Order preserved.
	assert.Equal(t, domain.ParticipantID("alice"), next.Participants[0].ID)
}

func TestReduce_UpdateAbsentID_IsNoOp(t *testing.T) {
	prev := baseSession()

	cases := []struct {
		name   string
		action Action
	}{
		{"participant update", UpdateParticipant{Participant: domain.Participant{ID: "ghost"}}},
		{"participant remove", RemoveParticipant{ID: "ghost"}},
		{"poll merge", MergePoll{ID: "ghost", Update: PollUpdate{Question: strPtr("?")}}},
		{"whiteboard payload", ReplaceObjectPayload{ID: "ghost", Payload: json.RawMessage(`{}`)}},
		{"whiteboard remove", RemoveWhiteboardObject{ID: "ghost"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := Reduce(prev, tc.action)
			assert.Equal(t, prev, next, "absent identifier must leave state structurally unchanged")
		})
	}
}

func TestReduce_MessageAppendKeepsArrivalOrder(t *testing.T) {
	s := baseSession()
	for _, id := range []domain.MessageID{"m1", "m2", "m3"} {
		s = Reduce(s, AppendMessage{Message: domain.ChatMessage{ID: id, Type: domain.MessageText}})
	}

	require.Len(t, s.Messages, 3)
	assert.Equal(t, domain.MessageID("m1"), s.Messages[0].ID)
	assert.Equal(t, domain.MessageID("m3"), s.Messages[2].ID)
}

func TestReduce_MergePoll_ShallowMerge(t *testing.T) {
	ended := domain.PollEnded
	next := Reduce(baseSession(), MergePoll{
		ID: "poll-1",
		Update: PollUpdate{
			Status: &ended,
			Options: []domain.PollOption{
				{ID: "yes", Text: "Yes", Votes: 5},
				{ID: "no", Text: "No", Votes: 2},
			},
		},
	})

	p, ok := next.Poll("poll-1")
	require.True(t, ok)
	assert.Equal(t, domain.PollEnded, p.Status)
	assert.Equal(t, 5, p.Options[0].Votes)
	// Untouched fields survive the merge.
	assert.Equal(t, "ready?", p.Question)
}

func TestReduce_MergePoll_EndedPollIsFrozen(t *testing.T) {
	ended := domain.PollEnded
	s := Reduce(baseSession(), MergePoll{ID: "poll-1", Update: PollUpdate{Status: &ended}})

	next := Reduce(s, MergePoll{
		ID: "poll-1",
		Update: PollUpdate{
			Question: strPtr("changed?"),
			Options:  []domain.PollOption{{ID: "yes", Text: "Yes", Votes: 99}},
		},
	})

	p, ok := next.Poll("poll-1")
	require.True(t, ok)
	assert.Equal(t, "ready?", p.Question, "a late update must not touch an ended poll")
	require.Len(t, p.Options, 2)
	assert.Equal(t, 3, p.Options[0].Votes)
}

func TestReduce_MergePoll_ExpiryCopied(t *testing.T) {
	expires := time.Now().Add(time.Minute)
	next := Reduce(baseSession(), MergePoll{ID: "poll-1", Update: PollUpdate{ExpiresAt: &expires}})

	p, _ := next.Poll("poll-1")
	require.NotNil(t, p.ExpiresAt)
	assert.True(t, p.ExpiresAt.Equal(expires))
	assert.NotSame(t, &expires, p.ExpiresAt, "merge must not alias caller memory")
}

func TestReduce_WhiteboardPayloadReplace(t *testing.T) {
	next := Reduce(baseSession(), ReplaceObjectPayload{ID: "obj-1", Payload: json.RawMessage(`{"points":[1,1,2,2]}`)})

	o, ok := next.WhiteboardObject("obj-1")
	require.True(t, ok)
	assert.JSONEq(t, `{"points":[1,1,2,2]}`, string(o.Payload))
	// Identity fields are immutable under payload replacement.
	assert.Equal(t, domain.ParticipantID("alice"), o.CreatorID)
	assert.Equal(t, domain.ObjectPath, o.Type)
}

func TestReduce_PointersAndRecording(t *testing.T) {
	s := baseSession()
	s = Reduce(s, SetPresenter{ID: "alice"})
	s = Reduce(s, SetScreenShare{ID: "bob"})
	s = Reduce(s, SetRecording{Status: domain.RecordingActive})

	assert.Equal(t, domain.ParticipantID("alice"), s.ActivePresenter)
	assert.Equal(t, domain.ParticipantID("bob"), s.ActiveScreenShare)
	assert.Equal(t, domain.RecordingActive, s.Recording)

	s = Reduce(s, SetPresenter{ID: ""})
	assert.Empty(t, s.ActivePresenter, "clearing the presenter pointer")
}

func TestReduce_MergeSettings(t *testing.T) {
	chatOff := false
	cap5 := 5
	next := Reduce(baseSession(), MergeSettings{Update: SettingsUpdate{
		ChatEnabled:     &chatOff,
		MaxParticipants: &cap5,
	}})

	assert.False(t, next.Settings.ChatEnabled)
	assert.Equal(t, 5, next.Settings.MaxParticipants)
	// Fields absent from the update keep their values.
	assert.True(t, next.Settings.PollsEnabled)
}

func TestReduce_MessageDelivery(t *testing.T) {
	s := baseSession()
	s.Messages = []domain.ChatMessage{
		{ID: "m1", SenderID: "alice", Content: "hi", Delivery: domain.DeliveryPending},
	}

	next := Reduce(s, SetMessageDelivery{ID: "m1", Delivery: domain.DeliverySent})
	assert.Equal(t, domain.DeliverySent, next.Messages[0].Delivery)
	assert.Equal(t, domain.DeliveryPending, s.Messages[0].Delivery)

	// Absent identifier is a no-op.
	next2 := Reduce(s, SetMessageDelivery{ID: "missing", Delivery: domain.DeliverySent})
	assert.Equal(t, s.Messages, next2.Messages)
}

func TestReduce_Totality_NoDuplicateIdentifiers(t *testing.T) {
	s := baseSession()
	actions := []Action{
		UpdateParticipant{Participant: domain.Participant{ID: "alice", Status: domain.StatusAway}},
		UpdateParticipant{Participant: domain.Participant{ID: "alice", Status: domain.StatusActive}},
		MergePoll{ID: "poll-1", Update: PollUpdate{Question: strPtr("still ready?")}},
		ReplaceObjectPayload{ID: "obj-1", Payload: json.RawMessage(`{}`)},
		SetConnected{Connected: true},
		SetConnected{Connected: false},
	}

	for _, a := range actions {
		s = Reduce(s, a)
	}

	seen := map[domain.ParticipantID]bool{}
	for _, p := range s.Participants {
		assert.False(t, seen[p.ID], "duplicate participant %s", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, s.Polls, 1)
	assert.Len(t, s.Whiteboard, 1)
}

func strPtr(s string) *string { return &s }
