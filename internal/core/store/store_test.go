package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classlink/internal/core/domain"
)

func TestStore_DispatchAndSnapshot(t *testing.T) {
	s := New("room-1", domain.Settings{MaxParticipants: 10})

	s.Dispatch(AddParticipant{Participant: domain.Participant{ID: "alice", Name: "Alice"}})
	snap := s.Snapshot()

	require.Len(t, snap.Participants, 1)
	assert.Equal(t, domain.RoomID("room-1"), snap.RoomID)

	// Mutating the snapshot must not leak back into the store.
	snap.Participants[0].Name = "Mallory"
	assert.Equal(t, "Alice", s.Snapshot().Participants[0].Name)
}

func TestStore_ObserversSeeEveryDispatch(t *testing.T) {
	s := New("room-1", domain.Settings{})

	var seen []int
	s.Subscribe(func(snap domain.Session) {
		seen = append(seen, len(snap.Participants))
	})

	s.Dispatch(AddParticipant{Participant: domain.Participant{ID: "a"}})
	s.Dispatch(AddParticipant{Participant: domain.Participant{ID: "b"}})
	s.Dispatch(RemoveParticipant{ID: "a"})

	assert.Equal(t, []int{1, 2, 1}, seen)
}

func TestStore_ObserverOrder(t *testing.T) {
	s := New("room-1", domain.Settings{})

	var order []string
	s.Subscribe(func(domain.Session) { order = append(order, "first") })
	s.Subscribe(func(domain.Session) { order = append(order, "second") })

	s.Dispatch(SetConnected{Connected: true})
	assert.Equal(t, []string{"first", "second"}, order)
}
