package store

import (
	"encoding/json"
	"time"

	"classlink/internal/core/domain"
)

// Action is the closed set of state transitions. Every inbound protocol
// event maps to exactly one variant; the reducer rejects nothing, so any
// well-formed action applied to a valid session yields a valid session.
type Action interface {
	isAction()
}

type SetConnected struct {
	Connected bool
}

type AddParticipant struct {
	Participant domain.Participant
}

type RemoveParticipant struct {
	ID domain.ParticipantID
}

// UpdateParticipant replaces the participant with the matching identifier in
// place. Absent identifier is a silent no-op.
type UpdateParticipant struct {
	Participant domain.Participant
}

type AppendMessage struct {
	Message domain.ChatMessage
}

// SetMessageDelivery updates the local delivery flag of a message authored on
// this client. Absent identifier is a silent no-op.
type SetMessageDelivery struct {
	ID       domain.MessageID
	Delivery domain.DeliveryStatus
}

type AddPoll struct {
	Poll domain.Poll
}

// PollUpdate is a partial poll record; nil fields keep their current values.
type PollUpdate struct {
	Question           *string
	Options            []domain.PollOption
	Status             *domain.PollStatus
	ExpiresAt          *time.Time
	IsAnonymous        *bool
	AllowMultipleVotes *bool
}

// MergePoll shallow-merges the update onto the poll with the matching
// identifier. Absent identifier is a silent no-op.
type MergePoll struct {
	ID     domain.PollID
	Update PollUpdate
}

type AddWhiteboardObject struct {
	Object domain.WhiteboardObject
}

// ReplaceObjectPayload swaps only the payload field of the matching object.
// Absent identifier is a silent no-op.
type ReplaceObjectPayload struct {
	ID      domain.ObjectID
	Payload json.RawMessage
}

type RemoveWhiteboardObject struct {
	ID domain.ObjectID
}

type SetPresenter struct {
	ID domain.ParticipantID
}

type SetScreenShare struct {
	ID domain.ParticipantID
}

type SetRecording struct {
	Status domain.RecordingStatus
}

// SettingsUpdate is a partial settings record; nil fields keep their current
// values.
type SettingsUpdate struct {
	ChatEnabled       *bool
	WhiteboardEnabled *bool
	PollsEnabled      *bool
	RecordingEnabled  *bool
	MaxParticipants   *int
}

type MergeSettings struct {
	Update SettingsUpdate
}

func (SetConnected) isAction()           {}
func (AddParticipant) isAction()         {}
func (RemoveParticipant) isAction()      {}
func (UpdateParticipant) isAction()      {}
func (AppendMessage) isAction()          {}
func (SetMessageDelivery) isAction()     {}
func (AddPoll) isAction()                {}
func (MergePoll) isAction()              {}
func (AddWhiteboardObject) isAction()    {}
func (ReplaceObjectPayload) isAction()   {}
func (RemoveWhiteboardObject) isAction() {}
func (SetPresenter) isAction()           {}
func (SetScreenShare) isAction()         {}
func (SetRecording) isAction()           {}
func (MergeSettings) isAction()          {}
