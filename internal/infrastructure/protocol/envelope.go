package protocol

import (
	"encoding/json"
	"time"

	"classlink/internal/core/domain"
)

// Envelope is the uniform wire frame, one per transport message in both
// directions. Payload stays raw until the controller knows the type.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RoomID    string          `json:"roomId"`
	UserID    string          `json:"userId"`
	Timestamp time.Time       `json:"timestamp"`
}

// Outbound envelope types.
const (
	TypeAuth              = "auth"
	TypePing              = "ping"
	TypeMessage           = "message"
	TypeParticipantStatus = "participant_status"
	TypeCreatePoll        = "create_poll"
	TypeVotePoll          = "vote_poll"
	TypeEndPoll           = "end_poll"
	TypeWhiteboardUpdate  = "whiteboard_update"
	TypeStartPresenting   = "start_presenting"
	TypeStopPresenting    = "stop_presenting"
	TypeStartScreenShare  = "start_screen_share"
	TypeStopScreenShare   = "stop_screen_share"
	TypeStartRecording    = "start_recording"
	TypeStopRecording     = "stop_recording"
)

// Inbound envelope types.
const (
	TypePong                  = "pong"
	TypeParticipantJoin       = "participant_join"
	TypeParticipantLeave      = "participant_leave"
	TypeParticipantUpdate     = "participant_update"
	TypePollCreate            = "poll_create"
	TypePollUpdate            = "poll_update"
	TypePresenterChange       = "presenter_change"
	TypeScreenShareChange     = "screen_share_change"
	TypeRecordingStatusChange = "recording_status_change"
	TypeError                 = "error"
)

// knownInbound is the closed set of coordinator event types the client
// forwards. Anything else is dropped for forward compatibility.
var knownInbound = map[string]bool{
	TypeParticipantJoin:       true,
	TypeParticipantLeave:      true,
	TypeParticipantUpdate:     true,
	TypeMessage:               true,
	TypePollCreate:            true,
	TypePollUpdate:            true,
	TypeWhiteboardUpdate:      true,
	TypePresenterChange:       true,
	TypeScreenShareChange:     true,
	TypeRecordingStatusChange: true,
	TypeError:                 true,
}

type AuthPayload struct {
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

type MessagePayload struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	IsPrivate   bool      `json:"isPrivate,omitempty"`
	RecipientID string    `json:"recipientId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type ParticipantStatusPayload struct {
	Status domain.ParticipantStatus `json:"status"`
}

type CreatePollPayload struct {
	ID                 string     `json:"id"`
	Question           string     `json:"question"`
	Options            []string   `json:"options"`
	IsAnonymous        bool       `json:"isAnonymous"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
}

type VotePollPayload struct {
	PollID    string   `json:"pollId"`
	OptionIDs []string `json:"optionIds"`
}

type EndPollPayload struct {
	PollID string `json:"pollId"`
}

// PollUpdatePayload is a partial poll record; absent fields keep their
// current values on merge.
type PollUpdatePayload struct {
	PollID             string              `json:"pollId"`
	Question           *string             `json:"question,omitempty"`
	Options            []domain.PollOption `json:"options,omitempty"`
	Status             *domain.PollStatus  `json:"status,omitempty"`
	ExpiresAt          *time.Time          `json:"expiresAt,omitempty"`
	IsAnonymous        *bool               `json:"isAnonymous,omitempty"`
	AllowMultipleVotes *bool               `json:"allowMultipleVotes,omitempty"`
}

type WhiteboardUpdatePayload struct {
	Objects []domain.WhiteboardObject `json:"objects"`
}

type ParticipantLeavePayload struct {
	ParticipantID string `json:"participantId"`
}

type PresenterChangePayload struct {
	ParticipantID string `json:"participantId"`
}

type ScreenShareChangePayload struct {
	ParticipantID string `json:"participantId"`
}

type RecordingStatusPayload struct {
	Status domain.RecordingStatus `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
