package domain

type RoomID string
type ParticipantID string
type MessageID string
type PollID string
type ObjectID string

type RecordingStatus string

const (
	RecordingInactive RecordingStatus = "inactive"
	RecordingActive   RecordingStatus = "recording"
	RecordingPaused   RecordingStatus = "paused"
)

// Settings holds the per-session feature toggles and caps. The coordinator
// may push partial updates; absent fields keep their current values.
type Settings struct {
	ChatEnabled       bool `json:"chatEnabled"`
	WhiteboardEnabled bool `json:"whiteboardEnabled"`
	PollsEnabled      bool `json:"pollsEnabled"`
	RecordingEnabled  bool `json:"recordingEnabled"`
	MaxParticipants   int  `json:"maxParticipants"`
}

// Session is the shared mutable state of one classroom instance. It is owned
// exclusively by the state store; everything else works on copies.
type Session struct {
	RoomID            RoomID
	Connected         bool
	Participants      []Participant
	Messages          []ChatMessage
	Polls             []Poll
	Whiteboard        []WhiteboardObject
	ActivePresenter   ParticipantID
	ActiveScreenShare ParticipantID
	Recording         RecordingStatus
	Settings          Settings
}

func NewSession(roomID RoomID, settings Settings) Session {
	return Session{
		RoomID:    roomID,
		Recording: RecordingInactive,
		Settings:  settings,
	}
}

// Participant returns the participant with the given identifier, if present.
func (s *Session) Participant(id ParticipantID) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// Poll returns the poll with the given identifier, if present.
func (s *Session) Poll(id PollID) (Poll, bool) {
	for _, p := range s.Polls {
		if p.ID == id {
			return p, true
		}
	}
	return Poll{}, false
}

// WhiteboardObject returns the whiteboard object with the given identifier.
func (s *Session) WhiteboardObject(id ObjectID) (WhiteboardObject, bool) {
	for _, o := range s.Whiteboard {
		if o.ID == id {
			return o, true
		}
	}
	return WhiteboardObject{}, false
}

// HasMessage reports whether a chat message with the given identifier has
// already been applied. Used for redelivery suppression after reconnects.
func (s *Session) HasMessage(id MessageID) bool {
	for _, m := range s.Messages {
		if m.ID == id {
			return true
		}
	}
	return false
}
