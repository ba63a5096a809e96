package domain

import "time"

type Role string

const (
	RoleHost        Role = "host"
	RoleCoHost      Role = "co-host"
	RoleParticipant Role = "participant"
	RoleObserver    Role = "observer"
)

type ParticipantStatus string

const (
	StatusActive     ParticipantStatus = "active"
	StatusInactive   ParticipantStatus = "inactive"
	StatusAway       ParticipantStatus = "away"
	StatusRaisedHand ParticipantStatus = "raised-hand"
)

type Participant struct {
	ID            ParticipantID     `json:"id"`
	Name          string            `json:"name"`
	Role          Role              `json:"role"`
	Status        ParticipantStatus `json:"status"`
	AudioEnabled  bool              `json:"audioEnabled"`
	VideoEnabled  bool              `json:"videoEnabled"`
	ScreenSharing bool              `json:"screenSharing"`
	JoinedAt      time.Time         `json:"joinedAt"`
}

func ValidRole(r Role) bool {
	switch r {
	case RoleHost, RoleCoHost, RoleParticipant, RoleObserver:
		return true
	}
	return false
}
