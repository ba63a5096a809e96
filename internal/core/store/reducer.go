package store

import (
	"classlink/internal/core/domain"
)

// Reduce computes the next session state from the current state and an
// action. It never mutates its input; the returned value shares no slices
// with it. Update-type actions targeting an absent identifier return the
// state unchanged (structurally equal).
func Reduce(s domain.Session, a Action) domain.Session {
	next := clone(s)

	switch act := a.(type) {
	case SetConnected:
		next.Connected = act.Connected

	case AddParticipant:
		// Append unconditionally; the controller is responsible for not
		// adding an identifier the session already holds.
		next.Participants = append(next.Participants, act.Participant)

	case RemoveParticipant:
		kept := next.Participants[:0]
		for _, p := range next.Participants {
			if p.ID != act.ID {
				kept = append(kept, p)
			}
		}
		next.Participants = kept

	case UpdateParticipant:
		for i, p := range next.Participants {
			if p.ID == act.Participant.ID {
				next.Participants[i] = act.Participant
				break
			}
		}

	case AppendMessage:
		next.Messages = append(next.Messages, act.Message)

	case SetMessageDelivery:
		for i, m := range next.Messages {
			if m.ID == act.ID {
				next.Messages[i].Delivery = act.Delivery
				break
			}
		}

	case AddPoll:
		next.Polls = append(next.Polls, act.Poll)

	case MergePoll:
		for i, p := range next.Polls {
			if p.ID == act.ID {
				// An ended poll is frozen; a late update no longer applies.
				if p.Status != domain.PollEnded {
					next.Polls[i] = mergePoll(p, act.Update)
				}
				break
			}
		}

	case AddWhiteboardObject:
		next.Whiteboard = append(next.Whiteboard, act.Object)

	case ReplaceObjectPayload:
		for i, o := range next.Whiteboard {
			if o.ID == act.ID {
				next.Whiteboard[i].Payload = act.Payload
				break
			}
		}

	case RemoveWhiteboardObject:
		kept := next.Whiteboard[:0]
		for _, o := range next.Whiteboard {
			if o.ID != act.ID {
				kept = append(kept, o)
			}
		}
		next.Whiteboard = kept

	case SetPresenter:
		next.ActivePresenter = act.ID

	case SetScreenShare:
		next.ActiveScreenShare = act.ID

	case SetRecording:
		next.Recording = act.Status

	case MergeSettings:
		next.Settings = mergeSettings(next.Settings, act.Update)
	}

	return next
}

func mergePoll(p domain.Poll, u PollUpdate) domain.Poll {
	if u.Question != nil {
		p.Question = *u.Question
	}
	if u.Options != nil {
		p.Options = append([]domain.PollOption(nil), u.Options...)
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.ExpiresAt != nil {
		t := *u.ExpiresAt
		p.ExpiresAt = &t
	}
	if u.IsAnonymous != nil {
		p.IsAnonymous = *u.IsAnonymous
	}
	if u.AllowMultipleVotes != nil {
		p.AllowMultipleVotes = *u.AllowMultipleVotes
	}
	return p
}

func mergeSettings(s domain.Settings, u SettingsUpdate) domain.Settings {
	if u.ChatEnabled != nil {
		s.ChatEnabled = *u.ChatEnabled
	}
	if u.WhiteboardEnabled != nil {
		s.WhiteboardEnabled = *u.WhiteboardEnabled
	}
	if u.PollsEnabled != nil {
		s.PollsEnabled = *u.PollsEnabled
	}
	if u.RecordingEnabled != nil {
		s.RecordingEnabled = *u.RecordingEnabled
	}
	if u.MaxParticipants != nil {
		s.MaxParticipants = *u.MaxParticipants
	}
	return s
}

// clone deep-copies the session so reductions never alias prior snapshots.
func clone(s domain.Session) domain.Session {
	c := s
	c.Participants = append([]domain.Participant(nil), s.Participants...)
	c.Messages = append([]domain.ChatMessage(nil), s.Messages...)
	c.Whiteboard = make([]domain.WhiteboardObject, len(s.Whiteboard))
	for i, o := range s.Whiteboard {
		c.Whiteboard[i] = o
		c.Whiteboard[i].Payload = append([]byte(nil), o.Payload...)
	}
	c.Polls = make([]domain.Poll, len(s.Polls))
	for i, p := range s.Polls {
		c.Polls[i] = p
		c.Polls[i].Options = append([]domain.PollOption(nil), p.Options...)
		if p.ExpiresAt != nil {
			t := *p.ExpiresAt
			c.Polls[i].ExpiresAt = &t
		}
	}
	return c
}
