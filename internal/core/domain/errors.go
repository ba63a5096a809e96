package domain

import "errors"

var (
	ErrNotConnected       = errors.New("not connected")
	ErrMaxRetriesExceeded = errors.New("max reconnection attempts exceeded")
	ErrSessionFull        = errors.New("session participant cap reached")

	ErrPollNotFound    = errors.New("poll not found")
	ErrPollEnded       = errors.New("poll has ended")
	ErrDuplicateVote   = errors.New("participant already voted")
	ErrNoOptionChosen  = errors.New("no poll option chosen")
	ErrTooManyOptions  = errors.New("poll option count out of range")
	ErrUnknownOption   = errors.New("unknown poll option")
	ErrMultipleChoices = errors.New("poll does not allow multiple votes")

	ErrWhiteboardFull  = errors.New("whiteboard object cap reached")
	ErrObjectTooLarge  = errors.New("whiteboard object payload too large")
	ErrBadImagePayload = errors.New("invalid whiteboard image payload")

	ErrMessageTooLong = errors.New("chat message too long")
	ErrEmptyMessage   = errors.New("chat message is empty")

	ErrFeatureDisabled = errors.New("feature disabled for this session")
)
