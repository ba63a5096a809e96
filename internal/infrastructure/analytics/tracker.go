package analytics

import "go.uber.org/zap"

// Event is one analytics record.
type Event struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	Label    string `json:"label,omitempty"`
}

// Tracker is the analytics surface. All calls are fire-and-forget; a tracker
// must never block or fail the operation that produced the event.
type Tracker interface {
	TrackEvent(event Event)
}

type logTracker struct {
	logger *zap.SugaredLogger
}

// NewLogTracker returns a Tracker that records events in the structured log.
func NewLogTracker(logger *zap.SugaredLogger) Tracker {
	return &logTracker{logger: logger}
}

func (t *logTracker) TrackEvent(event Event) {
	t.logger.Debugw("analytics event",
		"category", event.Category,
		"action", event.Action,
		"label", event.Label,
	)
}

type nopTracker struct{}

func (nopTracker) TrackEvent(Event) {}

// Nop returns a Tracker that discards everything.
func Nop() Tracker { return nopTracker{} }
