package domain

import "time"

// LinkHealthSample is a point-in-time aggregate over one peer media
// connection. It is recomputed on every sampling tick and never persisted.
type LinkHealthSample struct {
	Timestamp     time.Time
	BitrateBps    float64
	AvgPacketLoss float64
	MaxRTT        time.Duration
	Warning       bool
}
