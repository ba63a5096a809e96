package linkquality

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v3"
)

// statsProvider is the slice of *webrtc.PeerConnection the adapter needs.
type statsProvider interface {
	GetStats() webrtc.StatsReport
}

// PeerStatsSource adapts a pion peer connection to a StatsSource. Bitrate is
// derived from byte deltas between successive readings, so the first reading
// always reports zero bitrate.
type PeerStatsSource struct {
	pc  statsProvider
	now func() time.Time

	mu        sync.Mutex
	lastBytes map[string]uint64
	lastAt    time.Time
}

func NewPeerStatsSource(pc *webrtc.PeerConnection) *PeerStatsSource {
	return &PeerStatsSource{
		pc:        pc,
		now:       time.Now,
		lastBytes: make(map[string]uint64),
	}
}

func (s *PeerStatsSource) Stats(ctx context.Context) (Snapshot, error) {
	return s.snapshot(s.pc.GetStats()), nil
}

func (s *PeerStatsSource) snapshot(report webrtc.StatsReport) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	elapsed := at.Sub(s.lastAt).Seconds()
	first := s.lastAt.IsZero()
	s.lastAt = at

	var snap Snapshot
	for id, stat := range report {
		switch st := stat.(type) {
		case webrtc.InboundRTPStreamStats:
			snap.Media = append(snap.Media, MediaStat{
				BitrateBps:      s.bitrate(id, st.BytesReceived, elapsed, first),
				PacketsLost:     int64(st.PacketsLost),
				PacketsReceived: int64(st.PacketsReceived),
			})
		case webrtc.OutboundRTPStreamStats:
			snap.Media = append(snap.Media, MediaStat{
				BitrateBps: s.bitrate(id, st.BytesSent, elapsed, first),
			})
		case webrtc.ICECandidatePairStats:
			if st.State != webrtc.StatsICECandidatePairStateSucceeded {
				continue
			}
			snap.Pairs = append(snap.Pairs, CandidatePairStat{
				RTT:      time.Duration(st.CurrentRoundTripTime * float64(time.Second)),
				Selected: st.Nominated,
			})
		}
	}
	return snap
}

func (s *PeerStatsSource) bitrate(id string, bytes uint64, elapsed float64, first bool) float64 {
	prev, seen := s.lastBytes[id]
	s.lastBytes[id] = bytes
	if first || !seen || elapsed <= 0 || bytes < prev {
		return 0
	}
	return float64(bytes-prev) * 8 / elapsed
}
