package linkquality

import (
	"context"
	"sync"

	"github.com/pion/rtcp"
)

// RTCPSource builds loss statistics from receiver reports for connections
// where the application reads RTCP directly instead of polling connection
// stats. It carries no bitrate or RTT information.
type RTCPSource struct {
	mu    sync.Mutex
	media map[uint32]MediaStat
}

func NewRTCPSource() *RTCPSource {
	return &RTCPSource{media: make(map[uint32]MediaStat)}
}

// Observe records the latest receiver report per media source. Other packet
// types are ignored.
func (s *RTCPSource) Observe(packets []rtcp.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pkt := range packets {
		rr, ok := pkt.(*rtcp.ReceiverReport)
		if !ok {
			continue
		}
		for _, report := range rr.Reports {
			// FractionLost is lost/256 over the last interval; express it as
			// a lost/received pair so the classifier's ratio reproduces it.
			s.media[report.SSRC] = MediaStat{
				PacketsLost:     int64(report.FractionLost),
				PacketsReceived: 256 - int64(report.FractionLost),
			}
		}
	}
}

func (s *RTCPSource) Stats(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Media: make([]MediaStat, 0, len(s.media))}
	for _, m := range s.media {
		snap.Media = append(snap.Media, m)
	}
	return snap, nil
}
