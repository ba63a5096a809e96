package linkquality

import (
	"time"

	"classlink/internal/core/domain"
)

// MediaStat is one inbound or outbound media report from a statistics
// snapshot.
type MediaStat struct {
	BitrateBps      float64
	PacketsLost     int64
	PacketsReceived int64
}

// CandidatePairStat is one transport candidate pair from a statistics
// snapshot; only the selected pair contributes to the RTT reading.
type CandidatePairStat struct {
	RTT      time.Duration
	Selected bool
}

// Snapshot is one point-in-time statistics reading of a peer connection.
type Snapshot struct {
	Media []MediaStat
	Pairs []CandidatePairStat
}

// Thresholds are the warning bounds for a classified sample.
type Thresholds struct {
	MinBitrateBps float64
	MaxRTT        time.Duration
	MaxPacketLoss float64
}

// Classify turns a statistics snapshot into a health sample. It is stateless
// and recomputed each tick; there is no smoothing across readings. The
// warning is raised when any bound is crossed: aggregate bitrate below
// MinBitrateBps, selected-pair RTT above MaxRTT, or average packet loss
// above MaxPacketLoss.
func Classify(snap Snapshot, th Thresholds, at time.Time) domain.LinkHealthSample {
	var bitrate float64
	var lossSum float64
	for _, m := range snap.Media {
		bitrate += m.BitrateBps
		lossSum += lossRatio(m.PacketsLost, m.PacketsReceived)
	}

	var avgLoss float64
	if len(snap.Media) > 0 {
		avgLoss = lossSum / float64(len(snap.Media))
	}

	var maxRTT time.Duration
	for _, p := range snap.Pairs {
		if p.Selected && p.RTT > maxRTT {
			maxRTT = p.RTT
		}
	}

	return domain.LinkHealthSample{
		Timestamp:     at,
		BitrateBps:    bitrate,
		AvgPacketLoss: avgLoss,
		MaxRTT:        maxRTT,
		Warning:       bitrate < th.MinBitrateBps || maxRTT > th.MaxRTT || avgLoss > th.MaxPacketLoss,
	}
}

func lossRatio(lost, received int64) float64 {
	total := lost + received
	if total <= 0 {
		return 0
	}
	return float64(lost) / float64(total)
}
