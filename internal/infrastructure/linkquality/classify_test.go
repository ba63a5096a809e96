package linkquality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testThresholds() Thresholds {
	return Thresholds{
		MinBitrateBps: 500_000,
		MaxRTT:        250 * time.Millisecond,
		MaxPacketLoss: 0.05,
	}
}

func TestClassifyLowBitrateWarns(t *testing.T) {
	snap := Snapshot{
		Media: []MediaStat{{BitrateBps: 400_000, PacketsLost: 0, PacketsReceived: 1000}},
		Pairs: []CandidatePairStat{{RTT: 50 * time.Millisecond, Selected: true}},
	}

	sample := Classify(snap, testThresholds(), time.Now())
	assert.True(t, sample.Warning)
	assert.Equal(t, 400_000.0, sample.BitrateBps)
}

func TestClassifyHealthySample(t *testing.T) {
	snap := Snapshot{
		Media: []MediaStat{{BitrateBps: 600_000, PacketsLost: 10, PacketsReceived: 990}},
		Pairs: []CandidatePairStat{{RTT: 50 * time.Millisecond, Selected: true}},
	}

	sample := Classify(snap, testThresholds(), time.Now())
	assert.False(t, sample.Warning)
	assert.Equal(t, 600_000.0, sample.BitrateBps)
	assert.InDelta(t, 0.01, sample.AvgPacketLoss, 1e-9)
	assert.Equal(t, 50*time.Millisecond, sample.MaxRTT)
}

func TestClassifyHighRTTWarns(t *testing.T) {
	snap := Snapshot{
		Media: []MediaStat{{BitrateBps: 600_000, PacketsReceived: 1000}},
		Pairs: []CandidatePairStat{
			{RTT: 100 * time.Millisecond, Selected: true},
			{RTT: 300 * time.Millisecond, Selected: true},
			{RTT: 900 * time.Millisecond, Selected: false}, // not selected, ignored
		},
	}

	sample := Classify(snap, testThresholds(), time.Now())
	assert.True(t, sample.Warning)
	assert.Equal(t, 300*time.Millisecond, sample.MaxRTT)
}

func TestClassifyHighLossWarns(t *testing.T) {
	snap := Snapshot{
		Media: []MediaStat{
			{BitrateBps: 400_000, PacketsLost: 200, PacketsReceived: 800}, // 20%
			{BitrateBps: 300_000, PacketsLost: 0, PacketsReceived: 1000},  // 0%
		},
	}

	sample := Classify(snap, testThresholds(), time.Now())
	assert.True(t, sample.Warning)
	assert.InDelta(t, 0.1, sample.AvgPacketLoss, 1e-9)
	assert.Equal(t, 700_000.0, sample.BitrateBps)
}

func TestClassifyZeroDenominatorLoss(t *testing.T) {
	snap := Snapshot{
		Media: []MediaStat{{BitrateBps: 600_000}},
	}

	sample := Classify(snap, testThresholds(), time.Now())
	assert.Zero(t, sample.AvgPacketLoss)
	assert.False(t, sample.Warning)
}

func TestClassifyEmptySnapshot(t *testing.T) {
	sample := Classify(Snapshot{}, testThresholds(), time.Now())
	assert.Zero(t, sample.AvgPacketLoss)
	assert.Zero(t, sample.MaxRTT)
	// Zero aggregate bitrate is below the floor.
	assert.True(t, sample.Warning)
}

func TestClassifyStampsSample(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sample := Classify(Snapshot{}, testThresholds(), at)
	assert.True(t, sample.Timestamp.Equal(at))
}
