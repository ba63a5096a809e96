package linkquality

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"classlink/internal/core/domain"
	"classlink/internal/infrastructure/notify"
)

// StatsSource yields statistics snapshots of the monitored peer connection.
type StatsSource interface {
	Stats(ctx context.Context) (Snapshot, error)
}

// Metrics receives every classified sample.
type Metrics interface {
	LinkSample(sample domain.LinkHealthSample)
}

type nopMetrics struct{}

func (nopMetrics) LinkSample(domain.LinkHealthSample) {}

// Monitor samples a StatsSource on a fixed period and classifies each
// reading. Warnings go to the notifier and the OnWarning callback; every
// sample goes to metrics. The monitor holds no state across ticks.
type Monitor struct {
	source     StatsSource
	thresholds Thresholds
	interval   time.Duration
	logger     *zap.SugaredLogger
	notifier   notify.Notifier
	metrics    Metrics
	onWarning  func(domain.LinkHealthSample)
	now        func() time.Time
}

func NewMonitor(source StatsSource, thresholds Thresholds, interval time.Duration, logger *zap.SugaredLogger, notifier notify.Notifier, metrics Metrics, onWarning func(domain.LinkHealthSample)) *Monitor {
	if notifier == nil {
		notifier = notify.Nop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if onWarning == nil {
		onWarning = func(domain.LinkHealthSample) {}
	}
	return &Monitor{
		source:     source,
		thresholds: thresholds,
		interval:   interval,
		logger:     logger,
		notifier:   notifier,
		metrics:    metrics,
		onWarning:  onWarning,
		now:        time.Now,
	}
}

// Run samples until the context is cancelled. It never returns early on
// sampling errors; a failed reading is logged and the next tick proceeds.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sample(ctx)
		}
	}
}

// Sample takes one reading and classifies it.
func (m *Monitor) Sample(ctx context.Context) {
	snap, err := m.source.Stats(ctx)
	if err != nil {
		m.logger.Warnw("failed to read connection statistics", "error", err)
		return
	}

	sample := Classify(snap, m.thresholds, m.now())
	m.metrics.LinkSample(sample)

	if !sample.Warning {
		m.logger.Debugw("link quality sample",
			"bitrate_bps", sample.BitrateBps,
			"avg_packet_loss", sample.AvgPacketLoss,
			"max_rtt", sample.MaxRTT,
		)
		return
	}

	m.logger.Warnw("link quality degraded",
		"bitrate_bps", sample.BitrateBps,
		"avg_packet_loss", sample.AvgPacketLoss,
		"max_rtt", sample.MaxRTT,
	)
	m.notifier.Warning(fmt.Sprintf("connection quality is degraded (bitrate %.0f bps, loss %.1f%%, rtt %s)",
		sample.BitrateBps, sample.AvgPacketLoss*100, sample.MaxRTT))
	m.onWarning(sample)
}
