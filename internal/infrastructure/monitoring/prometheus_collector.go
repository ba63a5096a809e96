package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"classlink/internal/core/domain"
)

// PrometheusCollector records session metrics. It serves as the protocol
// client's metrics sink and the link quality monitor's sample sink, and
// observes store snapshots for the participant gauge.
type PrometheusCollector struct {
	connected       prometheus.Gauge
	reconnectsTotal prometheus.Counter

	messagesSent     *prometheus.CounterVec
	messagesReceived *prometheus.CounterVec

	heartbeatRTT prometheus.Histogram

	linkBitrate      prometheus.Gauge
	linkPacketLoss   prometheus.Gauge
	linkRTT          prometheus.Gauge
	linkWarningTotal prometheus.Counter

	participants prometheus.Gauge
	activePolls  prometheus.Gauge
}

// NewPrometheusCollector registers the metric set on reg; nil registers on
// the default registerer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusCollector{
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classlink_connected",
			Help: "Whether the client currently holds an open coordinator connection (0 or 1)",
		}),

		reconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "classlink_reconnects_total",
			Help: "Total number of reconnection attempts scheduled",
		}),

		messagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "classlink_messages_sent_total",
			Help: "Total outbound envelopes by type",
		}, []string{"type"}),

		messagesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "classlink_messages_received_total",
			Help: "Total inbound envelopes by type",
		}, []string{"type"}),

		heartbeatRTT: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "classlink_heartbeat_rtt_seconds",
			Help:    "Round-trip time between ping and pong",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		linkBitrate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classlink_link_bitrate_bps",
			Help: "Aggregate media bitrate of the last link quality sample",
		}),

		linkPacketLoss: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classlink_link_packet_loss_ratio",
			Help: "Average packet loss ratio of the last link quality sample",
		}),

		linkRTT: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classlink_link_rtt_seconds",
			Help: "Selected candidate pair round-trip time of the last link quality sample",
		}),

		linkWarningTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "classlink_link_warnings_total",
			Help: "Total link quality samples that crossed a warning threshold",
		}),

		participants: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classlink_session_participants",
			Help: "Current number of participants in the session",
		}),

		activePolls: factory.NewGauge(prometheus.GaugeOpts{
			Name: "classlink_session_active_polls",
			Help: "Current number of active polls in the session",
		}),
	}
}

func (p *PrometheusCollector) ConnectionState(connected bool) {
	if connected {
		p.connected.Set(1)
		return
	}
	p.connected.Set(0)
}

func (p *PrometheusCollector) ReconnectScheduled() {
	p.reconnectsTotal.Inc()
}

func (p *PrometheusCollector) MessageSent(envelopeType string) {
	p.messagesSent.WithLabelValues(envelopeType).Inc()
}

func (p *PrometheusCollector) MessageReceived(envelopeType string) {
	p.messagesReceived.WithLabelValues(envelopeType).Inc()
}

func (p *PrometheusCollector) HeartbeatRTT(seconds float64) {
	p.heartbeatRTT.Observe(seconds)
}

func (p *PrometheusCollector) LinkSample(sample domain.LinkHealthSample) {
	p.linkBitrate.Set(sample.BitrateBps)
	p.linkPacketLoss.Set(sample.AvgPacketLoss)
	p.linkRTT.Set(sample.MaxRTT.Seconds())
	if sample.Warning {
		p.linkWarningTotal.Inc()
	}
}

// ObserveSession updates the session gauges; registered as a store observer.
func (p *PrometheusCollector) ObserveSession(s domain.Session) {
	p.participants.Set(float64(len(s.Participants)))

	active := 0
	for _, poll := range s.Polls {
		if poll.Status == domain.PollActive {
			active++
		}
	}
	p.activePolls.Set(float64(active))
}
