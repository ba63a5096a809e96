package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"classlink/internal/core/domain"
)

func TestCollectorConnectionState(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())

	c.ConnectionState(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.connected))

	c.ConnectionState(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.connected))
}

func TestCollectorReconnectsAndMessages(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())

	c.ReconnectScheduled()
	c.ReconnectScheduled()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.reconnectsTotal))

	c.MessageSent("message")
	c.MessageSent("message")
	c.MessageReceived("poll_create")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.messagesSent.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.messagesReceived.WithLabelValues("poll_create")))
}

func TestCollectorLinkSample(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())

	c.LinkSample(domain.LinkHealthSample{
		BitrateBps:    400_000,
		AvgPacketLoss: 0.02,
		MaxRTT:        50 * time.Millisecond,
		Warning:       true,
	})
	c.LinkSample(domain.LinkHealthSample{BitrateBps: 900_000})

	assert.Equal(t, 900_000.0, testutil.ToFloat64(c.linkBitrate))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.linkWarningTotal))
}

func TestCollectorObserveSession(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())

	c.ObserveSession(domain.Session{
		Participants: []domain.Participant{{ID: "a"}, {ID: "b"}},
		Polls: []domain.Poll{
			{ID: "p1", Status: domain.PollActive},
			{ID: "p2", Status: domain.PollEnded},
		},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.participants))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activePolls))
}
