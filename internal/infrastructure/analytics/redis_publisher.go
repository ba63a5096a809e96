package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"classlink/internal/core/domain"
)

// wireEvent is the published record: the analytics Event plus the session
// identity, so consumers can partition by room.
type wireEvent struct {
	Event
	RoomID    domain.RoomID        `json:"roomId"`
	UserID    domain.ParticipantID `json:"userId"`
	Timestamp time.Time            `json:"timestamp"`
}

// RedisPublisher forwards analytics events to a Redis pub/sub channel.
// Publish failures are logged and dropped; analytics never backpressures the
// session.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	roomID  domain.RoomID
	userID  domain.ParticipantID
	logger  *zap.SugaredLogger
	timeout time.Duration
}

func NewRedisPublisher(client *redis.Client, channel string, roomID domain.RoomID, userID domain.ParticipantID, logger *zap.SugaredLogger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		roomID:  roomID,
		userID:  userID,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

func (p *RedisPublisher) TrackEvent(event Event) {
	data, err := json.Marshal(wireEvent{
		Event:     event,
		RoomID:    p.roomID,
		UserID:    p.userID,
		Timestamp: time.Now(),
	})
	if err != nil {
		p.logger.Warnw("failed to marshal analytics event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Warnw("failed to publish analytics event",
			"channel", p.channel,
			"error", err,
		)
		return
	}

	p.logger.Debugw("published analytics event",
		"category", event.Category,
		"action", event.Action,
	)
}

// Close releases the underlying Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// fanout sends every event to all trackers.
type fanout struct {
	trackers []Tracker
}

// Multi combines trackers; every event goes to each of them.
func Multi(trackers ...Tracker) Tracker {
	return &fanout{trackers: trackers}
}

func (f *fanout) TrackEvent(event Event) {
	for _, t := range f.trackers {
		t.TrackEvent(event)
	}
}
