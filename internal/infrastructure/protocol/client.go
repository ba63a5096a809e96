package protocol

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"classlink/internal/core/domain"
	"classlink/pkg/backoff"
	perrors "classlink/pkg/errors"
	"classlink/pkg/tracing"
)

// State is the connection lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateClosing      State = "closing"
	StateClosed       State = "closed"
	StateReconnecting State = "reconnecting"
)

const writeTimeout = 10 * time.Second

// Config carries the connection parameters for one session.
type Config struct {
	URL      string
	RoomID   string
	UserID   string
	UserName string
	Role     string

	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration

	MaxAttempts int
	Backoff     backoff.Policy

	// MessagesPerSecond limits outbound frames; 0 disables limiting.
	MessagesPerSecond float64
	Burst             int
}

// Client owns the single transport connection to the session coordinator.
// It implements the handshake, the heartbeat, and reconnection with
// exponential backoff, and forwards recognized inbound envelopes to the
// owner's event sink in arrival order.
type Client struct {
	cfg       Config
	dialer    Dialer
	scheduler Scheduler
	sink      func(Event)
	logger    *zap.SugaredLogger
	metrics   Metrics
	limiter   *rate.Limiter
	now       func() time.Time

	mu              sync.Mutex
	state           State
	conn            Conn
	gen             int // connection generation; stale goroutines compare and bail
	attempts        int
	reconnectTimer  Timer
	heartbeatTimer  Timer
	skipBackoffOnce bool
	lastPong        time.Time
	lastPing        time.Time

	writeMu sync.Mutex
}

// NewClient creates a protocol client. The sink receives every Event the
// client emits; it is invoked from the client's goroutines and must not
// block indefinitely.
func NewClient(cfg Config, dialer Dialer, scheduler Scheduler, sink func(Event), logger *zap.SugaredLogger, metrics Metrics) *Client {
	if metrics == nil {
		metrics = NopMetrics()
	}
	c := &Client{
		cfg:       cfg,
		dialer:    dialer,
		scheduler: scheduler,
		sink:      sink,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		state:     StateIdle,
	}
	if cfg.MessagesPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.Burst)
	}
	return c
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the transport. It is a no-op while already open or
// connecting, and resets the reconnection attempt counter, so a manual call
// after a terminal failure starts the policy over.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateOpen || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.attempts = 0
	c.skipBackoffOnce = false
	c.state = StateConnecting
	c.mu.Unlock()

	return c.dial(ctx, false)
}

// Disconnect deliberately closes the transport from any state. It cancels
// the heartbeat and any pending reconnect; the reconnection policy does not
// run for a local close.
func (c *Client) Disconnect() {
	c.mu.Lock()
	prev := c.state
	c.state = StateClosing
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	if c.heartbeatTimer != nil {
		c.heartbeatTimer.Stop()
		c.heartbeatTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.gen++
	c.skipBackoffOnce = false
	c.state = StateClosed
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	wasActive := conn != nil || prev == StateReconnecting || prev == StateConnecting
	if wasActive {
		c.logger.Infow("disconnected from coordinator", "room_id", c.cfg.RoomID)
		c.metrics.ConnectionState(false)
		c.sink(Disconnected{})
	}
}

// Send marshals an envelope and writes it to the open connection. Sending
// while not open fails immediately; nothing is queued.
func (c *Client) Send(ctx context.Context, envType string, payload interface{}) error {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return perrors.NotConnected(envType)
	}
	c.mu.Unlock()

	if c.limiter != nil && !c.limiter.Allow() {
		return perrors.New(perrors.CodeRateLimited, "outbound message rate exceeded")
	}

	_, span := tracing.TraceSend(ctx, envType, c.cfg.RoomID)
	defer span.End()

	if err := c.writeEnvelope(envType, payload); err != nil {
		tracing.RecordError(ctx, err)
		return perrors.Wrap(err, perrors.CodeInternal, "envelope write failed")
	}
	return nil
}

func (c *Client) dial(ctx context.Context, resumed bool) error {
	c.mu.Lock()
	attempt := c.attempts
	c.mu.Unlock()

	ctx, span := tracing.TraceConnect(ctx, c.cfg.RoomID, c.cfg.UserID, attempt)
	defer span.End()

	conn, err := c.dialer.Dial(ctx, c.cfg.URL)
	if err != nil {
		tracing.RecordError(ctx, err)
		c.logger.Warnw("coordinator dial failed", "url", c.cfg.URL, "error", err)
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		c.scheduleReconnect()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.gen++
	gen := c.gen
	c.state = StateOpen
	c.attempts = 0
	c.lastPong = c.now()
	c.mu.Unlock()

	go c.readLoop(conn, gen)
	c.scheduleHeartbeat()

	if err := c.writeEnvelope(TypeAuth, AuthPayload{UserName: c.cfg.UserName, Role: c.cfg.Role}); err != nil {
		// The write error path has already torn the connection down.
		tracing.RecordError(ctx, err)
		return err
	}

	c.logger.Infow("connected to coordinator",
		"room_id", c.cfg.RoomID,
		"user_id", c.cfg.UserID,
		"resumed", resumed,
	)
	c.metrics.ConnectionState(true)
	c.sink(Connected{Resumed: resumed})
	return nil
}

func (c *Client) readLoop(conn Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleTransportError(gen, err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warnw("dropping malformed frame", "error", err)
			continue
		}

		if env.Type == TypePong {
			c.handlePong()
			continue
		}
		if !knownInbound[env.Type] {
			// Forward compatibility: unknown types are logged and dropped.
			c.logger.Debugw("dropping unrecognized envelope type", "type", env.Type)
			continue
		}

		c.metrics.MessageReceived(env.Type)
		c.sink(Frame{Envelope: env})
	}
}

func (c *Client) handlePong() {
	c.mu.Lock()
	c.lastPong = c.now()
	rtt := c.lastPong.Sub(c.lastPing)
	ping := c.lastPing
	c.mu.Unlock()

	if !ping.IsZero() && rtt >= 0 {
		c.metrics.HeartbeatRTT(rtt.Seconds())
	}
}

func (c *Client) scheduleHeartbeat() {
	c.mu.Lock()
	if c.heartbeatTimer != nil {
		c.heartbeatTimer.Stop()
	}
	c.heartbeatTimer = c.scheduler.AfterFunc(c.cfg.HeartbeatInterval, c.heartbeatTick)
	c.mu.Unlock()
}

// heartbeatTick runs every HeartbeatInterval while open. A stale pong beyond
// HeartbeatTimeout tears the link down and reconnects immediately, skipping
// the backoff schedule for that one attempt.
func (c *Client) heartbeatTick() {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return
	}

	if c.now().Sub(c.lastPong) > c.cfg.HeartbeatTimeout {
		conn := c.conn
		c.conn = nil
		c.gen++
		c.state = StateClosed
		c.skipBackoffOnce = true
		c.mu.Unlock()

		if conn != nil {
			conn.Close()
		}
		c.logger.Warnw("heartbeat timeout, forcing reconnect",
			"room_id", c.cfg.RoomID,
			"timeout", c.cfg.HeartbeatTimeout,
		)
		c.metrics.ConnectionState(false)
		c.sink(Disconnected{Err: perrors.New(perrors.CodeCoordinatorError, "heartbeat timeout")})
		c.scheduleReconnect()
		return
	}

	c.lastPing = c.now()
	c.mu.Unlock()

	if err := c.writeEnvelope(TypePing, nil); err != nil {
		c.logger.Warnw("heartbeat ping failed", "error", err)
		return
	}
	c.scheduleHeartbeat()
}

func (c *Client) handleTransportError(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateOpen {
		// Stale read loop, or a close we initiated ourselves.
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	c.gen++
	c.state = StateClosed
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		c.logger.Warnw("transport error", "error", err)
	} else {
		c.logger.Infow("connection closed", "error", err)
	}
	c.metrics.ConnectionState(false)
	c.sink(Disconnected{Err: err})
	c.scheduleReconnect()
}

// scheduleReconnect runs the reconnection policy after an unexpected close.
// The attempt counter is incremented before computing the delay, so attempt
// i waits BaseDelay * 2^(i-1). Exhausting MaxAttempts emits a terminal
// Disconnected; only an explicit Connect restarts the policy.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.state == StateClosing {
		c.mu.Unlock()
		return
	}

	if c.skipBackoffOnce {
		c.skipBackoffOnce = false
		c.state = StateReconnecting
		c.reconnectTimer = c.scheduler.AfterFunc(0, c.retryDial)
		c.mu.Unlock()
		c.metrics.ReconnectScheduled()
		c.logger.Infow("immediate reconnect after liveness failure", "room_id", c.cfg.RoomID)
		return
	}

	c.attempts++
	attempt := c.attempts
	if attempt > c.cfg.MaxAttempts {
		c.state = StateClosed
		c.mu.Unlock()
		err := perrors.MaxRetriesExceeded(domain.ErrMaxRetriesExceeded, c.cfg.MaxAttempts)
		c.logger.Errorw("reconnection attempts exhausted", "max_attempts", c.cfg.MaxAttempts)
		c.sink(Disconnected{Err: err, Terminal: true})
		return
	}

	delay := c.cfg.Backoff.Delay(attempt)
	c.state = StateReconnecting
	c.reconnectTimer = c.scheduler.AfterFunc(delay, c.retryDial)
	c.mu.Unlock()

	c.metrics.ReconnectScheduled()
	c.logger.Infow("reconnect scheduled",
		"attempt", attempt,
		"max_attempts", c.cfg.MaxAttempts,
		"delay", delay,
	)
}

func (c *Client) retryDial() {
	c.mu.Lock()
	if c.state != StateReconnecting {
		// A deliberate disconnect beat the timer.
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.reconnectTimer = nil
	c.mu.Unlock()

	c.dial(context.Background(), true)
}

func (c *Client) writeEnvelope(envType string, payload interface{}) error {
	c.mu.Lock()
	conn := c.conn
	gen := c.gen
	c.mu.Unlock()
	if conn == nil {
		return perrors.NotConnected(envType)
	}

	env := Envelope{
		Type:      envType,
		RoomID:    c.cfg.RoomID,
		UserID:    c.cfg.UserID,
		Timestamp: c.now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return perrors.Wrap(err, perrors.CodeInternal, "payload marshal failed")
		}
		env.Payload = data
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return perrors.Wrap(err, perrors.CodeInternal, "envelope marshal failed")
	}

	c.writeMu.Lock()
	conn.SetWriteDeadline(c.now().Add(writeTimeout))
	err = conn.WriteMessage(websocket.TextMessage, frame)
	c.writeMu.Unlock()

	if err != nil {
		c.handleTransportError(gen, err)
		return err
	}
	c.metrics.MessageSent(envType)
	return nil
}
