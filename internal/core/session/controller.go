package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classlink/internal/core/domain"
	"classlink/internal/core/store"
	"classlink/internal/infrastructure/analytics"
	"classlink/internal/infrastructure/notify"
	"classlink/internal/infrastructure/protocol"
	perrors "classlink/pkg/errors"
	"classlink/pkg/validation"
)

// ProtocolClient is the transport surface the controller drives. Satisfied
// by protocol.Client; tests substitute a fake.
type ProtocolClient interface {
	Connect(ctx context.Context) error
	Disconnect()
	Send(ctx context.Context, envType string, payload interface{}) error
	State() protocol.State
}

// Config carries the controller's identity and validation ceilings.
type Config struct {
	RoomID   domain.RoomID
	UserID   domain.ParticipantID
	UserName string
	Role     domain.Role
	Limits   validation.Limits
}

// Controller bridges inbound protocol events to store actions and exposes
// the operation surface callers use to act on the session. All mutation of
// session state flows through the store; the controller itself only keeps
// local vote bookkeeping.
type Controller struct {
	cfg      Config
	client   ProtocolClient
	store    *store.Store
	logger   *zap.SugaredLogger
	notifier notify.Notifier
	tracker  analytics.Tracker
	onError  func(error)
	now      func() time.Time
	newID    func() string

	voted map[domain.PollID]bool
}

// NewController creates a controller over the given store. Bind must be
// called with the protocol client before Connect. onError receives terminal
// connectivity failures and coordinator error envelopes; nil disables it.
func NewController(cfg Config, st *store.Store, logger *zap.SugaredLogger, notifier notify.Notifier, tracker analytics.Tracker, onError func(error)) *Controller {
	if notifier == nil {
		notifier = notify.Nop()
	}
	if tracker == nil {
		tracker = analytics.Nop()
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Controller{
		cfg:      cfg,
		store:    st,
		logger:   logger,
		notifier: notifier,
		tracker:  tracker,
		onError:  onError,
		now:      time.Now,
		newID:    uuid.NewString,
		voted:    make(map[domain.PollID]bool),
	}
}

// Bind attaches the protocol client whose event sink is HandleEvent.
func (c *Controller) Bind(client ProtocolClient) {
	c.client = client
}

func (c *Controller) Connect(ctx context.Context) error {
	return c.client.Connect(ctx)
}

func (c *Controller) Disconnect() {
	c.client.Disconnect()
}

// Snapshot returns a deep copy of the current session state.
func (c *Controller) Snapshot() domain.Session {
	return c.store.Snapshot()
}

// Subscribe registers an observer invoked with a snapshot after every
// applied action.
func (c *Controller) Subscribe(obs store.Observer) {
	c.store.Subscribe(obs)
}

// HandleEvent is the protocol client's event sink. A panic while applying a
// frame is recovered and logged; one bad frame never takes the session down.
func (c *Controller) HandleEvent(e protocol.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorw("panic while handling protocol event", "panic", r)
		}
	}()

	switch ev := e.(type) {
	case protocol.Connected:
		c.store.Dispatch(store.SetConnected{Connected: true})
		if ev.Resumed {
			c.notifier.Success("reconnected to session")
		} else {
			c.notifier.Success("connected to session")
		}
		c.tracker.TrackEvent(analytics.Event{Category: "session", Action: "connected"})

	case protocol.Disconnected:
		c.store.Dispatch(store.SetConnected{Connected: false})
		if ev.Terminal {
			c.notifier.Error("connection to session lost")
			c.onError(ev.Err)
		} else if ev.Err != nil {
			c.notifier.Warning("connection interrupted, reconnecting")
		}
		c.tracker.TrackEvent(analytics.Event{Category: "session", Action: "disconnected"})

	case protocol.Frame:
		c.applyFrame(ev.Envelope)
	}
}

func (c *Controller) applyFrame(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeParticipantJoin:
		var p domain.Participant
		if !c.decode(env, &p) {
			return
		}
		snap := c.store.Snapshot()
		if _, known := snap.Participant(p.ID); known {
			c.store.Dispatch(store.UpdateParticipant{Participant: p})
			return
		}
		if max := snap.Settings.MaxParticipants; max > 0 && len(snap.Participants) >= max {
			c.logger.Warnw("dropping join beyond the participant cap",
				"participant_id", p.ID,
				"max_participants", max,
			)
			c.onError(domain.ErrSessionFull)
			return
		}
		c.store.Dispatch(store.AddParticipant{Participant: p})
		c.notifier.Info(p.Name + " joined the session")

	case protocol.TypeParticipantLeave:
		var payload protocol.ParticipantLeavePayload
		if !c.decode(env, &payload) {
			return
		}
		c.store.Dispatch(store.RemoveParticipant{ID: domain.ParticipantID(payload.ParticipantID)})

	case protocol.TypeParticipantUpdate:
		var p domain.Participant
		if !c.decode(env, &p) {
			return
		}
		c.store.Dispatch(store.UpdateParticipant{Participant: p})

	case protocol.TypeMessage:
		var m domain.ChatMessage
		if !c.decode(env, &m) {
			return
		}
		snap := c.store.Snapshot()
		if snap.HasMessage(m.ID) {
			// Redelivered, or the echo of a message authored here.
			if m.SenderID == c.cfg.UserID {
				c.store.Dispatch(store.SetMessageDelivery{ID: m.ID, Delivery: domain.DeliverySent})
			}
			return
		}
		c.store.Dispatch(store.AppendMessage{Message: m})

	case protocol.TypePollCreate:
		var p domain.Poll
		if !c.decode(env, &p) {
			return
		}
		snap := c.store.Snapshot()
		if _, known := snap.Poll(p.ID); known {
			return
		}
		c.store.Dispatch(store.AddPoll{Poll: p})
		c.notifier.Info("a new poll is open: " + p.Question)

	case protocol.TypePollUpdate:
		var payload protocol.PollUpdatePayload
		if !c.decode(env, &payload) {
			return
		}
		c.store.Dispatch(store.MergePoll{
			ID: domain.PollID(payload.PollID),
			Update: store.PollUpdate{
				Question:           payload.Question,
				Options:            payload.Options,
				Status:             payload.Status,
				ExpiresAt:          payload.ExpiresAt,
				IsAnonymous:        payload.IsAnonymous,
				AllowMultipleVotes: payload.AllowMultipleVotes,
			},
		})

	case protocol.TypeWhiteboardUpdate:
		var payload protocol.WhiteboardUpdatePayload
		if !c.decode(env, &payload) {
			return
		}
		snap := c.store.Snapshot()
		// The snapshot predates this frame, so repeats of an identifier
		// within the same objects list must route to replacement too or the
		// board would hold duplicates.
		seen := make(map[domain.ObjectID]bool, len(payload.Objects))
		for _, obj := range payload.Objects {
			_, known := snap.WhiteboardObject(obj.ID)
			if known || seen[obj.ID] {
				c.store.Dispatch(store.ReplaceObjectPayload{ID: obj.ID, Payload: obj.Payload})
			} else {
				c.store.Dispatch(store.AddWhiteboardObject{Object: obj})
			}
			seen[obj.ID] = true
		}

	case protocol.TypePresenterChange:
		var payload protocol.PresenterChangePayload
		if !c.decode(env, &payload) {
			return
		}
		c.store.Dispatch(store.SetPresenter{ID: domain.ParticipantID(payload.ParticipantID)})

	case protocol.TypeScreenShareChange:
		var payload protocol.ScreenShareChangePayload
		if !c.decode(env, &payload) {
			return
		}
		c.store.Dispatch(store.SetScreenShare{ID: domain.ParticipantID(payload.ParticipantID)})

	case protocol.TypeRecordingStatusChange:
		var payload protocol.RecordingStatusPayload
		if !c.decode(env, &payload) {
			return
		}
		c.store.Dispatch(store.SetRecording{Status: payload.Status})

	case protocol.TypeError:
		var payload protocol.ErrorPayload
		if !c.decode(env, &payload) {
			return
		}
		c.logger.Warnw("coordinator reported an error", "message", payload.Message)
		c.notifier.Error(payload.Message)
		c.onError(perrors.Coordinator(payload.Message))

	default:
		c.logger.Debugw("ignoring unhandled envelope type", "type", env.Type)
	}
}

func (c *Controller) decode(env protocol.Envelope, out interface{}) bool {
	if err := json.Unmarshal(env.Payload, out); err != nil {
		c.logger.Warnw("dropping frame with malformed payload",
			"type", env.Type,
			"error", err,
		)
		return false
	}
	return true
}

// SendMessage authors a chat message. It returns the client-generated
// identifier; the message is held locally as pending until the coordinator
// echoes it back.
func (c *Controller) SendMessage(ctx context.Context, content string, isPrivate bool, recipientID domain.ParticipantID) (domain.MessageID, error) {
	snap := c.store.Snapshot()
	if !snap.Settings.ChatEnabled {
		return "", domain.ErrFeatureDisabled
	}
	if err := c.cfg.Limits.ValidateChatMessage(content); err != nil {
		return "", perrors.Validation(err)
	}
	if c.client.State() != protocol.StateOpen {
		return "", domain.ErrNotConnected
	}

	id := domain.MessageID(c.newID())
	ts := c.now()

	msg := domain.ChatMessage{
		ID:          id,
		SenderID:    c.cfg.UserID,
		Type:        domain.MessageText,
		Content:     content,
		Timestamp:   ts,
		IsPrivate:   isPrivate,
		RecipientID: recipientID,
		Delivery:    domain.DeliveryPending,
	}
	c.store.Dispatch(store.AppendMessage{Message: msg})

	err := c.client.Send(ctx, protocol.TypeMessage, protocol.MessagePayload{
		ID:          string(id),
		Content:     content,
		IsPrivate:   isPrivate,
		RecipientID: string(recipientID),
		Timestamp:   ts,
	})
	if err != nil {
		return id, err
	}

	c.store.Dispatch(store.SetMessageDelivery{ID: id, Delivery: domain.DeliverySent})
	c.tracker.TrackEvent(analytics.Event{Category: "chat", Action: "message_sent"})
	return id, nil
}

// RaiseHand signals intent to speak. The authoritative status only changes
// once the coordinator echoes a participant_update.
func (c *Controller) RaiseHand(ctx context.Context) error {
	return c.sendStatus(ctx, domain.StatusRaisedHand)
}

func (c *Controller) LowerHand(ctx context.Context) error {
	return c.sendStatus(ctx, domain.StatusActive)
}

func (c *Controller) sendStatus(ctx context.Context, status domain.ParticipantStatus) error {
	if c.client.State() != protocol.StateOpen {
		return domain.ErrNotConnected
	}
	return c.client.Send(ctx, protocol.TypeParticipantStatus, protocol.ParticipantStatusPayload{Status: status})
}

// CreatePoll submits a poll for creation and returns its client-generated
// identifier. The poll appears in the session once the coordinator echoes a
// poll_create event.
func (c *Controller) CreatePoll(ctx context.Context, question string, options []string, isAnonymous, allowMultipleVotes bool, expiresAt *time.Time) (domain.PollID, error) {
	snap := c.store.Snapshot()
	if !snap.Settings.PollsEnabled {
		return "", domain.ErrFeatureDisabled
	}
	if err := c.cfg.Limits.ValidatePollInput(question, options); err != nil {
		return "", perrors.Validation(err)
	}
	if c.client.State() != protocol.StateOpen {
		return "", domain.ErrNotConnected
	}

	id := domain.PollID(c.newID())
	err := c.client.Send(ctx, protocol.TypeCreatePoll, protocol.CreatePollPayload{
		ID:                 string(id),
		Question:           question,
		Options:            options,
		IsAnonymous:        isAnonymous,
		AllowMultipleVotes: allowMultipleVotes,
		ExpiresAt:          expiresAt,
	})
	if err != nil {
		return "", err
	}

	c.tracker.TrackEvent(analytics.Event{Category: "poll", Action: "created"})
	return id, nil
}

// VotePoll casts a vote. Each named condition is checked before any frame is
// produced; a failed vote leaves no trace.
func (c *Controller) VotePoll(ctx context.Context, pollID domain.PollID, optionIDs []string) error {
	snap := c.store.Snapshot()
	poll, ok := snap.Poll(pollID)
	if !ok {
		return domain.ErrPollNotFound
	}
	if poll.Status == domain.PollEnded {
		return domain.ErrPollEnded
	}
	if len(optionIDs) == 0 {
		return domain.ErrNoOptionChosen
	}
	if len(optionIDs) > 1 && !poll.AllowMultipleVotes {
		return domain.ErrMultipleChoices
	}
	for _, optID := range optionIDs {
		if _, ok := poll.Option(optID); !ok {
			return domain.ErrUnknownOption
		}
	}
	if c.voted[pollID] && !poll.AllowMultipleVotes {
		return domain.ErrDuplicateVote
	}
	if c.client.State() != protocol.StateOpen {
		return domain.ErrNotConnected
	}

	err := c.client.Send(ctx, protocol.TypeVotePoll, protocol.VotePollPayload{
		PollID:    string(pollID),
		OptionIDs: optionIDs,
	})
	if err != nil {
		return err
	}

	c.voted[pollID] = true
	c.tracker.TrackEvent(analytics.Event{Category: "poll", Action: "voted"})
	return nil
}

// EndPoll closes an active poll.
func (c *Controller) EndPoll(ctx context.Context, pollID domain.PollID) error {
	snap := c.store.Snapshot()
	poll, ok := snap.Poll(pollID)
	if !ok {
		return domain.ErrPollNotFound
	}
	if poll.Status == domain.PollEnded {
		return domain.ErrPollEnded
	}
	if c.client.State() != protocol.StateOpen {
		return domain.ErrNotConnected
	}
	return c.client.Send(ctx, protocol.TypeEndPoll, protocol.EndPollPayload{PollID: string(pollID)})
}

// UpdateWhiteboard submits object additions and payload replacements. Every
// object is validated against the configured ceilings before any frame is
// produced.
func (c *Controller) UpdateWhiteboard(ctx context.Context, objects []domain.WhiteboardObject) error {
	snap := c.store.Snapshot()
	if !snap.Settings.WhiteboardEnabled {
		return domain.ErrFeatureDisabled
	}

	boardSize := len(snap.Whiteboard)
	seen := make(map[domain.ObjectID]bool, len(objects))
	for _, obj := range objects {
		_, have := snap.WhiteboardObject(obj.ID)
		known := have || seen[obj.ID] // a repeat in this batch is a replacement
		if err := c.cfg.Limits.ValidateWhiteboardObject(obj, boardSize, !known); err != nil {
			return perrors.Validation(err)
		}
		if !known {
			boardSize++
		}
		seen[obj.ID] = true
	}
	if c.client.State() != protocol.StateOpen {
		return domain.ErrNotConnected
	}

	err := c.client.Send(ctx, protocol.TypeWhiteboardUpdate, protocol.WhiteboardUpdatePayload{Objects: objects})
	if err != nil {
		return err
	}

	c.tracker.TrackEvent(analytics.Event{Category: "whiteboard", Action: "updated"})
	return nil
}

func (c *Controller) StartPresenting(ctx context.Context) error {
	return c.sendBare(ctx, protocol.TypeStartPresenting)
}

func (c *Controller) StopPresenting(ctx context.Context) error {
	return c.sendBare(ctx, protocol.TypeStopPresenting)
}

func (c *Controller) StartScreenShare(ctx context.Context) error {
	return c.sendBare(ctx, protocol.TypeStartScreenShare)
}

func (c *Controller) StopScreenShare(ctx context.Context) error {
	return c.sendBare(ctx, protocol.TypeStopScreenShare)
}

func (c *Controller) StartRecording(ctx context.Context) error {
	if !c.store.Snapshot().Settings.RecordingEnabled {
		return domain.ErrFeatureDisabled
	}
	return c.sendBare(ctx, protocol.TypeStartRecording)
}

func (c *Controller) StopRecording(ctx context.Context) error {
	return c.sendBare(ctx, protocol.TypeStopRecording)
}

func (c *Controller) sendBare(ctx context.Context, envType string) error {
	if c.client.State() != protocol.StateOpen {
		return domain.ErrNotConnected
	}
	return c.client.Send(ctx, envType, nil)
}
