package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"classlink/internal/core/domain"
	"classlink/internal/core/session"
	"classlink/internal/core/store"
	httphandlers "classlink/internal/handlers/http"
	"classlink/internal/infrastructure/analytics"
	"classlink/internal/infrastructure/monitoring"
	"classlink/internal/infrastructure/notify"
	"classlink/internal/infrastructure/protocol"
	"classlink/pkg/backoff"
	"classlink/pkg/config"
	"classlink/pkg/logger"
	"classlink/pkg/token"
	"classlink/pkg/tracing"
	"classlink/pkg/validation"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/classlink/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	// Resolve identity, preferring a signed token over plain config fields.
	userID := cfg.Identity.UserID
	userName := cfg.Identity.UserName
	role := cfg.Identity.Role
	if cfg.Identity.Token != "" {
		claims, err := token.Parse(cfg.Identity.TokenSecret, cfg.Identity.Token)
		if err != nil {
			log.Fatalw("invalid identity token", "error", err)
		}
		userID = claims.UserID
		userName = claims.DisplayName
		role = claims.Role
	}
	if userID == "" {
		userID = uuid.NewString()
	}

	// From here on, every log line carries the session identity.
	log = logger.NewSessionLogger(zapLogger, cfg.Coordinator.RoomID, userID).Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tp.Shutdown(shutdownCtx)
	}()

	registry := prometheus.NewRegistry()
	collector := monitoring.NewPrometheusCollector(registry)

	notifier := notify.NewLogNotifier(log)

	tracker := analytics.Tracker(analytics.NewLogTracker(log))
	if cfg.Analytics.RedisEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Analytics.RedisAddress,
			Password: cfg.Analytics.RedisPassword,
			DB:       cfg.Analytics.RedisDB,
		})
		publisher := analytics.NewRedisPublisher(
			redisClient,
			cfg.Analytics.Channel,
			domain.RoomID(cfg.Coordinator.RoomID),
			domain.ParticipantID(userID),
			log,
		)
		defer publisher.Close()
		tracker = analytics.Multi(tracker, publisher)
	}

	st := store.New(domain.RoomID(cfg.Coordinator.RoomID), domain.Settings{
		ChatEnabled:       true,
		WhiteboardEnabled: true,
		PollsEnabled:      true,
		RecordingEnabled:  true,
		MaxParticipants:   cfg.Limits.MaxParticipants,
	})
	st.Subscribe(collector.ObserveSession)

	limits := validation.Limits{
		MaxMessageLength:      cfg.Limits.MaxMessageLength,
		MaxPollOptions:        cfg.Limits.MaxPollOptions,
		MaxWhiteboardObjects:  cfg.Limits.MaxWhiteboardObjects,
		MaxObjectBytes:        cfg.Limits.MaxObjectBytes,
		MaxImageWidth:         cfg.Limits.MaxImageWidth,
		MaxImageHeight:        cfg.Limits.MaxImageHeight,
		AllowedImageMimeTypes: cfg.Limits.AllowedImageMimeTypes,
	}

	ctrl := session.NewController(session.Config{
		RoomID:   domain.RoomID(cfg.Coordinator.RoomID),
		UserID:   domain.ParticipantID(userID),
		UserName: userName,
		Role:     domain.Role(role),
		Limits:   limits,
	}, st, log, notifier, tracker, func(err error) {
		log.Errorw("session error", "error", err)
	})

	clientCfg := protocol.Config{
		URL:               cfg.Coordinator.URL,
		RoomID:            cfg.Coordinator.RoomID,
		UserID:            userID,
		UserName:          userName,
		Role:              role,
		HeartbeatInterval: cfg.Heartbeat.Interval,
		HeartbeatTimeout:  cfg.Heartbeat.Timeout,
		MaxAttempts:       cfg.Reconnect.MaxAttempts,
		Backoff: backoff.Policy{
			BaseDelay:  cfg.Reconnect.BaseDelay,
			MaxDelay:   cfg.Reconnect.MaxDelay,
			Multiplier: 2,
		},
	}
	if cfg.OutboundRate.Enabled {
		clientCfg.MessagesPerSecond = cfg.OutboundRate.MessagesPerSecond
		clientCfg.Burst = cfg.OutboundRate.Burst
	}

	client := protocol.NewClient(
		clientCfg,
		protocol.NewWebsocketDialer(cfg.Coordinator.HandshakeTimeout),
		protocol.NewScheduler(),
		ctrl.HandleEvent,
		log,
		collector,
	)
	ctrl.Bind(client)

	checker := monitoring.NewHealthChecker()
	checker.Register("coordinator", func(ctx context.Context) error {
		if !st.Snapshot().Connected {
			return domain.ErrNotConnected
		}
		return nil
	})

	if cfg.Monitoring.Enabled {
		diag := httphandlers.NewDiagnosticsServer(cfg.Monitoring.Address, ctrl, checker, registry, log)
		go func() {
			if err := diag.Start(); err != nil {
				log.Errorw("diagnostics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			diag.Shutdown(shutdownCtx)
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctrl.Connect(ctx); err != nil {
		// The reconnection policy is already running; log and wait.
		log.Warnw("initial connect failed, retrying", "error", err)
	}

	log.Infow("classlink session started",
		"room_id", cfg.Coordinator.RoomID,
		"user_id", userID,
		"coordinator", cfg.Coordinator.URL,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	ctrl.Disconnect()
}
