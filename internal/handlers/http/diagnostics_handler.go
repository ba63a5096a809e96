package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"classlink/internal/core/domain"
	"classlink/internal/infrastructure/monitoring"
)

// SessionReader is the slice of the controller the diagnostics surface
// needs.
type SessionReader interface {
	Snapshot() domain.Session
}

// DiagnosticsServer exposes the local observability surface: liveness,
// a read-only session snapshot, and prometheus metrics.
type DiagnosticsServer struct {
	router    *gin.Engine
	srv       *http.Server
	session   SessionReader
	checker   *monitoring.HealthChecker
	logger    *zap.SugaredLogger
	startedAt time.Time
}

func NewDiagnosticsServer(address string, session SessionReader, checker *monitoring.HealthChecker, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) *DiagnosticsServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &DiagnosticsServer{
		router:    router,
		session:   session,
		checker:   checker,
		logger:    logger,
		startedAt: time.Now(),
		srv: &http.Server{
			Addr:         address,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}

	router.GET("/healthz", s.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.GET("/session", s.Session)
		api.GET("/session/participants", s.Participants)
		api.GET("/session/polls", s.Polls)
	}

	return s
}

type healthzResponse struct {
	monitoring.HealthStatus
	Connected     bool   `json:"connected"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	RoomID        string `json:"roomId"`
}

func (s *DiagnosticsServer) Healthz(c *gin.Context) {
	snap := s.session.Snapshot()
	status := s.checker.CheckAll(c.Request.Context())

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, healthzResponse{
		HealthStatus:  status,
		Connected:     snap.Connected,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		RoomID:        string(snap.RoomID),
	})
}

type sessionResponse struct {
	RoomID            domain.RoomID          `json:"roomId"`
	Connected         bool                   `json:"connected"`
	Participants      []domain.Participant   `json:"participants"`
	Messages          int                    `json:"messageCount"`
	Polls             []pollResponse         `json:"polls"`
	WhiteboardObjects int                    `json:"whiteboardObjectCount"`
	ActivePresenter   domain.ParticipantID   `json:"activePresenter,omitempty"`
	ActiveScreenShare domain.ParticipantID   `json:"activeScreenShare,omitempty"`
	Recording         domain.RecordingStatus `json:"recording"`
	Settings          domain.Settings        `json:"settings"`
}

type pollResponse struct {
	ID       domain.PollID         `json:"id"`
	Question string                `json:"question"`
	Status   domain.PollStatus     `json:"status"`
	Results  []domain.OptionResult `json:"results"`
}

func (s *DiagnosticsServer) Session(c *gin.Context) {
	snap := s.session.Snapshot()

	polls := make([]pollResponse, 0, len(snap.Polls))
	for _, p := range snap.Polls {
		polls = append(polls, pollResponse{
			ID:       p.ID,
			Question: p.Question,
			Status:   p.Status,
			Results:  p.Results(),
		})
	}

	c.JSON(http.StatusOK, sessionResponse{
		RoomID:            snap.RoomID,
		Connected:         snap.Connected,
		Participants:      snap.Participants,
		Messages:          len(snap.Messages),
		Polls:             polls,
		WhiteboardObjects: len(snap.Whiteboard),
		ActivePresenter:   snap.ActivePresenter,
		ActiveScreenShare: snap.ActiveScreenShare,
		Recording:         snap.Recording,
		Settings:          snap.Settings,
	})
}

func (s *DiagnosticsServer) Participants(c *gin.Context) {
	snap := s.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"count":        len(snap.Participants),
		"participants": snap.Participants,
	})
}

func (s *DiagnosticsServer) Polls(c *gin.Context) {
	snap := s.session.Snapshot()

	polls := make([]pollResponse, 0, len(snap.Polls))
	for _, p := range snap.Polls {
		polls = append(polls, pollResponse{
			ID:       p.ID,
			Question: p.Question,
			Status:   p.Status,
			Results:  p.Results(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"polls": polls})
}

// Start serves until Shutdown or a listener error.
func (s *DiagnosticsServer) Start() error {
	s.logger.Infow("diagnostics server listening", "address", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *DiagnosticsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *DiagnosticsServer) Router() *gin.Engine {
	return s.router
}
