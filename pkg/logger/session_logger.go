package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SessionLogger decorates a zap logger with session identity fields so every
// component logs with the same room/user tags.
type SessionLogger struct {
	logger *zap.Logger
	roomID string
	userID string
}

// NewSessionLogger creates a session-scoped logger.
func NewSessionLogger(logger *zap.Logger, roomID, userID string) *SessionLogger {
	return &SessionLogger{
		logger: logger,
		roomID: roomID,
		userID: userID,
	}
}

// Base returns the underlying logger with room_id and user_id attached.
func (sl *SessionLogger) Base() *zap.Logger {
	return sl.logger.With(
		zap.String("room_id", sl.roomID),
		zap.String("user_id", sl.userID),
	)
}

// Sugar returns a sugared session-scoped logger.
func (sl *SessionLogger) Sugar() *zap.SugaredLogger {
	return sl.Base().Sugar()
}

// WithContext adds trace fields from the context when present.
func (sl *SessionLogger) WithContext(ctx context.Context) *zap.Logger {
	log := sl.Base()

	fields := []zapcore.Field{}
	if traceID := ctx.Value("trace_id"); traceID != nil {
		if id, ok := traceID.(string); ok {
			fields = append(fields, zap.String("trace_id", id))
		}
	}

	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// WithError adds an error field to the session-scoped logger.
func (sl *SessionLogger) WithError(err error) *zap.Logger {
	return sl.Base().With(zap.Error(err))
}
