package notify

import "go.uber.org/zap"

// Notifier is the user-facing notification surface. The rendering layer
// supplies its own implementation; the default writes to the log.
type Notifier interface {
	Success(message string)
	Warning(message string)
	Error(message string)
	Info(message string)
}

type logNotifier struct {
	logger *zap.SugaredLogger
}

// NewLogNotifier returns a Notifier that records notifications in the
// structured log with a severity field.
func NewLogNotifier(logger *zap.SugaredLogger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Success(message string) {
	n.logger.Infow(message, "notification", "success")
}

func (n *logNotifier) Warning(message string) {
	n.logger.Warnw(message, "notification", "warning")
}

func (n *logNotifier) Error(message string) {
	n.logger.Errorw(message, "notification", "error")
}

func (n *logNotifier) Info(message string) {
	n.logger.Infow(message, "notification", "info")
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Warning(string) {}
func (nopNotifier) Error(string)   {}
func (nopNotifier) Info(string)    {}

// Nop returns a Notifier that discards everything.
func Nop() Notifier { return nopNotifier{} }
