package protocol

// Event is the closed set of signals the client hands to its owner. The
// controller dispatches on the concrete type; adding a variant is a
// compile-visible change, unlike a bag of optional callbacks.
type Event interface {
	isEvent()
}

// Connected fires after a successful handshake, including reconnects.
type Connected struct {
	Resumed bool // true when this connection followed an unexpected close
}

// Disconnected fires when the connection is lost or deliberately closed.
// Terminal is set when the reconnection policy has been exhausted; Err is
// nil for a deliberate local disconnect.
type Disconnected struct {
	Err      error
	Terminal bool
}

// Frame carries a recognized inbound envelope, in arrival order.
type Frame struct {
	Envelope Envelope
}

func (Connected) isEvent()    {}
func (Disconnected) isEvent() {}
func (Frame) isEvent()        {}

// Metrics is implemented by the monitoring collector; a nop implementation
// keeps the client usable without one.
type Metrics interface {
	ConnectionState(connected bool)
	ReconnectScheduled()
	MessageSent(envelopeType string)
	MessageReceived(envelopeType string)
	HeartbeatRTT(seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) ConnectionState(bool)   {}
func (nopMetrics) ReconnectScheduled()    {}
func (nopMetrics) MessageSent(string)     {}
func (nopMetrics) MessageReceived(string) {}
func (nopMetrics) HeartbeatRTT(float64)   {}

// NopMetrics returns a metrics sink that discards everything.
func NopMetrics() Metrics {
	return nopMetrics{}
}
