package service

// Event names pushed to connected admin dashboards.
const (
	EventBidReceived     = "bid.received"
	EventOrderCreated    = "order.created"
	EventPaymentPending  = "payment.pending"
	EventPaymentVerified = "payment.verified"
	EventPaymentReleased = "payment.released"
)

// Notifier pushes real-time events to the admin dashboard. Implemented by
// the websocket hub; a nil-safe no-op is used when the hub is absent.
type Notifier interface {
	Broadcast(event string, payload interface{})
}

// NopNotifier discards events. Used in tests and when no hub is wired.
type NopNotifier struct{}

func (NopNotifier) Broadcast(event string, payload interface{}) {}
