// Package bus defines the broadcast surface between domain services and the
// live event transport. Domain code publishes; the WebSocket hub in
// internal/api implements Bus and owns delivery.
//
// Delivery is at-most-once with no backlog: a viewer that connects after an
// event was published never receives it, and a viewer whose outbound buffer
// cannot accept a message within the write bound is torn down rather than
// stalling the publisher.
package bus

// Topic names carried on every live event envelope.
const (
	TopicNewReading      = "new_reading"
	TopicAutomationEvent = "automation_event"
	TopicThresholdUpdate = "threshold_update"
	TopicManualControl   = "manual_control"
	TopicAutoModeResumed = "auto_mode_resumed"
	TopicPiStatus        = "pi_status"
	TopicSystemAlert     = "system_alert"
	TopicUserOnline      = "user_online"
	TopicUserOffline     = "user_offline"

	// TopicForceDisconnect is delivered via PublishTo only, never fanned out.
	TopicForceDisconnect = "force_disconnect"
)

// Conn is an opaque handle to a single live subscriber connection. The
// transport layer owns the concrete type; domain code uses the handle only
// for targeted delivery, identity comparison, and teardown.
type Conn interface {
	// Close tears down the underlying transport connection. Safe to call
	// more than once.
	Close()
}

// Bus fans events out to live subscriber connections.
//
// Publish returns once every per-connection send attempt has completed or
// timed out; it never blocks indefinitely on a slow subscriber. Payloads are
// JSON-marshalled by the implementation.
type Bus interface {
	// Publish delivers the payload to every live connection.
	Publish(topic string, payload any)

	// PublishTo delivers the payload to a single connection. Used for
	// targeted administrative events such as force_disconnect.
	PublishTo(conn Conn, topic string, payload any)
}
