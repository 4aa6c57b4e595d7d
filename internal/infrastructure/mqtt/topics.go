package mqtt

import "fmt"

// Topic prefixes for the GreenGiant MQTT hierarchy.
//
// The Pi relay publishes telemetry under greengiant/device/{channel} and
// the backend publishes its own lifecycle under greengiant/system/{channel}.
const (
	// TopicPrefixDevice is the base for all device telemetry topics.
	TopicPrefixDevice = "greengiant/device"

	// TopicPrefixSystem is the base for backend lifecycle topics.
	TopicPrefixSystem = "greengiant/system"
)

// Topics provides builders for GreenGiant MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	readings := topics.DeviceReadings()
//	// Returns: "greengiant/device/readings"
type Topics struct{}

// DeviceReadings returns the topic the relay publishes sensor batches to.
//
// Example: greengiant/device/readings
func (Topics) DeviceReadings() string {
	return fmt.Sprintf("%s/readings", TopicPrefixDevice)
}

// DeviceEvents returns the topic for automation events from the relay.
//
// Example: greengiant/device/events
func (Topics) DeviceEvents() string {
	return fmt.Sprintf("%s/events", TopicPrefixDevice)
}

// DeviceHeartbeat returns the topic for Pi health heartbeats.
//
// Example: greengiant/device/heartbeat
func (Topics) DeviceHeartbeat() string {
	return fmt.Sprintf("%s/heartbeat", TopicPrefixDevice)
}

// DeviceAlerts returns the topic for device-originated alerts.
//
// Example: greengiant/device/alerts
func (Topics) DeviceAlerts() string {
	return fmt.Sprintf("%s/alerts", TopicPrefixDevice)
}

// SystemStatus returns the backend online/offline status topic.
// Used for the retained birth message and the LWT.
//
// Example: greengiant/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: greengiant/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllDeviceTopics returns a pattern matching every device telemetry channel.
//
// Pattern: greengiant/device/+
func (Topics) AllDeviceTopics() string {
	return fmt.Sprintf("%s/+", TopicPrefixDevice)
}

// AllTopics returns a pattern matching all GreenGiant topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: greengiant/#
func (Topics) AllTopics() string {
	return "greengiant/#"
}
