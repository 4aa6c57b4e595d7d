// Package ingest receives data from the edge controller: sensor reading
// batches, automation events, the heartbeat snapshot, and device-raised
// alerts. Batches are stored all-or-nothing; everything accepted is fanned
// out to live viewers and, for numeric readings, to the telemetry sink.
package ingest

import "time"

// Reading is one sensor sample from the greenhouse.
type Reading struct {
	ID           string    `json:"id"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	SoilMoisture float64   `json:"soil_moisture"`
	LightLevel   float64   `json:"light_level"`
	WaterLevel   float64   `json:"water_level"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// AutomationEvent is one actuator transition decided by the controller's
// own automation loop (as opposed to a manual operator command).
type AutomationEvent struct {
	ID         string    `json:"id"`
	Actuator   string    `json:"actuator"`
	State      bool      `json:"state"`
	Trigger    string    `json:"trigger"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PiStatus is the controller heartbeat snapshot. A single row holds the
// latest report; each heartbeat fully overwrites it.
type PiStatus struct {
	Online           bool      `json:"online"`
	UptimeSeconds    int64     `json:"uptime_seconds"`
	CPUTemp          float64   `json:"cpu_temp"`
	FreeMemoryMB     float64   `json:"free_memory_mb"`
	WifiSignalDbm    int       `json:"wifi_signal_dbm"`
	ArduinoConnected bool      `json:"arduino_connected"`
	ReportedAt       time.Time `json:"reported_at"`
}
