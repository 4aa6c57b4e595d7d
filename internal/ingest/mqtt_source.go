package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/alert"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/mqtt"
)

// handleTimeout bounds how long a single MQTT message may spend in the
// ingestion path before its database work is abandoned.
const handleTimeout = 10 * time.Second

// MQTTSource routes relay telemetry from the broker into the ingestion
// service. Payloads use the same JSON envelopes as the HTTP device
// endpoints, so the relay can switch transports without reformatting.
type MQTTSource struct {
	client *mqtt.Client
	svc    *Service
	qos    byte
	logger *logging.Logger
}

// NewMQTTSource wires an ingestion service to a connected MQTT client.
func NewMQTTSource(client *mqtt.Client, svc *Service, qos byte, logger *logging.Logger) *MQTTSource {
	return &MQTTSource{
		client: client,
		svc:    svc,
		qos:    qos,
		logger: logger,
	}
}

// Start subscribes to every device telemetry channel. Subscriptions are
// restored automatically by the client after a reconnect.
func (m *MQTTSource) Start() error {
	topics := mqtt.Topics{}

	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{topics.DeviceReadings(), m.handleReadings},
		{topics.DeviceEvents(), m.handleEvents},
		{topics.DeviceHeartbeat(), m.handleHeartbeat},
		{topics.DeviceAlerts(), m.handleAlerts},
	}

	for _, s := range subs {
		if err := m.client.Subscribe(s.topic, m.qos, s.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", s.topic, err)
		}
	}

	m.logger.Info("mqtt ingestion started", "topics", len(subs))
	return nil
}

func (m *MQTTSource) handleReadings(topic string, payload []byte) error {
	var env struct {
		Readings []Reading `json:"readings"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode readings: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	return m.svc.SubmitReadings(ctx, env.Readings)
}

func (m *MQTTSource) handleEvents(topic string, payload []byte) error {
	var env struct {
		Events []AutomationEvent `json:"events"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode events: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	return m.svc.SubmitEvents(ctx, env.Events)
}

func (m *MQTTSource) handleHeartbeat(topic string, payload []byte) error {
	var status PiStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return fmt.Errorf("decode heartbeat: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	return m.svc.Heartbeat(ctx, &status)
}

func (m *MQTTSource) handleAlerts(topic string, payload []byte) error {
	var env struct {
		Alerts []alert.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode alerts: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	return m.svc.SubmitAlerts(ctx, env.Alerts)
}
