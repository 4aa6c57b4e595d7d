package ingest

import (
	"context"

	"github.com/Vinyl-Lilith/GreenGiant/internal/alert"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
)

// TelemetrySink receives numeric reading fields for long-term telemetry.
// Implementations must not block; the Influx sink buffers internally.
type TelemetrySink interface {
	WriteReading(r Reading)
}

// Service handles everything the edge controller submits.
type Service struct {
	readings ReadingRepository
	events   EventRepository
	status   StatusRepository
	alerts   alert.Repository
	bus      bus.Bus
	sink     TelemetrySink // nil when telemetry is disabled
	logger   *logging.Logger
}

// NewService wires the ingestion paths together. sink may be nil.
func NewService(readings ReadingRepository, events EventRepository,
	status StatusRepository, alerts alert.Repository, b bus.Bus,
	sink TelemetrySink, logger *logging.Logger) *Service {
	return &Service{
		readings: readings,
		events:   events,
		status:   status,
		alerts:   alerts,
		bus:      b,
		sink:     sink,
		logger:   logger,
	}
}

// SubmitReadings stores a reading batch all-or-nothing, then notifies
// viewers with the newest stored reading and feeds the telemetry sink.
func (s *Service) SubmitReadings(ctx context.Context, batch []Reading) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	if err := s.readings.InsertBatch(ctx, batch); err != nil {
		return err
	}

	s.bus.Publish(bus.TopicNewReading, batch[len(batch)-1])

	if s.sink != nil {
		for _, r := range batch {
			s.sink.WriteReading(r)
		}
	}

	s.logger.Debug("readings ingested", "count", len(batch))
	return nil
}

// SubmitEvents stores an automation event batch all-or-nothing, then
// notifies viewers once per stored event.
func (s *Service) SubmitEvents(ctx context.Context, batch []AutomationEvent) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	if err := s.events.InsertBatch(ctx, batch); err != nil {
		return err
	}

	for _, ev := range batch {
		s.bus.Publish(bus.TopicAutomationEvent, ev)
	}

	s.logger.Debug("automation events ingested", "count", len(batch))
	return nil
}

// Heartbeat overwrites the controller status snapshot and notifies viewers.
func (s *Service) Heartbeat(ctx context.Context, status *PiStatus) error {
	if err := s.status.Upsert(ctx, status); err != nil {
		return err
	}

	s.bus.Publish(bus.TopicPiStatus, *status)
	return nil
}

// SubmitAlerts stores an alert batch all-or-nothing. Only ERROR and
// CRITICAL alerts reach the live stream; lesser levels are stored silently.
func (s *Service) SubmitAlerts(ctx context.Context, batch []alert.Alert) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	if err := s.alerts.CreateBatch(ctx, batch); err != nil {
		return err
	}

	for _, a := range batch {
		if a.Level.Broadcast() {
			s.bus.Publish(bus.TopicSystemAlert, a)
		}
	}

	s.logger.Debug("alerts ingested", "count", len(batch))
	return nil
}
