package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventRepository defines persistence for automation events.
type EventRepository interface {
	InsertBatch(ctx context.Context, events []AutomationEvent) error
	ListRecent(ctx context.Context, limit int) ([]AutomationEvent, error)
}

// SQLiteEventRepository implements EventRepository using SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a SQLite-backed automation event repository.
func NewEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

const eventColumns = "id, actuator, state, triggered_by, recorded_at"

// InsertBatch stores a batch of events in one transaction.
func (r *SQLiteEventRepository) InsertBatch(ctx context.Context, events []AutomationEvent) error {
	if len(events) == 0 {
		return ErrEmptyBatch
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning event batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	for i := range events {
		ev := &events[i]
		if ev.ID == "" {
			ev.ID = "evt-" + uuid.NewString()[:8]
		}
		if ev.RecordedAt.IsZero() {
			ev.RecordedAt = now
		}

		state := 0
		if ev.State {
			state = 1
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO automation_events (`+eventColumns+`)
			 VALUES (?, ?, ?, ?, ?)`,
			ev.ID, ev.Actuator, state, ev.Trigger,
			ev.RecordedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting automation event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing event batch: %w", err)
	}
	return nil
}

// ListRecent returns the newest events first, capped at limit.
func (r *SQLiteEventRepository) ListRecent(ctx context.Context, limit int) ([]AutomationEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM automation_events ORDER BY recorded_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing automation events: %w", err)
	}
	defer rows.Close()

	var events []AutomationEvent
	for rows.Next() {
		var ev AutomationEvent
		var state int
		var recordedAt string

		if err := rows.Scan(&ev.ID, &ev.Actuator, &state, &ev.Trigger, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning automation event: %w", err)
		}
		ev.State = state != 0
		ev.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // format is controlled

		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating automation events: %w", err)
	}

	if events == nil {
		events = []AutomationEvent{}
	}
	return events, nil
}
