package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the ingest package.
var (
	// ErrEmptyBatch indicates a submission with nothing in it.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrStatusNotFound indicates no heartbeat has been received yet.
	ErrStatusNotFound = errors.New("pi status not found")
)

// ReadingRepository defines persistence for sensor readings.
type ReadingRepository interface {
	InsertBatch(ctx context.Context, readings []Reading) error
	ListRecent(ctx context.Context, limit int) ([]Reading, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Reading, error)
}

// SQLiteReadingRepository implements ReadingRepository using SQLite.
type SQLiteReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository creates a SQLite-backed reading repository.
func NewReadingRepository(db *sql.DB) *SQLiteReadingRepository {
	return &SQLiteReadingRepository{db: db}
}

const readingColumns = "id, temperature, humidity, soil_moisture, light_level, water_level, recorded_at"

// InsertBatch stores a batch of readings in one transaction. Any failure
// rolls the whole batch back.
func (r *SQLiteReadingRepository) InsertBatch(ctx context.Context, readings []Reading) error {
	if len(readings) == 0 {
		return ErrEmptyBatch
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reading batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	for i := range readings {
		rd := &readings[i]
		if rd.ID == "" {
			rd.ID = "rdg-" + uuid.NewString()[:8]
		}
		if rd.RecordedAt.IsZero() {
			rd.RecordedAt = now
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO sensor_readings (`+readingColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rd.ID, rd.Temperature, rd.Humidity, rd.SoilMoisture,
			rd.LightLevel, rd.WaterLevel, rd.RecordedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting reading: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reading batch: %w", err)
	}
	return nil
}

// ListRecent returns the newest readings first, capped at limit.
func (r *SQLiteReadingRepository) ListRecent(ctx context.Context, limit int) ([]Reading, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+readingColumns+" FROM sensor_readings ORDER BY recorded_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// ListRange returns readings recorded within [from, to], oldest first.
func (r *SQLiteReadingRepository) ListRange(ctx context.Context, from, to time.Time) ([]Reading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+readingColumns+` FROM sensor_readings
		 WHERE recorded_at >= ? AND recorded_at <= ?
		 ORDER BY recorded_at ASC`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing reading range: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]Reading, error) {
	var readings []Reading
	for rows.Next() {
		var rd Reading
		var recordedAt string

		if err := rows.Scan(&rd.ID, &rd.Temperature, &rd.Humidity,
			&rd.SoilMoisture, &rd.LightLevel, &rd.WaterLevel, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		rd.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // format is controlled

		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}

	if readings == nil {
		readings = []Reading{}
	}
	return readings, nil
}
