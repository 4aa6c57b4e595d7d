package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StatusRepository defines persistence for the heartbeat singleton.
type StatusRepository interface {
	Upsert(ctx context.Context, status *PiStatus) error
	Get(ctx context.Context) (*PiStatus, error)
}

// SQLiteStatusRepository implements StatusRepository using SQLite.
type SQLiteStatusRepository struct {
	db *sql.DB
}

// NewStatusRepository creates a SQLite-backed heartbeat repository.
func NewStatusRepository(db *sql.DB) *SQLiteStatusRepository {
	return &SQLiteStatusRepository{db: db}
}

// Upsert overwrites the heartbeat snapshot with the latest report.
func (r *SQLiteStatusRepository) Upsert(ctx context.Context, status *PiStatus) error {
	if status.ReportedAt.IsZero() {
		status.ReportedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pi_status (id, online, uptime_seconds, cpu_temp,
			free_memory_mb, wifi_signal_dbm, arduino_connected, reported_at)
		 VALUES ('default', ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			online = excluded.online,
			uptime_seconds = excluded.uptime_seconds,
			cpu_temp = excluded.cpu_temp,
			free_memory_mb = excluded.free_memory_mb,
			wifi_signal_dbm = excluded.wifi_signal_dbm,
			arduino_connected = excluded.arduino_connected,
			reported_at = excluded.reported_at`,
		boolToInt(status.Online), status.UptimeSeconds, status.CPUTemp,
		status.FreeMemoryMB, status.WifiSignalDbm,
		boolToInt(status.ArduinoConnected),
		status.ReportedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting pi status: %w", err)
	}
	return nil
}

// Get returns the latest heartbeat, or ErrStatusNotFound before the first.
func (r *SQLiteStatusRepository) Get(ctx context.Context) (*PiStatus, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT online, uptime_seconds, cpu_temp, free_memory_mb,
			wifi_signal_dbm, arduino_connected, reported_at
		 FROM pi_status WHERE id = 'default'`)

	var s PiStatus
	var online, arduino int
	var reportedAt string

	err := row.Scan(&online, &s.UptimeSeconds, &s.CPUTemp, &s.FreeMemoryMB,
		&s.WifiSignalDbm, &arduino, &reportedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("scanning pi status: %w", err)
	}

	s.Online = online != 0
	s.ArduinoConnected = arduino != 0
	s.ReportedAt, _ = time.Parse(time.RFC3339, reportedAt) //nolint:errcheck // format is controlled

	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
