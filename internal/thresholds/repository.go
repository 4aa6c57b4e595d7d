package thresholds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the thresholds package.
var (
	// ErrNotFound indicates the singleton row has not been created yet.
	ErrNotFound = errors.New("thresholds not found")

	// ErrUnknownField indicates a partial update named a field that does
	// not exist.
	ErrUnknownField = errors.New("unknown threshold field")
)

// Repository defines persistence for the threshold singleton.
type Repository interface {
	Get(ctx context.Context) (*Set, error)
	Create(ctx context.Context, set *Set) error
	Update(ctx context.Context, set *Set) error
	MarkSynced(ctx context.Context, at time.Time) error
}

// SQLiteRepository implements Repository using SQLite. The table holds
// exactly one row keyed by the fixed ID 'default'.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a SQLite-backed threshold repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const thresholdColumns = `temp_min, temp_max, humidity_min, humidity_max,
	soil_moisture_min, soil_moisture_max, light_min, light_max,
	water_level_min, last_updated_by, last_synced_at, updated_at`

// Get returns the singleton set, or ErrNotFound before first creation.
func (r *SQLiteRepository) Get(ctx context.Context) (*Set, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+thresholdColumns+" FROM thresholds WHERE id = 'default'")

	var s Set
	var updatedBy, syncedAt sql.NullString
	var updatedAt string

	err := row.Scan(
		&s.TempMin, &s.TempMax, &s.HumidityMin, &s.HumidityMax,
		&s.SoilMoistureMin, &s.SoilMoistureMax, &s.LightMin, &s.LightMax,
		&s.WaterLevelMin, &updatedBy, &syncedAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning thresholds: %w", err)
	}

	s.LastUpdatedBy = updatedBy.String
	if syncedAt.Valid {
		t, perr := time.Parse(time.RFC3339, syncedAt.String)
		if perr == nil {
			s.LastSyncedAt = &t
		}
	}
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &s, nil
}

// Create inserts the singleton row. Fails if it already exists.
func (r *SQLiteRepository) Create(ctx context.Context, set *Set) error {
	now := time.Now().UTC()
	set.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO thresholds (id, `+thresholdColumns+`)
		 VALUES ('default', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		set.TempMin, set.TempMax, set.HumidityMin, set.HumidityMax,
		set.SoilMoistureMin, set.SoilMoistureMax, set.LightMin, set.LightMax,
		set.WaterLevelMin, nullableString(set.LastUpdatedBy),
		nullableTime(set.LastSyncedAt), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating thresholds: %w", err)
	}
	return nil
}

// Update overwrites the singleton's setpoints and editor attribution.
// last_synced_at is deliberately left untouched; only MarkSynced moves it.
func (r *SQLiteRepository) Update(ctx context.Context, set *Set) error {
	now := time.Now().UTC()
	set.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE thresholds SET
			temp_min = ?, temp_max = ?,
			humidity_min = ?, humidity_max = ?,
			soil_moisture_min = ?, soil_moisture_max = ?,
			light_min = ?, light_max = ?,
			water_level_min = ?,
			last_updated_by = ?, updated_at = ?
		 WHERE id = 'default'`,
		set.TempMin, set.TempMax, set.HumidityMin, set.HumidityMax,
		set.SoilMoistureMin, set.SoilMoistureMax, set.LightMin, set.LightMax,
		set.WaterLevelMin, nullableString(set.LastUpdatedBy),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("updating thresholds: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSynced records a successful push to the edge controller.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE thresholds SET last_synced_at = ? WHERE id = 'default'",
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("marking thresholds synced: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
