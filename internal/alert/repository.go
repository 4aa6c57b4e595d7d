package alert

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	CreateBatch(ctx context.Context, alerts []Alert) error
	List(ctx context.Context, limit int) ([]Alert, error)
	Acknowledge(ctx context.Context, id, by string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a SQLite-backed alert repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const alertColumns = "id, level, source, message, acknowledged, acknowledged_by, created_at"

// Create inserts a new alert. The ID and timestamp are generated if unset.
func (r *SQLiteRepository) Create(ctx context.Context, a *Alert) error {
	if !IsValidLevel(a.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, a.Level)
	}
	if !IsValidSource(a.Source) {
		return fmt.Errorf("%w: %q", ErrInvalidSource, a.Source)
	}
	if a.ID == "" {
		a.ID = "alr-" + uuid.NewString()[:8]
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`)
		 VALUES (?, ?, ?, ?, 0, NULL, ?)`,
		a.ID, string(a.Level), string(a.Source), a.Message,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating alert: %w", err)
	}
	return nil
}

// CreateBatch inserts a batch of alerts in one transaction. One invalid
// alert rejects the whole batch; nothing is stored partially.
func (r *SQLiteRepository) CreateBatch(ctx context.Context, alerts []Alert) error {
	for i := range alerts {
		if !IsValidLevel(alerts[i].Level) {
			return fmt.Errorf("%w: %q", ErrInvalidLevel, alerts[i].Level)
		}
		if !IsValidSource(alerts[i].Source) {
			return fmt.Errorf("%w: %q", ErrInvalidSource, alerts[i].Source)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning alert batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	for i := range alerts {
		a := &alerts[i]
		if a.ID == "" {
			a.ID = "alr-" + uuid.NewString()[:8]
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO alerts (`+alertColumns+`)
			 VALUES (?, ?, ?, ?, 0, NULL, ?)`,
			a.ID, string(a.Level), string(a.Source), a.Message,
			a.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting alert batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing alert batch: %w", err)
	}
	return nil
}

// List returns alerts newest first, capped at limit (0 means no cap).
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Alert, error) {
	query := "SELECT " + alertColumns + " FROM alerts ORDER BY created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var level, source string
		var acked int
		var ackedBy sql.NullString
		var createdAt string

		if err := rows.Scan(&a.ID, &level, &source, &a.Message, &acked,
			&ackedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}

		a.Level = Level(level)
		a.Source = Source(source)
		a.Acknowledged = acked != 0
		a.AcknowledgedBy = ackedBy.String
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}

	if alerts == nil {
		alerts = []Alert{}
	}
	return alerts, nil
}

// Acknowledge marks the alert acknowledged by the given user. Acknowledging
// an already acknowledged alert is a no-op that keeps the first acknowledger.
func (r *SQLiteRepository) Acknowledge(ctx context.Context, id, by string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET acknowledged = 1, acknowledged_by = ?
		 WHERE id = ? AND acknowledged = 0`,
		by, id,
	)
	if err != nil {
		return fmt.Errorf("acknowledging alert: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		// Distinguish a missing alert from one already acknowledged.
		var exists int
		err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM alerts WHERE id = ?", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking alert: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// DeleteOlderThan removes alerts created before the cutoff and returns how
// many were deleted.
func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM alerts WHERE created_at < ?",
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("purging alerts: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return rows, nil
}
