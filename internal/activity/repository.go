package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidAction indicates an append with an action outside the closed set.
var ErrInvalidAction = errors.New("invalid activity action")

// Repository defines persistence for the activity trail.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	List(ctx context.Context, since time.Time, limit int) ([]Record, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a SQLite-backed activity repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const recordColumns = "id, actor_id, actor_name, action, detail, created_at"

// Append inserts a new record. The ID and timestamp are generated if unset.
func (r *SQLiteRepository) Append(ctx context.Context, rec *Record) error {
	if !IsValidAction(rec.Action) {
		return fmt.Errorf("%w: %q", ErrInvalidAction, rec.Action)
	}
	if rec.ID == "" {
		rec.ID = "act-" + uuid.NewString()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var detail any
	if rec.Detail != nil {
		data, err := json.Marshal(rec.Detail)
		if err != nil {
			return fmt.Errorf("encoding activity detail: %w", err)
		}
		detail = string(data)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_records (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ActorID, rec.ActorName, string(rec.Action), detail,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending activity record: %w", err)
	}
	return nil
}

// List returns records created at or after since, newest first, capped at
// limit (0 means no cap).
func (r *SQLiteRepository) List(ctx context.Context, since time.Time, limit int) ([]Record, error) {
	query := "SELECT " + recordColumns + ` FROM activity_records
		WHERE created_at >= ? ORDER BY created_at DESC`
	args := []any{since.UTC().Format(time.RFC3339)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activity records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var action string
		var detail sql.NullString
		var createdAt string

		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.ActorName, &action,
			&detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity record: %w", err)
		}

		rec.Action = Action(action)
		if detail.Valid && detail.String != "" {
			//nolint:errcheck // detail was written by Append; best-effort decode
			json.Unmarshal([]byte(detail.String), &rec.Detail)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity records: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// DeleteOlderThan removes records created before the cutoff and returns how
// many were deleted.
func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM activity_records WHERE created_at < ?",
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("purging activity records: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return rows, nil
}
