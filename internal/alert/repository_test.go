package alert

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the alerts schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "alert-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE alerts (
			id              TEXT PRIMARY KEY,
			level           TEXT NOT NULL CHECK (level IN ('INFO', 'WARNING', 'ERROR', 'CRITICAL')),
			source          TEXT NOT NULL CHECK (source IN ('pi', 'arduino', 'backend')),
			message         TEXT NOT NULL,
			acknowledged    INTEGER NOT NULL DEFAULT 0,
			acknowledged_by TEXT,
			created_at      TEXT NOT NULL
		) STRICT;
		CREATE INDEX idx_alerts_created_at ON alerts (created_at);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying alerts migration: %v", err)
	}

	return db
}

func TestCreateAndList(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	a := &Alert{Level: LevelError, Source: SourcePi, Message: "sensor read failed"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.ID == "" {
		t.Error("Create should assign an ID")
	}

	alerts, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("List() = %d alerts, want 1", len(alerts))
	}

	got := alerts[0]
	if got.Level != LevelError || got.Source != SourcePi {
		t.Errorf("alert = %+v, want ERROR/pi", got)
	}
	if got.Acknowledged {
		t.Error("new alert should be unacknowledged")
	}
}

func TestCreate_RejectsInvalidLevelAndSource(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	err := repo.Create(ctx, &Alert{Level: Level("FATAL"), Source: SourcePi, Message: "x"})
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Create(bad level) = %v, want ErrInvalidLevel", err)
	}

	err = repo.Create(ctx, &Alert{Level: LevelInfo, Source: Source("cloud"), Message: "x"})
	if !errors.Is(err, ErrInvalidSource) {
		t.Errorf("Create(bad source) = %v, want ErrInvalidSource", err)
	}
}

func TestCreateBatch_AllOrNothing(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	batch := []Alert{
		{Level: LevelError, Source: SourcePi, Message: "one"},
		{Level: Level("SHOUTING"), Source: SourcePi, Message: "two"},
	}
	if err := repo.CreateBatch(ctx, batch); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("CreateBatch() = %v, want ErrInvalidLevel", err)
	}

	alerts, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("stored = %d alerts after rejected batch, want 0", len(alerts))
	}

	good := []Alert{
		{Level: LevelError, Source: SourcePi, Message: "one"},
		{Level: LevelInfo, Source: SourceArduino, Message: "two"},
	}
	if err := repo.CreateBatch(ctx, good); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	alerts, err = repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("stored = %d alerts, want 2", len(alerts))
	}
}

func TestAcknowledge(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	a := &Alert{Level: LevelCritical, Source: SourceArduino, Message: "pump stalled"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Acknowledge(ctx, a.ID, "usr-1"); err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}

	// A second acknowledge keeps the first acknowledger.
	if err := repo.Acknowledge(ctx, a.ID, "usr-2"); err != nil {
		t.Fatalf("Acknowledge(again) error = %v", err)
	}

	alerts, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !alerts[0].Acknowledged || alerts[0].AcknowledgedBy != "usr-1" {
		t.Errorf("alert = %+v, want acknowledged by usr-1", alerts[0])
	}
}

func TestAcknowledge_NotFound(t *testing.T) {
	repo := NewRepository(testDB(t))

	err := repo.Acknowledge(context.Background(), "alr-missing", "usr-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Acknowledge() = %v, want ErrNotFound", err)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	old := &Alert{Level: LevelWarning, Source: SourceBackend, Message: "old",
		CreatedAt: now.Add(-10 * 24 * time.Hour)}
	fresh := &Alert{Level: LevelWarning, Source: SourceBackend, Message: "fresh",
		CreatedAt: now.Add(-time.Hour)}
	for _, a := range []*Alert{old, fresh} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	n, err := repo.DeleteOlderThan(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	alerts, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != fresh.ID {
		t.Errorf("remaining = %v, want only the fresh alert", alerts)
	}
}

func TestLevelBroadcast(t *testing.T) {
	broadcast := map[Level]bool{
		LevelInfo:     false,
		LevelWarning:  false,
		LevelError:    true,
		LevelCritical: true,
	}
	for level, want := range broadcast {
		if got := level.Broadcast(); got != want {
			t.Errorf("%s.Broadcast() = %v, want %v", level, got, want)
		}
	}
}
