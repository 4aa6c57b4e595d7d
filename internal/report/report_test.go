package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
)

// memActivityRepo serves canned records.
type memActivityRepo struct {
	records []activity.Record
}

func (m *memActivityRepo) Append(_ context.Context, rec *activity.Record) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *memActivityRepo) List(_ context.Context, since time.Time, _ int) ([]activity.Record, error) {
	var out []activity.Record
	for _, rec := range m.records {
		if !rec.CreatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memActivityRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// memReadingRepo serves canned readings.
type memReadingRepo struct {
	readings []ingest.Reading
}

func (m *memReadingRepo) InsertBatch(_ context.Context, batch []ingest.Reading) error {
	m.readings = append(m.readings, batch...)
	return nil
}

func (m *memReadingRepo) ListRecent(_ context.Context, _ int) ([]ingest.Reading, error) {
	return m.readings, nil
}

func (m *memReadingRepo) ListRange(_ context.Context, from, to time.Time) ([]ingest.Reading, error) {
	var out []ingest.Reading
	for _, r := range m.readings {
		if !r.RecordedAt.Before(from) && !r.RecordedAt.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestActivityWorkbook(t *testing.T) {
	now := time.Now().UTC()
	act := &memActivityRepo{records: []activity.Record{
		{ActorName: "alice", Action: activity.ActionLogin, CreatedAt: now.Add(-time.Hour)},
		{ActorName: "bob", Action: activity.ActionManualControl,
			Detail: map[string]any{"actuator": "fan"}, CreatedAt: now},
	}}

	gen := NewGenerator(act, &memReadingRepo{})
	data, err := gen.ActivityWorkbook(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("ActivityWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Activity")
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 records", len(rows))
	}
	if rows[0][0] != "Time" || rows[0][2] != "Action" {
		t.Errorf("header = %v, want Time/Actor/Action/Detail", rows[0])
	}
	if rows[1][1] != "alice" || rows[1][2] != "login" {
		t.Errorf("first record row = %v, want alice login", rows[1])
	}
}

func TestReadingsWorkbook(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	readings := &memReadingRepo{readings: []ingest.Reading{
		{Temperature: 21.5, Humidity: 55, SoilMoisture: 40, LightLevel: 600,
			WaterLevel: 80, RecordedAt: now.Add(-time.Hour)},
		{Temperature: 48, Humidity: 10, SoilMoisture: 5, LightLevel: 900,
			WaterLevel: 15, RecordedAt: now.Add(-30 * 24 * time.Hour)},
	}}

	gen := NewGenerator(&memActivityRepo{}, readings)
	data, err := gen.ReadingsWorkbook(context.Background(), now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("ReadingsWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Readings")
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	// Only the in-range reading is exported.
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1 reading", len(rows))
	}
	if rows[1][1] != "21.5" {
		t.Errorf("temperature cell = %q, want 21.5", rows[1][1])
	}
}

func TestEmptyWorkbookStillHasHeader(t *testing.T) {
	gen := NewGenerator(&memActivityRepo{}, &memReadingRepo{})

	data, err := gen.ActivityWorkbook(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("ActivityWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Activity")
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}
