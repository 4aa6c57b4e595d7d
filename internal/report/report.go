// Package report renders stored data as Excel workbooks for download by
// administrators. Workbooks are built in memory and streamed straight into
// the HTTP response.
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
)

var activityHeader = []string{"Time", "Actor", "Action", "Detail"}

var readingsHeader = []string{
	"Time", "Temperature", "Humidity", "Soil Moisture", "Light Level", "Water Level",
}

// Generator builds downloadable workbooks from the durable stores.
type Generator struct {
	activity activity.Repository
	readings ingest.ReadingRepository
}

// NewGenerator creates a report generator over the given stores.
func NewGenerator(act activity.Repository, readings ingest.ReadingRepository) *Generator {
	return &Generator{activity: act, readings: readings}
}

// ActivityWorkbook returns an xlsx export of activity records created at or
// after since, serialized and ready to send.
func (g *Generator) ActivityWorkbook(ctx context.Context, since time.Time) ([]byte, error) {
	records, err := g.activity.List(ctx, since, 0)
	if err != nil {
		return nil, fmt.Errorf("loading activity for export: %w", err)
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		detail := ""
		if rec.Detail != nil {
			detail = fmt.Sprintf("%v", rec.Detail)
		}
		rows = append(rows, []any{
			rec.CreatedAt.Format(time.RFC3339),
			rec.ActorName,
			string(rec.Action),
			detail,
		})
	}

	return buildWorkbook("Activity", activityHeader, rows)
}

// ReadingsWorkbook returns an xlsx export of readings recorded in [from, to].
func (g *Generator) ReadingsWorkbook(ctx context.Context, from, to time.Time) ([]byte, error) {
	readings, err := g.readings.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading readings for export: %w", err)
	}

	rows := make([][]any, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, []any{
			r.RecordedAt.Format(time.RFC3339),
			r.Temperature, r.Humidity, r.SoilMoisture, r.LightLevel, r.WaterLevel,
		})
	}

	return buildWorkbook("Readings", readingsHeader, rows)
}

// buildWorkbook assembles a single-sheet workbook with a styled header row.
func buildWorkbook(sheet string, header []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.DeleteSheet("Sheet1") //nolint:errcheck // default sheet always exists
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E8F5E9"}, Pattern: 1},
	})
	if err != nil {
		f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("writing header cell: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("styling header cell: %w", err)
		}
	}

	for i, row := range rows {
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing workbook: %w", err)
	}

	return buf.Bytes(), nil
}
