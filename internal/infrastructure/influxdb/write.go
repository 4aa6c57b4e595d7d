package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
)

// WriteReading records one sensor reading as a time-series point.
//
// The write is non-blocking; points are batched and sent asynchronously, so
// the ingestion path never waits on the telemetry store. Implements
// ingest.TelemetrySink.
func (c *Client) WriteReading(r ingest.Reading) {
	if !c.IsConnected() {
		return
	}

	ts := r.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	point := write.NewPoint(
		"sensor_readings",
		map[string]string{
			"site": c.cfg.Org,
		},
		map[string]interface{}{
			"temperature":   r.Temperature,
			"humidity":      r.Humidity,
			"soil_moisture": r.SoilMoisture,
			"light_level":   r.LightLevel,
			"water_level":   r.WaterLevel,
		},
		ts,
	)

	c.writeAPI.WritePoint(point)
}

// WritePiMetric records one controller health metric from the heartbeat.
//
// Parameters:
//   - metric: metric name (e.g. "cpu_temp", "free_memory_mb")
//   - value: the numeric value to record
func (c *Client) WritePiMetric(metric string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"pi_health",
		map[string]string{
			"metric": metric,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this for measurements that don't fit the helper methods, or when the
// timestamp is not "now" (e.g. backfilled data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
