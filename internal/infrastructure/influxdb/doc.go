// Package influxdb provides InfluxDB connectivity for GreenGiant.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, reading writes, and health monitoring.
//
// # Purpose
//
// This package handles long-term time-series storage for:
//   - Greenhouse sensor readings (temperature, humidity, soil, light, water)
//   - Controller health metrics from the heartbeat
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "greengiant",
//	    Bucket: "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteReading(reading)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package influxdb
