// GreenGiant - Greenhouse Automation Hub
//
// This is the main entry point for the GreenGiant backend. GreenGiant sits
// between a Raspberry Pi edge controller (sensors and actuators) and the
// operator dashboard:
//   - Durable system of record (SQLite) for accounts, thresholds, and history
//   - Command relay to the Pi with strict timeout semantics
//   - Live WebSocket fan-out of readings, events, and alerts
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Vinyl-Lilith/GreenGiant/migrations"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/alert"
	"github.com/Vinyl-Lilith/GreenGiant/internal/api"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/control"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/config"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/database"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/influxdb"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/mqtt"
	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
	"github.com/Vinyl-Lilith/GreenGiant/internal/presence"
	"github.com/Vinyl-Lilith/GreenGiant/internal/relay"
	"github.com/Vinyl-Lilith/GreenGiant/internal/report"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting GreenGiant",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	users := auth.NewUserRepository(db.DB)

	// Persisted online flags are stale after an unclean shutdown; presence is
	// rebuilt from live connections.
	if err := users.ResetOnline(ctx); err != nil {
		return fmt.Errorf("resetting online flags: %w", err)
	}

	if _, err := auth.SeedHeadAdmin(ctx, users,
		cfg.Security.Bootstrap.Username, cfg.Security.Bootstrap.Password, log.Logger); err != nil {
		return fmt.Errorf("seeding head admin: %w", err)
	}

	verifier := auth.NewVerifier(users, cfg.Security.JWT.Secret)

	// The hub is the live event bus; everything downstream publishes into it.
	hub := api.NewHub(cfg.WebSocket, log)
	reg := presence.NewRegistry(hub, users, log)

	store := thresholds.NewStore(thresholds.NewRepository(db.DB), log)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("loading thresholds: %w", err)
	}

	actRepo := activity.NewRepository(db.DB)
	alertRepo := alert.NewRepository(db.DB)
	readings := ingest.NewReadingRepository(db.DB)
	events := ingest.NewEventRepository(db.DB)
	statusRepo := ingest.NewStatusRepository(db.DB)

	relayClient := relay.NewClient(cfg.Relay, log)
	orch := control.NewOrchestrator(store, relayClient, hub, actRepo, log)

	// Optional time-series sink for sensor readings
	var sink ingest.TelemetrySink
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		sink = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	svc := ingest.NewService(readings, events, statusRepo, alertRepo, hub, sink, log)

	// Optional MQTT ingestion transport alongside the HTTP device endpoints
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		source := ingest.NewMQTTSource(mqttClient, svc, byte(cfg.MQTT.QoS), log)
		if err := source.Start(); err != nil {
			return fmt.Errorf("starting MQTT ingestion: %w", err)
		}
		log.Info("MQTT ingestion started",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		)
	} else {
		log.Info("MQTT disabled")
	}

	reports := report.NewGenerator(actRepo, readings)

	// Retention sweep for the activity trail and alert history
	sweeper := activity.NewSweeper(actRepo, alertRepo,
		time.Duration(cfg.Retention.ActivityDays)*24*time.Hour,
		time.Duration(cfg.Retention.AlertDays)*24*time.Hour,
		time.Duration(cfg.Retention.SweepInterval)*time.Minute,
		log,
	)
	go sweeper.Run(ctx)

	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Security:     cfg.Security,
		Logger:       log,
		Verifier:     verifier,
		Users:        users,
		Presence:     reg,
		Thresholds:   store,
		Orchestrator: orch,
		Ingest:       svc,
		Activity:     actRepo,
		Alerts:       alertRepo,
		Readings:     readings,
		Status:       statusRepo,
		Reports:      reports,
		Bus:          hub,
		Hub:          hub,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("GreenGiant stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GREENGIANT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GREENGIANT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
