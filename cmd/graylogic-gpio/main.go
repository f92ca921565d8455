// Gray Logic GPIO - LED Line Daemon
//
// This is the main entry point for the Gray Logic GPIO daemon. It binds
// platform GPIO pins as on/off actuator lines and exposes them through:
//   - HTTP attribute endpoints (read/write the textual value protocol)
//   - Per-line unix stream sockets (single-byte sessions)
//   - MQTT state and command topics for the Gray Logic core
//   - WebSocket broadcasts for real-time state
//   - Optional InfluxDB transition history
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/host/v3"

	_ "github.com/nerrad567/gray-logic-gpio/migrations"

	"github.com/nerrad567/gray-logic-gpio/internal/api"
	"github.com/nerrad567/gray-logic-gpio/internal/bridges/mqttbridge"
	"github.com/nerrad567/gray-logic-gpio/internal/catalog"
	"github.com/nerrad567/gray-logic-gpio/internal/driver"
	"github.com/nerrad567/gray-logic-gpio/internal/gpio"
	"github.com/nerrad567/gray-logic-gpio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-gpio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-gpio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-gpio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-gpio/internal/infrastructure/telemetry"
	"github.com/nerrad567/gray-logic-gpio/internal/streamd"
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
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic GPIO",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	if !cfg.GPIO.Enabled {
		return fmt.Errorf("gpio access is disabled in config; nothing to do")
	}

	// Initialise the periph.io host drivers before any pin lookup
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initialising gpio host drivers: %w", err)
	}
	log.Info("gpio host drivers initialised")

	// Open database
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Line catalogue
	repo := catalog.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
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
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var telemetryClient *telemetry.Client
	if cfg.Telemetry.Enabled {
		telemetryClient, err = telemetry.Connect(cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := telemetryClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		telemetryClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)
	} else {
		log.Info("telemetry disabled")
	}

	// WebSocket hub, created before the manager so the events surface can
	// broadcast during attach.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Assemble the driver with its surfaces. Order matters: it is the
	// registration order during attach and the reverse of teardown.
	attrs := driver.NewAttributeRegistry()

	streamSurface := streamd.NewSurface(cfg.Stream.SocketDir)
	streamSurface.SetLogger(log)

	surfaces := []driver.Surface{
		driver.NewAttributeSurface(attrs),
		streamSurface,
	}
	if mqttClient != nil {
		bridge := mqttbridge.NewSurface(mqttClient, byte(cfg.MQTT.QoS))
		bridge.SetLogger(log)
		surfaces = append(surfaces, bridge)
	}
	surfaces = append(surfaces, api.NewEventSurface(hub))
	if telemetryClient != nil {
		surfaces = append(surfaces, telemetry.NewSurface(telemetryClient))
	}

	manager := driver.NewManager(gpio.NewPeriphProvider(), surfaces...)
	manager.SetLogger(log)
	defer func() {
		log.Info("detaching all lines")
		manager.DetachAll()
	}()

	// Attach every catalogued line. A line that fails to attach (pin
	// missing on this board, pin claimed elsewhere) is logged and skipped
	// so one bad definition doesn't take the daemon down.
	defs, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading line catalogue: %w", err)
	}
	attached := 0
	for i := range defs {
		if _, attachErr := manager.Attach(defs[i].DriverConfig()); attachErr != nil {
			log.Warn("line attach failed, skipping",
				"line_id", defs[i].ID,
				"pin", defs[i].Pin,
				"error", attachErr,
			)
			continue
		}
		attached++
	}
	log.Info("line catalogue attached", "defined", len(defs), "attached", attached)

	// Start the HTTP API
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Manager:     manager,
		Attributes:  attrs,
		Catalog:     repo,
		DB:          db,
		MQTT:        mqttClient,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, telemetryClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Line manager (detach all, safe levels driven)
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("Gray Logic GPIO stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_GPIO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_GPIO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - telemetryClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, telemetryClient *telemetry.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if telemetryClient != nil {
		if err := telemetryClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
