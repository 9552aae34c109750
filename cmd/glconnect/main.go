// Gray Logic Connect - MQTT Integration Connector
//
// This is the main entry point for the Gray Logic Connect application.
// Connect bridges an MQTT broker to local integration sinks:
//   - Resilient broker endpoint (reconnect-before-send, bounded retries)
//   - SQLite message journal with retention pruning
//   - InfluxDB measurement recording for numeric payloads
//   - Operations HTTP API with a live WebSocket message tail
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-connect/migrations"

	"github.com/nerrad567/gray-logic-connect/internal/api"
	"github.com/nerrad567/gray-logic-connect/internal/endpoint"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-connect/internal/sink/influx"
	"github.com/nerrad567/gray-logic-connect/internal/sink/journal"
	"github.com/nerrad567/gray-logic-connect/internal/transport"
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

// Environment variable overriding the config path when the flag is unset.
const configEnvVar = "GLCONNECT_CONFIG"

var configFlag = flag.String("config", "", "path to configuration file (overrides "+configEnvVar+")")

func main() {
	flag.Parse()

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
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
	log.Info("starting Gray Logic Connect",
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

	// Open the message journal (optional)
	var (
		db  *database.DB
		jnl *journal.Journal
	)
	if cfg.Journal.Enabled {
		db, err = database.Open(database.Config{
			Path:        cfg.Journal.Path,
			BusyTimeout: cfg.Journal.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening journal database: %w", err)
		}
		defer func() {
			log.Info("closing journal database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing journal database", "error", closeErr)
			}
		}()

		// Run migrations
		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}

		jnl = journal.New(db, cfg.Journal.Retention, log)
		log.Info("message journal ready",
			"path", cfg.Journal.Path,
			"retention", cfg.Journal.Retention,
		)
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()

		influxClient.SetOnError(func(writeErr error) {
			log.Error("InfluxDB write error", "error", writeErr)
		})

		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// Create the broker endpoint
	ep := endpoint.New(cfg, transport.NewFactory(cfg, log), log)
	defer func() {
		log.Info("closing broker endpoint")
		if closeErr := ep.Close(); closeErr != nil {
			log.Error("error closing broker endpoint", "error", closeErr)
		}
	}()

	// Attach sinks before connecting so early inbound messages are not
	// dropped for want of a consumer.
	if jnl != nil {
		consumer := endpoint.NewConsumer(ep, jnl, log)
		if startErr := consumer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting journal consumer: %w", startErr)
		}
		defer consumer.Stop()
	}
	if influxClient != nil {
		consumer := endpoint.NewConsumer(ep, influx.New(influxClient, log), log)
		if startErr := consumer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting influx consumer: %w", startErr)
		}
		defer consumer.Stop()

		// Chart link transitions alongside the message stream.
		host := cfg.Broker.Host
		ep.SetOnConnect(func() {
			influxClient.WriteConnectionEvent("connected", host)
		})
		ep.SetOnDisconnect(func() {
			influxClient.WriteConnectionEvent("disconnected", host)
		})
	}

	// Connect and subscribe. A broker that is unreachable at startup fails
	// the whole process; the supervisor is expected to restart it.
	if connectErr := ep.Connect(); connectErr != nil {
		return fmt.Errorf("connecting to broker: %w", connectErr)
	}
	log.Info("broker connected",
		"host", cfg.Broker.Host,
		"port", cfg.Broker.Port,
		"client_id", cfg.Broker.ClientID,
		"subscriptions", len(ep.Subscriptions()),
	)

	producer := endpoint.NewProducer(ep)

	// Start the operations API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			Logger:   log,
			Endpoint: ep,
			Producer: producer,
			Journal:  jnl,
			Influx:   influxClient,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error stopping API server", "error", closeErr)
			}
		}()
		log.Info("API server started",
			"host", cfg.API.Host,
			"port", cfg.API.Port,
		)
	}

	// Verify all connections are healthy
	if healthErr := healthCheck(ctx, db, ep, influxClient); healthErr != nil {
		return fmt.Errorf("health check failed: %w", healthErr)
	}
	log.Info("health check passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Block until context is cancelled (signal received)
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred functions run in reverse order: API server, consumers,
	// endpoint, InfluxDB, journal database.
	return nil
}

// getConfigPath returns the configuration file path.
// Priority: -config flag, GLCONNECT_CONFIG environment variable, default path.
//
// Returns:
//   - string: Path to configuration file
func getConfigPath() string {
	if *configFlag != "" {
		return *configFlag
	}
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Journal database to check (may be nil if disabled)
//   - ep: Broker endpoint to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, ep *endpoint.Endpoint, influxClient *influxdb.Client) error {
	// Check journal database (if enabled)
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("journal database: %w", err)
		}
	}

	// Check broker endpoint
	if err := ep.HealthCheck(ctx); err != nil {
		return fmt.Errorf("broker endpoint: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
