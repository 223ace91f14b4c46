// pooldosed - network gateway for SEKO pool dosing controllers.
//
// pooldosed connects to a dosing device's embedded web API, translates its
// opaque wire values into typed parameters, and exposes them over a REST
// API and an MQTT state bridge, with optional InfluxDB telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/pooldose-core/internal/api"
	"github.com/nerrad567/pooldose-core/internal/bridge"
	"github.com/nerrad567/pooldose-core/internal/client"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/config"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/logging"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/mqtt"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting pooldosed",
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
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to the dosing device
	deviceClient := client.New(cfg.Device, log)
	if err := deviceClient.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to device: %w", err)
	}
	info := deviceClient.Static()
	log.Info("device connected",
		"name", info.Name,
		"model_id", info.ModelID,
		"fw_version", info.FWVersion,
		"device_id", info.DeviceID,
	)

	// Connect to MQTT broker (only needed by the bridge)
	var mqttClient *mqtt.Client
	if cfg.Bridge.Enabled {
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
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the MQTT state bridge (if enabled)
	if cfg.Bridge.Enabled {
		stateBridge, err := startBridge(ctx, cfg, deviceClient, mqttClient, influxClient, log)
		if err != nil {
			return fmt.Errorf("starting bridge: %w", err)
		}
		defer func() {
			log.Info("stopping bridge")
			stateBridge.Stop()
		}()
	} else {
		log.Info("bridge disabled")
	}

	// Start the REST API server (if enabled)
	if cfg.API.Enabled {
		apiServer, err := api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log,
			Session: deviceClient,
			Version: version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := apiServer.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("pooldosed stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses POOLDOSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("POOLDOSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startBridge initialises and starts the MQTT state bridge.
//
// Parameters:
//   - ctx: Context for startup/cancellation
//   - cfg: Application configuration
//   - deviceClient: Connected device session
//   - mqttClient: Connected MQTT client
//   - influxClient: InfluxDB client (may be nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *bridge.Bridge: Running bridge
//   - error: If the bridge fails to start
func startBridge(ctx context.Context, cfg *config.Config, deviceClient *client.Client, mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger) (*bridge.Bridge, error) {
	// The bridge's telemetry writer must be a typed nil-check away:
	// a nil *influxdb.Client inside a non-nil interface would defeat
	// the bridge's nil guard.
	var telemetry bridge.TelemetryWriter
	if influxClient != nil {
		telemetry = influxClient
	}

	stateBridge, err := bridge.New(bridge.Deps{
		Config:    cfg.Bridge,
		QoS:       cfg.MQTT.QoS,
		Logger:    log,
		Session:   deviceClient,
		MQTT:      mqttClient,
		Telemetry: telemetry,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bridge: %w", err)
	}

	if err := stateBridge.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting bridge: %w", err)
	}
	log.Info("bridge started")

	return stateBridge, nil
}
