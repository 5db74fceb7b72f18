// Media Node - networked media control plane
//
// This is the main entry point for the Media Node application. It
// serves the registration and connection APIs over HTTP, manages the
// staged-to-active activation of transport resources, and, when
// enabled, runs a live temperature event source published over
// WebSocket, MQTT and InfluxDB telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avfabric/medianode-core/internal/api"
	"github.com/avfabric/medianode-core/internal/connection"
	"github.com/avfabric/medianode-core/internal/events"
	"github.com/avfabric/medianode-core/internal/infrastructure/config"
	"github.com/avfabric/medianode-core/internal/infrastructure/logging"
	"github.com/avfabric/medianode-core/internal/infrastructure/mqtt"
	"github.com/avfabric/medianode-core/internal/infrastructure/telemetry"
	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/node"
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
func run(ctx context.Context) error { //nolint:gocognit // startup wiring is linear
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Media Node",
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

	// Create the model and populate the resource graph
	m := model.New(model.Settings{
		SeedID:        cfg.Node.SeedID,
		Label:         cfg.Node.Label,
		Host:          cfg.API.Host,
		Port:          cfg.API.Port,
		EventsEnabled: cfg.Events.Enabled,
	})
	if err := node.BuildResources(m, log.With("component", "node")); err != nil {
		return fmt.Errorf("building resources: %w", err)
	}
	log.Info("resource graph built",
		"registration", m.Registration.Len(),
		"connection", m.Connection.Len(),
		"events", m.Events.Len(),
	)

	// Event subscription registry, shared by the activation handler and
	// the receiver delivery sink
	subs := events.NewSubscriptions()

	// Activation engine with this node's policy callbacks
	engine := connection.NewEngine(m, connection.Callbacks{
		ResolveAuto:      node.MakeAutoResolver(m.Settings),
		SetTransportFile: node.MakeTransportFileSetter(m),
		OnActivated:      node.MakeActivationHandler(m, subs, log.With("component", "node")),
	})
	engine.SetLogger(log.With("component", "connection"))

	// API server (created before the pump so its hub can be a sink)
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log.With("component", "api"),
		Model:   m,
		Engine:  engine,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Events delivery: WebSocket hub, local receiver loopback, and the
	// optional MQTT and telemetry sinks
	sinks := []events.Sink{server.Hub()}

	delivery := node.NewReceiverDelivery(m, subs, node.MakeMessageHandler(log.With("component", "events")))
	delivery.SetLogger(log.With("component", "events"))
	sinks = append(sinks, delivery)

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			mqttClient.Close()
		}()
		mqttClient.SetLogger(log.With("component", "mqtt"))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
			"client_id", cfg.MQTT.ClientID,
		)
		sinks = append(sinks, mqttClient)
	}

	if cfg.Telemetry.Enabled {
		telemetryClient, telErr := telemetry.Connect(cfg.Telemetry)
		if telErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", telErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			telemetryClient.Close()
		}()
		telemetryClient.SetOnError(func(err error) {
			log.Warn("telemetry write failed", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.Telemetry.URL)
		sinks = append(sinks, telemetryClient)
	}

	// Background tasks: state pump and, when enabled, the temperature
	// behaviour task
	taskCtx, cancelTasks := context.WithCancel(ctx)
	defer cancelTasks()

	pump := events.NewPump(m, sinks...)
	pump.SetLogger(log.With("component", "events"))
	pump.Start(taskCtx)

	var task *events.BehaviourTask
	if cfg.Events.Enabled {
		ids := node.DeriveIDs(cfg.Node.SeedID)
		task = events.NewBehaviourTask(m, ids.TemperatureSource)
		task.MinInterval = cfg.Events.MinInterval()
		task.MaxInterval = cfg.Events.MaxInterval()
		task.SetLogger(log.With("component", "events"))
		task.Start(taskCtx)
		log.Info("behaviour task started",
			"source_id", ids.TemperatureSource,
			"min_interval", task.MinInterval,
			"max_interval", task.MaxInterval,
		)
	}

	// Start the API server
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	log.Info("Media Node started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Stop serving first so no new mutations arrive, then stop the
	// background tasks and unblock all model waiters.
	if err := server.Close(); err != nil {
		log.Error("error closing API server", "error", err)
	}
	cancelTasks()
	m.Shutdown()

	// Join without the model lock held; both tasks take the lock for
	// their final iteration.
	if task != nil {
		task.Wait()
	}
	pump.Wait()

	log.Info("Media Node stopped")
	return nil
}

// getConfigPath returns the config file path from args or the default.
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if env := os.Getenv("MEDIANODE_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}
