// Command fabriclink-commissioner is a reference commissioner built on the
// FabricLink session coordinator.
//
// It wires the coordinator to the backend HTTP API, a file-backed credential
// store, and the loopback bridge adapter (an in-process stand-in for the
// platform's native commissioning engine).
//
// Usage:
//
//	fabriclink-commissioner [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-platform string    Host platform: android, ios (default "ios")
//	-backend-url string Backend API root (default "http://localhost:8080/v1")
//	-auth-token string  Backend bearer token
//	-state-dir string   Directory for the persistent credential store
//	-routing string     Event routing table file (overrides -platform)
//	-log-file string    Commissioning event log path (CBOR)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-interactive        Enable interactive command mode
//	-payload string     Onboarding payload for a one-shot commissioning run
//	-fabric string      Fabric ID for a one-shot commissioning run
//	-group string       Group ID for a one-shot commissioning run
//	-timeout duration   Confirmation timeout (0 = library default)
//	-step-delay duration Loopback event pacing (default 500ms)
//
// Examples:
//
//	# One-shot commissioning against a local backend
//	fabriclink-commissioner -payload "FL:1:2345:6789" -fabric fab-1
//
//	# Interactive mode with persistent credentials and an event log
//	fabriclink-commissioner -interactive -state-dir /var/lib/fabriclink -log-file session.cblog
//
// Interactive Commands:
//
//	commission <payload> <fabric-id|group:<id>> - Commission a device
//	cancel      - Cancel the active session
//	status      - Show coordinator status
//	fabrics     - List fabrics known to the backend
//	nodes       - List owned devices
//	credentials - List stored credential bundles
//	forget <fabric-id> - Remove a stored credential bundle
//	quit        - Exit the commissioner
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fabriclink-protocol/fabriclink-go/cmd/fabriclink-commissioner/interactive"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/backend"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/bridge"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/commission"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/event"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	fllog "github.com/fabriclink-protocol/fabriclink-go/pkg/log"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/noc"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/version"
)

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.PlatformValue, "platform", "ios", "Host platform: android, ios")
	flag.StringVar(&config.BackendURLValue, "backend-url", "http://localhost:8080/v1", "Backend API root")
	flag.StringVar(&config.AuthToken, "auth-token", "", "Backend bearer token")
	flag.StringVar(&config.StateDir, "state-dir", "", "Directory for the persistent credential store")
	flag.StringVar(&config.RoutingFile, "routing", "", "Event routing table file (overrides -platform)")
	flag.StringVar(&config.LogFile, "log-file", "", "Commissioning event log path (CBOR)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Interactive, "interactive", false, "Enable interactive command mode")
	flag.StringVar(&config.Payload, "payload", "", "Onboarding payload for a one-shot commissioning run")
	flag.StringVar(&config.FabricID, "fabric", "", "Fabric ID for a one-shot commissioning run")
	flag.StringVar(&config.GroupID, "group", "", "Group ID for a one-shot commissioning run")
	flag.DurationVar(&config.ConfirmationTimeout, "timeout", 0, "Confirmation timeout (0 = library default)")
	flag.DurationVar(&config.StepDelay, "step-delay", 500*time.Millisecond, "Loopback event pacing")
}

func main() {
	// The config file provides defaults; command-line flags override it.
	if path := configFileFromArgs(os.Args[1:]); path != "" {
		if err := loadConfigFile(path, &config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	flag.Parse()

	setupLogging(config.LogLevel)

	log.Printf("FabricLink Reference Commissioner (protocol %s)", version.Current)
	log.Printf("Platform: %s", config.PlatformValue)
	log.Printf("Backend: %s", config.BackendURLValue)

	eventLogger, cleanup, err := buildEventLogger()
	if err != nil {
		log.Fatalf("Failed to set up event logging: %v", err)
	}
	defer cleanup()

	routing, err := buildRouting()
	if err != nil {
		log.Fatalf("Invalid routing configuration: %v", err)
	}

	client, err := backend.NewHTTPClient(backend.HTTPConfig{
		BaseURL:   config.BackendURLValue,
		AuthToken: config.AuthToken,
		Logger:    eventLogger,
	})
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}

	store, err := buildCredentialStore()
	if err != nil {
		log.Fatalf("Failed to open credential store: %v", err)
	}

	adapter := bridge.NewLoopbackAdapter()
	adapter.StepDelay = config.StepDelay

	coordinator, err := commission.NewCoordinator(
		fabric.NewPreparer(client),
		noc.NewGate(client, store, eventLogger),
		adapter,
		client,
		commission.Config{
			Routing:             routing,
			ConfirmationTimeout: config.ConfirmationTimeout,
			Logger:              eventLogger,
		},
	)
	if err != nil {
		log.Fatalf("Failed to create coordinator: %v", err)
	}

	coordinator.OnStatus(func(text string) {
		log.Printf("[STATUS] %s", text)
	})

	terminal := make(chan commission.Result, 1)
	coordinator.OnTerminal(func(result commission.Result) {
		switch {
		case result.Canceled:
			log.Printf("[DONE] Session %s canceled", result.SessionID)
		case result.Err != nil:
			log.Printf("[DONE] Session %s failed: %v", result.SessionID, result.Err)
		default:
			log.Printf("[DONE] Session %s commissioned %q", result.SessionID, result.DeviceName)
		}
		select {
		case terminal <- result:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if config.Interactive {
		runInteractive(ctx, cancel, sigCh, coordinator, client, store)
		return
	}

	runOneShot(ctx, sigCh, coordinator, terminal)
}

// runInteractive hands control to the readline console until quit or signal.
func runInteractive(ctx context.Context, cancel context.CancelFunc, sigCh chan os.Signal,
	coordinator *commission.Coordinator, client backend.Client, store noc.SecureStore) {

	console, err := interactive.New(coordinator, client, store, &config)
	if err != nil {
		log.Fatalf("Failed to create interactive console: %v", err)
	}
	// Redirect log output through readline to avoid interfering with input.
	log.SetOutput(console.Stdout())
	go console.Run(ctx, cancel)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
		coordinator.Cancel()
		cancel()
	case <-ctx.Done():
	}
	log.Println("Goodbye!")
}

// runOneShot commissions a single device from the -payload/-fabric/-group
// flags and exits with a non-zero status on failure.
func runOneShot(ctx context.Context, sigCh chan os.Signal,
	coordinator *commission.Coordinator, terminal chan commission.Result) {

	if config.Payload == "" || (config.FabricID == "" && config.GroupID == "") {
		log.Fatal("One-shot mode requires -payload and one of -fabric or -group (or use -interactive)")
	}

	selection := fabric.Selection{
		FabricID: config.FabricID,
		GroupID:  config.GroupID,
	}
	if err := coordinator.Start(ctx, config.Payload, selection); err != nil {
		os.Exit(1)
	}

	select {
	case result := <-terminal:
		if result.Err != nil {
			os.Exit(1)
		}
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
		coordinator.Cancel()
		os.Exit(1)
	}
}

// buildEventLogger assembles the commissioning event logger: an slog console
// adapter, plus a CBOR file log when -log-file is set.
func buildEventLogger() (fllog.Logger, func(), error) {
	level := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	console := fllog.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if config.LogFile == "" {
		return console, func() {}, nil
	}

	fileLogger, err := fllog.NewFileLogger(config.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log %s: %w", config.LogFile, err)
	}
	cleanup := func() { _ = fileLogger.Close() }
	return fllog.NewMultiLogger(console, fileLogger), cleanup, nil
}

// buildRouting loads the routing table file when given, otherwise the
// built-in table for the configured platform.
func buildRouting() (event.Routing, error) {
	if config.RoutingFile != "" {
		return event.LoadRouting(config.RoutingFile)
	}
	return event.RoutingForPlatform(event.Platform(config.PlatformValue))
}

// buildCredentialStore opens the file store under -state-dir, or an
// in-memory store when no state directory is configured.
func buildCredentialStore() (noc.SecureStore, error) {
	if config.StateDir == "" {
		log.Println("No state directory configured; credentials are not persisted")
		return noc.NewMemoryStore(), nil
	}
	log.Printf("Using state directory: %s", config.StateDir)
	return noc.NewFileStore(config.StateDir)
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}
