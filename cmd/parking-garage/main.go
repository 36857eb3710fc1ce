package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-garage/internal/config"
	"parking-garage/internal/garage"
	"parking-garage/internal/logging"
	"parking-garage/internal/server"
)

func main() {
	cfg := config.Load()

	mode := flag.String("mode", cfg.Mode, "Mode to run: cli, server, or both")
	port := flag.String("port", cfg.Port, "Port for HTTP server")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logOpts := logging.Options{
		Service:     cfg.OTelConfig.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Output:      os.Stdout,
	}
	if *mode != "server" {
		logOpts.Output = os.Stderr
	}

	telemetryProvider, err := newTelemetry(ctx, cfg)
	if err != nil {
		logging.Init(logOpts)
		logging.Error(ctx, "failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	logging.Init(logOpts)

	manager, err := garage.NewInstrumentedManager(capacities(cfg), fees(cfg), telemetryProvider)
	if err != nil {
		logging.Error(ctx, "invalid garage configuration", "error", err)
		os.Exit(1)
	}

	holder := garage.NewHolder(manager, telemetryProvider)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, holder, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, *port, server.NewHandler(holder, cfg.OTelConfig.ServiceName), sigChan)
	case "both":
		runBoth(ctx, cancel, *port, holder, telemetryProvider, cfg.OTelConfig.ServiceName, sigChan)
	default:
		logging.Error(ctx, "invalid mode, must be cli, server, or both", "mode", *mode)
		os.Exit(2)
	}

	shutdownTelemetry(telemetryProvider)
}

func newTelemetry(ctx context.Context, cfg *config.Config) (*garage.TelemetryProvider, error) {
	if !cfg.OTelConfig.Enabled {
		return garage.NewNoopTelemetryProvider(), nil
	}
	return garage.NewTelemetryProvider(ctx, cfg.OTelConfig.ServiceName, cfg.OTelConfig.OTLPEndpoint)
}

func capacities(cfg *config.Config) garage.Capacities {
	return garage.Capacities{
		Small:  cfg.Garage.SmallCapacity,
		Medium: cfg.Garage.MediumCapacity,
		Large:  cfg.Garage.LargeCapacity,
	}
}

func fees(cfg *config.Config) *garage.FeeCalculator {
	return garage.NewFeeCalculator(cfg.Garage.GracePeriodHours, map[garage.Size]garage.Rate{
		garage.Small:  {Hourly: cfg.Garage.Small.Hourly, DailyMax: cfg.Garage.Small.DailyMax},
		garage.Medium: {Hourly: cfg.Garage.Medium.Hourly, DailyMax: cfg.Garage.Medium.DailyMax},
		garage.Large:  {Hourly: cfg.Garage.Large.Hourly, DailyMax: cfg.Garage.Large.DailyMax},
	})
}

func runCLI(ctx context.Context, cancel context.CancelFunc, holder *garage.Holder, telemetryProvider *garage.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	shell := garage.NewInstrumentedShell(holder, telemetryProvider, os.Stdin, os.Stdout)
	shell.Run(ctx)
}

func runServer(ctx context.Context, cancel context.CancelFunc, port string, handler *server.Handler, sigChan chan os.Signal) {
	srv := server.NewServer(port, handler)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx, "server shutdown error", "error", err)
		}

		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx, "server error", "error", err)
	}
}

// runBoth serves HTTP and reads the shell from stdin against the same
// holder, so create_garage from either side replaces the garage for both.
func runBoth(ctx context.Context, cancel context.CancelFunc, port string, holder *garage.Holder, telemetryProvider *garage.TelemetryProvider, serviceName string, sigChan chan os.Signal) {
	srv := server.NewServer(port, server.NewHandler(holder, serviceName))

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := garage.NewInstrumentedShell(holder, telemetryProvider, os.Stdin, os.Stdout)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "server error", "error", err)
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server shutdown error", "error", err)
	}
}

func shutdownTelemetry(telemetryProvider *garage.TelemetryProvider) {
	ctx := context.Background()
	logging.Info(ctx, "shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "error shutting down telemetry", "error", err)
	}
}
