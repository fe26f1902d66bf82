package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/chargeable-weight/internal/application"
	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
	"github.com/eugenenazirov/chargeable-weight/internal/config"
	"github.com/eugenenazirov/chargeable-weight/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("chargeable-weight", "Chargeable Weight Calculator - derives volumetric and billable weight for multi-box shipments")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	logLevel := kingpinApp.Flag("log-level", "Minimum log level (debug, info, warn, error)").String()
	shippingMode := kingpinApp.Flag("shipping-mode", "Default shipping mode for new sessions").
		Enum(shippingModeNames()...)
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed per client (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *shippingMode != "" {
		overrides.ShippingMode = shippingMode
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app, cfg.ShutdownGracePeriod, logger)
}

func shippingModeNames() []string {
	modes := calculator.ShippingModes()
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, m.String())
	}
	return names
}

// lifecycle is the part of the application that shutdown drives.
type lifecycle interface {
	Server() *http.Server
	Stop()
	Done() <-chan struct{}
}

// shutdown waits for a termination signal, drains the HTTP server and stops
// the session janitor, all within timeout.
func shutdown(app lifecycle, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	app.Stop()
	server := app.Server()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	select {
	case <-app.Done():
	case <-ctx.Done():
		logger.Warn("session janitor did not stop before the grace period ended")
	}
}
