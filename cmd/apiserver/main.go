// API server entry point for ToxPredict.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/ToxPredict/internal/app"
	"github.com/turtacn/ToxPredict/internal/config"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: TOXPRED_* environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	bundleDir := flag.String("bundle", "", "local artifact bundle directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *bundleDir != "" {
		cfg.Artifacts.Source = config.SourceFile
		cfg.Artifacts.Path = *bundleDir
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	logger.Info("Starting ToxPredict API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("build_date", buildDate),
		logging.String("addr", cfg.Server.Addr()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Version = version
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Initialization failed", logging.Err(err))
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		logger.Error("Server stopped with error", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

//Personal.AI order the ending
