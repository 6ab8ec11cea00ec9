// Railway Safety Agent - risk assessment for railway operating conditions
package main

import (
	"context"
	"os"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/config"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/logging"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/server"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Create logger
	logger := logging.New("info", "text")

	logger.Info("starting railway safety agent",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"strategy", cfg.Strategy,
		"model_type", cfg.ModelType,
	)

	// Create and run server
	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
