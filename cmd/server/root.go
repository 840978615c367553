package main

import (
	"fmt"

	"salons/backend/internal/config"
	"salons/backend/internal/database"
	"salons/backend/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "salons",
	Short:         "Chat rooms with channels, attachments and moderation",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// bootstrap loads the configuration, installs the global logger and connects
// to the database. The returned func flushes the logger.
func bootstrap() (*config.Config, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, logging.FormatFor(cfg.Env), "salons")
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	flush := func() { _ = logger.Sync() }

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Connect(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		flush()
		return nil, nil, err
	}
	return cfg, flush, nil
}
