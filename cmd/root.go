package cmd

import (
	"fmt"
	"os"

	"github.com/abdout/souq/configs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "souq-api"

var rootCmd = &cobra.Command{
	Use:   "souq",
	Short: "Souq - multi-tenant delivery marketplace API",
	Long: `Souq serves the marketplace API: merchants onboard and manage their catalogue
and inventory, customers quote, order and pay, and order status is pushed over
websocket and MQTT.

Run "souq serve" for the HTTP server, or use the maintenance commands below.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap: config -> logger -> db (ทุก command ใช้ร่วมกัน)
func bootstrap() (*configs.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := configs.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	db, err := configs.Open(cfg.DB, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, log, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
