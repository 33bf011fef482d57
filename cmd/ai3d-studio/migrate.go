package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ai3d-studio/internal/config"
	"ai3d-studio/internal/db"
)

// migrateCmd aplica el esquema y termina.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, _ := zap.NewProduction()
		defer logger.Sync()

		ctx := cmd.Context()
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema applied")
		return nil
	},
}
