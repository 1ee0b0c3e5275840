package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"cafestaff/config"
	"cafestaff/database"
	"cafestaff/logger"
	"cafestaff/storage"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cafestaff",
		Short:        "Cafe and employee management service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSlice("env-file", []string{".env", ".env.local"}, "dotenv files to load before reading the environment")
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}

// runtime holds the collaborators every subcommand needs.
type runtime struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
}

func bootstrap(cmd *cobra.Command) (*runtime, error) {
	envFiles, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	level := gormLogger.Info
	if strings.EqualFold(cfg.LogMode, "production") || strings.EqualFold(cfg.LogMode, "prod") {
		level = gormLogger.Warn
	}
	db, err := database.Open(cfg.Database, log, level)
	if err != nil {
		log.Sync()
		return nil, err
	}
	log.Info("Database connected", "driver", cfg.Database.Driver)
	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (r *runtime) close() {
	if err := database.Close(r.db); err != nil {
		r.log.Warn("Failed to close database", "error", err)
	}
	r.log.Sync()
}

type closer interface {
	Close() error
}

func openAssets(ctx context.Context, cfg config.AssetOptions, log *logger.Logger) (storage.AssetStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.AssetsGCS:
		return storage.NewGCSStore(ctx, log, cfg.GCSBucket, cfg.GCSPrefix)
	default:
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		log.Info("Local asset store ready", "dir", store.Dir())
		return store, nil
	}
}
