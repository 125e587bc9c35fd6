package main

import (
	"fmt"
	"os"

	"clinic-booking/cmd/bootstrap"
	"clinic-booking/config"
	"clinic-booking/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "clinic",
		Short:         "Clinic appointment booking service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to an optional env file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(envFile)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(envFile, database.MigrateDirection(args[0]))
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Insert the demo doctors into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(envFile)
		},
	})

	return root
}

func loadConfig(envFile string) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfigFrom(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := bootstrap.SetupLogger(cfg.App.LogLevel)
	log.Info("Configuration loaded successfully")
	return cfg, log, nil
}

func serve(envFile string) error {
	cfg, log, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Initialize application with all dependencies
	app, err := bootstrap.New(cfg, log)
	if err != nil {
		log.Errorf("Failed to initialize application: %v", err)
		return err
	}

	// Run the application
	app.Run()
	return nil
}

func migrate(envFile string, direction database.MigrateDirection) error {
	cfg, log, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return err
	}
	defer closeDB(db)

	return database.RunMigrations(db, direction, log)
}

func seed(envFile string) error {
	cfg, log, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return err
	}
	defer closeDB(db)

	return database.SeedDemoDoctors(db, log)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
