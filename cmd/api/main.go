// main.go
package main

import (
	"fmt"
	"os"

	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

const programName = "ora-committee"

var globalFlags = struct {
	debug bool
}{}

// app is filled in by the root command before any subcommand runs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if globalFlags.debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(programName), nil
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Committee governance API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), serveOptions{migrate: true})
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// ============================================
		// Load environment variables
		// ============================================
		envErr := godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		if envErr != nil {
			logger.Debug("no .env file found, using environment variables")
		}

		// Configure max processes with our logger, toss undo func
		sugar := logger.Sugar()
		if _, err := maxprocs.Set(maxprocs.Logger(sugar.Infof)); err != nil {
			return fmt.Errorf("failed to set GOMAXPROCS: %w", err)
		}

		a.cfg = cfg
		a.logger = logger
		return nil
	}

	rootCmd.AddCommand(a.serveCommand())
	rootCmd.AddCommand(a.migrateCommand())
	rootCmd.AddCommand(a.seedCommand())

	err := rootCmd.Execute()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
