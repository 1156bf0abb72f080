package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/svitlosync/app"
	"github.com/kilianp07/svitlosync/config"
	"github.com/kilianp07/svitlosync/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "svitlosync",
	Short:        "Sync the be-svitlo outage schedule to svitlobot",
	SilenceUsage: true,
	RunE:         run,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync loop until interrupted (the default command)",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads and fully validates the configuration, then installs the
// log outputs it describes. The returned function closes the log file.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return setupLogging(cfg)
}

// loadStorageConfig is loadConfig for read-only commands: the publisher and
// source queue are not required.
func loadStorageConfig() (*config.Config, func(), error) {
	cfg, err := config.Read(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return setupLogging(cfg)
}

func setupLogging(cfg *config.Config) (*config.Config, func(), error) {
	closeLog, err := logger.Setup(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Console:    cfg.Logging.Console,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	return cfg, func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	}, nil
}

func newService(ctx context.Context) (*app.Service, func(), error) {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return svc, func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
		closeLog()
	}, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return svc.Run(ctx)
}
