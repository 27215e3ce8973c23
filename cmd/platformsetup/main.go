package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alfredjeanlab/platformsetup/internal/config"
	"github.com/alfredjeanlab/platformsetup/internal/events"
	"github.com/alfredjeanlab/platformsetup/internal/setup"
	"github.com/alfredjeanlab/platformsetup/internal/store"
	"github.com/alfredjeanlab/platformsetup/internal/ui"
	"github.com/alfredjeanlab/platformsetup/internal/version"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	jsonOutput bool

	cfg       *config.Config
	logger    *slog.Logger
	platform  store.Platform
	publisher events.Publisher
	engine    *setup.PlatformSetup
)

var rootCmd = &cobra.Command{
	Use:           "platformsetup <command>",
	Short:         "Create the platform database and synchronize its configuration",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = ui.NewLogger(os.Stderr, verbose)
		if !ui.ShouldUseColor(os.Stdout) {
			ui.ForceNoColor()
		}
		if cmd.Name() == "help" {
			return nil
		}

		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		p, err := openPlatform(cfg)
		if err != nil {
			return err
		}
		platform = p
		publisher = openPublisher(cfg, logger)

		engine = setup.New(platform, setup.Options{
			InitialFolder:   cfg.InitialFolder,
			CurrentFolder:   cfg.CurrentFolder,
			ExpectedVersion: version.Version,
			UseDefaults:     cfg.UseDefaults,
		}, publisher, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "lifecycle", Title: "Platform:"},
		&cobra.Group{ID: "sync", Title: "Configuration:"},
	)
	cobra.EnableCommandSorting = false
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(exportCmd)
}

// closeAll releases the publisher and the database. PersistentPostRun is
// skipped when a command fails, so main calls it too.
func closeAll() {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		publisher = nil
	}
	if platform != nil {
		if err := platform.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}
		platform = nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	closeAll()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
