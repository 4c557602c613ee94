package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/service/console"
	"github.com/oshokin/room-control/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for the alarm console.
	rootCmd = &cobra.Command{
		Use:   "alarm-console",
		Short: "Arm, disarm or watch the room alarm.",
		Long: `Operator console for the room alarm.

The on and off subcommands publish a switch command on the alarm control topic.
The host name and user name of this machine are sent along for the audit trail.
The watch subcommand logs intrusion and alarm events until interrupted.`,
	}

	armCmd = &cobra.Command{
		Use:     "on",
		Aliases: []string{"arm"},
		Short:   "Arm the alarm.",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSwitch(true)
		},
	}

	disarmCmd = &cobra.Command{
		Use:     "off",
		Aliases: []string{"disarm"},
		Short:   "Disarm the alarm.",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSwitch(false)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Log alarm events until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return console.RunWatch(ctx, configPath)
		},
	}
)

func runSwitch(armed bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return console.Run(ctx, &console.Options{
		ConfigPath: configPath,
		Armed:      armed,
	})
}

// Execute runs the alarm-console CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.AddCommand(armCmd, disarmCmd, watchCmd)
}
