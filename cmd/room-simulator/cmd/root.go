package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/service/simulator"
	"github.com/oshokin/room-control/internal/version"
)

const (
	// defaultInterval is the telemetry period.
	defaultInterval = 5 * time.Second
	// defaultMotionInterval is the motion sensor toggle period.
	defaultMotionInterval = 10 * time.Second
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// sensorKind selects the temperature unit reported by the room.
	sensorKind int
	// interval between telemetry messages.
	interval time.Duration
	// motionInterval between motion sensor toggles.
	motionInterval time.Duration

	// rootCmd represents the base command for simulating a room.
	rootCmd = &cobra.Command{
		Use:   "room-simulator <room-number>",
		Short: "Publish synthetic telemetry for one room.",
		Long: `Simulates the sensors and actuators of one room.

Temperature and humidity drift while the actuators are idle and follow the AC and
humidity commands addressed to this room. The motion sensor toggles periodically.
Readings are published on the room data topic of the configured group.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return simulator.Run(ctx, &simulator.Options{
				ConfigPath:     configPath,
				RoomNumber:     args[0],
				SensorKind:     sensorKind,
				Interval:       interval,
				MotionInterval: motionInterval,
			})
		},
	}
)

// Execute runs the room-simulator CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().IntVarP(&sensorKind, "sensor", "s", int(room.SensorCelsius), "sensor kind: 1 for Celsius, 2 for Fahrenheit")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", defaultInterval, "telemetry period")
	rootCmd.Flags().DurationVarP(&motionInterval, "motion-interval", "m", defaultMotionInterval, "motion sensor toggle period")
}
