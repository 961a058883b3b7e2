package main

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/touch-sensor/internal/config"
	"github.com/sweeney/touch-sensor/internal/logic"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Print each button's raw reading and state once, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		sensors, err := openSensors(cfg)
		if err != nil {
			return fmt.Errorf("init sensors: %w", err)
		}
		defer func() {
			if err := sensors.Close(); err != nil {
				log.WithError(err).Warn("close sensors")
			}
		}()

		return printState(cmd.OutOrStdout(), cfg, sensors.touchSensors(), logic.MillisSince(time.Now(), time.Now))
	},
}

// printState writes one line per button: the raw reading, the threshold and
// the baseline state.
func printState(w io.Writer, cfg *config.Config, sensors []logic.TouchSensor, clock logic.Clock) error {
	buttons, err := buildButtons(cfg, sensors, clock)
	if err != nil {
		return err
	}

	for _, b := range buttons {
		b.Begin()

		bc := b.Config()
		fmt.Fprintf(w, "%s (line %s): raw=%d threshold=%d invert=%t state=%s\n",
			bc.Name, bc.Line, b.Raw(), bc.Threshold, bc.Invert, b.State())
	}
	return nil
}
