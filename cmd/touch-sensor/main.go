// Command touch-sensor polls capacitive touch buttons and publishes debounced
// press, release and hold events to MQTT.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "/etc/touch-sensor.toml"

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:           "touch-sensor",
		Short:         "Debounced capacitive touch buttons over MQTT",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd, readCmd, initCmd)
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := rootCmd.Execute(); err != nil {
		log.Errorln("fatal:", err)
		os.Exit(1)
	}
}
