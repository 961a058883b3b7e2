package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/touch-sensor/internal/config"
	"github.com/sweeney/touch-sensor/internal/logic"
	"github.com/sweeney/touch-sensor/internal/mqtt"
	"github.com/sweeney/touch-sensor/internal/status"
	"github.com/sweeney/touch-sensor/internal/web"
)

var (
	pollOverride time.Duration
	clientID     string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Poll the buttons and publish events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if pollOverride > 0 {
				cfg.PollMs = pollOverride.Milliseconds()
			}
			return run(cfg)
		},
	}
)

func init() {
	runCmd.Flags().DurationVar(&pollOverride, "poll", 0, "polling interval (overrides PollMs)")
	runCmd.Flags().StringVar(&clientID, "client-id", "touch-sensor", "MQTT client id")
}

func run(cfg *config.Config) error {
	sensors, err := openSensors(cfg)
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer func() {
		if err := sensors.Close(); err != nil {
			log.WithError(err).Warn("close sensors")
		}
	}()

	publisher, err := mqtt.NewRealPublisher(cfg.Broker, clientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Status tracker exists before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	} else {
		log.Info("published startup event")
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.WithField("addr", cfg.HTTP).Info("http status server listening")
	}

	log.WithFields(log.Fields{
		"backend":   cfg.Backend,
		"buttons":   len(cfg.Button),
		"poll":      cfg.Poll(),
		"hold_ms":   cfg.HoldMs,
		"broker":    cfg.Broker,
		"heartbeat": cfg.Heartbeat(),
	}).Info("started")

	ticker := time.NewTicker(cfg.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(cfg, sensors.touchSensors(), publisher, publisher, tracker, time.Now, ticker.C, sigCh)
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		PollMs:      cfg.PollMs,
		HoldMs:      cfg.HoldMs,
		HeartbeatMs: cfg.HeartbeatMs,
		Broker:      cfg.Broker,
		HTTP:        cfg.HTTP,
		Backend:     cfg.Backend,
	}
}

// runLoop drives the detector from tick until a signal arrives. The first tick
// establishes the baseline. Every button in one pass sees the tick's time.
func runLoop(cfg *config.Config, sensors []logic.TouchSensor, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	current := startTime
	clock := logic.MillisSince(startTime, func() time.Time { return current })

	buttons, err := buildButtons(cfg, sensors, clock)
	if err != nil {
		return err
	}
	detector := logic.NewDetector(buttons, cfg.Hold(), startTime)
	heartbeat := cfg.Heartbeat()

	for {
		select {
		case s := <-sig:
			log.WithField("signal", s).Info("shutting down")
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refreshTracker(tracker, detector, mqttStatus)
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.WithError(err).Warn("failed to publish shutdown event")
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case <-tick:
			current = now()
			baselined := detector.IsBaselined()

			for _, event := range detector.Process(current) {
				log.WithFields(log.Fields{
					"button":  event.Button,
					"event":   event.Type,
					"held_ms": event.HeldMs,
				}).Info("event")
				if err := publisher.Publish(event); err != nil {
					// Don't crash on publish failure
					log.WithError(err).WithField("button", event.Button).Warn("publish error")
				}
			}

			if !baselined && detector.IsBaselined() {
				for _, st := range detector.States() {
					log.WithFields(log.Fields{"button": st.Name, "state": st.State}).Info("baseline")
				}
			}

			if tracker != nil {
				refreshTracker(tracker, detector, mqttStatus)
			}

			if hb := detector.CheckHeartbeat(current, heartbeat); hb != nil {
				log.WithFields(log.Fields{
					"uptime": hb.Uptime,
					"counts": hb.Counts,
				}).Info("heartbeat")

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.WithError(err).Warn("heartbeat publish error")
				}
			}
		}
	}
}

func refreshTracker(tracker *status.Tracker, detector *logic.Detector, mqttStatus mqtt.ConnectionStatus) {
	tracker.Update(detector.States(), detector.IsBaselined())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}
