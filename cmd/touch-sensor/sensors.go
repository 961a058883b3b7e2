package main

import (
	"fmt"
	"io"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/touch-sensor/internal/config"
	"github.com/sweeney/touch-sensor/internal/gpio"
	"github.com/sweeney/touch-sensor/internal/logic"
)

// sensorSet holds the opened sensors, one per configured button, and the
// boards they share.
type sensorSet struct {
	sensors []gpio.Sensor
	boards  []io.Closer
}

// touchSensors returns the sensors as the interface the debounce core reads.
func (s *sensorSet) touchSensors() []logic.TouchSensor {
	out := make([]logic.TouchSensor, len(s.sensors))
	for i, sensor := range s.sensors {
		out[i] = sensor
	}
	return out
}

// Close releases sensors before the boards they were opened from.
func (s *sensorSet) Close() error {
	var errs []error
	for _, sensor := range s.sensors {
		if err := sensor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, b := range s.boards {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func openSensors(cfg *config.Config) (*sensorSet, error) {
	set := &sensorSet{}
	var err error

	switch cfg.Backend {
	case config.BackendRC:
		err = openRC(cfg, set)
	case config.BackendADS:
		err = openADS(cfg, set)
	case config.BackendGobot:
		err = openGobot(cfg, set)
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if err != nil {
		if cerr := set.Close(); cerr != nil {
			log.WithError(cerr).Warn("cleanup after failed open")
		}
		return nil, err
	}
	return set, nil
}

func openRC(cfg *config.Config, set *sensorSet) error {
	chip := cfg.Chip
	if chip == "" {
		chip = gpio.DefaultChip
	}
	maxCount := cfg.MaxCount
	if maxCount == 0 {
		maxCount = gpio.DefaultMaxCount
	}

	for _, b := range cfg.Button {
		offset, err := strconv.Atoi(b.Line)
		if err != nil {
			return fmt.Errorf("button %s: line %q is not a gpio offset: %w", b.Name, b.Line, err)
		}
		s, err := gpio.NewRCSensor(chip, offset, maxCount)
		if err != nil {
			return fmt.Errorf("button %s: %w", b.Name, err)
		}
		set.sensors = append(set.sensors, s)
	}
	return nil
}

func openADS(cfg *config.Config, set *sensorSet) error {
	board, err := gpio.OpenADSBoard(cfg.I2CBus)
	if err != nil {
		return err
	}
	set.boards = append(set.boards, board)

	for _, b := range cfg.Button {
		s, err := board.Channel(b.Channel, b.Line)
		if err != nil {
			return fmt.Errorf("button %s: %w", b.Name, err)
		}
		set.sensors = append(set.sensors, s)
	}
	return nil
}

func openGobot(cfg *config.Config, set *sensorSet) error {
	board, err := gpio.OpenGobotBoard()
	if err != nil {
		return err
	}
	set.boards = append(set.boards, board)

	for _, b := range cfg.Button {
		s, err := board.Channel(b.Channel, b.Line)
		if err != nil {
			return fmt.Errorf("button %s: %w", b.Name, err)
		}
		set.sensors = append(set.sensors, s)
	}
	return nil
}

// buildButtons pairs each configured button with its sensor.
func buildButtons(cfg *config.Config, sensors []logic.TouchSensor, clock logic.Clock) ([]*logic.Button, error) {
	if len(sensors) != len(cfg.Button) {
		return nil, fmt.Errorf("have %d sensors for %d buttons", len(sensors), len(cfg.Button))
	}
	buttons := make([]*logic.Button, len(cfg.Button))
	for i, b := range cfg.Button {
		buttons[i] = logic.NewButton(b.ButtonConfig(), sensors[i], clock)
	}
	return buttons, nil
}
