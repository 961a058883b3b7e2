// Package config loads the touch-sensor TOML configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/touch-sensor/internal/logic"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid config")

// Backends for raw touch readings.
const (
	BackendRC    = "rc"
	BackendADS   = "ads"
	BackendGobot = "gobot"
)

// Defaults applied to keys absent from the file.
const (
	DefaultPollMs      = 20
	DefaultDebounceMs  = 50
	DefaultThreshold   = 40
	DefaultHoldMs      = 1000
	DefaultHeartbeatMs = 15 * 60 * 1000
	DefaultBroker      = "tcp://127.0.0.1:1883"
)

// Config is the top-level configuration file.
type Config struct {
	PollMs      int64
	HoldMs      int64
	HeartbeatMs int64
	Broker      string
	HTTP        string
	Backend     string
	// Chip is the GPIO chip for the rc backend.
	Chip string
	// MaxCount bounds the rc discharge measurement.
	MaxCount uint16
	// I2CBus names the bus for the ads backend ("" = first bus).
	I2CBus string
	Button []Button
}

// Button configures one touch button.
type Button struct {
	Name string
	// Line is the GPIO offset (rc) or the electrode pad pin (ads, gobot).
	Line       string
	Channel    int
	Threshold  uint16
	DebounceMs int64
	Invert     bool
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c, err := decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes and validates a config from TOML text.
func Parse(data string) (*Config, error) {
	c, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// buttonKeys records which per-button keys a file sets. MetaData.IsDefined
// cannot address elements of an array of tables, so the file is decoded a
// second time into pointers.
type buttonKeys struct {
	Button []struct {
		Threshold  *int64
		DebounceMs *int64
	}
}

func decode(data string) (*Config, error) {
	var c Config
	md, err := toml.Decode(data, &c)
	if err != nil {
		return nil, err
	}
	var keys buttonKeys
	if _, err := toml.Decode(data, &keys); err != nil {
		return nil, err
	}
	c.applyDefaults(md, keys)
	return &c, nil
}

// applyDefaults fills keys the file leaves out. An explicit 0 is kept:
// DebounceMs 0 disables debouncing, HoldMs 0 disables HELD events and
// HeartbeatMs 0 disables heartbeats.
func (c *Config) applyDefaults(md toml.MetaData, keys buttonKeys) {
	if !md.IsDefined("PollMs") {
		c.PollMs = DefaultPollMs
	}
	if !md.IsDefined("HoldMs") {
		c.HoldMs = DefaultHoldMs
	}
	if !md.IsDefined("HeartbeatMs") {
		c.HeartbeatMs = DefaultHeartbeatMs
	}
	if c.Broker == "" {
		c.Broker = DefaultBroker
	}
	if c.Backend == "" {
		c.Backend = BackendRC
	}
	for i := range c.Button {
		b := &c.Button[i]
		var threshold, debounce *int64
		if i < len(keys.Button) {
			threshold, debounce = keys.Button[i].Threshold, keys.Button[i].DebounceMs
		}
		if threshold == nil {
			b.Threshold = DefaultThreshold
		}
		if debounce == nil {
			b.DebounceMs = DefaultDebounceMs
		}
	}
}

// Validate checks the config for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.PollMs <= 0 {
		return fmt.Errorf("%w: PollMs must be positive, got %d", ErrInvalidConfig, c.PollMs)
	}
	if c.HoldMs < 0 || c.HoldMs > math.MaxUint32 {
		return fmt.Errorf("%w: HoldMs must be between 0 and %d, got %d", ErrInvalidConfig, uint32(math.MaxUint32), c.HoldMs)
	}
	switch c.Backend {
	case BackendRC, BackendADS, BackendGobot:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if len(c.Button) == 0 {
		return fmt.Errorf("%w: no buttons configured", ErrInvalidConfig)
	}

	names := make(map[string]bool, len(c.Button))
	for i, b := range c.Button {
		if b.Name == "" {
			return fmt.Errorf("%w: button #%d has no name", ErrInvalidConfig, i)
		}
		if names[b.Name] {
			return fmt.Errorf("%w: duplicate button name %q", ErrInvalidConfig, b.Name)
		}
		names[b.Name] = true
		if b.DebounceMs < 0 {
			return fmt.Errorf("%w: button %q has negative DebounceMs", ErrInvalidConfig, b.Name)
		}
		if b.DebounceMs > math.MaxUint32 {
			return fmt.Errorf("%w: button %q DebounceMs %d exceeds %d", ErrInvalidConfig, b.Name, b.DebounceMs, uint32(math.MaxUint32))
		}
		if b.Threshold == 0 {
			return fmt.Errorf("%w: button %q has Threshold 0 and can never be touched", ErrInvalidConfig, b.Name)
		}
		if c.Backend == BackendRC && b.Line == "" {
			return fmt.Errorf("%w: button %q needs a Line for the rc backend", ErrInvalidConfig, b.Name)
		}
		if c.Backend != BackendRC && (b.Channel < 0 || b.Channel > 3) {
			return fmt.Errorf("%w: button %q channel %d out of range", ErrInvalidConfig, b.Name, b.Channel)
		}
	}
	return nil
}

// Poll returns the polling interval.
func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}

// Heartbeat returns the heartbeat interval; 0 or less disables heartbeats.
func (c *Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatMs) * time.Millisecond
}

// Hold returns the hold time as a logic.Millis; 0 disables HELD events.
func (c *Config) Hold() logic.Millis {
	return logic.Millis(c.HoldMs)
}

// ButtonConfig converts a configured button to the debounce core's config.
func (b Button) ButtonConfig() logic.ButtonConfig {
	return logic.ButtonConfig{
		Name:      b.Name,
		Line:      b.Line,
		Threshold: b.Threshold,
		Debounce:  logic.Millis(b.DebounceMs),
		Invert:    b.Invert,
	}
}
