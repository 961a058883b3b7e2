package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseExample(t *testing.T) {
	c, err := Parse(Example)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Poll() != 20*time.Millisecond {
		t.Errorf("Poll: got %v, want 20ms", c.Poll())
	}
	if c.Hold() != 1000 {
		t.Errorf("Hold: got %d, want 1000", c.Hold())
	}
	if c.Heartbeat() != 15*time.Minute {
		t.Errorf("Heartbeat: got %v, want 15m", c.Heartbeat())
	}
	if c.Backend != BackendRC {
		t.Errorf("Backend: got %q, want rc", c.Backend)
	}
	if c.HTTP != ":8080" {
		t.Errorf("HTTP: got %q", c.HTTP)
	}
	if len(c.Button) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(c.Button))
	}
	if c.Button[1].Name != "T1" || c.Button[1].Line != "27" {
		t.Errorf("unexpected second button: %+v", c.Button[1])
	}
}

func TestDefaultsApplied(t *testing.T) {
	c, err := Parse(`
[[Button]]
	Name = "A"
	Line = "4"
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.PollMs != DefaultPollMs {
		t.Errorf("PollMs: got %d, want %d", c.PollMs, DefaultPollMs)
	}
	if c.HoldMs != DefaultHoldMs {
		t.Errorf("HoldMs: got %d, want %d", c.HoldMs, DefaultHoldMs)
	}
	if c.Broker != DefaultBroker {
		t.Errorf("Broker: got %q", c.Broker)
	}
	if c.HTTP != "" {
		t.Errorf("HTTP: expected empty (disabled), got %q", c.HTTP)
	}
	b := c.Button[0]
	if b.Threshold != DefaultThreshold || b.DebounceMs != DefaultDebounceMs {
		t.Errorf("button defaults not applied: %+v", b)
	}
}

func TestExplicitZeroKept(t *testing.T) {
	c, err := Parse(`
HoldMs = 0
HeartbeatMs = 0
[[Button]]
	Name = "A"
	Line = "4"
	DebounceMs = 0
[[Button]]
	Name = "B"
	Line = "5"
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Hold() != 0 {
		t.Errorf("Hold: got %d, want 0 (disabled)", c.Hold())
	}
	if c.Heartbeat() != 0 {
		t.Errorf("Heartbeat: got %v, want 0 (disabled)", c.Heartbeat())
	}
	if got := c.Button[0].ButtonConfig().Debounce; got != 0 {
		t.Errorf("A debounce: got %d, want 0", got)
	}
	if got := c.Button[1].ButtonConfig().Debounce; got != DefaultDebounceMs {
		t.Errorf("B debounce: got %d, want default %d", got, DefaultDebounceMs)
	}
	if c.Button[0].Threshold != DefaultThreshold || c.Button[1].Threshold != DefaultThreshold {
		t.Errorf("thresholds should default when absent: %+v", c.Button)
	}
}

func TestLargestDebounceAccepted(t *testing.T) {
	c, err := Parse("[[Button]]\nName = \"A\"\nLine = \"1\"\nDebounceMs = 4294967295")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Button[0].ButtonConfig().Debounce; got != 4294967295 {
		t.Errorf("Debounce: got %d, want 4294967295", got)
	}
}

func TestButtonConfig(t *testing.T) {
	b := Button{Name: "A", Line: "4", Threshold: 33, DebounceMs: 75, Invert: true}
	bc := b.ButtonConfig()

	if bc.Name != "A" || bc.Line != "4" || bc.Threshold != 33 || bc.Debounce != 75 || !bc.Invert {
		t.Errorf("unexpected conversion: %+v", bc)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"no buttons", `PollMs = 20`, "no buttons"},
		{"negative poll", "PollMs = -1\n[[Button]]\nName = \"A\"\nLine = \"1\"", "PollMs"},
		{"unknown backend", "Backend = \"spi\"\n[[Button]]\nName = \"A\"", "unknown backend"},
		{"empty name", "[[Button]]\nLine = \"1\"", "has no name"},
		{"duplicate name", "[[Button]]\nName = \"A\"\nLine = \"1\"\n[[Button]]\nName = \"A\"\nLine = \"2\"", "duplicate"},
		{"rc needs line", "[[Button]]\nName = \"A\"", "needs a Line"},
		{"channel range", "Backend = \"ads\"\n[[Button]]\nName = \"A\"\nChannel = 4", "out of range"},
		{"negative debounce", "[[Button]]\nName = \"A\"\nLine = \"1\"\nDebounceMs = -5", "negative DebounceMs"},
		{"debounce overflow", "[[Button]]\nName = \"A\"\nLine = \"1\"\nDebounceMs = 4294967346", "exceeds"},
		{"negative hold", "HoldMs = -1\n[[Button]]\nName = \"A\"\nLine = \"1\"", "HoldMs"},
		{"hold overflow", "HoldMs = 4294967296\n[[Button]]\nName = \"A\"\nLine = \"1\"", "HoldMs"},
		{"zero poll", "PollMs = 0\n[[Button]]\nName = \"A\"\nLine = \"1\"", "PollMs"},
		{"zero threshold", "[[Button]]\nName = \"A\"\nLine = \"1\"\nThreshold = 0", "Threshold 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.toml)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("PollMs = = 3")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Error("syntax errors should not be reported as validation errors")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touch.toml")
	if err := os.WriteFile(path, []byte(Example), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Button) != 2 {
		t.Errorf("expected 2 buttons, got %d", len(c.Button))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
