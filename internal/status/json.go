package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/touch-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Buttons       []ButtonJSON `json:"buttons"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ButtonJSON is the JSON representation of one button.
type ButtonJSON struct {
	Name         string     `json:"name"`
	Line         string     `json:"line"`
	State        string     `json:"state"`
	LastChangeMs uint32     `json:"last_change_ms"`
	Counts       CountsJSON `json:"counts"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Pressed  int `json:"pressed"`
	Released int `json:"released"`
	Held     int `json:"held"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HoldMs      int64  `json:"hold_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTP        string `json:"http"`
	Backend     string `json:"backend"`
}

// StateLabel is the display state of a button; UNKNOWN until baselined.
func StateLabel(b logic.ButtonState, baselined bool) string {
	if !baselined || b.State == "" {
		return "UNKNOWN"
	}
	return string(b.State)
}

func buttonJSON(b logic.ButtonState, baselined bool) ButtonJSON {
	return ButtonJSON{
		Name:         b.Name,
		Line:         b.Line,
		State:        StateLabel(b, baselined),
		LastChangeMs: uint32(b.LastChange),
		Counts: CountsJSON{
			Pressed:  b.Counts.Pressed,
			Released: b.Counts.Released,
			Held:     b.Counts.Held,
		},
	}
}

func buildInner(snap Snapshot) StatusInner {
	buttons := make([]ButtonJSON, 0, len(snap.Buttons))
	for _, b := range snap.Buttons {
		buttons = append(buttons, buttonJSON(b, snap.Baselined))
	}

	inner := StatusInner{
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Buttons:       buttons,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HoldMs:      snap.Config.HoldMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTP:        snap.Config.HTTP,
			Backend:     snap.Config.Backend,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatButtonJSON returns the JSON for the named button, or false if no
// button has that name.
func FormatButtonJSON(snap Snapshot, name string) ([]byte, bool) {
	for _, b := range snap.Buttons {
		if b.Name == name {
			data, _ := json.MarshalIndent(buttonJSON(b, snap.Baselined), "", "  ")
			return data, true
		}
	}
	return nil, false
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
