package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/touch-sensor/internal/logic"
	"github.com/sweeney/touch-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"lower": strings.ToLower,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Touch Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Touch Sensor</h1>

<h2>Buttons</h2>
<table>
<tr><th>Name</th><th>Line</th><th>State</th><th>Pressed</th><th>Released</th><th>Held</th></tr>
{{range .Buttons}}<tr><td>{{.Name}}</td><td>{{.Line}}</td><td class="{{lower .Label}}">{{.Label}}</td><td>{{.Counts.Pressed}}</td><td>{{.Counts.Released}}</td><td>{{.Counts.Held}}</td></tr>
{{else}}<tr><td colspan="6">no buttons</td></tr>
{{end}}</table>
<p>Ready: {{if .Baselined}}yes{{else}}no{{end}}</p>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Hold</th><td>{{if eq .Config.HoldMs 0}}disabled{{else}}{{.Config.HoldMs}}ms{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if le .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTP}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

type buttonRow struct {
	Name   string
	Line   string
	Label  string
	Counts logic.EventCounts
}

func renderHTML(w io.Writer, snap status.Snapshot) error {
	rows := make([]buttonRow, len(snap.Buttons))
	for i, b := range snap.Buttons {
		rows[i] = buttonRow{
			Name:   b.Name,
			Line:   b.Line,
			Label:  status.StateLabel(b, snap.Baselined),
			Counts: b.Counts,
		}
	}

	// Template needs Uptime as a field and the rows with display labels.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Buttons []buttonRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Buttons:  rows,
	}
	return indexTmpl.Execute(w, data)
}
