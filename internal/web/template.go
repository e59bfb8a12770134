package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gpio2uinput/internal/status"
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
	"hex": func(v uint16) string {
		return fmt.Sprintf("0x%02x", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>gpio2uinput</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
#feed { height: 14em; overflow-y: auto; border: 1px solid #ddd; padding: 4px; white-space: pre; }
</style>
</head>
<body>
<h1>gpio2uinput<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Controls</h2>
<table>
<tr><th>Hat</th><td id="hat">x={{.HatX}} y={{.HatY}}</td></tr>
{{range $label, $v := .Axes}}<tr><th>Axis {{$label}}</th><td id="axis-{{$label}}">{{$v}}</td></tr>
{{end}}</table>

<h2>Inputs</h2>
<table>
<tr><th>Chip</th><td>{{.Config.Chip}} ({{.Config.Start}}..{{.Config.End}})</td></tr>
<tr><th>Watched lines</th><td>{{range $i, $l := .Lines}}{{if $i}}, {{end}}{{$l.Offset}}{{if $l.Name}} ({{$l.Name}}){{end}}{{else}}none{{end}}</td></tr>
{{if .Config.BusDev}}<tr><th>Bus</th><td>{{.Config.BusDev}} @ {{hex .Config.BusAddr}}</td></tr>
<tr><th>Bus health</th><td class="{{if .BusHealthy}}connected{{else}}disconnected{{end}}">{{if .BusHealthy}}ok{{else}}faulted{{end}} ({{.BusFaults}} faults)</td></tr>{{end}}
<tr><th>Devices</th><td>{{if .Config.Gamepad}}gamepad {{end}}{{if .Config.Keyboard}}keyboard{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Gamepad press / release</th><td>{{.Counts.GamepadPress}} / {{.Counts.GamepadRelease}}</td></tr>
<tr><th>Keyboard press / release</th><td>{{.Counts.KeyboardPress}} / {{.Counts.KeyboardRelease}}</td></tr>
<tr><th>Hat moves</th><td>{{.Counts.HatMoves}}</td></tr>
<tr><th>Unmapped</th><td>{{.Counts.Unmapped}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceUs}}us</td></tr>
<tr><th>Active level</th><td>{{if .Config.ActiveHigh}}high{{else}}low{{end}}</td></tr>
<tr><th>Auto assign</th><td>{{.Config.Auto}}</td></tr>
{{if .Config.MapFile}}<tr><th>Map file</th><td>{{.Config.MapFile}}</td></tr>{{end}}
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .Config.Broker}}{{.Config.Broker}} {{if .MQTTConnected}}connected{{else}}disconnected{{end}}{{else}}disabled{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<h2>Live</h2>
<div id="feed"></div>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var feed = document.getElementById("feed");
  var hat = document.getElementById("hat");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function line(r) {
    var s = r.kind + " " + (r.channel || r.label || "");
    if (r.token) s += " " + r.token;
    if (r.kind === "hat" || r.kind === "button" || r.kind === "unmapped") s += r.pressed ? " DOWN" : " UP";
    if (r.kind === "axis") s += " " + r.value;
    if (r.error) s += " " + r.error;
    return s;
  }

  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() { setDot("err", "offline"); setTimeout(connect, 5000); };
    ws.onmessage = function(ev) {
      try {
        var msg = JSON.parse(ev.data);
        if (msg.type !== "record") return;
        var r = msg.record;
        if (r.kind === "hat") hat.textContent = "x=" + r.hat_x + " y=" + r.hat_y;
        if (r.kind === "axis") {
          var el = document.getElementById("axis-" + r.label);
          if (el) el.textContent = r.value;
        }
        feed.textContent += line(r) + "\n";
        feed.scrollTop = feed.scrollHeight;
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
