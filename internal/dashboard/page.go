package dashboard

import (
	"html/template"
	"net/http"
	"strconv"

	"forecast-dashboard/internal/chart"

	"github.com/rs/zerolog/log"
)

// pageData is what the dashboard template renders.
type pageData struct {
	Selection  Selection
	Chart      *ChartView
	Monitoring *MonitoringView
	Portfolio  *PortfolioView
	Width      float64
	Height     float64
	PlotRight  float64
	PlotBottom float64
}

var pageFuncs = template.FuncMap{
	"f2":         func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"price":      Price,
	"candleLeft": func(c chart.Candle) float64 { return c.X - c.Width/2 },
	"bandLeft":   func(x float64) float64 { return x - bandWidth/2 },
}

const bandWidth = 8.0

var pageTemplate = template.Must(template.New("dashboard").Funcs(pageFuncs).Parse(pageHTML))

// handleDashboard serves the main dashboard HTML page. Views that have never
// been loaded are refreshed first.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.store.Chart(); !ok {
		s.RefreshAll(r.Context())
	}

	data := pageData{Selection: s.store.Selection()}
	if v, ok := s.store.Chart(); ok {
		data.Chart = &v
		opts := v.Scale.Options()
		data.Width = opts.Width
		data.Height = opts.Height + overlayGap + overlayHeight
		data.PlotRight = opts.Width - opts.Margin.Right
		data.PlotBottom = opts.Height - opts.Margin.Bottom
	}
	if v, ok := s.store.Monitoring(); ok {
		data.Monitoring = &v
	}
	if v, ok := s.store.Portfolio(); ok {
		data.Portfolio = &v
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render dashboard page")
	}
}

const pageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Forecast Dashboard - {{.Selection.Symbol}}</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 1400px; margin: 0 auto; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0; font-size: 2em; }
        .card { background: white; padding: 20px; border-radius: 10px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 20px; }
        .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 12px; margin-bottom: 20px; }
        .metric { background: #fafafa; border-radius: 8px; padding: 12px; }
        .metric-label { color: #666; font-size: 0.85em; }
        .metric-value { font-size: 1.4em; font-weight: bold; }
        .positive { color: #28a745; }
        .negative { color: #dc3545; }
        .warning { color: #e0a800; }
        .demo { background: #fff3cd; color: #856404; padding: 10px; border-radius: 6px; margin-bottom: 12px; }
        .failure { background: #f8d7da; color: #721c24; padding: 8px; border-radius: 6px; margin-bottom: 8px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 6px; border-bottom: 1px solid #eee; }
        .up { fill: #28a745; stroke: #28a745; }
        .down { fill: #dc3545; stroke: #dc3545; }
        .axis { fill: #666; font-size: 11px; }
        .grid { stroke: #eee; }
        #live { font-size: 0.8em; opacity: 0.8; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>{{.Selection.Symbol}} &middot; {{.Selection.ModelID}} &middot; {{.Selection.Horizon}}h</h1>
        <span id="live">connecting...</span>
    </div>

    {{with .Chart}}
    <div class="card">
        {{if .Demo}}<div class="demo">Service unreachable: showing generated demo data.</div>{{end}}
        {{if .ErrorsDemo}}<div class="demo">Prediction errors are simulated.</div>{{end}}
        {{range .Failures}}<div class="failure">{{.Source}}: {{.Message}}</div>{{end}}
        <div class="cards">
            {{range .Cards}}<div class="metric"><div class="metric-label">{{.Label}}</div><div class="metric-value {{.Tone}}">{{.Value}}</div></div>{{end}}
        </div>
        <svg width="{{f2 $.Width}}" height="{{f2 $.Height}}" viewBox="0 0 {{f2 $.Width}} {{f2 $.Height}}">
            {{range .PriceTicks}}
            <line class="grid" x1="0" x2="{{f2 $.PlotRight}}" y1="{{f2 .Pos}}" y2="{{f2 .Pos}}"/>
            <text class="axis" x="{{f2 $.PlotRight}}" dx="4" y="{{f2 .Pos}}" dy="4">{{.Label}}</text>
            {{end}}
            {{range .TimeTicks}}
            <text class="axis" x="{{f2 .Pos}}" y="{{f2 $.PlotBottom}}" dy="16" text-anchor="middle">{{.Label}}</text>
            {{end}}
            {{range .Candles}}
            <g class="{{.Direction}}">
                <line x1="{{f2 .X}}" x2="{{f2 .X}}" y1="{{f2 .WickTop}}" y2="{{f2 .WickBottom}}" stroke-width="1"/>
                <rect x="{{f2 (candleLeft .)}}" y="{{f2 .BodyTop}}" width="{{f2 .Width}}" height="{{f2 .BodyHeight}}"/>
            </g>
            {{end}}
            {{range .Forecast.Points}}{{if .Band}}
            <rect class="band" x="{{f2 (bandLeft .X)}}" y="{{f2 .Band.Top}}" width="8" height="{{f2 .Band.Height}}" fill="#667eea" fill-opacity="0.25"/>
            {{end}}{{end}}
            {{if .Forecast.Path}}<path d="{{.Forecast.Path}}" fill="none" stroke="#667eea" stroke-width="2" stroke-dasharray="5,4"/>{{end}}
            {{range .Forecast.Markers}}
            <circle cx="{{f2 .X}}" cy="{{f2 .Y}}" r="4" fill="#764ba2"><title>{{price .Point.PredictedPrice}}</title></circle>
            {{end}}
            {{with .Overlay}}
            <line class="grid" x1="0" x2="{{f2 $.PlotRight}}" y1="{{f2 .ZeroY}}" y2="{{f2 .ZeroY}}"/>
            {{range .Bars}}
            <rect x="{{f2 .X}}" y="{{f2 .Y}}" width="{{f2 .Width}}" height="{{f2 .Height}}" fill="#e0a800" fill-opacity="0.7"><title>{{price .Error.Error}}</title></rect>
            {{end}}
            {{end}}
        </svg>
    </div>
    {{else}}
    <div class="card">No chart data loaded.</div>
    {{end}}

    {{with .Monitoring}}
    <div class="card">
        <h2>Model Monitoring</h2>
        {{range .Failures}}<div class="failure">{{.Source}}: {{.Message}}</div>{{end}}
        <div class="cards">
            {{range .Cards}}<div class="metric"><div class="metric-label">{{.Label}}</div><div class="metric-value {{.Tone}}">{{.Value}}</div></div>{{end}}
        </div>
        <table>
            <tr><th>Severity</th><th>Type</th><th>Model</th><th>Message</th></tr>
            {{range .Alerts}}<tr><td class="warning">{{.Severity}}</td><td>{{.AlertType}}</td><td>{{.ModelType}}</td><td>{{.Message}}</td></tr>
            {{else}}<tr><td colspan="4" style="text-align: center; color: #666;">No active alerts</td></tr>{{end}}
        </table>
    </div>
    {{end}}

    {{with .Portfolio}}
    <div class="card">
        <h2>Portfolio &middot; {{.UserID}}</h2>
        {{range .Failures}}<div class="failure">{{.Source}}: {{.Message}}</div>{{end}}
        <div class="cards">
            {{range .Cards}}<div class="metric"><div class="metric-label">{{.Label}}</div><div class="metric-value {{.Tone}}">{{.Value}}</div></div>{{end}}
        </div>
        <table>
            <tr><th>Symbol</th><th>Quantity</th></tr>
            {{range $sym, $qty := .Portfolio.Holdings}}<tr><td>{{$sym}}</td><td>{{f2 $qty}}</td></tr>
            {{else}}<tr><td colspan="2" style="text-align: center; color: #666;">No holdings</td></tr>{{end}}
        </table>
    </div>
    {{end}}
</div>
<script>
    const live = document.getElementById('live');
    function connect() {
        const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        const ws = new WebSocket(proto + '//' + location.host + '/ws');
        ws.onopen = () => { live.textContent = 'live'; };
        ws.onmessage = () => { live.textContent = 'updated ' + new Date().toLocaleTimeString(); };
        ws.onclose = () => { live.textContent = 'reconnecting...'; setTimeout(connect, 5000); };
    }
    connect();
</script>
</body>
</html>
`
