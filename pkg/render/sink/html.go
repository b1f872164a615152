package sink

import (
	"bytes"
	"html/template"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/visibility"
)

// Page is the data section of the landing page: counters above a grid of
// charts. Every element reveals on its own when scrolled into view.
type Page struct {
	Title    string
	Lang     string
	Counters []CounterView
	Charts   []piechart.Scene
	Timing   piechart.Timing

	// Thresholds override the visibility fractions; zero keeps the defaults.
	ChartThreshold   float64
	CounterThreshold float64
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: ui-sans-serif, system-ui, sans-serif; background: #F9FAFB; color: #1F2937; }
  .intro { min-height: 100vh; display: flex; align-items: center; justify-content: center; }
  .counters { display: flex; justify-content: center; gap: 24px; padding: 32px 16px; }
  .charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); gap: 32px; padding: 32px 16px; max-width: 1024px; margin: 0 auto; }
  .card { background: #FFFFFF; border-radius: 12px; box-shadow: 0 4px 16px rgba(0,0,0,0.06); padding: 16px; }
  .card svg { width: 100%; height: auto; }
</style>
</head>
<body>
<section class="intro"><h1>{{.Title}}</h1></section>
<section id="data">
{{- if .Counters}}
<div class="counters">
{{- range .Counters}}
<div class="card">{{.}}</div>
{{- end}}
</div>
{{- end}}
<div class="charts">
{{- range .Charts}}
<div class="card">{{.}}</div>
{{- end}}
</div>
</section>
</body>
</html>
`))

// RenderHTML renders a standalone page embedding animated SVG for every
// counter and chart.
func RenderHTML(p Page) ([]byte, error) {
	if p.Lang == "" {
		p.Lang = "en"
	}
	if p.Timing == (piechart.Timing{}) {
		p.Timing = piechart.DefaultTiming()
	}
	chartT := p.ChartThreshold
	if chartT == 0 {
		chartT = visibility.ChartThreshold
	}
	counterT := p.CounterThreshold
	if counterT == 0 {
		counterT = visibility.CounterThreshold
	}

	data := struct {
		Title    string
		Lang     string
		Counters []template.HTML
		Charts   []template.HTML
	}{Title: p.Title, Lang: p.Lang}

	for _, c := range p.Counters {
		svg := RenderCounterSVG(c, WithInline(), WithAnimation(counterT, p.Timing))
		data.Counters = append(data.Counters, template.HTML(svg))
	}
	for _, s := range p.Charts {
		svg := RenderSVG(s, WithInline(), WithAnimation(chartT, p.Timing))
		data.Charts = append(data.Charts, template.HTML(svg))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render page")
	}
	return buf.Bytes(), nil
}
