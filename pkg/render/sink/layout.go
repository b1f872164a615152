package sink

import (
	"bytes"
	"encoding/xml"
	"math"

	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/piechart"
)

// Chart card geometry in CSS pixels at scale 1.
const (
	DefaultWidth = 448.0

	padding      = 16.0
	titleHeight  = 32.0
	pieSize      = 256.0
	pieGap       = 32.0
	legendCols   = 2
	legendGap    = 16.0
	legendRowH   = 44.0
	swatchRadius = 8.0
	centerRadius = 15.625 // 40px disc in the 100-unit view box of a 256px pie

	fontFamily = `ui-sans-serif, system-ui, -apple-system, 'Segoe UI', Roboto, sans-serif`
	textColor  = "#1F2937"
	mutedColor = "#6B7280"
)

// chartLayout places the parts of a chart card.
type chartLayout struct {
	Width, Height float64
	TitleY        float64
	PieX, PieY    float64
	LegendY       float64
	ColW          float64
}

func layoutChart(s piechart.Scene) chartLayout {
	l := chartLayout{Width: DefaultWidth}
	y := padding
	if s.Title != "" {
		l.TitleY = y + 20
		y += titleHeight
	}
	l.PieX = (l.Width - pieSize) / 2
	l.PieY = y
	y += pieSize + pieGap
	l.LegendY = y
	l.ColW = (l.Width - 2*padding - legendGap) / legendCols
	rows := (len(s.Legend) + legendCols - 1) / legendCols
	l.Height = y + float64(rows)*legendRowH + padding
	return l
}

// legendPos returns the top-left corner of legend entry i.
func (l chartLayout) legendPos(i int) (x, y float64) {
	col, row := i%legendCols, i/legendCols
	return padding + float64(col)*(l.ColW+legendGap), l.LegendY + float64(row)*legendRowH
}

// pieToFrame maps a point in the pie's 100-unit view box to frame pixels.
func (l chartLayout) pieToFrame(p geometry.Point) (x, y float64) {
	k := pieSize / geometry.ViewBox
	return l.PieX + p.X*k, l.PieY + p.Y*k
}

// slicePolygon returns the outline of a sector in frame pixels, rotated so
// 0 degrees points up and scaled about the pie centre. Arcs are sampled at
// most every 2 degrees.
func (l chartLayout) slicePolygon(sec geometry.Sector, scale float64) [][2]float64 {
	if sec.Empty() {
		return nil
	}
	c := geometry.Point{X: geometry.CenterX, Y: geometry.CenterY}
	r := geometry.Radius * scale
	n := max(2, int(math.Ceil(sec.Span()/2)))

	pts := make([][2]float64, 0, n+2)
	if !sec.Full() {
		x, y := l.pieToFrame(c)
		pts = append(pts, [2]float64{x, y})
	}
	for i := 0; i <= n; i++ {
		deg := sec.StartAngle + sec.Span()*float64(i)/float64(n)
		x, y := l.pieToFrame(geometry.PointOnCircle(c.X, c.Y, r, deg-90))
		pts = append(pts, [2]float64{x, y})
	}
	return pts
}

// escapeXML escapes text for element content and attribute values.
func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
