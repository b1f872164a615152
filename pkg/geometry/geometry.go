// Package geometry converts labeled percentages into pie-chart sectors.
//
// # Overview
//
// [Compute] scans an ordered list of segments once, carrying the cumulative
// percentage of the segments already placed. Segment i therefore starts where
// segment i-1 ended:
//
//	start    = cumulative / 100 * 360
//	end      = (cumulative + percentage) / 100 * 360
//	largeArc = percentage > 50
//
// Angles are in degrees, measured clockwise in SVG coordinates (y down) from
// the positive x axis. Renderers rotate the chart by -90 degrees so the first
// sector starts at 12 o'clock.
//
// Percentages that are negative, NaN or infinite contribute nothing: the
// sector collapses to a single boundary point and later sectors are not
// shifted. Percentages above [MaxPercentage] are clamped to it, which keeps
// every angle and coordinate finite. Percentages are not required to sum to
// 100; a partial or overlapping circle is the caller's responsibility.
//
// # Coordinates
//
// Boundary points use a fixed 100x100 view box with centre (50,50) and
// radius 40, matching the SVG sink. [Sector.PointAt] accepts other radii for
// raster renderers.
package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// View box constants.
const (
	ViewBox = 100.0
	CenterX = 50.0
	CenterY = 50.0
	Radius  = 40.0
)

// Segment is one labeled slice of a distribution.
type Segment struct {
	Label      string  `json:"label" toml:"label"`
	Percentage float64 `json:"percentage" toml:"percentage"`
	Detail     string  `json:"detail,omitempty" toml:"detail"` // legend-only text, e.g. "1.2M"
}

// Point is a position in view-box coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sector is the geometry derived for one segment.
type Sector struct {
	Index      int     `json:"index"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	LargeArc   bool    `json:"large_arc"`
	ColorIndex int     `json:"color_index"`
	Start      Point   `json:"start"`
	End        Point   `json:"end"`
}

// MaxPercentage is the largest contribution a single segment can make.
const MaxPercentage = 1e6

// Sanitize returns the contribution of a raw percentage: negative, NaN and
// infinite values contribute 0, and values above MaxPercentage contribute
// MaxPercentage.
func Sanitize(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return min(p, MaxPercentage)
}

// Compute derives one sector per segment, in order.
func Compute(segments []Segment) []Sector {
	sectors := make([]Sector, len(segments))
	cumulative := 0.0
	for i, seg := range segments {
		p := Sanitize(seg.Percentage)
		start := cumulative / 100 * 360
		end := (cumulative + p) / 100 * 360
		if p == 0 {
			end = start
		}
		sectors[i] = Sector{
			Index:      i,
			StartAngle: start,
			EndAngle:   end,
			LargeArc:   p > 50,
			ColorIndex: ColorIndex(i),
			Start:      PointOnCircle(CenterX, CenterY, Radius, start),
			End:        PointOnCircle(CenterX, CenterY, Radius, end),
		}
		cumulative += p
	}
	return sectors
}

// PointOnCircle returns the point at angle degrees on a circle.
func PointOnCircle(cx, cy, r, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: cx + r*math.Cos(rad), Y: cy + r*math.Sin(rad)}
}

// Span returns the angular width of the sector in degrees.
func (s Sector) Span() float64 { return s.EndAngle - s.StartAngle }

// Empty reports whether the sector has zero width.
func (s Sector) Empty() bool { return s.Span() <= 0 }

// Full reports whether the sector covers the whole circle.
func (s Sector) Full() bool { return s.Span() >= 360-1e-9 }

// MidAngle returns the angle halfway through the sector.
func (s Sector) MidAngle() float64 { return (s.StartAngle + s.EndAngle) / 2 }

// Contains reports whether angle (degrees, normalized to [0,360)) falls in
// the half-open range [start, end).
func (s Sector) Contains(deg float64) bool {
	return !s.Empty() && deg >= s.StartAngle && deg < s.EndAngle
}

// PointAt returns the boundary point at deg on a circle of radius r around
// (cx, cy). Use it to scale the sector for raster output.
func (s Sector) PointAt(cx, cy, r, deg float64) Point {
	return PointOnCircle(cx, cy, r, deg)
}

// LargeArcFlag returns the SVG large-arc flag (0 or 1).
func (s Sector) LargeArcFlag() int {
	if s.LargeArc {
		return 1
	}
	return 0
}

// Path returns SVG path data for the sector in view-box coordinates.
//
// A full circle cannot be drawn with one arc command because its two
// boundary points coincide, so it is split into two half arcs.
func (s Sector) Path() string {
	c := fmtNum(CenterX) + " " + fmtNum(CenterY)
	r := fmtNum(Radius)
	if s.Full() {
		mid := PointOnCircle(CenterX, CenterY, Radius, s.StartAngle+180)
		return fmt.Sprintf("M %s L %s A %s %s 0 1 1 %s A %s %s 0 1 1 %s Z",
			c, fmtPoint(s.Start), r, r, fmtPoint(mid), r, r, fmtPoint(s.Start))
	}
	return fmt.Sprintf("M %s L %s A %s %s 0 %d 1 %s Z",
		c, fmtPoint(s.Start), r, r, s.LargeArcFlag(), fmtPoint(s.End))
}

// Locate returns the index of the sector covering deg, or -1.
// deg is normalized into [0,360).
func Locate(sectors []Sector, deg float64) int {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return -1
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	for i, s := range sectors {
		if s.Contains(deg) {
			return i
		}
	}
	return -1
}

// Total returns the sum of sanitized percentages.
func Total(segments []Segment) float64 {
	sum := 0.0
	for _, s := range segments {
		sum += Sanitize(s.Percentage)
	}
	return sum
}

func fmtPoint(p Point) string {
	return fmtNum(p.X) + " " + fmtNum(p.Y)
}

// fmtNum prints a coordinate with at most four decimals and no trailing
// zeros, so identical inputs always yield identical path strings.
func fmtNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
