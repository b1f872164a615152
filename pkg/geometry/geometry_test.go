package geometry

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func TestComputeScenario(t *testing.T) {
	segs := []Segment{
		{Label: "W", Percentage: 35},
		{Label: "O", Percentage: 25},
		{Label: "A", Percentage: 20},
		{Label: "B", Percentage: 15},
		{Label: "X", Percentage: 5},
	}
	want := [][2]float64{{0, 126}, {126, 216}, {216, 288}, {288, 342}, {342, 360}}

	got := Compute(segs)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, s := range got {
		if math.Abs(s.StartAngle-want[i][0]) > eps || math.Abs(s.EndAngle-want[i][1]) > eps {
			t.Errorf("%s: [%v,%v), want [%v,%v)", segs[i].Label, s.StartAngle, s.EndAngle, want[i][0], want[i][1])
		}
		if s.LargeArc {
			t.Errorf("%s: LargeArc = true for %v%%", segs[i].Label, segs[i].Percentage)
		}
		if s.Index != i {
			t.Errorf("Index = %d, want %d", s.Index, i)
		}
	}
}

func TestComputeClosesCircle(t *testing.T) {
	segs := []Segment{{Percentage: 40}, {Percentage: 25}, {Percentage: 15}, {Percentage: 12}, {Percentage: 8}}
	sectors := Compute(segs)
	if end := sectors[len(sectors)-1].EndAngle; math.Abs(end-360) > eps {
		t.Errorf("last EndAngle = %v, want 360", end)
	}
	for i := 1; i < len(sectors); i++ {
		if sectors[i].StartAngle != sectors[i-1].EndAngle {
			t.Errorf("sector %d starts at %v, previous ended at %v", i, sectors[i].StartAngle, sectors[i-1].EndAngle)
		}
	}
}

func TestComputeSingleFullSegment(t *testing.T) {
	s := Compute([]Segment{{Label: "all", Percentage: 100}})[0]
	if !s.LargeArc {
		t.Error("LargeArc = false, want true")
	}
	if s.StartAngle != 0 || s.EndAngle != 360 {
		t.Errorf("angles = [%v,%v], want [0,360]", s.StartAngle, s.EndAngle)
	}
	if !s.Full() {
		t.Error("Full() = false")
	}
	path := s.Path()
	if strings.Count(path, "A ") != 2 {
		t.Errorf("full circle path should use two arcs: %s", path)
	}
}

func TestComputeLargeArcThreshold(t *testing.T) {
	sectors := Compute([]Segment{{Percentage: 50}, {Percentage: 50.5}})
	if sectors[0].LargeArc {
		t.Error("50% should not be a large arc")
	}
	if !sectors[1].LargeArc {
		t.Error("50.5% should be a large arc")
	}
	if !strings.Contains(sectors[1].Path(), " 0 1 1 ") {
		t.Errorf("path missing large-arc flag: %s", sectors[1].Path())
	}
}

func TestComputeMalformedPercentages(t *testing.T) {
	segs := []Segment{
		{Label: "a", Percentage: 30},
		{Label: "neg", Percentage: -5},
		{Label: "nan", Percentage: math.NaN()},
		{Label: "inf", Percentage: math.Inf(1)},
		{Label: "b", Percentage: 70},
	}
	sectors := Compute(segs)

	for _, i := range []int{1, 2, 3} {
		s := sectors[i]
		if s.StartAngle != s.EndAngle {
			t.Errorf("%s: [%v,%v), want zero width", segs[i].Label, s.StartAngle, s.EndAngle)
		}
		if s.Start != s.End {
			t.Errorf("%s: boundary points differ: %v %v", segs[i].Label, s.Start, s.End)
		}
	}
	if math.Abs(sectors[4].StartAngle-108) > eps || math.Abs(sectors[4].EndAngle-360) > eps {
		t.Errorf("b: [%v,%v), want [108,360)", sectors[4].StartAngle, sectors[4].EndAngle)
	}
	for _, s := range sectors {
		for _, v := range []float64{s.StartAngle, s.EndAngle, s.Start.X, s.Start.Y, s.End.X, s.End.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("sector %d has non-finite value", s.Index)
			}
		}
		if strings.Contains(s.Path(), "NaN") {
			t.Errorf("sector %d path contains NaN: %s", s.Index, s.Path())
		}
	}
}

func TestColorIndexCycles(t *testing.T) {
	segs := make([]Segment, 16)
	for i := range segs {
		segs[i].Percentage = 100.0 / 16
	}
	sectors := Compute(segs)
	for i := 0; i+PaletteSize < len(sectors); i++ {
		if sectors[i].ColorIndex != sectors[i+PaletteSize].ColorIndex {
			t.Errorf("colour of %d and %d differ", i, i+PaletteSize)
		}
	}
	if Color(7) != Color(0) {
		t.Error("Color(7) != Color(0)")
	}
	if ColorIndex(-1) != PaletteSize-1 {
		t.Errorf("ColorIndex(-1) = %d", ColorIndex(-1))
	}
}

func TestComputeDeterministic(t *testing.T) {
	segs := []Segment{{Percentage: 33.3}, {Percentage: 33.3}, {Percentage: 33.4}}
	a, b := Compute(segs), Compute(segs)
	for i := range a {
		if a[i] != b[i] || a[i].Path() != b[i].Path() {
			t.Fatalf("sector %d differs between runs", i)
		}
	}
}

func TestBoundaryPoints(t *testing.T) {
	s := Compute([]Segment{{Percentage: 25}, {Percentage: 75}})
	// 0 degrees is the positive x axis, 90 degrees points down in SVG space.
	if s[0].Start != (Point{X: 90, Y: 50}) {
		t.Errorf("Start = %v, want (90,50)", s[0].Start)
	}
	if math.Abs(s[0].End.X-50) > 1e-9 || math.Abs(s[0].End.Y-90) > 1e-9 {
		t.Errorf("End = %v, want (50,90)", s[0].End)
	}
	if got := s[0].Path(); got != "M 50 50 L 90 50 A 40 40 0 0 1 50 90 Z" {
		t.Errorf("Path() = %q", got)
	}
}

func TestLocate(t *testing.T) {
	sectors := Compute([]Segment{{Percentage: 50}, {Percentage: 0}, {Percentage: 25}})
	tests := []struct {
		deg  float64
		want int
	}{
		{0, 0},
		{179.9, 0},
		{180, 2},
		{269, 2},
		{270, -1},
		{-10, -1},
		{360, 0},
		{math.NaN(), -1},
	}
	for _, tt := range tests {
		if got := Locate(sectors, tt.deg); got != tt.want {
			t.Errorf("Locate(%v) = %d, want %d", tt.deg, got, tt.want)
		}
	}
}

func TestRGBA(t *testing.T) {
	c := RGBA(0)
	if c.R != 0xFF || c.G != 0x6B || c.B != 0x6B || c.A != 0xFF {
		t.Errorf("RGBA(0) = %v", c)
	}
}

func TestComputeHugePercentages(t *testing.T) {
	segs := []Segment{
		{Label: "huge", Percentage: 1e308},
		{Label: "max", Percentage: math.MaxFloat64},
		{Label: "after", Percentage: 10},
	}
	sectors := Compute(segs)

	for _, s := range sectors {
		for _, v := range []float64{s.StartAngle, s.EndAngle, s.Start.X, s.Start.Y, s.End.X, s.End.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s: non-finite value in %+v", segs[s.Index].Label, s)
			}
		}
		if strings.Contains(s.Path(), "NaN") || strings.Contains(s.Path(), "Inf") {
			t.Errorf("%s: path %s", segs[s.Index].Label, s.Path())
		}
	}
	if got := sectors[0].EndAngle; got != MaxPercentage/100*360 {
		t.Errorf("huge: end = %v, want %v", got, MaxPercentage/100*360)
	}
	if got := sectors[2].Span(); math.Abs(got-36) > 1e-6 {
		t.Errorf("after: span = %v, want 36", got)
	}
	if got := Total(segs); math.IsInf(got, 0) || got != 2*MaxPercentage+10 {
		t.Errorf("Total = %v, want %v", got, 2*MaxPercentage+10)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{35, 35},
		{120, 120},
		{-5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{1e308, MaxPercentage},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
