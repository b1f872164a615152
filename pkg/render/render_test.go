package render

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/synmed/synviz/pkg/counter"
	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/render/sink"
	"github.com/synmed/synviz/pkg/schedule"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []Format
		wantErr bool
	}{
		{"single", []string{"svg"}, []Format{FormatSVG}, false},
		{"comma list", []string{"svg,PNG", "json"}, []Format{FormatSVG, FormatPNG, FormatJSON}, false},
		{"duplicates", []string{"svg", "svg,svg"}, []Format{FormatSVG}, false},
		{"blank parts", []string{"svg,,", ""}, []Format{FormatSVG}, false},
		{"unknown", []string{"gif"}, nil, true},
		{"empty", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormats(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormats() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s", errors.GetCode(err))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFormats() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatSVG.ContentType() != "image/svg+xml" || FormatPNG.Ext() != ".png" {
		t.Error("format metadata wrong")
	}
	if Format("x").ContentType() != "application/octet-stream" {
		t.Error("unknown format content type")
	}
}

func TestChartAllFormats(t *testing.T) {
	c := piechart.New(schedule.NewVirtual(), []geometry.Segment{
		{Label: "Construction", Percentage: 40},
		{Label: "Agriculture", Percentage: 60},
	}, piechart.WithID("sectors"))
	c.Reveal()
	s := c.SceneAt(c.Timing().TotalDuration(2))

	out, err := Chart(s, c.Timing(), Formats, Options{Animated: true})
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if len(out) != len(Formats) {
		t.Fatalf("artifacts = %d, want %d", len(out), len(Formats))
	}
	checks := map[Format]string{
		FormatSVG:  "<svg",
		FormatPNG:  "\x89PNG",
		FormatPDF:  "%PDF-",
		FormatJSON: "{",
		FormatHTML: "<!DOCTYPE html>",
	}
	for f, prefix := range checks {
		if !bytes.HasPrefix(out[f], []byte(prefix)) {
			t.Errorf("%s output starts with %.10q", f, out[f])
		}
	}
	if !bytes.Contains(out[FormatSVG], []byte("threshold: 0.3")) {
		t.Error("animated SVG does not use the chart threshold")
	}

	if _, err := Chart(s, c.Timing(), []Format{"gif"}, Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestCounterFormats(t *testing.T) {
	a := counter.New(schedule.NewVirtual(), 50000, counter.WithPrefix("₹"), counter.WithSuffix(" Cr"))
	v := sink.CounterViewOf("contribution", "Annual Economic Contribution", a)

	out, err := Counter(v, []Format{FormatSVG, FormatJSON}, Options{Animated: true})
	if err != nil {
		t.Fatalf("Counter: %v", err)
	}
	if !bytes.Contains(out[FormatSVG], []byte("intersectionRatio < 0.5")) {
		t.Error("animated counter does not use the counter threshold")
	}
	if !bytes.Contains(out[FormatJSON], []byte(`"text": "₹0 Cr"`)) {
		t.Errorf("json = %s", out[FormatJSON])
	}
}
