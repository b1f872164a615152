package sink

import (
	"encoding/json"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/piechart"
)

// jsonChart is the exported form of a scene. Times are in milliseconds so
// browser code can use them directly as transition delays.
type jsonChart struct {
	ID        string       `json:"id"`
	Title     string       `json:"title,omitempty"`
	Center    string       `json:"center,omitempty"`
	Revealed  bool         `json:"revealed"`
	ElapsedMS int64        `json:"elapsed_ms"`
	ViewBox   float64      `json:"view_box"`
	Rotation  float64      `json:"rotation"`
	Palette   []string     `json:"palette"`
	Slices    []jsonSlice  `json:"slices"`
	Legend    []jsonLegend `json:"legend"`
}

type jsonSlice struct {
	Index      int             `json:"index"`
	Label      string          `json:"label"`
	Percentage float64         `json:"percentage"`
	Sector     geometry.Sector `json:"sector"`
	Path       string          `json:"path"`
	Fill       string          `json:"fill"`
	DelayMS    int64           `json:"delay_ms"`
	DurationMS int64           `json:"duration_ms"`
	Opacity    float64         `json:"opacity"`
	Scale      float64         `json:"scale"`
}

type jsonLegend struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Detail     string  `json:"detail"`
	Fill       string  `json:"fill"`
	DelayMS    int64   `json:"delay_ms"`
	DurationMS int64   `json:"duration_ms"`
	Opacity    float64 `json:"opacity"`
	OffsetY    float64 `json:"offset_y"`
}

type jsonCounter struct {
	ID         string   `json:"id"`
	Label      string   `json:"label,omitempty"`
	Step       int      `json:"step"`
	Value      int      `json:"value"`
	Text       string   `json:"text"`
	Done       bool     `json:"done"`
	IntervalMS int64    `json:"interval_ms"`
	Texts      []string `json:"texts,omitempty"`
}

// RenderJSON exports a chart scene.
func RenderJSON(s piechart.Scene) ([]byte, error) {
	out := jsonChart{
		ID:        s.ID,
		Title:     s.Title,
		Center:    s.Center,
		Revealed:  s.Revealed,
		ElapsedMS: s.Elapsed.Milliseconds(),
		ViewBox:   geometry.ViewBox,
		Rotation:  -90,
		Palette:   geometry.Palette(),
		Slices:    make([]jsonSlice, len(s.Slices)),
		Legend:    make([]jsonLegend, len(s.Legend)),
	}
	for i, sl := range s.Slices {
		out.Slices[i] = jsonSlice{
			Index:      sl.Index,
			Label:      sl.Label,
			Percentage: sl.Percentage,
			Sector:     sl.Sector,
			Path:       sl.Path,
			Fill:       sl.Fill,
			DelayMS:    sl.Delay.Milliseconds(),
			DurationMS: sl.Duration.Milliseconds(),
			Opacity:    sl.Opacity,
			Scale:      sl.Scale,
		}
	}
	for i, e := range s.Legend {
		out.Legend[i] = jsonLegend{
			Index:      e.Index,
			Label:      e.Label,
			Detail:     e.Detail,
			Fill:       e.Fill,
			DelayMS:    e.Delay.Milliseconds(),
			DurationMS: e.Duration.Milliseconds(),
			Opacity:    e.Opacity,
			OffsetY:    e.OffsetY,
		}
	}
	return marshal(out)
}

// RenderCounterJSON exports a counter view.
func RenderCounterJSON(v CounterView) ([]byte, error) {
	return marshal(jsonCounter{
		ID:         v.ID,
		Label:      v.Label,
		Step:       v.Frame.Step,
		Value:      v.Frame.Value,
		Text:       v.Frame.Text,
		Done:       v.Frame.Done,
		IntervalMS: v.Interval.Milliseconds(),
		Texts:      v.Texts,
	})
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}
	return append(data, '\n'), nil
}
