// Package dataset loads the charts and counters shown on the landing page's
// data section.
//
// Datasets are TOML (or JSON) documents:
//
//	locale = "en"
//
//	[[counter]]
//	name   = "contribution"
//	label  = "Annual Economic Contribution"
//	target = 50000
//	prefix = "₹"
//	suffix = " Cr"
//
//	[[chart]]
//	name   = "states"
//	title  = "State-wise Distribution"
//	center = "States"
//	  [[chart.segment]]
//	  label      = "West Bengal"
//	  percentage = 35
//	  detail     = "1.2M"
//
// Malformed numbers never fail a load: percentages and targets that are
// negative, NaN or not numbers decode to 0. Structural problems (bad TOML,
// invalid names) are errors. Soft problems (percentages not summing to 100,
// duplicate names) are reported by [Dataset.Validate] as warnings.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/synmed/synviz/pkg/counter"
	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/numfmt"
	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/schedule"
)

//go:embed defaults.toml
var defaultsTOML []byte

// Format is a dataset encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Dataset is a decoded dataset file.
type Dataset struct {
	Locale   string    `toml:"locale" json:"locale,omitempty"`
	Counters []Counter `toml:"counter" json:"counters,omitempty"`
	Charts   []Chart   `toml:"chart" json:"charts,omitempty"`
}

// Counter describes one count-up number.
type Counter struct {
	Name     string   `toml:"name" json:"name"`
	Label    string   `toml:"label" json:"label,omitempty"`
	Target   Count    `toml:"target" json:"target"`
	Prefix   string   `toml:"prefix" json:"prefix,omitempty"`
	Suffix   string   `toml:"suffix" json:"suffix,omitempty"`
	Duration Duration `toml:"duration" json:"duration,omitempty"`
	Steps    int      `toml:"steps" json:"steps,omitempty"`
}

// Chart describes one pie chart.
type Chart struct {
	Name     string    `toml:"name" json:"name"`
	Title    string    `toml:"title" json:"title,omitempty"`
	Center   string    `toml:"center" json:"center,omitempty"`
	Segments []Segment `toml:"segment" json:"segments"`
}

// Segment is one labelled slice.
type Segment struct {
	Label      string  `toml:"label" json:"label"`
	Percentage Percent `toml:"percentage" json:"percentage"`
	Detail     string  `toml:"detail" json:"detail,omitempty"`
}

// Default returns the landing page's built-in dataset.
func Default() *Dataset {
	ds, err := Decode(defaultsTOML, FormatTOML)
	if err != nil {
		panic("dataset: embedded defaults: " + err.Error())
	}
	return ds
}

// Load reads a dataset file. The format follows the extension: ".json" is
// JSON, anything else TOML.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return Decode(data, FormatOf(path))
}

// FormatOf returns the dataset format implied by a file name.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Decode parses a dataset and checks its names.
func Decode(data []byte, format Format) (*Dataset, error) {
	var ds Dataset
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json")
		}
	case FormatTOML, "":
		md, err := toml.Decode(string(data), &ds)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "unknown key %q", undecoded[0].String())
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	if err := ds.checkNames(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (d *Dataset) checkNames() error {
	for _, c := range d.Counters {
		if err := errors.ValidateName(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "counter %q", c.Name)
		}
	}
	for _, c := range d.Charts {
		if err := errors.ValidateName(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "chart %q", c.Name)
		}
	}
	return nil
}

// Chart returns the first chart named name.
func (d *Dataset) Chart(name string) (*Chart, error) {
	for i := range d.Charts {
		if d.Charts[i].Name == name {
			return &d.Charts[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeChartNotFound, "no chart named %q", name)
}

// Counter returns the first counter named name.
func (d *Dataset) Counter(name string) (*Counter, error) {
	for i := range d.Counters {
		if d.Counters[i].Name == name {
			return &d.Counters[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeCounterNotFound, "no counter named %q", name)
}

// Formatter returns the number formatter for the dataset's locale.
func (d *Dataset) Formatter() numfmt.Formatter {
	if d.Locale == "" {
		return numfmt.English
	}
	return numfmt.New(d.Locale)
}

// GeometrySegments converts the chart's segments for the geometry package.
func (c *Chart) GeometrySegments() []geometry.Segment {
	out := make([]geometry.Segment, len(c.Segments))
	for i, s := range c.Segments {
		out[i] = geometry.Segment{Label: s.Label, Percentage: float64(s.Percentage), Detail: s.Detail}
	}
	return out
}

// New creates a hidden pie chart for c. The chart's element ID is the chart
// name, so repeated renders of a dataset are stable.
func (c *Chart) New(sched schedule.Scheduler, opts ...piechart.Option) *piechart.Chart {
	base := []piechart.Option{
		piechart.WithID(c.Name),
		piechart.WithTitle(c.Title),
		piechart.WithCenterLabel(c.Center),
	}
	return piechart.New(sched, c.GeometrySegments(), append(base, opts...)...)
}

// New creates an idle animator for c using format for the number.
func (c *Counter) New(sched schedule.Scheduler, format numfmt.Formatter) *counter.Animator {
	return counter.New(sched, int(c.Target),
		counter.WithPrefix(c.Prefix),
		counter.WithSuffix(c.Suffix),
		counter.WithDuration(time.Duration(c.Duration)),
		counter.WithSteps(c.Steps),
		counter.WithFormatter(format),
	)
}
