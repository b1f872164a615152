// Package pipeline turns a dataset into rendered charts and counters.
//
// This package implements the load → build → render pipeline shared by the
// CLI commands and the preview server, so every entry point caches, logs and
// names its output the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a TOML or JSON dataset (or the built-in one) and decode it
//  2. Build: Create pie charts and counters on a virtual clock and move them
//     to the requested point of their reveal
//  3. Render: Paint each scene in the requested formats (SVG, PNG, PDF,
//     JSON, HTML)
//
// Decoded datasets and rendered artifacts are cached through [cache.Cache],
// keyed by content hash and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "landing.toml",
//	    Formats: []render.Format{render.FormatSVG},
//	    Animated: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range result.Artifacts {
//	    os.WriteFile(a.Filename(), a.Data, 0o644)
//	}
//
// # Modes
//
// A scene is rendered in one of three modes:
//
//   - animated: the hidden state plus the transitions, left for a browser to
//     play once the element scrolls into view (SVG and HTML)
//   - hidden: the initial state, before the visibility trigger fires
//   - frame: the state Frame after reveal; a zero Frame means settled
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/synmed/synviz/pkg/cache"
	"github.com/synmed/synviz/pkg/dataset"
	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/numfmt"
	"github.com/synmed/synviz/pkg/render"
)

// MaxScale bounds Options.Scale so a single PNG stays a reasonable size.
const MaxScale = 8.0

// Mode selects which point of the reveal a scene is rendered at.
type Mode string

const (
	ModeAnimated Mode = "animated"
	ModeHidden   Mode = "hidden"
	ModeFrame    Mode = "frame"
)

// Artifact kinds.
const (
	KindChart   = "chart"
	KindCounter = "counter"
	KindPage    = "page"
	KindReport  = "report"
)

// DefaultTitle heads pages and reports that were given no title.
const DefaultTitle = "synviz"

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Source  string `json:"source,omitempty"` // dataset path; empty uses the built-in dataset
	Locale  string `json:"locale,omitempty"` // overrides the dataset's locale
	Refresh bool   `json:"refresh,omitempty"`

	// Selection; both empty selects everything.
	Charts   []string `json:"charts,omitempty"`
	Counters []string `json:"counters,omitempty"`

	// Render options
	Formats   []render.Format `json:"formats,omitempty"`
	Animated  bool            `json:"animated,omitempty"`
	Hidden    bool            `json:"hidden,omitempty"`
	Frame     time.Duration   `json:"frame,omitempty"`
	Threshold float64         `json:"threshold,omitempty"`
	Scale     float64         `json:"scale,omitempty"`
	Title     string          `json:"title,omitempty"`
	Page      bool            `json:"page,omitempty"`   // also render one HTML page of the selection
	Report    bool            `json:"report,omitempty"` // also render one PDF report of the selection

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Artifact is one rendered output.
type Artifact struct {
	Kind   string
	Name   string
	Format render.Format
	Data   []byte
	Cached bool
}

// Filename returns the artifact's conventional file name, e.g. "states.svg".
func (a Artifact) Filename() string { return a.Name + a.Format.Ext() }

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the decoded dataset, after any locale override.
	Dataset *dataset.Dataset

	// Warnings lists data problems that did not stop rendering.
	Warnings []dataset.Warning

	// Artifacts holds rendered outputs in selection then format order.
	Artifacts []Artifact

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Charts     int
	Counters   int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DatasetHit     bool // Whether the decoded dataset came from cache
	ArtifactHits   int  // Number of items whose formats all came from cache
	ArtifactMisses int
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Animated && o.Hidden {
		return errors.New(errors.ErrCodeInvalidInput, "animated and hidden are mutually exclusive")
	}
	if o.Frame < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame time cannot be negative")
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold %v outside [0, 1]", o.Threshold)
	}
	if !(o.Scale >= 0 && o.Scale <= MaxScale) {
		return errors.New(errors.ErrCodeInvalidInput, "scale %v outside [0, %v]", o.Scale, MaxScale)
	}
	if o.Locale != "" && !slices.Contains(numfmt.Locales, o.Locale) {
		return errors.New(errors.ErrCodeInvalidLocale, "unsupported locale %q (must be one of: en, ml, hi, bn)", o.Locale)
	}
	for _, n := range slices.Concat(o.Charts, o.Counters) {
		if err := errors.ValidateName(n); err != nil {
			return err
		}
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Mode returns the render mode the options select.
func (o *Options) Mode() Mode {
	switch {
	case o.Animated:
		return ModeAnimated
	case o.Hidden:
		return ModeHidden
	}
	return ModeFrame
}

// FormatNames returns the formats as strings, for logs and hooks.
func (o *Options) FormatNames() []string {
	out := make([]string, len(o.Formats))
	for i, f := range o.Formats {
		out[i] = string(f)
	}
	return out
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format render.Format, locale, version string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:  string(format),
		Mode:    string(o.Mode()),
		Scale:   o.Scale,
		Locale:  locale,
		Version: version,
	}
	if o.Mode() == ModeFrame {
		opts.Elapsed = o.Frame.Milliseconds()
	}
	return opts
}

// renderOptions maps pipeline options onto render options.
func (o *Options) renderOptions(lang string) render.Options {
	return render.Options{
		Animated:  o.Animated,
		Threshold: o.Threshold,
		Scale:     o.Scale,
		Title:     o.Title,
		Lang:      lang,
	}
}
