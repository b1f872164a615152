package pipeline

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/synmed/synviz/pkg/buildinfo"
	"github.com/synmed/synviz/pkg/cache"
	"github.com/synmed/synviz/pkg/dataset"
	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/observability"
	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/render"
	"github.com/synmed/synviz/pkg/render/sink"
	"github.com/synmed/synviz/pkg/schedule"
)

// BuiltinSource names the embedded dataset in logs and cache keys.
const BuiltinSource = "builtin"

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use it.
//
// The Runner is stateless except for the cache and logger. Every chart and
// counter is built on its own virtual clock, so multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	datasets  cache.Cache
	artifacts cache.Cache
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		datasets:  cache.Instrument(c, "dataset"),
		artifacts: cache.Instrument(c, "artifact"),
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	ds, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Dataset = ds
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.DatasetHit = hit
	result.Warnings = ds.Validate()
	for _, w := range result.Warnings {
		r.Logger.Warn(w.Message, "path", w.Path)
	}

	charts, counters, err := Select(ds, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.Charts = len(charts)
	result.Stats.Counters = len(counters)

	r.Logger.Info("loaded dataset",
		"source", cmp.Or(opts.Source, BuiltinSource),
		"charts", len(charts),
		"counters", len(counters),
		"duration", result.Stats.LoadTime)

	// Stages 2 and 3: Build and render
	renderStart := time.Now()
	collect := func(arts []Artifact, hit bool) {
		result.Artifacts = append(result.Artifacts, arts...)
		if hit {
			result.CacheInfo.ArtifactHits++
		} else {
			result.CacheInfo.ArtifactMisses++
		}
	}
	for _, c := range counters {
		arts, hit, err := r.RenderCounterWithCacheInfo(ctx, ds, c, opts)
		if err != nil {
			return nil, fmt.Errorf("render counter %s: %w", c.Name, err)
		}
		collect(arts, hit)
	}
	for _, c := range charts {
		arts, hit, err := r.RenderChartWithCacheInfo(ctx, ds, c, opts)
		if err != nil {
			return nil, fmt.Errorf("render chart %s: %w", c.Name, err)
		}
		collect(arts, hit)
	}
	if opts.Page {
		a, hit, err := r.pageWithCacheInfo(ctx, ds, charts, counters, opts)
		if err != nil {
			return nil, fmt.Errorf("render page: %w", err)
		}
		collect([]Artifact{a}, hit)
	}
	if opts.Report {
		a, hit, err := r.reportWithCacheInfo(ctx, ds, charts, counters, opts)
		if err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
		collect([]Artifact{a}, hit)
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.FormatNames(),
		"artifacts", len(result.Artifacts),
		"cached", result.CacheInfo.ArtifactHits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads and decodes the dataset named by opts.Source and
// reports whether the decoded form came from cache. The built-in dataset is
// never cached.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (ds *dataset.Dataset, hit bool, err error) {
	start := time.Now()
	source := cmp.Or(opts.Source, BuiltinSource)
	defer func() {
		charts, counters := 0, 0
		if ds != nil {
			charts, counters = len(ds.Charts), len(ds.Counters)
		}
		observability.Pipeline().OnLoadComplete(ctx, source, charts, counters, time.Since(start), err)
	}()

	if opts.Source == "" {
		return withLocale(dataset.Default(), opts.Locale), false, nil
	}

	data, err := os.ReadFile(opts.Source)
	if os.IsNotExist(err) {
		return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", opts.Source)
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", opts.Source)
	}

	key := r.Keyer.DatasetKey(opts.Source, cache.Hash(data))
	if !opts.Refresh {
		if cached, ok, err := r.datasets.Get(ctx, key); err == nil && ok {
			var d dataset.Dataset
			if err := json.Unmarshal(cached, &d); err == nil {
				return withLocale(&d, opts.Locale), true, nil
			}
			// If deserialization fails, fall through to decode
		}
	}

	decoded, err := dataset.Decode(data, dataset.FormatOf(opts.Source))
	if err != nil {
		return nil, false, errors.Wrap(errors.GetCode(err), err, "%s", opts.Source)
	}
	if enc, err := json.Marshal(decoded); err == nil {
		if err := r.datasets.Set(ctx, key, enc, cache.DefaultTTL); err != nil {
			r.Logger.Debug("cache dataset", "error", err)
		}
	}
	return withLocale(decoded, opts.Locale), false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	ds, _, err := r.LoadWithCacheInfo(ctx, opts)
	return ds, err
}

func withLocale(ds *dataset.Dataset, locale string) *dataset.Dataset {
	if locale != "" {
		ds.Locale = locale
	}
	return ds
}

// Select resolves the chart and counter names in opts against ds. With no
// names at all, everything is selected; naming only charts selects no
// counters and vice versa.
func Select(ds *dataset.Dataset, opts Options) ([]*dataset.Chart, []*dataset.Counter, error) {
	var (
		charts   []*dataset.Chart
		counters []*dataset.Counter
	)
	if len(opts.Charts) == 0 && len(opts.Counters) == 0 {
		for i := range ds.Counters {
			counters = append(counters, &ds.Counters[i])
		}
		for i := range ds.Charts {
			charts = append(charts, &ds.Charts[i])
		}
		return charts, counters, nil
	}
	for _, n := range opts.Counters {
		c, err := ds.Counter(n)
		if err != nil {
			return nil, nil, err
		}
		counters = append(counters, c)
	}
	for _, n := range opts.Charts {
		c, err := ds.Chart(n)
		if err != nil {
			return nil, nil, err
		}
		charts = append(charts, c)
	}
	return charts, counters, nil
}

// contentKey identifies everything about an item that changes its bytes
// apart from the fields in cache.ArtifactKeyOpts.
type contentKey struct {
	Kind      string  `json:"kind"`
	Item      any     `json:"item"`
	Threshold float64 `json:"threshold,omitempty"`
	Title     string  `json:"title,omitempty"`
}

// RenderChartWithCacheInfo renders one chart in every requested format and
// reports whether all of them came from cache.
func (r *Runner) RenderChartWithCacheInfo(ctx context.Context, ds *dataset.Dataset, c *dataset.Chart, opts Options) ([]Artifact, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash := cache.HashJSON(contentKey{Kind: KindChart, Item: c, Threshold: opts.Threshold, Title: opts.Title})
	return r.renderCached(ctx, KindChart, c.Name, hash, ds.Locale, opts.Formats, opts, func() (map[render.Format][]byte, error) {
		scene, timing := ChartScene(c, opts)
		return render.Chart(scene, timing, opts.Formats, opts.renderOptions(ds.Locale))
	})
}

// RenderChart is a convenience wrapper that calls RenderChartWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderChart(ctx context.Context, ds *dataset.Dataset, c *dataset.Chart, opts Options) ([]Artifact, error) {
	arts, _, err := r.RenderChartWithCacheInfo(ctx, ds, c, opts)
	return arts, err
}

// RenderCounterWithCacheInfo renders one counter in every requested format
// and reports whether all of them came from cache.
func (r *Runner) RenderCounterWithCacheInfo(ctx context.Context, ds *dataset.Dataset, c *dataset.Counter, opts Options) ([]Artifact, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash := cache.HashJSON(contentKey{Kind: KindCounter, Item: c, Threshold: opts.Threshold, Title: opts.Title})
	return r.renderCached(ctx, KindCounter, c.Name, hash, ds.Locale, opts.Formats, opts, func() (map[render.Format][]byte, error) {
		return render.Counter(CounterView(ds, c, opts), opts.Formats, opts.renderOptions(ds.Locale))
	})
}

// RenderCounter is a convenience wrapper that calls RenderCounterWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderCounter(ctx context.Context, ds *dataset.Dataset, c *dataset.Counter, opts Options) ([]Artifact, error) {
	arts, _, err := r.RenderCounterWithCacheInfo(ctx, ds, c, opts)
	return arts, err
}

// Page renders the selection as one HTML page whose elements reveal
// themselves as the reader scrolls.
func (r *Runner) Page(ctx context.Context, ds *dataset.Dataset, charts []*dataset.Chart, counters []*dataset.Counter, opts Options) ([]byte, error) {
	a, _, err := r.pageWithCacheInfo(ctx, ds, charts, counters, opts)
	return a.Data, err
}

func (r *Runner) pageWithCacheInfo(ctx context.Context, ds *dataset.Dataset, charts []*dataset.Chart, counters []*dataset.Counter, opts Options) (Artifact, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Artifact{}, false, err
	}
	// The page always animates.
	opts.Animated, opts.Hidden = true, false
	formats := []render.Format{render.FormatHTML}
	hash := cache.HashJSON(contentKey{Kind: KindPage, Item: []any{charts, counters}, Threshold: opts.Threshold, Title: opts.Title})
	arts, hit, err := r.renderCached(ctx, KindPage, KindPage, hash, ds.Locale, formats, opts, func() (map[render.Format][]byte, error) {
		page := sink.Page{
			Title:            cmp.Or(opts.Title, DefaultTitle),
			Lang:             cmp.Or(ds.Locale, "en"),
			Timing:           piechart.DefaultTiming(),
			ChartThreshold:   opts.Threshold,
			CounterThreshold: opts.Threshold,
		}
		for _, c := range counters {
			page.Counters = append(page.Counters, CounterView(ds, c, opts))
		}
		for _, c := range charts {
			s, _ := ChartScene(c, opts)
			page.Charts = append(page.Charts, s)
		}
		data, err := sink.RenderHTML(page)
		return map[render.Format][]byte{render.FormatHTML: data}, err
	})
	if err != nil {
		return Artifact{}, false, err
	}
	return arts[0], hit, nil
}

// Report renders the selection as one PDF document.
func (r *Runner) Report(ctx context.Context, ds *dataset.Dataset, charts []*dataset.Chart, counters []*dataset.Counter, opts Options) ([]byte, error) {
	a, _, err := r.reportWithCacheInfo(ctx, ds, charts, counters, opts)
	return a.Data, err
}

func (r *Runner) reportWithCacheInfo(ctx context.Context, ds *dataset.Dataset, charts []*dataset.Chart, counters []*dataset.Counter, opts Options) (Artifact, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Artifact{}, false, err
	}
	// Paper cannot animate; an animated request prints the settled state.
	if opts.Animated {
		opts.Animated, opts.Frame = false, 0
	}
	formats := []render.Format{render.FormatPDF}
	hash := cache.HashJSON(contentKey{Kind: KindReport, Item: []any{charts, counters}, Title: opts.Title})
	arts, hit, err := r.renderCached(ctx, KindReport, KindReport, hash, ds.Locale, formats, opts, func() (map[render.Format][]byte, error) {
		var (
			scenes []piechart.Scene
			views  []sink.CounterView
		)
		for _, c := range counters {
			views = append(views, CounterView(ds, c, opts))
		}
		for _, c := range charts {
			s, _ := ChartScene(c, opts)
			scenes = append(scenes, s)
		}
		data, err := sink.RenderPDF(scenes, views, sink.WithPDFTitle(cmp.Or(opts.Title, DefaultTitle)))
		return map[render.Format][]byte{render.FormatPDF: data}, err
	})
	if err != nil {
		return Artifact{}, false, err
	}
	return arts[0], hit, nil
}

// renderCached returns the artifacts of one item, from cache when every
// format is cached and from fn otherwise.
func (r *Runner) renderCached(ctx context.Context, kind, name, hash, locale string, formats []render.Format, opts Options,
	fn func() (map[render.Format][]byte, error)) (arts []Artifact, hit bool, err error) {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	label := kind + "/" + name
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, label, names)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, label, names, time.Since(start), err)
	}()

	keys := make([]string, len(formats))
	for i, f := range formats {
		keys[i] = r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(f, locale, buildinfo.Version))
	}

	// Try to get all formats from cache
	if !opts.Refresh {
		for i, f := range formats {
			data, ok, err := r.artifacts.Get(ctx, keys[i])
			if err != nil || !ok {
				arts = nil
				break
			}
			arts = append(arts, Artifact{Kind: kind, Name: name, Format: f, Data: data, Cached: true})
		}
		if len(arts) == len(formats) {
			r.Logger.Debug("cache hit", "item", label)
			return arts, true, nil
		}
	}

	rendered, err := fn()
	if err != nil {
		return nil, false, err
	}
	arts = arts[:0]
	for i, f := range formats {
		data := rendered[f]
		if err := r.artifacts.Set(ctx, keys[i], data, cache.DefaultTTL); err != nil {
			r.Logger.Debug("cache artifact", "item", label, "format", f, "error", err)
		}
		arts = append(arts, Artifact{Kind: kind, Name: name, Format: f, Data: data})
	}
	r.Logger.Debug("rendered", "item", label, "formats", names)
	return arts, false, nil
}

// ChartScene builds c on a virtual clock and returns its scene at the point
// of the reveal opts select, together with its timing.
func ChartScene(c *dataset.Chart, opts Options) (piechart.Scene, piechart.Timing) {
	clock := schedule.NewVirtual()
	chart := c.New(clock)
	defer chart.Close()

	if opts.Mode() != ModeFrame {
		return chart.Scene(), chart.Timing()
	}
	chart.Reveal()
	elapsed := opts.Frame
	if elapsed <= 0 {
		elapsed = chart.Timing().TotalDuration(len(c.Segments))
	}
	clock.Advance(elapsed)
	return chart.Scene(), chart.Timing()
}

// CounterView builds c in ds's locale and returns the view at the point of
// the count-up opts select.
func CounterView(ds *dataset.Dataset, c *dataset.Counter, opts Options) sink.CounterView {
	a := c.New(schedule.NewVirtual(), ds.Formatter())
	defer a.Close()

	v := sink.CounterViewOf(c.Name, c.Label, a)
	if opts.Mode() == ModeFrame {
		elapsed := opts.Frame
		if elapsed <= 0 {
			elapsed = a.End()
		}
		v.Frame = a.FrameAt(elapsed)
	}
	return v
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
