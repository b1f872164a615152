package pipeline

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/synmed/synviz/pkg/cache"
	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/render"
)

const testDataset = `locale = "en"

[[counter]]
name = "members"
label = "Members"
target = 1200
suffix = "+"
duration = "1s"
steps = 10

[[chart]]
name = "split"
title = "Split"

  [[chart.segment]]
  label = "A"
  percentage = 60

  [[chart.segment]]
  label = "B"
  percentage = 40
`

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"animated and hidden", Options{Animated: true, Hidden: true}, errors.ErrCodeInvalidInput},
		{"negative frame", Options{Frame: -time.Second}, errors.ErrCodeInvalidInput},
		{"threshold above one", Options{Threshold: 1.5}, errors.ErrCodeInvalidInput},
		{"negative scale", Options{Scale: -1}, errors.ErrCodeInvalidInput},
		{"scale above max", Options{Scale: MaxScale + 1}, errors.ErrCodeInvalidInput},
		{"NaN scale", Options{Scale: math.NaN()}, errors.ErrCodeInvalidInput},
		{"unknown locale", Options{Locale: "fr"}, errors.ErrCodeInvalidLocale},
		{"bad chart name", Options{Charts: []string{"Not OK"}}, errors.ErrCodeInvalidName},
		{"bad format", Options{Formats: []render.Format{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}

	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != render.FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
	if opts.Mode() != ModeFrame {
		t.Errorf("Mode() = %s, want frame", opts.Mode())
	}
}

func TestExecuteBuiltin(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{
		Formats: []render.Format{render.FormatSVG, render.FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Charts != 2 || res.Stats.Counters != 1 {
		t.Errorf("stats = %+v, want 2 charts, 1 counter", res.Stats)
	}
	var names []string
	for _, a := range res.Artifacts {
		names = append(names, a.Kind+":"+a.Filename())
	}
	want := "counter:contribution.svg counter:contribution.json chart:states.svg chart:states.json chart:sectors.svg chart:sectors.json"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("artifacts = %s\nwant        %s", got, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExecuteCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(c)
	opts := Options{Source: writeDataset(t, testDataset), Formats: []render.Format{render.FormatSVG, render.FormatPNG}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.DatasetHit || first.CacheInfo.ArtifactHits != 0 || first.CacheInfo.ArtifactMisses != 2 {
		t.Errorf("first run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.DatasetHit || second.CacheInfo.ArtifactHits != 2 {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	for i, a := range second.Artifacts {
		if !a.Cached {
			t.Errorf("%s not served from cache", a.Filename())
		}
		if !bytes.Equal(a.Data, first.Artifacts[i].Data) {
			t.Errorf("%s differs from the first run", a.Filename())
		}
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.DatasetHit || third.CacheInfo.ArtifactHits != 0 {
		t.Errorf("refresh run cache info = %+v", third.CacheInfo)
	}

	// A different mode is a different artifact.
	opts.Refresh, opts.Animated = false, true
	fourth, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.ArtifactHits != 0 {
		t.Errorf("animated run hit the frame-mode cache: %+v", fourth.CacheInfo)
	}
}

func TestExecuteSelection(t *testing.T) {
	r := quietRunner(nil)
	src := writeDataset(t, testDataset)

	res, err := r.Execute(context.Background(), Options{Source: src, Charts: []string{"split"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Artifacts) != 1 || res.Artifacts[0].Name != "split" {
		t.Errorf("artifacts = %+v, want split only", res.Artifacts)
	}

	_, err = r.Execute(context.Background(), Options{Source: src, Charts: []string{"missing"}})
	if !errors.Is(err, errors.ErrCodeChartNotFound) {
		t.Errorf("err = %v, want CHART_NOT_FOUND", err)
	}
	_, err = r.Execute(context.Background(), Options{Source: src, Counters: []string{"missing"}})
	if !errors.Is(err, errors.ErrCodeCounterNotFound) {
		t.Errorf("err = %v, want COUNTER_NOT_FOUND", err)
	}
}

func TestLoadErrors(t *testing.T) {
	r := quietRunner(nil)
	ctx := context.Background()

	_, err := r.Load(ctx, Options{Source: filepath.Join(t.TempDir(), "nope.toml")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}

	_, err = r.Load(ctx, Options{Source: writeDataset(t, "[[chart]\nname =")})
	if !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Errorf("malformed file: err = %v, want INVALID_DATASET", err)
	}

	ds, err := r.Load(ctx, Options{Locale: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if ds.Locale != "hi" {
		t.Errorf("Locale = %q, want hi", ds.Locale)
	}
}

func TestChartSceneModes(t *testing.T) {
	r := quietRunner(nil)
	ds, err := r.Load(context.Background(), Options{Source: writeDataset(t, testDataset)})
	if err != nil {
		t.Fatal(err)
	}
	c := &ds.Charts[0]

	hidden, _ := ChartScene(c, Options{Hidden: true})
	if hidden.Revealed || hidden.Slices[0].Opacity != 0 {
		t.Errorf("hidden scene = %+v", hidden.Slices[0])
	}

	animated, _ := ChartScene(c, Options{Animated: true})
	if animated.Revealed {
		t.Error("animated scene starts revealed")
	}

	settled, timing := ChartScene(c, Options{})
	if !settled.Done() {
		t.Errorf("settled scene not done after %v", timing.TotalDuration(2))
	}

	mid, _ := ChartScene(c, Options{Frame: 150 * time.Millisecond})
	if p := mid.Slices[0].Progress; p <= 0 || p >= 1 {
		t.Errorf("slice 0 progress at 150ms = %v, want in (0,1)", p)
	}
	if mid.Slices[1].Progress != 0 {
		t.Errorf("slice 1 progress at its start = %v, want 0", mid.Slices[1].Progress)
	}
}

func TestCounterView(t *testing.T) {
	r := quietRunner(nil)
	ds, err := r.Load(context.Background(), Options{Source: writeDataset(t, testDataset)})
	if err != nil {
		t.Fatal(err)
	}
	c := &ds.Counters[0]

	tests := []struct {
		opts Options
		want string
		done bool
	}{
		{Options{Hidden: true}, "0+", false},
		{Options{Frame: 500 * time.Millisecond}, "600+", false},
		{Options{}, "1,200+", true},
	}
	for _, tt := range tests {
		v := CounterView(ds, c, tt.opts)
		if v.Frame.Text != tt.want || v.Frame.Done != tt.done {
			t.Errorf("%s: frame = %+v, want %q done=%v", tt.opts.Mode(), v.Frame, tt.want, tt.done)
		}
	}
	v := CounterView(ds, c, Options{Animated: true})
	if len(v.Texts) != 11 || v.Texts[10] != "1,200+" || v.Interval != 100*time.Millisecond {
		t.Errorf("animated view = %+v", v)
	}
}

func TestPageAndReport(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{
		Source: writeDataset(t, testDataset),
		Title:  "Landing",
		Page:   true,
		Report: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	n := len(res.Artifacts)
	if n != 4 {
		t.Fatalf("artifacts = %d, want 4", n)
	}
	page, report := res.Artifacts[n-2], res.Artifacts[n-1]
	if page.Kind != KindPage || page.Filename() != "page.html" {
		t.Errorf("page artifact = %s/%s", page.Kind, page.Filename())
	}
	if !bytes.HasPrefix(page.Data, []byte("<!DOCTYPE html>")) || !bytes.Contains(page.Data, []byte("Landing")) {
		t.Error("page is not the landing HTML")
	}
	if report.Kind != KindReport || !bytes.HasPrefix(report.Data, []byte("%PDF")) {
		t.Errorf("report artifact = %s, prefix %q", report.Kind, report.Data[:min(8, len(report.Data))])
	}
}

func TestWarningsDoNotFail(t *testing.T) {
	r := quietRunner(nil)
	src := writeDataset(t, `[[chart]]
name = "short"

  [[chart.segment]]
  label = "A"
  percentage = 50

  [[chart.segment]]
  label = "B"
  percentage = 40
`)
	res, err := r.Execute(context.Background(), Options{Source: src})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) == 0 {
		t.Error("no warning for a 90% chart")
	}
	if len(res.Artifacts) != 1 {
		t.Errorf("artifacts = %d, want 1", len(res.Artifacts))
	}
}
