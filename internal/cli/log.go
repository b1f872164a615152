// Package cli implements the synviz command-line interface.
//
// The commands load a dataset (a TOML file, or the built-in landing page
// data when none is given), build its charts and counters and present them:
// as files, as a live terminal preview or through a local HTTP server. The
// CLI is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Write SVG, HTML, PNG, PDF or JSON for each chart and counter
//   - frames: Print a counter's count-up sequence
//   - preview: Scroll through the data section in the terminal
//   - serve: Serve the data section and its artifacts over HTTP
//   - validate: Report problems in a dataset
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports animation, pipeline and cache events. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered 6 artifacts (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports library events at debug level.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks { return &logHooks{logger: l} }

func (h *logHooks) OnTriggerFired(region string, ratio float64) {
	h.logger.Debug("visible", "region", region, "ratio", ratio)
}

func (h *logHooks) OnCounterStart(target, steps int, d time.Duration) {
	h.logger.Debug("count-up started", "target", target, "steps", steps, "duration", d)
}

func (h *logHooks) OnCounterComplete(target int) {
	h.logger.Debug("count-up complete", "target", target)
}

func (h *logHooks) OnChartRevealed(id string, segments int) {
	h.logger.Debug("chart revealed", "chart", id, "segments", segments)
}

func (h *logHooks) OnLoadComplete(_ context.Context, source string, charts, counters int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "error", err)
		return
	}
	h.logger.Debug("dataset loaded", "source", source, "charts", charts, "counters", counters, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, name string, formats []string) {
	h.logger.Debug("render", "item", name, "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, name string, _ []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "item", name, "error", err)
		return
	}
	h.logger.Debug("render done", "item", name, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("served", "method", method, "path", path, "status", status, "duration", d.Round(time.Microsecond))
}
