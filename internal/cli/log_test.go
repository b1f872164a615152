package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Rendered 3 files")

	if !strings.Contains(buf.String(), "Rendered 3 files (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.DebugLevel))
	ctx := context.Background()

	h.OnTriggerFired("states", 0.42)
	h.OnChartRevealed("states", 5)
	h.OnCounterStart(50000, 60, 2*time.Second)
	h.OnCounterComplete(50000)
	h.OnLoadComplete(ctx, "landing.toml", 2, 1, time.Millisecond, nil)
	h.OnLoadComplete(ctx, "broken.toml", 0, 0, time.Millisecond, errors.New("boom"))
	h.OnRenderStart(ctx, "chart/states", []string{"svg"})
	h.OnRenderComplete(ctx, "chart/states", []string{"svg"}, time.Millisecond, nil)
	h.OnCacheHit(ctx, "artifact")
	h.OnCacheMiss(ctx, "dataset")
	h.OnCacheSet(ctx, "artifact", 512)
	h.OnRequest(ctx, "GET", "/")
	h.OnResponse(ctx, "GET", "/", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"chart revealed", "count-up complete", "load failed", "cache hit", "served"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}
