// Package server serves a dataset's data section over HTTP for previewing
// the reveal animations in a browser.
//
// Routes:
//
//	GET /                        the landing data section as one HTML page
//	GET /dataset.json            the decoded dataset and its warnings
//	GET /charts/{name}.{ext}     one chart in svg, html, png, pdf or json
//	GET /counters/{name}.{ext}   one counter in svg, html, png, pdf or json
//	GET /healthz                 liveness
//
// Chart and counter routes take optional query parameters: mode (animated,
// hidden or frame), t (time after the reveal, e.g. "600ms", for frame mode)
// and scale. SVG and HTML default to animated, the other formats to the
// settled frame.
//
// The dataset file is re-read on every request, so edits show up on reload;
// the runner's dataset cache keeps unchanged files cheap.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/synmed/synviz/pkg/dataset"
	serrors "github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/observability"
	"github.com/synmed/synviz/pkg/pipeline"
	"github.com/synmed/synviz/pkg/render"
)

// RequestIDHeader carries the ID assigned to each request.
const RequestIDHeader = "X-Request-Id"

// Server is the preview HTTP server.
type Server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
	router chi.Router
}

// New creates a server rendering with runner. base supplies the dataset
// source, locale, title, threshold and refresh settings for every request.
func New(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, base: base, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/dataset.json", s.handleDataset)
	r.Get("/charts/{name}.{ext}", s.handleChart)
	r.Get("/counters/{name}.{ext}", s.handleCounter)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, serrors.New(serrors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})

	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	opts := s.base
	ds, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	charts, counters, err := pipeline.Select(ds, pipeline.Options{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.runner.Page(r.Context(), ds, charts, counters, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBody(w, render.FormatHTML, data, false)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.runner.Load(r.Context(), s.base)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Dataset  *dataset.Dataset  `json:"dataset"`
		Warnings []dataset.Warning `json:"warnings"`
	}{ds, ds.Validate()})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	opts, ds, err := s.prepare(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := ds.Chart(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	arts, err := s.runner.RenderChart(r.Context(), ds, c, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBody(w, arts[0].Format, arts[0].Data, arts[0].Cached)
}

func (s *Server) handleCounter(w http.ResponseWriter, r *http.Request) {
	opts, ds, err := s.prepare(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := ds.Counter(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	arts, err := s.runner.RenderCounter(r.Context(), ds, c, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBody(w, arts[0].Format, arts[0].Data, arts[0].Cached)
}

// prepare parses the format and query of an item request and loads the
// dataset.
func (s *Server) prepare(r *http.Request) (pipeline.Options, *dataset.Dataset, error) {
	format, err := render.ParseFormat(chi.URLParam(r, "ext"))
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	opts := s.base
	opts.Formats = []render.Format{format}
	if err := applyQuery(&opts, format, r); err != nil {
		return pipeline.Options{}, nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, nil, err
	}
	ds, err := s.runner.Load(r.Context(), opts)
	return opts, ds, err
}

// applyQuery sets the render mode, frame time and scale from the query.
func applyQuery(opts *pipeline.Options, format render.Format, r *http.Request) error {
	q := r.URL.Query()
	mode := pipeline.Mode(q.Get("mode"))
	if mode == "" {
		mode = pipeline.ModeFrame
		if format == render.FormatSVG || format == render.FormatHTML {
			mode = pipeline.ModeAnimated
		}
	}
	opts.Animated, opts.Hidden = false, false
	switch mode {
	case pipeline.ModeAnimated:
		opts.Animated = true
	case pipeline.ModeHidden:
		opts.Hidden = true
	case pipeline.ModeFrame:
	default:
		return serrors.New(serrors.ErrCodeInvalidInput, "invalid mode %q (must be one of: animated, hidden, frame)", mode)
	}
	if t := q.Get("t"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return serrors.Wrap(serrors.ErrCodeInvalidInput, err, "invalid frame time %q", t)
		}
		opts.Frame = d
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return serrors.Wrap(serrors.ErrCodeInvalidInput, err, "invalid scale %q", v)
		}
		if !(scale > 0 && scale <= pipeline.MaxScale) {
			return serrors.New(serrors.ErrCodeInvalidInput, "scale %q outside (0, %v]", v, pipeline.MaxScale)
		}
		opts.Scale = scale
	}
	return nil
}

func writeBody(w http.ResponseWriter, f render.Format, data []byte, cached bool) {
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(data)
}

// errorBody is the JSON body of a failed request.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
	}
	writeJSON(w, status, errorBody{
		Error:     serrors.UserMessage(err),
		Code:      string(serrors.GetCode(err)),
		RequestID: RequestIDFrom(r.Context()),
	})
}

// statusFor maps an error code onto an HTTP status.
func statusFor(err error) int {
	switch {
	case serrors.IsNotFound(err):
		return http.StatusNotFound
	case serrors.IsInvalid(err):
		return http.StatusBadRequest
	case serrors.Is(err, serrors.ErrCodeUnsupported):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// RequestIDFrom returns the request ID stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID assigns every request a UUID, echoing a client-supplied one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// instrument reports every request to the HTTP hooks.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}
