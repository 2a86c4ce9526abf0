package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/snonux/signspeak/internal/processor"
)

// Pipeline runs the speech-to-sign pipeline
type Pipeline interface {
	Listen(ctx context.Context) processor.Response
	Render(ctx context.Context, text string) processor.Response
}

// Config holds HTTP settings
type Config struct {
	Addr           string
	MediaDir       string  // Directory with generated animations
	PublicURL      string  // URL prefix the media directory is served under
	RateLimit      float64 // Pipeline requests per second, 0 disables limiting
	RateBurst      int
	VocabularySize int // Reported by /healthz
}

// Server serves the pipeline over HTTP
type Server struct {
	cfg      Config
	pipeline Pipeline
	metrics  http.Handler
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates a server. metrics may be nil.
func New(cfg Config, pipeline Pipeline, metrics http.Handler, logger *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "/media/"
	}
	if !strings.HasSuffix(cfg.PublicURL, "/") {
		cfg.PublicURL += "/"
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return s
}

// Handler returns the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/listen", s.handleListen)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/{$}", s.handleIndex)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}

	// Only a local path prefix can be served from the media directory
	if strings.HasPrefix(s.cfg.PublicURL, "/") && s.cfg.MediaDir != "" {
		files := http.FileServer(filesOnly{http.Dir(s.cfg.MediaDir)})
		mux.Handle(s.cfg.PublicURL, http.StripPrefix(s.cfg.PublicURL, files))
	}
	return mux
}

// filesOnly hides directories so the media folder cannot be listed
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("server started", slog.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleListen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"success": false, "error": "too many requests"})
		return
	}

	var resp processor.Response
	if text := r.FormValue("text"); text != "" {
		resp = s.pipeline.Render(r.Context(), text)
	} else {
		resp = s.pipeline.Listen(r.Context())
	}

	// Pipeline failures are part of the normal response body
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"vocabulary": s.cfg.VocabularySize,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
