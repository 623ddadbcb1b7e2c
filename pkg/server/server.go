package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tagtree/pkg/archive"
	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/render"
	"github.com/matzehuels/tagtree/pkg/render/nodelink"
)

// DefaultListLimit caps /api/runs when no limit is given.
const DefaultListLimit = 50

// SnapshotFunc returns the latest settled tree, or false before the first
// phase has finished.
type SnapshotFunc func() (graph.Snapshot, bool)

// Server serves board, graph and archive endpoints.
type Server struct {
	Board   *render.Board
	Graph   SnapshotFunc
	Archive archive.Store
	Logger  *log.Logger
}

// New returns a server over the given sources. Any of them may be nil.
func New(board *render.Board, snap SnapshotFunc, store archive.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{Board: board, Graph: snap, Archive: store, Logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/board", s.handleBoard)
		r.Get("/graph", s.handleGraph)
		r.Get("/graph.svg", s.handleGraphImage("svg"))
		r.Get("/graph.pdf", s.handleGraphImage("pdf"))
		r.Get("/graph.png", s.handleGraphImage("png"))
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.Logger.Info("Serving", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	if s.Board == nil {
		writeError(w, http.StatusNotFound, "no live board")
		return
	}
	writeJSON(w, http.StatusOK, s.Board.Snapshot())
}

func (s *Server) snapshot(w http.ResponseWriter) (graph.Snapshot, bool) {
	if s.Graph == nil {
		writeError(w, http.StatusNotFound, "no run attached")
		return graph.Snapshot{}, false
	}
	snap, ok := s.Graph()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "tree has not settled yet")
		return graph.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

var imageTypes = map[string]string{
	"svg": "image/svg+xml",
	"pdf": "application/pdf",
	"png": "image/png",
}

func (s *Server) handleGraphImage(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := s.snapshot(w)
		if !ok {
			return
		}
		dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: r.URL.Query().Get("detailed") == "1"})

		var data []byte
		var err error
		switch format {
		case "pdf":
			data, err = nodelink.RenderPDF(dot)
		case "png":
			data, err = nodelink.RenderPNG(dot, 2)
		default:
			data, err = nodelink.RenderSVG(dot)
		}
		if err != nil {
			s.Logger.Error("Render failed", "format", format, "error", err)
			writeError(w, http.StatusInternalServerError, "render failed")
			return
		}
		w.Header().Set("Content-Type", imageTypes[format])
		w.Write(data)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeError(w, http.StatusNotFound, "no archive configured")
		return
	}
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.Archive.List(r.Context(), limit)
	if err != nil {
		s.Logger.Error("List runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []archive.Record{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeError(w, http.StatusNotFound, "no archive configured")
		return
	}
	rec, err := s.Archive.Load(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, archive.ErrNotFound):
		writeError(w, http.StatusNotFound, "run not found")
	case err != nil:
		s.Logger.Error("Load run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "load run failed")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("HTTP", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
