// Package server exposes the ledger over HTTP for an external editing grid and
// visualization front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/importer"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// maxUploadBytes bounds request bodies for diffs and file imports.
const maxUploadBytes = 32 << 20

// DiffApplier applies editing-surface diffs.
type DiffApplier interface {
	ApplyDiff(ctx context.Context, diff model.Diff) (*engine.DiffResult, error)
}

// FileImporter imports a bank export held in memory.
type FileImporter interface {
	ImportReader(ctx context.Context, format string, r io.Reader) (*importer.Result, error)
}

// Handler serves the HTTP API. One value holds every injected dependency.
type Handler struct {
	ledger        service.Ledger
	diffs         DiffApplier
	imports       FileImporter
	logger        *slog.Logger
	defaultFormat string
}

// NewHandler creates the API handler. defaultFormat is used for imports that do not
// name one.
func NewHandler(ledger service.Ledger, diffs DiffApplier, imports FileImporter, defaultFormat string) *Handler {
	return &Handler{
		ledger:        ledger,
		diffs:         diffs,
		imports:       imports,
		defaultFormat: defaultFormat,
		logger:        slog.Default().With("component", "server"),
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", h.listTransactions)
		r.Delete("/transactions", h.clearTransactions)
		r.Post("/diff", h.applyDiff)
		r.Post("/import", h.importFile)
		r.Get("/summary", h.summary)
	})

	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Serve runs the API on addr until ctx is canceled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
