// Package server hosts a layout editing session over HTTP.
//
// A Server owns one editor.Editor and serializes every request through a
// mutex; the editor itself is single-threaded. Store writes happen after
// the mutex is released. Pointer input arrives as JSON
// events on /api/v1/layout/pointer and follows the same gesture rules as the
// terminal host.
//
// # Routes
//
//	GET    /health/live
//	GET    /health/ready
//	GET    /api/v1/layout
//	POST   /api/v1/layout/pointer
//	POST   /api/v1/layout/zoom/{action}     in | out | reset
//	PUT    /api/v1/layout/edit-mode
//	POST   /api/v1/layout/items
//	PATCH  /api/v1/layout/items/{uid}
//	DELETE /api/v1/layout/items/{uid}
//	POST   /api/v1/layout/save
//	GET    /api/v1/machines
//	GET    /metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/shopfloor/internal/metrics"
	"github.com/matzehuels/shopfloor/pkg/catalog"
	"github.com/matzehuels/shopfloor/pkg/editor"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/snapshot"
)

// Config holds server settings and collaborators.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Editor  *editor.Editor
	Catalog *catalog.Catalog
	Store   snapshot.Store
	// Name is the snapshot key the layout is saved under.
	Name string
	// Autosave persists the layout after every mutating request.
	Autosave bool

	Logger *log.Logger
	// Metrics enables /metrics when set.
	Metrics *metrics.Metrics
}

// Server is the HTTP host for one editing session.
type Server struct {
	cfg    Config
	logger *log.Logger

	mu      sync.Mutex
	editor  *editor.Editor
	catalog *catalog.Catalog
	// seq numbers captures taken under mu.
	seq uint64

	// saveMu orders store writes; savedSeq and savedDigest describe the
	// newest capture stored.
	saveMu      sync.Mutex
	savedSeq    uint64
	savedDigest string

	httpServer *http.Server
}

// New creates a server. Missing collaborators get defaults: an empty editor,
// the built-in catalog and a null snapshot store.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Editor == nil {
		cfg.Editor = editor.New(editor.WithLogger(cfg.Logger))
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = snapshot.NewNullStore()
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return &Server{
		cfg:     cfg,
		logger:  cfg.Logger,
		editor:  cfg.Editor,
		catalog: cfg.Catalog,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/layout", func(r chi.Router) {
			r.Get("/", s.handleGetLayout)
			r.Post("/pointer", s.handlePointer)
			r.Post("/zoom/{action}", s.handleZoom)
			r.Put("/edit-mode", s.handleEditMode)
			r.Post("/items", s.handleAddItem)
			r.Patch("/items/{uid}", s.handleRelabel)
			r.Delete("/items/{uid}", s.handleRemoveItem)
			r.Post("/save", s.handleSave)
		})
		r.Get("/machines", s.handleMachines)
	})

	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	return r
}

// SetCatalog swaps the machine catalog, for hot reload.
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := s.httpServer.Shutdown(shutdownCtx)
		s.mu.Lock()
		s.editor.Close()
		s.mu.Unlock()
		return err
	case err := <-errChan:
		return err
	}
}

// pendingSave is a layout captured under s.mu and written after unlocking.
type pendingSave struct {
	snap layout.Snapshot
	seq  uint64
}

// capture snapshots the layout for a later persist. Callers hold s.mu.
func (s *Server) capture() *pendingSave {
	s.seq++
	return &pendingSave{snap: s.editor.Snapshot(), seq: s.seq}
}

// persist writes p to the store without holding s.mu, so a slow backend does
// not stall other requests. Writes are serialized; a capture older than the
// last stored one is dropped and the stored digest returned.
func (s *Server) persist(ctx context.Context, p *pendingSave) (string, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if p.seq <= s.savedSeq {
		return s.savedDigest, nil
	}
	err := snapshot.RetryWithBackoff(ctx, func() error {
		return s.cfg.Store.Save(ctx, s.cfg.Name, &p.snap)
	})
	if err != nil {
		return "", err
	}
	s.savedSeq = p.seq
	s.savedDigest = snapshot.Digest(&p.snap)
	return s.savedDigest, nil
}

// mutated records a layout change and, with autosave on, captures the layout
// for autosave. Callers hold s.mu.
func (s *Server) mutated() *pendingSave {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetItems(len(s.editor.Snapshot().Items))
	}
	if !s.cfg.Autosave {
		return nil
	}
	return s.capture()
}

// autosave persists a capture from mutated; nil is a no-op. Failures are
// logged, not returned; the mutation itself already succeeded. Callers must
// not hold s.mu.
func (s *Server) autosave(ctx context.Context, p *pendingSave) {
	if p == nil {
		return
	}
	if _, err := s.persist(ctx, p); err != nil {
		s.logger.Warn("autosave failed", "name", s.cfg.Name, "err", err)
	}
}
