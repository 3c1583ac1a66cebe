package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shopfloor/pkg/catalog"
	"github.com/matzehuels/shopfloor/pkg/config"
	"github.com/matzehuels/shopfloor/pkg/editor"
	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/snapshot"
)

// session bundles what every editing host needs: settings, the machine
// catalog, the snapshot store and an editor holding the current layout.
type session struct {
	cfg     config.Config
	catalog *catalog.Catalog
	store   snapshot.Store
	editor  *editor.Editor
}

// openSession loads the catalog and the persisted layout. When nothing is
// stored yet and seeding is enabled, the default floor plan is placed.
func (c *CLI) openSession(ctx context.Context, cfg config.Config, logger *log.Logger, opts ...editor.Option) (*session, error) {
	cat, err := loadCatalog(cfg.Machines)
	if err != nil {
		return nil, err
	}

	store, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	opts = append([]editor.Option{
		editor.WithLogger(logger),
		editor.WithViewportSize(geom.Size{W: cfg.Viewport.Width, H: cfg.Viewport.Height}),
	}, opts...)
	ed := editor.New(opts...)

	prog := newProgress(logger)
	snap, err := store.Load(ctx, cfg.Store.Name)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load layout %q: %w", cfg.Store.Name, err)
	}
	switch {
	case snap != nil:
		if err := ed.Restore(*snap); err != nil {
			store.Close()
			return nil, fmt.Errorf("restore layout %q: %w", cfg.Store.Name, err)
		}
		prog.done("Restored layout", "name", cfg.Store.Name, "items", len(snap.Items))
	case cfg.Layout.Seed:
		n := ed.Seed(seedsFor(cat))
		prog.done("Seeded default layout", "items", n)
	}

	return &session{cfg: cfg, catalog: cat, store: store, editor: ed}, nil
}

// Close ends any gesture and releases the store.
func (s *session) Close() error {
	s.editor.Close()
	return s.store.Close()
}

// saveSnapshot persists snap under the configured name. It does not touch
// the editor, so it may run off the UI goroutine.
func (s *session) saveSnapshot(ctx context.Context, snap *layout.Snapshot) (string, error) {
	if err := snapshot.RetryWithBackoff(ctx, func() error {
		return s.store.Save(ctx, s.cfg.Store.Name, snap)
	}); err != nil {
		return "", err
	}
	return snapshot.Digest(snap), nil
}

// openStore connects to the configured backend. Remote backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context, cfg config.Store) (snapshot.Store, error) {
	remote := cfg.Backend == config.BackendRedis || cfg.Backend == config.BackendMongo
	if !remote {
		return snapshot.Open(ctx, cfg)
	}

	spinner := newSpinnerWithContext(ctx, "Connecting to "+cfg.Backend+"...")
	spinner.Start()
	store, err := snapshot.Open(ctx, cfg)
	if err != nil {
		spinner.StopWithError("Could not connect to " + cfg.Backend)
		return nil, err
	}
	spinner.Stop()
	c.Logger.Debug("snapshot store connected", "backend", cfg.Backend)
	return store, nil
}

// loadCatalog reads the configured machine file, or returns the built-in list.
func loadCatalog(cfg config.Machines) (*catalog.Catalog, error) {
	if cfg.File == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.File)
}

// seedsFor drops seed machines the catalog does not know; labels and zones
// are kept.
func seedsFor(cat *catalog.Catalog) []layout.ItemSpec {
	var out []layout.ItemSpec
	for _, spec := range catalog.DefaultLayout() {
		if spec.Kind == layout.KindMachine {
			if _, ok := cat.Get(spec.ReferenceID); !ok {
				continue
			}
		}
		out = append(out, spec)
	}
	return out
}
