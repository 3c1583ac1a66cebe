package snapshot

import (
	"context"
	"time"

	"github.com/matzehuels/shopfloor/pkg/config"
	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/observability"
)

// Open creates the backend selected by cfg, wrapped with Instrument.
// Connecting to Redis or MongoDB is retried with backoff.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendNone:
		s = NewNullStore()
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendFile:
		fs, ferr := NewFileStore(cfg.Dir)
		if ferr != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, ferr, "open file snapshot store")
		}
		s = fs
	case config.BackendRedis:
		err = RetryWithBackoff(ctx, func() error {
			rs, rerr := NewRedisStore(ctx, cfg.Redis)
			if rerr == nil {
				s = rs
			}
			return rerr
		})
	case config.BackendMongo:
		err = RetryWithBackoff(ctx, func() error {
			ms, merr := NewMongoStore(ctx, cfg.Mongo)
			if merr == nil {
				s = ms
			}
			return merr
		})
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown snapshot backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open %s snapshot store", cfg.Backend)
	}
	return Instrument(s, cfg.Backend), nil
}

// Instrument wraps s so every Load and Save is reported to the registered
// observability store hooks under the backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Load(ctx context.Context, name string) (*layout.Snapshot, error) {
	start := time.Now()
	snap, err := s.Store.Load(ctx, name)
	observability.Store().OnSnapshotLoad(ctx, s.backend, snap != nil, time.Since(start), err)
	return snap, err
}

func (s *instrumented) Save(ctx context.Context, name string, snap *layout.Snapshot) error {
	start := time.Now()
	err := s.Store.Save(ctx, name, snap)
	size := 0
	if data, encErr := Encode(snap); encErr == nil {
		size = len(data)
	}
	observability.Store().OnSnapshotSave(ctx, s.backend, size, time.Since(start), err)
	return err
}

// Unwrap returns the underlying backend.
func (s *instrumented) Unwrap() Store { return s.Store }
