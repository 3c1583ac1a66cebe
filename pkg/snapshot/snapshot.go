// Package snapshot persists layout snapshots for hosts.
//
// The layout core never persists anything itself; hosts save and restore
// layout.Snapshot values through a Store. Implementations cover the usual
// deployment shapes:
//   - memory: in-process, for tests and ephemeral sessions
//   - null: persistence disabled
//   - file: JSON files, for the CLI and single-node servers
//   - redis: shared storage for multi-instance servers
//   - mongo: document storage alongside other plant data
//
// Snapshots are stored under a name, one per shop floor. Names are validated
// with errors.ValidateSnapshotName by every backend.
//
// # Usage
//
//	store, err := snapshot.Open(ctx, cfg.Store)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	snap, err := store.Load(ctx, "default")
//	if err != nil {
//	    return err
//	}
//	if snap == nil {
//	    // nothing saved yet; seed the default floor
//	}
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/layout"
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Load retrieves a snapshot by name.
	// Returns nil, nil if no snapshot is stored under name.
	Load(ctx context.Context, name string) (*layout.Snapshot, error)

	// Save stores snap under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, snap *layout.Snapshot) error

	// Delete removes the snapshot. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Encode returns the canonical JSON encoding of snap.
func Encode(snap *layout.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (*layout.Snapshot, error) {
	var snap layout.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse snapshot")
	}
	return &snap, nil
}

// Digest returns the SHA-256 of the snapshot encoding as 64 hex characters.
// Equal layouts have equal digests, which the HTTP host uses as an ETag.
func Digest(snap *layout.Snapshot) string {
	data, err := Encode(snap)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func validName(name string) error {
	return errors.ValidateSnapshotName(name)
}
