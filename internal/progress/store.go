// Package progress persists the single resumable snapshot each
// assessment type keeps on this client. One slot per type, not a
// history: starting a second session of the same type overwrites the
// first's only resumption path, by design.
package progress

import "context"

// Store is one assessment type's snapshot slot.
//
// Only the session controller and the resume resolver touch a Store;
// nothing else reads or writes the durable copy.
type Store interface {
	// Save overwrites the slot with the given snapshot, stamping
	// SavedAt and SchemaVersion.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the stored snapshot, or nil if the slot is empty,
	// the snapshot has outlived the retention window (in which case the
	// slot is also cleared), or its schema version is unknown. When
	// expectedSessionID is non-empty, a snapshot for any other session
	// is reported as absent without being cleared.
	Load(ctx context.Context, expectedSessionID string) (*Snapshot, error)

	// Clear empties the slot.
	Clear(ctx context.Context) error

	// Exists is a cheap existence probe; it does not apply retention.
	Exists(ctx context.Context) (bool, error)
}
