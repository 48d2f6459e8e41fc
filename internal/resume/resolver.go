// Package resume decides how a session initializes: silently restoring
// a local snapshot, surfacing a cross-device conflict for the user to
// settle, refusing a dead resume target, or doing nothing. The decision
// is an explicit value consumed by the host; the resolver never
// navigates or mutates session state itself.
package resume

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkrish/proctor/internal/progress"
	"github.com/dkrish/proctor/internal/provider"
)

// Decision tags the resolver's verdict.
type Decision int

const (
	// NoAction: no resume was requested and no local snapshot exists.
	// Start a fresh session.
	NoAction Decision = iota

	// ResumeWithSnapshot: a matching local snapshot exists and the
	// provider still reports the test in progress. Restore cursor,
	// answers, and remaining time verbatim.
	ResumeWithSnapshot

	// CrossDeviceConflict: the provider reports the test in progress
	// but this client holds no record of it. The countdown and answers
	// lived only on the originating device, so the host must ask the
	// user: restart the same test with a fresh time budget, or abandon
	// it and start an unrelated new session.
	CrossDeviceConflict

	// Unresumable: the provider reports the test expired, completed,
	// or unknown. Any stale local snapshot has been cleared.
	Unresumable
)

func (d Decision) String() string {
	switch d {
	case NoAction:
		return "no-action"
	case ResumeWithSnapshot:
		return "resume-with-snapshot"
	case CrossDeviceConflict:
		return "cross-device-conflict"
	case Unresumable:
		return "unresumable"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Outcome carries the decision and whatever material supports it.
type Outcome struct {
	Decision Decision

	// Snapshot is set for ResumeWithSnapshot.
	Snapshot *progress.Snapshot

	// Test is the provider's view of the resume target, set for
	// ResumeWithSnapshot and CrossDeviceConflict.
	Test *provider.Test

	// Reason explains an Unresumable decision.
	Reason error
}

// Resolver computes resume decisions for one assessment type's slot.
type Resolver struct {
	store    progress.Store
	provider provider.Provider
	ownerID  string
	now      func() time.Time
}

// NewResolver creates a Resolver for the given owner and slot.
func NewResolver(store progress.Store, prov provider.Provider, ownerID string) *Resolver {
	return &Resolver{
		store:    store,
		provider: prov,
		ownerID:  ownerID,
		now:      time.Now,
	}
}

// Resolve decides how to initialize, given an optionally requested
// resume target. An empty requestedSessionID with a local snapshot
// present is treated as an implicit resume request for that session,
// so a second conflicting session is never started silently.
func (r *Resolver) Resolve(ctx context.Context, requestedSessionID string) (Outcome, error) {
	snap, err := r.store.Load(ctx, "")
	if err != nil {
		return Outcome{}, fmt.Errorf("load local snapshot: %w", err)
	}

	// A snapshot recorded for a different owner is never resumed.
	if snap != nil && snap.OwnerID != r.ownerID {
		snap = nil
	}

	if requestedSessionID == "" {
		if snap == nil {
			return Outcome{Decision: NoAction}, nil
		}
		requestedSessionID = snap.SessionID
	}

	test, err := r.provider.GetTest(ctx, requestedSessionID)
	if err != nil {
		var expired *provider.ErrSessionExpired
		var notResumable *provider.ErrSessionNotResumable
		if errors.As(err, &expired) || errors.As(err, &notResumable) {
			r.clearStale(ctx, snap, requestedSessionID)
			return Outcome{Decision: Unresumable, Reason: err}, nil
		}
		// Provider outage during resolution is surfaced, not mapped to
		// a fresh session: the user must choose explicitly.
		return Outcome{}, fmt.Errorf("validate resume target: %w", err)
	}

	if !test.InProgress(r.now()) {
		r.clearStale(ctx, snap, requestedSessionID)
		if test.Status == provider.StatusInProgress {
			return Outcome{Decision: Unresumable, Reason: &provider.ErrSessionExpired{TestID: test.ID}}, nil
		}
		return Outcome{Decision: Unresumable, Reason: &provider.ErrSessionNotResumable{TestID: test.ID, Status: test.Status}}, nil
	}

	if snap != nil && snap.SessionID == requestedSessionID {
		return Outcome{Decision: ResumeWithSnapshot, Snapshot: snap, Test: test}, nil
	}
	return Outcome{Decision: CrossDeviceConflict, Test: test}, nil
}

// clearStale removes the local snapshot when it refers to the dead
// resume target.
func (r *Resolver) clearStale(ctx context.Context, snap *progress.Snapshot, sessionID string) {
	if snap != nil && snap.SessionID == sessionID {
		_ = r.store.Clear(ctx)
	}
}
