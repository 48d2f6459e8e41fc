package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkrish/proctor/internal/progress"
	"github.com/dkrish/proctor/internal/provider"
)

// SubmissionCoordinator turns the answer ledger into a single network
// submission with a terminal outcome. It is the only component allowed
// to clear the progress store, and it does so only after the provider
// accepts the submission: an error after submission must not delete
// answers the user cannot reproduce.
type SubmissionCoordinator struct {
	provider provider.Provider
	store    progress.Store

	clientRef string
	spent     bool
}

// NewSubmissionCoordinator creates a coordinator bound to one provider
// and one progress slot.
func NewSubmissionCoordinator(prov provider.Provider, store progress.Store) *SubmissionCoordinator {
	return &SubmissionCoordinator{provider: prov, store: store}
}

// Submit sends the answers exactly once per submitting entry, with one
// automatic retry for transient provider failures. The same client
// reference is reused across the retry so the provider can deduplicate.
func (c *SubmissionCoordinator) Submit(ctx context.Context, testID string, answers []provider.Answer) (*provider.SubmitAck, error) {
	if c.spent {
		return nil, fmt.Errorf("submission for test %s already attempted", testID)
	}
	c.spent = true

	if c.clientRef == "" {
		c.clientRef = uuid.New().String()
	}
	sub := provider.Submission{Answers: answers, ClientRef: c.clientRef}

	ack, err := c.provider.SubmitAnswers(ctx, testID, sub)
	if err != nil && provider.IsRetryable(err) {
		ack, err = c.provider.SubmitAnswers(ctx, testID, sub)
	}
	if err != nil {
		return nil, err
	}

	// The submission succeeded; a failed local cleanup must not turn
	// the outcome into an error. A stale snapshot is rejected on any
	// later resume attempt anyway.
	_ = c.store.Clear(ctx)
	return ack, nil
}
