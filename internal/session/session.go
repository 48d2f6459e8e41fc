// Package session drives one user attempt at one timed assessment:
// the state machine from creation through countdown to submission, the
// answer ledger, and the persistence hooks that make the attempt
// resumable. One parametrized engine serves all five assessment types;
// each type supplies an assessment.Schema, not its own machine.
package session

import (
	"time"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/provider"
)

// Session is the unit of work for one attempt at one assessment.
// The controller exclusively owns the live Session; the durable copy
// lives in the progress store.
type Session struct {
	// ID is assigned by the Test Provider at creation.
	ID string

	// OwnerID is the authenticated user.
	OwnerID string

	// Schema parametrizes answer validation and the time-limit fallback.
	Schema assessment.Schema

	QuestionSetID   string
	QuestionSetName string

	// Questions is the fixed question order for the session's lifetime;
	// the provider does not reorder mid-session.
	Questions []provider.Question

	// CurrentIndex is the 0-based cursor into Questions. It never
	// decreases and never exceeds len(Questions).
	CurrentIndex int

	StartedAt       time.Time
	LastPersistedAt time.Time
}

// QuestionIDs returns the session's question identifiers in order.
func (s *Session) QuestionIDs() []string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return ids
}

// CurrentQuestion returns the question at the cursor, or nil once the
// cursor has passed the last question.
func (s *Session) CurrentQuestion() *provider.Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// questionByID returns the question with the given id, or nil.
func (s *Session) questionByID(id string) *provider.Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
