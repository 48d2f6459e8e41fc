package session

import (
	"fmt"

	"github.com/dkrish/proctor/internal/provider"
)

// ErrInvalidQuestion indicates an answer for a question id that is not
// part of the session. This is a programming-contract violation, not a
// user-facing condition: the host only ever offers questions from the
// session's ordered list.
type ErrInvalidQuestion struct {
	QuestionID string
}

func (e *ErrInvalidQuestion) Error() string {
	return fmt.Sprintf("answer for unknown question %q", e.QuestionID)
}

// Ledger holds at most one answer per question. Re-answering a
// question overwrites the previous value; nothing else does.
type Ledger struct {
	order []string
	index map[string]int
	byID  map[string]provider.Answer
}

// NewLedger creates a Ledger accepting answers for the given ordered
// question ids.
func NewLedger(questionIDs []string) *Ledger {
	index := make(map[string]int, len(questionIDs))
	for i, id := range questionIDs {
		index[id] = i
	}
	return &Ledger{
		order: questionIDs,
		index: index,
		byID:  make(map[string]provider.Answer, len(questionIDs)),
	}
}

// Record inserts or overwrites the answer for its question. Returns
// ErrInvalidQuestion if the question is not part of the session.
func (l *Ledger) Record(a provider.Answer) error {
	if _, ok := l.index[a.QuestionID]; !ok {
		return &ErrInvalidQuestion{QuestionID: a.QuestionID}
	}
	l.byID[a.QuestionID] = a
	return nil
}

// Get returns the recorded answer for a question, if any.
func (l *Ledger) Get(questionID string) (provider.Answer, bool) {
	a, ok := l.byID[questionID]
	return a, ok
}

// Snapshot returns the recorded answers keyed by original question
// order. Unanswered questions are absent, not zero-valued.
func (l *Ledger) Snapshot() []provider.Answer {
	out := make([]provider.Answer, 0, len(l.byID))
	for _, id := range l.order {
		if a, ok := l.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// CountAnswered returns how many questions have a recorded answer.
func (l *Ledger) CountAnswered() int {
	return len(l.byID)
}

// Restore replays previously persisted answers into the ledger.
func (l *Ledger) Restore(answers []provider.Answer) error {
	for _, a := range answers {
		if err := l.Record(a); err != nil {
			return err
		}
	}
	return nil
}
