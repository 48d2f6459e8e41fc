package provider

import (
	"context"
	"time"
)

// StatusInProgress is the only test status that accepts answers.
// Any other status reported by the provider makes the test unresumable.
const StatusInProgress = "in_progress"

// Provider is the Test Provider boundary. It owns question sets and
// test instances; the client owns the countdown and the answer content.
type Provider interface {
	// ActiveQuestionSet returns the currently published question set for
	// the given assessment slug.
	ActiveQuestionSet(ctx context.Context, slug string) (*QuestionSet, error)

	// CreateTest starts a new test instance for a question set.
	CreateTest(ctx context.Context, questionSetID string) (*Test, error)

	// GetTest fetches an existing test instance, used to validate a
	// resume target.
	GetTest(ctx context.Context, testID string) (*Test, error)

	// SubmitAnswers sends the accumulated answers for a test.
	SubmitAnswers(ctx context.Context, testID string, sub Submission) (*SubmitAck, error)
}

// Question is a single item within a question set.
type Question struct {
	ID         string   `json:"id"`
	CategoryID string   `json:"category_id"`
	Text       string   `json:"text"`
	Choices    []string `json:"choices,omitempty"` // labels for A-E, empty for scale questions
}

// QuestionSet is the published questionnaire for one assessment type.
type QuestionSet struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Questions []Question `json:"questions"`
}

// Test is one server-side test instance. The provider tracks that the
// test exists and when it expires; answers and the live countdown stay
// on the originating client until submission.
type Test struct {
	ID            string     `json:"id"`
	QuestionSetID string     `json:"question_set_id"`
	Status        string     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	TimeLimitSec  int        `json:"time_limit"`
	Questions     []Question `json:"questions"`
}

// InProgress reports whether the test still accepts answers at the
// given instant.
func (t *Test) InProgress(now time.Time) bool {
	return t.Status == StatusInProgress && t.ExpiresAt.After(now)
}

// QuestionIDs returns the test's question identifiers in order.
func (t *Test) QuestionIDs() []string {
	ids := make([]string, len(t.Questions))
	for i, q := range t.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Answer is one recorded answer on the wire.
type Answer struct {
	QuestionID string `json:"question_id"`
	CategoryID string `json:"category_id"`
	Value      string `json:"value"`
}

// Submission is the payload for SubmitAnswers. ClientRef is a
// client-generated key identifying this submission attempt, so a retry
// after a network failure cannot be double-counted server-side.
type Submission struct {
	Answers   []Answer `json:"answers"`
	ClientRef string   `json:"client_ref"`
}

// SubmitAck is the provider's acknowledgement of a submission.
type SubmitAck struct {
	TestID   string `json:"test_id"`
	ResultID string `json:"result_id"`
	Received int    `json:"received"`
}
