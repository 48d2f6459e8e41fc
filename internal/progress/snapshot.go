package progress

import (
	"time"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/provider"
)

// SchemaVersion tags the snapshot wire format. A stored snapshot with
// a different version is treated as absent.
const SchemaVersion = 1

// RetentionWindow is how long a snapshot stays resumable. Older
// snapshots are cleared on load.
const RetentionWindow = 24 * time.Hour

// Snapshot is the durable projection of one in-flight session: every
// field needed to restore the session after a reload, and nothing
// transient.
type Snapshot struct {
	SchemaVersion int `json:"schema_version"`

	SessionID      string          `json:"session_id"`
	OwnerID        string          `json:"owner_id"`
	AssessmentType assessment.Type `json:"assessment_type"`

	QuestionSetID   string `json:"question_set_id"`
	QuestionSetName string `json:"question_set_name"`

	// QuestionIDs is the fixed question order for the session.
	QuestionIDs []string `json:"question_ids"`

	CurrentIndex     int               `json:"current_index"`
	Answers          []provider.Answer `json:"answers"`
	SecondsRemaining int               `json:"seconds_remaining"`

	StartedAt time.Time `json:"started_at"`
	SavedAt   time.Time `json:"saved_at"`
}

// Expired reports whether the snapshot has outlived the retention
// window at the given instant.
func (s *Snapshot) Expired(now time.Time) bool {
	return now.Sub(s.SavedAt) > RetentionWindow
}
