package session

import "fmt"

// Step is the session state-machine tag.
type Step int

const (
	// StepLoading: resolving resume state and creating/fetching the test.
	StepLoading Step = iota
	// StepReady: test created, waiting for the user's explicit start.
	StepReady
	// StepTesting: countdown running, answers being accepted.
	StepTesting
	// StepSubmitting: answers handed to the submission coordinator.
	StepSubmitting
	// StepCompleted: terminal; the provider accepted the submission.
	StepCompleted
	// StepError: terminal; escaped only by fresh initialization.
	StepError
)

func (s Step) String() string {
	switch s {
	case StepLoading:
		return "loading"
	case StepReady:
		return "ready"
	case StepTesting:
		return "testing"
	case StepSubmitting:
		return "submitting"
	case StepCompleted:
		return "completed"
	case StepError:
		return "error"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Terminal reports whether no further automatic transition occurs.
func (s Step) Terminal() bool {
	return s == StepCompleted || s == StepError
}
