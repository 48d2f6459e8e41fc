package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/progress"
	"github.com/dkrish/proctor/internal/provider"
	"github.com/dkrish/proctor/internal/resume"
)

const testOwner = "user-1"

func testSchema(t *testing.T) assessment.Schema {
	t.Helper()
	s, err := assessment.ByType(assessment.TypeLearningStyle)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func makeQuestions(n int) []provider.Question {
	qs := make([]provider.Question, n)
	for i := range qs {
		qs[i] = provider.Question{
			ID:         fmt.Sprintf("q%d", i+1),
			CategoryID: "cat-a",
			Text:       fmt.Sprintf("Question %d", i+1),
		}
	}
	return qs
}

func makeTest(id string, limitSec, numQuestions int) *provider.Test {
	return &provider.Test{
		ID:            id,
		QuestionSetID: "qs-1",
		Status:        provider.StatusInProgress,
		ExpiresAt:     time.Now().Add(time.Hour),
		TimeLimitSec:  limitSec,
		Questions:     makeQuestions(numQuestions),
	}
}

// newTestingController builds a controller carried to the testing step
// with a fresh test of the given shape.
func newTestingController(t *testing.T, limitSec, numQuestions int) (*Controller, *provider.MockProvider, *progress.MemoryStore) {
	t.Helper()
	mock := provider.NewMockProvider()
	mock.QueueQuestionSet(&provider.QuestionSet{ID: "qs-1", Name: "Learning Style", Questions: makeQuestions(numQuestions)}, nil)
	mock.QueueCreateTest(makeTest("test-1", limitSec, numQuestions), nil)

	store := progress.NewMemoryStore()
	c := New(testSchema(t), mock, store, testOwner)

	outcome, err := c.Initialize(context.Background(), "")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if outcome.Decision != resume.NoAction {
		t.Fatalf("decision = %s, want no-action", outcome.Decision)
	}
	if c.Step() != StepReady {
		t.Fatalf("step = %s, want ready", c.Step())
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return c, mock, store
}

func TestController_FreshFlow_CompletesOnLastAnswer(t *testing.T) {
	c, mock, store := newTestingController(t, 600, 2)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1", Received: 2}, nil)
	ctx := context.Background()

	if q := c.CurrentQuestion(); q == nil || q.ID != "q1" {
		t.Fatalf("current question = %+v, want q1", q)
	}
	if err := c.Answer(ctx, "q1", "3"); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if q := c.CurrentQuestion(); q == nil || q.ID != "q2" {
		t.Fatalf("current question = %+v, want q2", q)
	}

	// A snapshot exists while testing.
	if ok, _ := store.Exists(ctx); !ok {
		t.Error("expected a persisted snapshot after first answer")
	}

	if err := c.Answer(ctx, "q2", "5"); err != nil {
		t.Fatalf("answer q2: %v", err)
	}

	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed", c.Step())
	}
	if ok, _ := store.Exists(ctx); ok {
		t.Error("expected snapshot cleared after completion")
	}

	calls := mock.SubmitCalls()
	if len(calls) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(calls))
	}
	if got := len(calls[0].Sub.Answers); got != 2 {
		t.Errorf("submitted answers = %d, want 2", got)
	}
}

func TestController_TimeLimitFallback(t *testing.T) {
	// A provider-declared time limit of zero means "use the schema's
	// ceiling", never "unlimited".
	c, _, _ := newTestingController(t, 0, 1)

	want := int(testSchema(t).FallbackTimeLimit.Seconds())
	if c.SecondsRemaining() != want {
		t.Errorf("SecondsRemaining = %d, want %d", c.SecondsRemaining(), want)
	}
}

func TestController_ExpirySubmitsPartialAnswers(t *testing.T) {
	c, mock, _ := newTestingController(t, 600, 3)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	ctx := context.Background()

	if err := c.Answer(ctx, "q1", "3"); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if err := c.Answer(ctx, "q2", "5"); err != nil {
		t.Fatalf("answer q2: %v", err)
	}

	// Run the countdown out with q3 unanswered.
	for c.Step() == StepTesting {
		if err := c.Tick(ctx); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed", c.Step())
	}

	calls := mock.SubmitCalls()
	if len(calls) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(calls))
	}
	answers := calls[0].Sub.Answers
	if len(answers) != 2 {
		t.Fatalf("submitted answers = %d, want 2 (q3 absent)", len(answers))
	}
	if answers[0].QuestionID != "q1" || answers[0].Value != "3" {
		t.Errorf("answers[0] = %+v, want q1=3", answers[0])
	}
	if answers[1].QuestionID != "q2" || answers[1].Value != "5" {
		t.Errorf("answers[1] = %+v, want q2=5", answers[1])
	}
}

func TestController_ExpiryCapturesPendingAnswer(t *testing.T) {
	c, mock, _ := newTestingController(t, 2, 2)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	ctx := context.Background()

	if err := c.Answer(ctx, "q1", "4"); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	// The user has picked a value for q2 but not confirmed it when the
	// countdown runs out.
	if err := c.Select("2"); err != nil {
		t.Fatalf("select: %v", err)
	}

	for c.Step() == StepTesting {
		if err := c.Tick(ctx); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	calls := mock.SubmitCalls()
	if len(calls) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(calls))
	}
	answers := calls[0].Sub.Answers
	if len(answers) != 2 {
		t.Fatalf("submitted answers = %d, want 2 (pending q2 captured)", len(answers))
	}
	if answers[1].QuestionID != "q2" || answers[1].Value != "2" {
		t.Errorf("answers[1] = %+v, want q2=2", answers[1])
	}
}

func TestController_TickAfterExpiryIsNoop(t *testing.T) {
	c, mock, _ := newTestingController(t, 1, 2)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	ctx := context.Background()

	if err := c.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	step := c.Step()

	// A straggling tick after leaving testing must change nothing.
	if err := c.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if c.Step() != step {
		t.Errorf("step changed %s -> %s on straggling tick", step, c.Step())
	}
	if calls := mock.SubmitCalls(); len(calls) != 1 {
		t.Errorf("submit calls = %d, want exactly 1", len(calls))
	}
}

func TestController_SubmitRetriesOnceThenSucceeds(t *testing.T) {
	c, mock, store := newTestingController(t, 600, 1)
	mock.QueueSubmit(nil, &provider.ErrProviderUnavailable{})
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	ctx := context.Background()

	if err := c.Answer(ctx, "q1", "1"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed", c.Step())
	}
	if calls := mock.SubmitCalls(); len(calls) != 2 {
		t.Errorf("submit calls = %d, want exactly 2", len(calls))
	}
	if ok, _ := store.Exists(ctx); ok {
		t.Error("expected snapshot cleared only after the retry succeeded")
	}
}

func TestController_SubmitRetryReusesClientRef(t *testing.T) {
	c, mock, _ := newTestingController(t, 600, 1)
	mock.QueueSubmit(nil, &provider.ErrProviderUnavailable{})
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)

	if err := c.Answer(context.Background(), "q1", "1"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	calls := mock.SubmitCalls()
	if len(calls) != 2 {
		t.Fatalf("submit calls = %d, want 2", len(calls))
	}
	if calls[0].Sub.ClientRef == "" || calls[0].Sub.ClientRef != calls[1].Sub.ClientRef {
		t.Errorf("client refs differ across retry: %q vs %q", calls[0].Sub.ClientRef, calls[1].Sub.ClientRef)
	}
}

func TestController_SubmitFailureKeepsAnswers(t *testing.T) {
	c, mock, store := newTestingController(t, 600, 1)
	mock.QueueSubmit(nil, &provider.ErrSubmissionRejected{TestID: "test-1", Err: fmt.Errorf("bad payload")})
	ctx := context.Background()

	err := c.Answer(ctx, "q1", "1")
	if err == nil {
		t.Fatal("expected the rejected submission to surface")
	}
	if c.Step() != StepError {
		t.Fatalf("step = %s, want error", c.Step())
	}
	// Rejection is permanent: no automatic retry.
	if calls := mock.SubmitCalls(); len(calls) != 1 {
		t.Errorf("submit calls = %d, want 1", len(calls))
	}
	// The durable snapshot survives: an error after submission must not
	// delete answers the user cannot reproduce.
	if ok, _ := store.Exists(ctx); !ok {
		t.Error("expected snapshot retained after submission error")
	}
	if c.CountAnswered() != 1 {
		t.Errorf("CountAnswered = %d, want 1", c.CountAnswered())
	}
}

func TestController_AnswerAfterTerminalIsRejected(t *testing.T) {
	c, mock, store := newTestingController(t, 600, 1)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	ctx := context.Background()

	if err := c.Answer(ctx, "q1", "1"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed", c.Step())
	}

	// An answer arriving the instant after completion must be refused
	// and must not resurrect the cleared snapshot.
	if err := c.Answer(ctx, "q1", "2"); err == nil {
		t.Error("expected answer after completion to fail")
	}
	if ok, _ := store.Exists(ctx); ok {
		t.Error("snapshot resurrected by a post-completion answer")
	}
}

func TestController_MonotonicCursor(t *testing.T) {
	c, mock, _ := newTestingController(t, 600, 3)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	ctx := context.Background()

	last := c.Session().CurrentIndex
	record := func() {
		idx := c.Session().CurrentIndex
		if idx < last {
			t.Fatalf("cursor decreased: %d -> %d", last, idx)
		}
		if idx > len(c.Session().Questions) {
			t.Fatalf("cursor %d exceeds question count %d", idx, len(c.Session().Questions))
		}
		last = idx
	}

	_ = c.Answer(ctx, "q1", "3")
	record()
	// Re-answering an earlier question overwrites without moving the cursor.
	_ = c.Answer(ctx, "q1", "4")
	record()
	_ = c.Answer(ctx, "q2", "2")
	record()
	_ = c.Answer(ctx, "q3", "5")
	record()
}

func TestController_InvalidValueRejected(t *testing.T) {
	c, _, _ := newTestingController(t, 600, 1)

	if err := c.Answer(context.Background(), "q1", "9"); err == nil {
		t.Error("expected out-of-range scale value to be rejected")
	}
	if c.Step() != StepTesting {
		t.Errorf("step = %s, want testing (validation error is not terminal)", c.Step())
	}
}

func TestController_LoadingFailureIsTerminal(t *testing.T) {
	mock := provider.NewMockProvider() // empty queues: provider unavailable
	store := progress.NewMemoryStore()
	c := New(testSchema(t), mock, store, testOwner)

	_, err := c.Initialize(context.Background(), "")
	if err == nil {
		t.Fatal("expected initialize to fail")
	}
	if c.Step() != StepError {
		t.Errorf("step = %s, want error", c.Step())
	}
	if c.Err() == nil {
		t.Error("expected terminal error recorded")
	}
}

func TestController_ResumeWithSnapshot(t *testing.T) {
	mock := provider.NewMockProvider()
	store := progress.NewMemoryStore()
	ctx := context.Background()

	_ = store.Save(ctx, &progress.Snapshot{
		SessionID:        "test-9",
		OwnerID:          testOwner,
		AssessmentType:   assessment.TypeLearningStyle,
		QuestionSetID:    "qs-1",
		QuestionIDs:      []string{"q1", "q2", "q3"},
		CurrentIndex:     2,
		Answers:          []provider.Answer{{QuestionID: "q1", Value: "3"}, {QuestionID: "q2", Value: "4"}},
		SecondsRemaining: 120,
		StartedAt:        time.Now().Add(-5 * time.Minute),
	})
	mock.QueueGetTest(makeTest("test-9", 600, 3), nil)

	c := New(testSchema(t), mock, store, testOwner)
	outcome, err := c.Initialize(ctx, "test-9")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if outcome.Decision != resume.ResumeWithSnapshot {
		t.Fatalf("decision = %s, want resume-with-snapshot", outcome.Decision)
	}
	if c.Step() != StepReady {
		t.Fatalf("step = %s, want ready", c.Step())
	}
	if c.SecondsRemaining() != 120 {
		t.Errorf("SecondsRemaining = %d, want 120 (restored, not reset)", c.SecondsRemaining())
	}
	if c.Session().CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d, want 2", c.Session().CurrentIndex)
	}
	if c.CountAnswered() != 2 {
		t.Errorf("CountAnswered = %d, want 2", c.CountAnswered())
	}
}

func TestController_CrossDeviceConflictRestart(t *testing.T) {
	mock := provider.NewMockProvider()
	store := progress.NewMemoryStore()
	ctx := context.Background()

	mock.QueueGetTest(makeTest("test-7", 600, 3), nil)

	c := New(testSchema(t), mock, store, testOwner)
	outcome, err := c.Initialize(ctx, "test-7")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if outcome.Decision != resume.CrossDeviceConflict {
		t.Fatalf("decision = %s, want cross-device-conflict", outcome.Decision)
	}
	if c.Step() != StepLoading {
		t.Fatalf("step = %s, want loading (host must choose)", c.Step())
	}

	if err := c.RestartSameTest(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if c.Step() != StepReady {
		t.Fatalf("step = %s, want ready", c.Step())
	}
	if c.Session().ID != "test-7" {
		t.Errorf("session id = %q, want the same test reused", c.Session().ID)
	}
	if c.SecondsRemaining() != 600 {
		t.Errorf("SecondsRemaining = %d, want the full budget 600", c.SecondsRemaining())
	}
	if c.CountAnswered() != 0 {
		t.Errorf("CountAnswered = %d, want 0 (empty ledger)", c.CountAnswered())
	}
}

func TestController_ResumeFullyAnsweredSubmitsOnStart(t *testing.T) {
	// A snapshot with the cursor past the last question is what a
	// failed submission leaves behind. Re-initializing and starting
	// must retry the submission immediately, not wait out the clock.
	mock := provider.NewMockProvider()
	store := progress.NewMemoryStore()
	ctx := context.Background()

	_ = store.Save(ctx, &progress.Snapshot{
		SessionID:        "test-11",
		OwnerID:          testOwner,
		AssessmentType:   assessment.TypeLearningStyle,
		QuestionSetID:    "qs-1",
		QuestionIDs:      []string{"q1"},
		CurrentIndex:     1,
		Answers:          []provider.Answer{{QuestionID: "q1", Value: "3"}},
		SecondsRemaining: 120,
		StartedAt:        time.Now().Add(-5 * time.Minute),
	})
	mock.QueueGetTest(makeTest("test-11", 600, 1), nil)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-11", Received: 1}, nil)

	c := New(testSchema(t), mock, store, testOwner)
	outcome, err := c.Initialize(ctx, "test-11")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if outcome.Decision != resume.ResumeWithSnapshot {
		t.Fatalf("decision = %s, want resume-with-snapshot", outcome.Decision)
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed without any ticks", c.Step())
	}
	if calls := mock.SubmitCalls(); len(calls) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(calls))
	} else if len(calls[0].Sub.Answers) != 1 {
		t.Errorf("submitted %d answers, want the restored 1", len(calls[0].Sub.Answers))
	}
	if c.Expired() {
		t.Error("Expired = true, want false for an answer-complete session")
	}
	if ok, _ := store.Exists(ctx); ok {
		t.Error("expected snapshot cleared after the successful retry")
	}
}

func TestController_ResumeWithNoTimeLeftSubmitsOnStart(t *testing.T) {
	mock := provider.NewMockProvider()
	store := progress.NewMemoryStore()
	ctx := context.Background()

	_ = store.Save(ctx, &progress.Snapshot{
		SessionID:        "test-12",
		OwnerID:          testOwner,
		AssessmentType:   assessment.TypeLearningStyle,
		QuestionSetID:    "qs-1",
		QuestionIDs:      []string{"q1", "q2", "q3"},
		CurrentIndex:     2,
		Answers:          []provider.Answer{{QuestionID: "q1", Value: "3"}, {QuestionID: "q2", Value: "4"}},
		SecondsRemaining: 0,
		StartedAt:        time.Now().Add(-10 * time.Minute),
	})
	mock.QueueGetTest(makeTest("test-12", 600, 3), nil)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-12", Received: 2}, nil)

	c := New(testSchema(t), mock, store, testOwner)
	if _, err := c.Initialize(ctx, "test-12"); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed (no time left to tick down)", c.Step())
	}
	if calls := mock.SubmitCalls(); len(calls) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(calls))
	} else if len(calls[0].Sub.Answers) != 2 {
		t.Errorf("submitted %d answers, want the restored 2", len(calls[0].Sub.Answers))
	}
	if !c.Expired() {
		t.Error("Expired = false, want true when the restored clock is at zero")
	}
}

func TestController_ExpiredDistinguishesTimeoutFromCompletion(t *testing.T) {
	ctx := context.Background()

	c, mock, _ := newTestingController(t, 600, 1)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	if err := c.Answer(ctx, "q1", "1"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed", c.Step())
	}
	if c.Expired() {
		t.Error("Expired = true, want false when the user answered everything")
	}

	c, mock, _ = newTestingController(t, 2, 1)
	mock.QueueSubmit(&provider.SubmitAck{TestID: "test-1"}, nil)
	for i := 0; i < 2; i++ {
		if err := c.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}
	if c.Step() != StepCompleted {
		t.Fatalf("step = %s, want completed after expiry", c.Step())
	}
	if !c.Expired() {
		t.Error("Expired = false, want true when the countdown ran out")
	}
}
