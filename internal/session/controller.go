package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/progress"
	"github.com/dkrish/proctor/internal/provider"
	"github.com/dkrish/proctor/internal/resume"
)

// Controller owns the live Session and orchestrates the clock, the
// ledger, the progress store, the resume resolver, and the Test
// Provider. All methods are called from the host's single event loop;
// the hazards here are interleavings, not parallelism.
type Controller struct {
	schema   assessment.Schema
	provider provider.Provider
	store    progress.Store
	resolver *resume.Resolver
	coord    *SubmissionCoordinator
	ownerID  string

	step    Step
	sess    *Session
	ledger  *Ledger
	clock   *Clock
	outcome resume.Outcome

	// pending is the value the user has selected for the current
	// question but not yet confirmed. It is included in the final
	// submission if the countdown expires first.
	pending *provider.Answer

	// expired records that the countdown, not the user, ended the
	// attempt. Set only on the expiry transition.
	expired bool

	ack     *provider.SubmitAck
	termErr error
	now     func() time.Time
}

// New creates a Controller in the loading step for one assessment type.
func New(schema assessment.Schema, prov provider.Provider, store progress.Store, ownerID string) *Controller {
	return &Controller{
		schema:   schema,
		provider: prov,
		store:    store,
		resolver: resume.NewResolver(store, prov, ownerID),
		coord:    NewSubmissionCoordinator(prov, store),
		ownerID:  ownerID,
		step:     StepLoading,
		now:      time.Now,
	}
}

// Step returns the current state-machine step.
func (c *Controller) Step() Step { return c.step }

// Session returns the live session, nil before initialization finishes.
func (c *Controller) Session() *Session { return c.sess }

// Outcome returns the resume decision computed by Initialize.
func (c *Controller) Outcome() resume.Outcome { return c.outcome }

// Err returns the terminal error, set only in the error step.
func (c *Controller) Err() error { return c.termErr }

// Ack returns the provider's submission acknowledgement, set only in
// the completed step.
func (c *Controller) Ack() *provider.SubmitAck { return c.ack }

// Expired reports whether the countdown ended the attempt. False for
// a completion driven by the user's final answer, even if the clock
// reads zero by the time the host asks.
func (c *Controller) Expired() bool { return c.expired }

// SecondsRemaining returns the countdown value, 0 before ready.
func (c *Controller) SecondsRemaining() int {
	if c.clock == nil {
		return 0
	}
	return c.clock.Remaining()
}

// CurrentQuestion returns the question at the cursor, nil outside the
// testing flow or after the last question.
func (c *Controller) CurrentQuestion() *provider.Question {
	if c.sess == nil {
		return nil
	}
	return c.sess.CurrentQuestion()
}

// CountAnswered returns how many questions have confirmed answers.
func (c *Controller) CountAnswered() int {
	if c.ledger == nil {
		return 0
	}
	return c.ledger.CountAnswered()
}

// Pending returns the staged-but-unconfirmed answer, if any.
func (c *Controller) Pending() *provider.Answer { return c.pending }

// Initialize resolves how the session starts. For a silent resume or a
// clean slate it carries the controller to ready; for a cross-device
// conflict or an unresumable target it stays in loading and returns the
// outcome so the host can put the choice to the user (StartFresh or
// RestartSameTest). A provider failure here is terminal for the attempt.
func (c *Controller) Initialize(ctx context.Context, requestedSessionID string) (resume.Outcome, error) {
	if c.step != StepLoading {
		return resume.Outcome{}, fmt.Errorf("initialize from step %s", c.step)
	}

	outcome, err := c.resolver.Resolve(ctx, requestedSessionID)
	if err != nil {
		return resume.Outcome{}, c.fail(err)
	}
	c.outcome = outcome

	switch outcome.Decision {
	case resume.NoAction:
		if err := c.StartFresh(ctx); err != nil {
			return outcome, err
		}
	case resume.ResumeWithSnapshot:
		c.restore(outcome)
	case resume.CrossDeviceConflict, resume.Unresumable:
		// Host decides; no silent fallback to a new session.
	}
	return outcome, nil
}

// StartFresh creates a brand-new test and readies the session. Valid
// only while loading (clean slate, abandoned conflict, or refused
// resume target).
func (c *Controller) StartFresh(ctx context.Context) error {
	if c.step != StepLoading {
		return fmt.Errorf("start fresh from step %s", c.step)
	}

	qs, err := c.provider.ActiveQuestionSet(ctx, c.schema.ProviderSlug)
	if err != nil {
		return c.fail(fmt.Errorf("fetch question set: %w", err))
	}
	test, err := c.provider.CreateTest(ctx, qs.ID)
	if err != nil {
		return c.fail(fmt.Errorf("create test: %w", err))
	}
	if !test.InProgress(c.now()) {
		return c.fail(&provider.ErrSessionNotResumable{TestID: test.ID, Status: test.Status})
	}

	questions := test.Questions
	if len(questions) == 0 {
		questions = qs.Questions
	}
	c.ready(test, qs.Name, questions, c.timeLimit(test), 0, nil)
	return nil
}

// RestartSameTest resolves a cross-device conflict by reusing the
// provider's test and question order with an empty ledger and a fresh
// full time budget. The countdown and answers lived only on the
// originating device; the provider tracks that the test exists, not
// its content.
func (c *Controller) RestartSameTest(ctx context.Context) error {
	if c.step != StepLoading || c.outcome.Decision != resume.CrossDeviceConflict {
		return fmt.Errorf("restart is only valid for a cross-device conflict (step %s)", c.step)
	}
	test := c.outcome.Test

	questions := test.Questions
	if len(questions) == 0 {
		qs, err := c.provider.ActiveQuestionSet(ctx, c.schema.ProviderSlug)
		if err != nil {
			return c.fail(fmt.Errorf("fetch question set: %w", err))
		}
		questions = qs.Questions
	}
	c.ready(test, "", questions, c.timeLimit(test), 0, nil)
	return nil
}

// restore readies the session from a local snapshot, restoring cursor,
// answers, and remaining time verbatim.
func (c *Controller) restore(outcome resume.Outcome) {
	snap := outcome.Snapshot
	test := outcome.Test

	questions := test.Questions
	if len(questions) == 0 {
		// Provider returned no question bodies on the resume fetch;
		// rebuild bare questions from the persisted order.
		questions = make([]provider.Question, len(snap.QuestionIDs))
		for i, id := range snap.QuestionIDs {
			questions[i] = provider.Question{ID: id}
		}
	}
	c.ready(test, snap.QuestionSetName, questions, snap.SecondsRemaining, snap.CurrentIndex, snap.Answers)
	c.sess.StartedAt = snap.StartedAt
}

// ready builds the live session and moves loading → ready.
func (c *Controller) ready(test *provider.Test, qsName string, questions []provider.Question, seconds, index int, answers []provider.Answer) {
	c.sess = &Session{
		ID:              test.ID,
		OwnerID:         c.ownerID,
		Schema:          c.schema,
		QuestionSetID:   test.QuestionSetID,
		QuestionSetName: qsName,
		Questions:       questions,
		CurrentIndex:    index,
		StartedAt:       c.now(),
	}
	c.ledger = NewLedger(c.sess.QuestionIDs())
	if len(answers) > 0 {
		_ = c.ledger.Restore(answers)
	}
	c.clock = NewClock(seconds)
	c.step = StepReady
}

// timeLimit resolves the test's declared limit, using the schema's
// fallback ceiling when the provider declares zero. Zero means "use
// the ceiling", never "unlimited".
func (c *Controller) timeLimit(test *provider.Test) int {
	if test.TimeLimitSec > 0 {
		return test.TimeLimitSec
	}
	return int(c.schema.FallbackTimeLimit.Seconds())
}

// Start is the user's explicit start action: ready → testing. The
// first question is the one at the cursor. A restored session with
// nothing left to do (cursor already past the last question after a
// failed submission, or no time left on the clock) hands off to
// submission immediately instead of waiting out the countdown.
func (c *Controller) Start(ctx context.Context) error {
	if c.step != StepReady {
		return fmt.Errorf("start from step %s", c.step)
	}
	c.step = StepTesting

	if c.sess.CurrentIndex >= len(c.sess.Questions) {
		return c.finish(ctx)
	}
	if c.clock.Remaining() == 0 {
		c.expired = true
		return c.finish(ctx)
	}
	return nil
}

// Select stages a value for the current question without confirming
// it. If the countdown expires before confirmation, the staged answer
// is still included in the submission.
func (c *Controller) Select(value string) error {
	if c.step != StepTesting {
		return fmt.Errorf("select answer in step %s", c.step)
	}
	q := c.sess.CurrentQuestion()
	if q == nil {
		return fmt.Errorf("no current question")
	}
	if err := c.schema.ValidateValue(value); err != nil {
		return err
	}
	c.pending = &provider.Answer{
		QuestionID: q.ID,
		CategoryID: q.CategoryID,
		Value:      c.schema.NormalizeValue(value),
	}
	return nil
}

// Answer records a confirmed answer. Answering the question at the
// cursor advances it; re-answering an earlier question overwrites
// without moving the cursor. Every recorded answer persists a
// snapshot. Confirming the last question hands off to submission.
func (c *Controller) Answer(ctx context.Context, questionID, value string) error {
	if c.step != StepTesting {
		return fmt.Errorf("answer in step %s", c.step)
	}
	if err := c.schema.ValidateValue(value); err != nil {
		return err
	}
	q := c.sess.questionByID(questionID)
	if q == nil {
		return &ErrInvalidQuestion{QuestionID: questionID}
	}

	if err := c.ledger.Record(provider.Answer{
		QuestionID: questionID,
		CategoryID: q.CategoryID,
		Value:      c.schema.NormalizeValue(value),
	}); err != nil {
		return err
	}

	if cur := c.sess.CurrentQuestion(); cur != nil && cur.ID == questionID {
		c.sess.CurrentIndex++
		c.pending = nil
	}
	c.persist(ctx)

	if c.sess.CurrentIndex >= len(c.sess.Questions) {
		return c.finish(ctx)
	}
	return nil
}

// Tick consumes one clock second. Outside testing it is a no-op, so a
// straggling tick after submission started can do nothing. The tick
// that reaches zero triggers submission synchronously, before control
// returns to the host; any staged answer is captured first.
func (c *Controller) Tick(ctx context.Context) error {
	if c.step != StepTesting {
		return nil
	}
	expired := c.clock.Tick()
	c.persist(ctx)
	if !expired {
		return nil
	}

	c.expired = true
	if c.pending != nil {
		_ = c.ledger.Record(*c.pending)
		c.pending = nil
	}
	return c.finish(ctx)
}

// finish is the single exit from testing. The first transition wins:
// a second attempt (answer racing expiry) finds the step already moved
// and does nothing.
func (c *Controller) finish(ctx context.Context) error {
	if c.step != StepTesting {
		return nil
	}
	c.step = StepSubmitting

	ack, err := c.coord.Submit(ctx, c.sess.ID, c.ledger.Snapshot())
	if err != nil {
		// Accumulated answers stay in the ledger and in the durable
		// snapshot; only a successful submission clears them.
		return c.fail(err)
	}
	c.ack = ack
	c.step = StepCompleted
	return nil
}

// persist writes the durable snapshot. Best-effort: a local write
// failure must not interrupt the attempt. Writes are refused outside
// the testing/submitting window so a mutation arriving after a
// terminal transition cannot resurrect the slot.
func (c *Controller) persist(ctx context.Context) {
	if c.step != StepTesting && c.step != StepSubmitting {
		return
	}
	snap := &progress.Snapshot{
		SessionID:        c.sess.ID,
		OwnerID:          c.sess.OwnerID,
		AssessmentType:   c.schema.Type,
		QuestionSetID:    c.sess.QuestionSetID,
		QuestionSetName:  c.sess.QuestionSetName,
		QuestionIDs:      c.sess.QuestionIDs(),
		CurrentIndex:     c.sess.CurrentIndex,
		Answers:          c.ledger.Snapshot(),
		SecondsRemaining: c.clock.Remaining(),
		StartedAt:        c.sess.StartedAt,
	}
	if err := c.store.Save(ctx, snap); err == nil {
		c.sess.LastPersistedAt = snap.SavedAt
	}
}

// fail records the terminal error and moves to the error step.
func (c *Controller) fail(err error) error {
	c.termErr = err
	c.step = StepError
	return err
}
