package provider

import (
	"context"
	"sync"
)

// MockCall records one invocation on the MockProvider.
type MockCall struct {
	Method string // "ActiveQuestionSet", "CreateTest", "GetTest", "SubmitAnswers"
	Arg    string // slug, question set id, or test id
	Sub    *Submission
}

// mockResult is a canned result for one method queue.
type mockResult struct {
	qs   *QuestionSet
	test *Test
	ack  *SubmitAck
	err  error
}

// MockProvider is a deterministic Provider for testing. Each method
// consumes canned results in FIFO order and records its calls; an
// empty queue yields ErrProviderUnavailable.
type MockProvider struct {
	mu sync.Mutex

	questionSets []mockResult
	created      []mockResult
	fetched      []mockResult
	submitted    []mockResult

	Calls []MockCall
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates an empty MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// QueueQuestionSet queues an ActiveQuestionSet result.
func (m *MockProvider) QueueQuestionSet(qs *QuestionSet, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questionSets = append(m.questionSets, mockResult{qs: qs, err: err})
}

// QueueCreateTest queues a CreateTest result.
func (m *MockProvider) QueueCreateTest(t *Test, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, mockResult{test: t, err: err})
}

// QueueGetTest queues a GetTest result.
func (m *MockProvider) QueueGetTest(t *Test, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, mockResult{test: t, err: err})
}

// QueueSubmit queues a SubmitAnswers result.
func (m *MockProvider) QueueSubmit(ack *SubmitAck, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, mockResult{ack: ack, err: err})
}

func (m *MockProvider) ActiveQuestionSet(_ context.Context, slug string) (*QuestionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "ActiveQuestionSet", Arg: slug})
	res, ok := pop(&m.questionSets)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	return res.qs, res.err
}

func (m *MockProvider) CreateTest(_ context.Context, questionSetID string) (*Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "CreateTest", Arg: questionSetID})
	res, ok := pop(&m.created)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	return res.test, res.err
}

func (m *MockProvider) GetTest(_ context.Context, testID string) (*Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "GetTest", Arg: testID})
	res, ok := pop(&m.fetched)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	return res.test, res.err
}

func (m *MockProvider) SubmitAnswers(_ context.Context, testID string, sub Submission) (*SubmitAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subCopy := sub
	m.Calls = append(m.Calls, MockCall{Method: "SubmitAnswers", Arg: testID, Sub: &subCopy})
	res, ok := pop(&m.submitted)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	return res.ack, res.err
}

// SubmitCalls returns the recorded SubmitAnswers invocations.
func (m *MockProvider) SubmitCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.Calls {
		if c.Method == "SubmitAnswers" {
			out = append(out, c)
		}
	}
	return out
}

func pop(queue *[]mockResult) (mockResult, bool) {
	if len(*queue) == 0 {
		return mockResult{}, false
	}
	res := (*queue)[0]
	*queue = (*queue)[1:]
	return res, true
}
