package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes caps provider response bodies.
const maxResponseBytes = 4 << 20

// HTTPProvider implements Provider against the remote assessment API.
type HTTPProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a provider client from config.
func NewHTTPProvider(cfg Config) (*HTTPProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (p *HTTPProvider) ActiveQuestionSet(ctx context.Context, slug string) (*QuestionSet, error) {
	path := "/api/question-sets/active?type=" + url.QueryEscape(slug)
	status, body, err := p.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError("fetch question set", status, body)
	}

	if err := validatePayload(questionSetSchema, body); err != nil {
		return nil, err
	}
	var qs QuestionSet
	if err := json.Unmarshal(body, &qs); err != nil {
		return nil, &ErrInvalidPayload{Err: fmt.Errorf("decode question set: %w", err)}
	}
	return &qs, nil
}

func (p *HTTPProvider) CreateTest(ctx context.Context, questionSetID string) (*Test, error) {
	payload := map[string]string{"question_set_id": questionSetID}
	status, body, err := p.do(ctx, http.MethodPost, "/api/tests", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, statusError("create test", status, body)
	}
	return decodeTest(body)
}

func (p *HTTPProvider) GetTest(ctx context.Context, testID string) (*Test, error) {
	status, body, err := p.do(ctx, http.MethodGet, "/api/tests/"+url.PathEscape(testID), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return decodeTest(body)
	case http.StatusNotFound, http.StatusConflict:
		return nil, &ErrSessionNotResumable{TestID: testID}
	case http.StatusGone:
		return nil, &ErrSessionExpired{TestID: testID}
	default:
		return nil, statusError("fetch test", status, body)
	}
}

func (p *HTTPProvider) SubmitAnswers(ctx context.Context, testID string, sub Submission) (*SubmitAck, error) {
	path := "/api/tests/" + url.PathEscape(testID) + "/answers"
	status, body, err := p.do(ctx, http.MethodPost, path, sub)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		var ack SubmitAck
		if err := json.Unmarshal(body, &ack); err != nil {
			return nil, &ErrInvalidPayload{Err: fmt.Errorf("decode submit ack: %w", err)}
		}
		if ack.TestID == "" {
			ack.TestID = testID
		}
		return &ack, nil
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return nil, &ErrSubmissionRejected{TestID: testID, Err: bodyError(body)}
	case http.StatusGone:
		return nil, &ErrSessionExpired{TestID: testID}
	case http.StatusNotFound, http.StatusConflict:
		return nil, &ErrSessionNotResumable{TestID: testID}
	default:
		return nil, statusError("submit answers", status, body)
	}
}

// do performs one request and returns the status and body. Network
// failures are classified into ErrTimedOut or ErrProviderUnavailable.
func (p *HTTPProvider) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return 0, nil, &ErrTimedOut{Err: err}
		}
		return 0, nil, &ErrProviderUnavailable{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, &ErrProviderUnavailable{Err: fmt.Errorf("read response: %w", err)}
	}
	return resp.StatusCode, body, nil
}

func decodeTest(body []byte) (*Test, error) {
	if err := validatePayload(testSchema, body); err != nil {
		return nil, err
	}
	var t Test
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, &ErrInvalidPayload{Err: fmt.Errorf("decode test: %w", err)}
	}
	return &t, nil
}

// statusError maps an unexpected HTTP status to an error kind: 5xx is
// a provider outage, everything else surfaces with the body message.
func statusError(op string, status int, body []byte) error {
	if status >= 500 {
		return &ErrProviderUnavailable{Err: fmt.Errorf("%s: status %d", op, status)}
	}
	return fmt.Errorf("%s: status %d: %v", op, status, bodyError(body))
}

// bodyError extracts the provider's error message from a response
// body, falling back to the raw text.
func bodyError(body []byte) error {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return errors.New(e.Error)
		}
		if e.Message != "" {
			return errors.New(e.Message)
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "no error detail"
	}
	return errors.New(msg)
}

// isTimeout reports whether a transport error was a deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}
