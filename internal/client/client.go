package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/domain/order"
)

const (
	// MaxRetries is the number of attempts made after the first one.
	MaxRetries = 2
	// AttemptTimeout bounds each individual HTTP attempt.
	AttemptTimeout = 30 * time.Second
)

// Outcome classifies how a submission ended.
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeRejected   Outcome = "rejected"
	OutcomeFailed     Outcome = "failed"
	OutcomeUnexpected Outcome = "unexpected"
)

const (
	msgSubmitted     = "Order submitted successfully"
	msgValidation    = "Validation failed"
	msgServerError   = "Server error occurred. Please try again later."
	msgTimedOut      = "Request timed out. Please check your connection and try again."
	msgUnexpectedFmt = "Unexpected response: %d"
)

// Result is what the caller shows the user. Message is always human readable.
type Result struct {
	Success          bool
	Outcome          Outcome
	OrderID          string
	CreatedAt        string
	Message          string
	ValidationErrors []string
	Attempts         int
}

// Sleeper waits between attempts.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client submits orders to the order API, retrying transient failures.
type Client struct {
	endpoint   string
	httpClient *http.Client
	sleeper    Sleeper
	logger     *zap.Logger
	timeout    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

func WithSleeper(s Sleeper) Option { return func(c *Client) { c.sleeper = s } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

func WithAttemptTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// New returns a client posting to <endpoint>/order.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
		sleeper:    timerSleeper{},
		logger:     zap.NewNop(),
		timeout:    AttemptTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		OrderID   string `json:"orderId"`
		Message   string `json:"message"`
		CreatedAt string `json:"createdAt"`
	} `json:"data"`
	Errors []order.FieldError `json:"errors"`
}

// attemptResult is the outcome of one HTTP round trip. A non-nil err means a
// transient failure worth retrying.
type attemptResult struct {
	result   Result
	err      error
	timedOut bool
}

// Submit posts sub and returns once the order is accepted, rejected, or
// retries are exhausted. 500 responses, timeouts and connection errors are
// retried after 2s and then 4s. 400 and any other status are final.
func (c *Client) Submit(ctx context.Context, sub order.Submission) Result {
	payload, err := json.Marshal(sub)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Message: "An error occurred: " + err.Error()}
	}

	var last attemptResult
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<uint(attempt)) * time.Second
			c.logger.Info("retrying order submission",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(last.err),
			)
			if err := c.sleeper.Sleep(ctx, delay); err != nil {
				return Result{Outcome: OutcomeFailed, Message: "An error occurred: " + err.Error(), Attempts: attempt}
			}
		}

		last = c.attempt(ctx, payload)
		last.result.Attempts = attempt + 1
		if last.err == nil {
			return last.result
		}
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeFailed, Message: "An error occurred: " + ctx.Err().Error(), Attempts: attempt + 1}
		}
	}

	res := last.result
	res.Outcome = OutcomeFailed
	switch {
	case res.Message != "":
		// Server error body already carries the message.
	case last.timedOut:
		res.Message = msgTimedOut
	default:
		res.Message = fmt.Sprintf("Failed after %d retries. %v", MaxRetries, last.err)
	}
	return res
}

func (c *Client) attempt(ctx context.Context, payload []byte) attemptResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/order", bytes.NewReader(payload))
	if err != nil {
		return attemptResult{result: Result{Outcome: OutcomeFailed, Message: "An error occurred: " + err.Error()}}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return attemptResult{err: err, timedOut: isTimeout(err)}
	}
	defer resp.Body.Close()

	var body apiResponse
	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil && resp.StatusCode == http.StatusOK {
		return attemptResult{err: readErr, timedOut: isTimeout(readErr)}
	}
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusOK:
		res := Result{Success: true, Outcome: OutcomeAccepted, Message: msgSubmitted}
		if body.Message != "" {
			res.Message = body.Message
		}
		if body.Data != nil {
			res.OrderID = body.Data.OrderID
			res.CreatedAt = body.Data.CreatedAt
		}
		return attemptResult{result: res}

	case http.StatusBadRequest:
		res := Result{Outcome: OutcomeRejected, Message: msgValidation}
		if body.Message != "" {
			res.Message = body.Message
		}
		for _, fe := range body.Errors {
			res.ValidationErrors = append(res.ValidationErrors, fe.Field+": "+fe.Message)
		}
		return attemptResult{result: res}

	case http.StatusInternalServerError:
		msg := body.Message
		if msg == "" {
			msg = msgServerError
		}
		return attemptResult{
			result: Result{Outcome: OutcomeFailed, Message: msg},
			err:    fmt.Errorf("server error: %s", msg),
		}

	default:
		return attemptResult{result: Result{
			Outcome: OutcomeUnexpected,
			Message: fmt.Sprintf(msgUnexpectedFmt, resp.StatusCode),
		}}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
