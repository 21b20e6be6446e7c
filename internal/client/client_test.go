package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/order-pipeline/internal/domain/order"
)

type recordingSleeper struct {
	delays []time.Duration
	err    error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return s.err
}

func testSubmission() order.Submission {
	return order.Submission{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@x.com",
		Items:         []order.Item{{ProductID: "P1", Quantity: 2, Price: order.MustMoney("9.99")}},
	}
}

// sequenceServer answers each request with the next status/body pair and
// repeats the last one once the sequence is exhausted.
func sequenceServer(t *testing.T, statuses []int, bodies []string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var sub order.Submission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sub))

		i := int(atomic.AddInt32(&calls, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statuses[i])
		_, _ = w.Write([]byte(bodies[i]))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

const (
	okBody        = `{"success":true,"message":"Order received successfully","data":{"orderId":"order-1","message":"Order received successfully","createdAt":"2024-05-01T12:00:00Z"}}`
	serverErrBody = `{"success":false,"message":"failed to save order"}`
)

func TestSubmit_Success(t *testing.T) {
	srv, calls := sequenceServer(t, []int{200}, []string{okBody})
	sleeper := &recordingSleeper{}
	c := New(srv.URL+"/", WithSleeper(sleeper))

	res := c.Submit(context.Background(), testSubmission())

	assert.True(t, res.Success)
	assert.Equal(t, OutcomeAccepted, res.Outcome)
	assert.Equal(t, "order-1", res.OrderID)
	assert.Equal(t, "2024-05-01T12:00:00Z", res.CreatedAt)
	assert.Equal(t, "Order received successfully", res.Message)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Empty(t, sleeper.delays)
}

func TestSubmit_RetriesServerErrorsWithBackoff(t *testing.T) {
	srv, calls := sequenceServer(t,
		[]int{500, 500, 200},
		[]string{serverErrBody, serverErrBody, okBody},
	)
	sleeper := &recordingSleeper{}
	c := New(srv.URL, WithSleeper(sleeper))

	res := c.Submit(context.Background(), testSubmission())

	assert.True(t, res.Success)
	assert.Equal(t, "order-1", res.OrderID)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestSubmit_GivesUpAfterMaxRetries(t *testing.T) {
	srv, calls := sequenceServer(t, []int{500}, []string{serverErrBody})
	sleeper := &recordingSleeper{}
	c := New(srv.URL, WithSleeper(sleeper))

	res := c.Submit(context.Background(), testSubmission())

	assert.False(t, res.Success)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "failed to save order", res.Message)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestSubmit_ServerErrorWithoutBody(t *testing.T) {
	srv, _ := sequenceServer(t, []int{500}, []string{""})
	c := New(srv.URL, WithSleeper(&recordingSleeper{}))

	res := c.Submit(context.Background(), testSubmission())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "Server error occurred. Please try again later.", res.Message)
}

func TestSubmit_ValidationErrorsAreNotRetried(t *testing.T) {
	body := `{"success":false,"message":"Validation failed","errors":[{"field":"customerName","message":"Customer name is required"},{"field":"items[0].price","message":"Price must be greater than 0"}]}`
	srv, calls := sequenceServer(t, []int{400}, []string{body})
	sleeper := &recordingSleeper{}
	c := New(srv.URL, WithSleeper(sleeper))

	res := c.Submit(context.Background(), testSubmission())

	assert.False(t, res.Success)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, "Validation failed", res.Message)
	assert.Equal(t, []string{
		"customerName: Customer name is required",
		"items[0].price: Price must be greater than 0",
	}, res.ValidationErrors)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Empty(t, sleeper.delays)
}

func TestSubmit_UnexpectedStatusIsNotRetried(t *testing.T) {
	srv, calls := sequenceServer(t, []int{http.StatusTeapot}, []string{""})
	sleeper := &recordingSleeper{}
	c := New(srv.URL, WithSleeper(sleeper))

	res := c.Submit(context.Background(), testSubmission())

	assert.False(t, res.Success)
	assert.Equal(t, OutcomeUnexpected, res.Outcome)
	assert.Equal(t, "Unexpected response: 418", res.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Empty(t, sleeper.delays)
}

func TestSubmit_ConnectionErrorsAreRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sleeper := &recordingSleeper{}
	c := New(url, WithSleeper(sleeper))

	res := c.Submit(context.Background(), testSubmission())

	assert.False(t, res.Success)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.Contains(t, res.Message, "Failed after 2 retries.")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestSubmit_AttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	sleeper := &recordingSleeper{}
	c := New(srv.URL, WithSleeper(sleeper), WithAttemptTimeout(50*time.Millisecond))

	res := c.Submit(context.Background(), testSubmission())

	assert.False(t, res.Success)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "Request timed out. Please check your connection and try again.", res.Message)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, sleeper.delays, 2)
}

func TestSubmit_CancelledDuringBackoff(t *testing.T) {
	srv, calls := sequenceServer(t, []int{500}, []string{serverErrBody})
	sleeper := &recordingSleeper{err: context.Canceled}
	c := New(srv.URL, WithSleeper(sleeper))

	res := c.Submit(context.Background(), testSubmission())

	assert.False(t, res.Success)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Message, "context canceled")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestTimerSleeper_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := timerSleeper{}.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}
