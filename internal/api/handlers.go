package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/api/middleware"
	"github.com/example/order-pipeline/internal/command"
	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/example/order-pipeline/internal/metrics"
)

// Response messages returned to clients.
const (
	MsgBodyRequired     = "Request body is required"
	MsgInvalidJSON      = "Invalid JSON format"
	MsgValidationFailed = "Validation failed"
	MsgSaveFailed       = "failed to save order"
	MsgPublishFailed    = "order saved but failed to publish event"
	MsgAccepted         = "Order received successfully"
	MsgInternalError    = "Internal server error"
)

// maxBodyBytes bounds the size of a submission body.
const maxBodyBytes = 1 << 20

// APIResponse is the JSON envelope of every order endpoint.
type APIResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    *OrderData         `json:"data,omitempty"`
	Errors  []order.FieldError `json:"errors,omitempty"`
}

type OrderData struct {
	OrderID   string `json:"orderId"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// Response is a transport-independent result of Submit.
type Response struct {
	Status int
	Body   APIResponse
}

type Handlers struct {
	cmdHandler *command.Handler
	metrics    *metrics.Registry
	logger     *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, reg *metrics.Registry, logger *zap.Logger) *Handlers {
	return &Handlers{
		cmdHandler: cmdHandler,
		metrics:    reg,
		logger:     logger,
	}
}

// Submit handles one raw submission body and never panics; HTTP and API
// Gateway transports both go through it.
func (h *Handlers) Submit(ctx context.Context, requestID string, body []byte) (resp Response) {
	log := h.logger.With(zap.String("request_id", requestID))
	start := time.Now()
	outcome := metrics.OutcomeError

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic while submitting order", zap.Any("panic", rec), zap.Stack("stack"))
			outcome = metrics.OutcomeError
			resp = failure(http.StatusInternalServerError, MsgInternalError)
		}
		if h.metrics != nil {
			h.metrics.Submissions.WithLabelValues(outcome).Inc()
			h.metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
		}
	}()

	if len(bytes.TrimSpace(body)) == 0 {
		outcome = metrics.OutcomeInvalid
		return failure(http.StatusBadRequest, MsgBodyRequired)
	}

	// null, arrays and scalars decode without error but are not orders.
	if bytes.TrimSpace(body)[0] != '{' {
		outcome = metrics.OutcomeInvalid
		return failure(http.StatusBadRequest, MsgInvalidJSON)
	}

	var cmd command.SubmitOrder
	if err := json.Unmarshal(body, &cmd.Submission); err != nil {
		log.Info("rejecting malformed body", zap.Error(err))
		outcome = metrics.OutcomeInvalid
		return failure(http.StatusBadRequest, MsgInvalidJSON)
	}

	o, err := h.cmdHandler.SubmitOrder(ctx, cmd)
	var verrs order.ValidationErrors
	switch {
	case err == nil:
		outcome = metrics.OutcomeAccepted
		return Response{
			Status: http.StatusOK,
			Body: APIResponse{
				Success: true,
				Message: MsgAccepted,
				Data: &OrderData{
					OrderID:   o.ID,
					Message:   MsgAccepted,
					CreatedAt: o.CreatedAtString(),
				},
			},
		}
	case errors.As(err, &verrs):
		outcome = metrics.OutcomeInvalid
		return Response{
			Status: http.StatusBadRequest,
			Body: APIResponse{
				Success: false,
				Message: MsgValidationFailed,
				Errors:  verrs,
			},
		}
	case errors.Is(err, command.ErrSaveFailed):
		outcome = metrics.OutcomeSaveFailed
		return failure(http.StatusInternalServerError, MsgSaveFailed)
	case errors.Is(err, command.ErrPublishFailed):
		outcome = metrics.OutcomePublishFailed
		return failure(http.StatusInternalServerError, MsgPublishFailed)
	default:
		log.Error("unexpected submission error", zap.Error(err))
		return failure(http.StatusInternalServerError, MsgInternalError)
	}
}

func failure(status int, message string) Response {
	return Response{Status: status, Body: APIResponse{Success: false, Message: message}}
}

// SubmitOrder is the POST /order endpoint.
func (h *Handlers) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, APIResponse{Message: MsgInvalidJSON})
		return
	}

	resp := h.Submit(r.Context(), middleware.GetRequestID(r.Context()), body)
	respondJSON(w, resp.Status, resp.Body)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
