package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/example/order-pipeline/internal/api/middleware"
)

// HandleGatewayRequest adapts an API Gateway proxy request to Submit.
func (h *Handlers) HandleGatewayRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := gatewayRequestID(ctx, req)

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return gatewayResponse(requestID, failure(http.StatusBadRequest, MsgInvalidJSON)), nil
		}
		body = decoded
	}

	resp := h.Submit(middleware.WithRequestID(ctx, requestID), requestID, body)
	return gatewayResponse(requestID, resp), nil
}

func gatewayRequestID(ctx context.Context, req events.APIGatewayProxyRequest) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, middleware.HeaderRequestID) && v != "" {
			return v
		}
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}

func gatewayResponse(requestID string, resp Response) events.APIGatewayProxyResponse {
	body, err := json.Marshal(resp.Body)
	if err != nil {
		resp.Status = http.StatusInternalServerError
		body = []byte(`{"success":false,"message":"` + MsgInternalError + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.Status,
		Headers: map[string]string{
			"Content-Type":             "application/json",
			middleware.HeaderRequestID: requestID,
		},
		Body: string(body),
	}
}
