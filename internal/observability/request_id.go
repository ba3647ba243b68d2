package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// RequestIDHeader carries the request ID on both inbound and outbound calls.
const RequestIDHeader = "X-Request-ID"

func NewRequestID() string {
	return uuid.New().String()
}

// requestIDOrNew keeps an inbound ID when it is a well-formed UUID, so a
// page request and the backend calls it makes share one ID.
func requestIDOrNew(inbound string) string {
	if inbound == "" {
		return NewRequestID()
	}
	if _, err := uuid.Parse(inbound); err != nil {
		return NewRequestID()
	}
	return inbound
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
