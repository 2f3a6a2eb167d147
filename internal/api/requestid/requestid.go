// Package requestid carries the ULID assigned to each request.
package requestid

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type requestIDKeyType struct{}

var requestIDKey requestIDKeyType

// Unknown is reported for requests that were never assigned an id.
const Unknown = "N/A"

func New() string {
	return ulid.Make().String()
}

func InjectRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ExtractRequestID returns the request id of ctx, or Unknown.
func ExtractRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v
	}
	return Unknown
}
