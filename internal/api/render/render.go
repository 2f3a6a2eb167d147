// Package render writes API response bodies.
package render

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	apiError "github.com/matt-dz/recetario/internal/api/error"
	"github.com/matt-dz/recetario/internal/api/requestid"
	"github.com/matt-dz/recetario/internal/env"
)

// RequestID returns the request id of ctx as reported in error bodies.
func RequestID(ctx context.Context) string {
	return requestid.ExtractRequestID(ctx)
}

// JSON writes v with the given status code.
func JSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	env := env.EnvFromCtx(ctx)
	env.Logger.DebugContext(ctx, "Writing response")
	resp, err := json.Marshal(v)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to marshal response", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, RequestID(ctx))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(resp); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
