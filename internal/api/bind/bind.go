// Package bind decodes and validates request bodies.
package bind

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	apiError "github.com/matt-dz/recetario/internal/api/error"
	"github.com/matt-dz/recetario/internal/api/render"
	"github.com/matt-dz/recetario/internal/env"
	mJson "github.com/matt-dz/recetario/internal/json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a decoded request.
func Struct(v any) error {
	return validate.Struct(v)
}

// JSON reads a JSON request body into dst and validates it. On failure it
// answers the request with a bad request error and returns false.
func JSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)

	env.Logger.DebugContext(ctx, "Reading request body")
	defer func() { _ = r.Body.Close() }()
	if err := mJson.DecodeStrict(dst, r.Body); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return false
	}
	return true
}
