// Package middleware contains middleware functions for the API
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/golang-jwt/jwt/v5"

	apiError "github.com/matt-dz/recetario/internal/api/error"
	"github.com/matt-dz/recetario/internal/api/requestid"
	"github.com/matt-dz/recetario/internal/api/token"
	"github.com/matt-dz/recetario/internal/config"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/log"
)

const corsMaxAge = 86400

// InjectEnv injects an environment struct into the request context.
func InjectEnv(environment *env.Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(env.WithCtx(r.Context(), environment)))
		})
	}
}

func LogRequest(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		LogExtraAttrs: func(r *http.Request, reqBody string, respStatus int) []slog.Attr {
			return []slog.Attr{slog.String("log_id", requestid.ExtractRequestID(r.Context()))}
		},
	})
}

// AddRequestID adds a request ID to the request context.
func AddRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := requestid.New()
		r = r.WithContext(log.AppendCtx(r.Context(), slog.String("log_id", requestID)))
		r = r.WithContext(requestid.InjectRequestID(r.Context(), requestID))
		next.ServeHTTP(w, r)
	})
}

// Cors allows the configured origins. Without configured origins,
// production only allows the host origin and development allows any
// origin.
func Cors(conf *config.Config) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   conf.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}
	if len(opts.AllowedOrigins) == 0 {
		if conf.Production() {
			opts.AllowedOrigins = []string{conf.HostOrigin}
		} else {
			opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
		}
	}
	return cors.Handler(opts)
}

// LimitAuth rate limits sign-in attempts per client IP. A non-positive
// rate disables the limit.
func LimitAuth(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			requestID := requestid.ExtractRequestID(r.Context())
			_ = apiError.EncodeError(w, apiError.TooManyRequests, "too many requests", requestID)
		}),
	)
}

// authenticate validates the access token of r and returns the request
// carrying the user's id and claims.
func authenticate(r *http.Request, e *env.Env) (*http.Request, apiError.ErrorCode, error) {
	raw, err := token.ExtractAccessToken(r, e)
	if err != nil {
		return r, apiError.InvalidAccessToken, err
	}
	claims, err := token.ValidateAccessToken(raw, e)
	if errors.Is(err, token.ErrMissingSecret) {
		return r, apiError.InternalServerError, err
	} else if errors.Is(err, jwt.ErrTokenExpired) {
		return r, apiError.ExpiredAccessToken, err
	} else if err != nil {
		return r, apiError.InvalidAccessToken, err
	}
	if claims.Subject == "" {
		return r, apiError.InvalidAccessToken, errors.New("token has no subject")
	}

	ctx := log.AppendCtx(r.Context(), slog.String("user-id", claims.Subject))
	ctx = token.UserIDWithCtx(ctx, claims.Subject)
	ctx = token.ClaimsWithCtx(ctx, claims)
	return r.WithContext(ctx), "", nil
}

// AuthorizeRequest rejects requests without a valid access token.
func AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := env.EnvFromCtx(r.Context())
		requestID := requestid.ExtractRequestID(r.Context())

		authed, code, err := authenticate(r, e)
		switch {
		case code == apiError.InternalServerError:
			e.Logger.ErrorContext(r.Context(), "unable to validate access token", slog.Any("error", err))
			_ = apiError.EncodeInternalError(w, requestID)
			return
		case code == apiError.ExpiredAccessToken:
			e.Logger.ErrorContext(r.Context(), "access token expired", slog.Any("error", err))
			_ = apiError.EncodeError(w, code, "access token expired", requestID)
			return
		case err != nil:
			e.Logger.ErrorContext(r.Context(), "invalid access token", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "login required", requestID)
			return
		}
		next.ServeHTTP(w, authed)
	})
}

// IdentifyRequest attaches the user to the request when a valid access
// token is present. Requests without one continue anonymously.
func IdentifyRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := env.EnvFromCtx(r.Context())
		authed, _, err := authenticate(r, e)
		if err != nil {
			if !errors.Is(err, token.ErrMissingToken) {
				e.Logger.DebugContext(r.Context(), "ignoring invalid access token", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, authed)
	})
}
