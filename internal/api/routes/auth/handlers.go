// Package auth contains handlers for the auth endpoints
package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/matt-dz/recetario/internal/api/bind"
	apiError "github.com/matt-dz/recetario/internal/api/error"
	"github.com/matt-dz/recetario/internal/api/render"
	"github.com/matt-dz/recetario/internal/api/token"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/identity"
	"github.com/matt-dz/recetario/internal/jwt"
	"github.com/matt-dz/recetario/internal/session"
)

// signIn makes sure the user has a profile, sets the access token cookie
// and notifies the user's session watchers.
func signIn(w http.ResponseWriter, r *http.Request, id identity.Identity, status int) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)

	env.Logger.DebugContext(ctx, "Ensuring user profile", slog.String("user-id", id.UserID))
	profile, created, err := env.Cookbook.EnsureProfile(ctx, id)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to ensure profile", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Generating access token")
	accessToken, err := token.NewAccessToken(jwt.JWTParams{UserID: id.UserID, Email: id.Email}, env)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create access token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	http.SetCookie(w, token.NewAccessTokenCookie(accessToken, env))

	event := session.SignedIn(id.UserID, id.Email)
	env.Sessions.Publish(id.UserID, event)
	render.JSON(ctx, w, status, SessionResponse{
		State:      *event.State,
		Profile:    profile,
		NewProfile: created,
	})
}

// HandleSignUp godoc
//
//	@Summary	Register with email and password.
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SignUpRequest	true	"Sign up request"
//	@Success	201		{object}	SessionResponse
//	@Failure	400		{object}	apiError.Error	"Invalid request body"
//	@Failure	409		{object}	apiError.Error	"Email already registered"
//	@Failure	422		{object}	apiError.Error	"Weak password"
//	@Router		/api/auth/signup [post]
func HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)

	var request SignUpRequest
	if !bind.JSON(w, r, &request) {
		return
	}

	env.Logger.DebugContext(ctx, "Creating account")
	id, err := env.Accounts.SignUp(ctx, request.Email, request.Password, request.DisplayName)
	switch {
	case errors.Is(err, identity.ErrInvalidEmail):
		env.Logger.ErrorContext(ctx, "Invalid email", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid email address", requestID)
		return
	case errors.Is(err, identity.ErrWeakPassword):
		env.Logger.ErrorContext(ctx, "Weak password", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.WeakPassword, err.Error(), requestID)
		return
	case errors.Is(err, identity.ErrEmailTaken):
		env.Logger.ErrorContext(ctx, "Email already registered", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.EmailConflict, "email already in use", requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "Failed to create account", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	signIn(w, r, id, http.StatusCreated)
}

// HandleLogin godoc
//
//	@Summary	Sign in with email and password.
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Login request"
//	@Success	200		{object}	SessionResponse
//	@Failure	401		{object}	apiError.Error	"Invalid credentials"
//	@Failure	429		{object}	apiError.Error	"Too many attempts"
//	@Router		/api/auth/login [post]
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)

	var request LoginRequest
	if !bind.JSON(w, r, &request) {
		return
	}

	env.Logger.DebugContext(ctx, "Checking credentials")
	id, err := env.Accounts.Login(ctx, request.Email, request.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		env.Logger.ErrorContext(ctx, "Invalid credentials", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "email or password is incorrect", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to check credentials", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	signIn(w, r, id, http.StatusOK)
}

// HandleGoogleLogin godoc
//
//	@Summary		Sign in with a Google ID token.
//	@Description	Creates the user's profile from the Google account on first sign-in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GoogleLoginRequest	true	"Google login request"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	apiError.Error	"Invalid ID token"
//	@Failure		501		{object}	apiError.Error	"Google sign-in not configured"
//	@Router			/api/auth/google [post]
func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)

	var request GoogleLoginRequest
	if !bind.JSON(w, r, &request) {
		return
	}

	env.Logger.DebugContext(ctx, "Verifying Google ID token")
	g, err := env.Google.Verify(ctx, request.IDToken)
	switch {
	case errors.Is(err, identity.ErrGoogleDisabled):
		env.Logger.ErrorContext(ctx, "Google sign-in is not configured")
		_ = apiError.EncodeError(w, apiError.ProviderDisabled, "google sign-in is not available", requestID)
		return
	case errors.Is(err, identity.ErrInvalidIDToken),
		errors.Is(err, identity.ErrAudienceMismatch),
		errors.Is(err, identity.ErrEmailNotVerified):
		env.Logger.ErrorContext(ctx, "Rejected Google ID token", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidIDToken, "invalid google id token", requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "Failed to verify Google ID token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Linking Google account")
	id, err := env.Accounts.LinkGoogle(ctx, g)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to link Google account", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	signIn(w, r, id, http.StatusOK)
}

// HandleLogout godoc
//
//	@Summary	Sign out.
//	@Tags		Auth
//	@Success	204
//	@Router		/api/auth/logout [post]
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	env.Logger.DebugContext(ctx, "Clearing access token")
	http.SetCookie(w, token.ClearAccessTokenCookie(env))
	if userID, err := token.UserIDFromCtx(ctx); err == nil {
		env.Sessions.Publish(userID, session.SignedOut())
	}
	w.WriteHeader(http.StatusNoContent)
}
