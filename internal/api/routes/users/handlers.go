// Package users contains handlers for the signed-in user's profile.
package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/matt-dz/recetario/internal/api/bind"
	apiError "github.com/matt-dz/recetario/internal/api/error"
	"github.com/matt-dz/recetario/internal/api/render"
	"github.com/matt-dz/recetario/internal/api/token"
	"github.com/matt-dz/recetario/internal/cookbook"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/form"
	"github.com/matt-dz/recetario/internal/session"
)

const (
	maxUploadSize = form.MaxImageSize + 1<<20
	imageField    = "image"
	uploadTarget  = "profile_photo"
)

// HandleGetMe godoc
//
//	@Summary	Get the signed-in user's profile.
//	@Tags		User
//	@Produce	json
//	@Success	200	{object}	user.Profile
//	@Failure	401	{object}	apiError.Error	"Login required"
//	@Failure	404	{object}	apiError.Error	"Profile not found"
//	@Security	AccessTokenCookie
//	@Router		/api/users/me [get]
func HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Getting profile")
	profile, err := env.Cookbook.GetProfile(ctx, userID)
	if errors.Is(err, cookbook.ErrProfileNotFound) {
		env.Logger.ErrorContext(ctx, "profile not found")
		_ = apiError.EncodeError(w, apiError.UserNotFound, "profile not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to get profile", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, profile)
}

// HandleUpdateMe godoc
//
//	@Summary		Update the signed-in user's profile.
//	@Description	Omitted fields are left unchanged.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Param			request	body		UpdateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	user.Profile
//	@Failure		400		{object}	apiError.Error	"Bad request"
//	@Failure		404		{object}	apiError.Error	"Profile not found"
//	@Security		AccessTokenCookie
//	@Router			/api/users/me [patch]
func HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	var request UpdateProfileRequest
	if !bind.JSON(w, r, &request) {
		return
	}

	env.Logger.DebugContext(ctx, "Updating profile")
	profile, err := env.Cookbook.UpdateProfile(ctx, userID, request.update())
	if errors.Is(err, cookbook.ErrProfileNotFound) {
		env.Logger.ErrorContext(ctx, "profile not found")
		_ = apiError.EncodeError(w, apiError.UserNotFound, "profile not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to update profile", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, profile)
}

// HandleSetPhoto godoc
//
//	@Summary		Replace the signed-in user's profile photo.
//	@Description	Expects multipart/form-data with a JPEG or PNG image of at most 5 MB in the
//	@Description	"image" field. Upload progress is pushed to the user's session watchers.
//	@Tags			User
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Profile photo (JPEG/PNG)"
//	@Success		200		{object}	user.Profile
//	@Failure		400		{object}	apiError.Error	"Missing image"
//	@Failure		413		{object}	apiError.Error	"Image too large"
//	@Failure		415		{object}	apiError.Error	"Unsupported image type"
//	@Security		AccessTokenCookie
//	@Router			/api/users/me/photo [put]
func HandleSetPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Reading multipart form")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			env.Logger.ErrorContext(ctx, "request too large", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.ImageTooLarge, "image must be at most 5 MB", requestID)
			return
		}
		env.Logger.ErrorContext(ctx, "failed to parse multipart form", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid multipart form", requestID)
		return
	}

	img, err := form.ReadImage(r, imageField)
	switch {
	case errors.Is(err, form.ErrNoImageUploaded):
		env.Logger.ErrorContext(ctx, "no image uploaded")
		_ = apiError.EncodeError(w, apiError.BadRequest, "image is required", requestID)
		return
	case errors.Is(err, form.ErrUnsupportedMimeType):
		env.Logger.ErrorContext(ctx, "unsupported file type", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidImage, "only JPEG and PNG images are accepted", requestID)
		return
	case errors.Is(err, form.ErrImageTooLarge):
		env.Logger.ErrorContext(ctx, "image too large", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ImageTooLarge, "image must be at most 5 MB", requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "failed to read image", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid image", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Uploading profile photo")
	progress := func(percent int) {
		env.Sessions.Publish(userID, session.Progress(uploadTarget, percent))
	}
	profile, err := env.Cookbook.SetProfilePhoto(ctx, userID, img, progress)
	if errors.Is(err, cookbook.ErrProfileNotFound) {
		env.Logger.ErrorContext(ctx, "profile not found")
		_ = apiError.EncodeError(w, apiError.UserNotFound, "profile not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to set profile photo", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, profile)
}
