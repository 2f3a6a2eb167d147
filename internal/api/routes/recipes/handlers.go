// Package recipes contains handlers for the recipes endpoint.
package recipes

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matt-dz/recetario/internal/api/bind"
	apiError "github.com/matt-dz/recetario/internal/api/error"
	"github.com/matt-dz/recetario/internal/api/render"
	"github.com/matt-dz/recetario/internal/api/token"
	"github.com/matt-dz/recetario/internal/cookbook"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/form"
	mJson "github.com/matt-dz/recetario/internal/json"
	"github.com/matt-dz/recetario/internal/recipe"
	"github.com/matt-dz/recetario/internal/session"
)

const (
	maxUploadSize = form.MaxImageSize + 1<<20
	recipeField   = "recipe"
	imageField    = "image"
	uploadTarget  = "recipe"
	recipeIDParam = "id"
)

// HandleListRecipes godoc
//
//	@Summary		List recipes.
//	@Description	Anonymous callers always get every recipe, whatever the mode.
//	@Tags			Recipes
//	@Produce		json
//	@Param			mode			query		string	false	"all, mine or saved"
//	@Param			q				query		string	false	"Case-insensitive name search"
//	@Param			max_duration	query		int		false	"Maximum duration in minutes"
//	@Success		200				{object}	ListRecipesResponse
//	@Failure		400				{object}	apiError.Error	"Invalid query argument"
//	@Router			/api/recipes [get]
func HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	query := r.URL.Query()

	env.Logger.DebugContext(ctx, "Parsing query")
	mode, err := recipe.ParseViewMode(query.Get("mode"))
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid view mode", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UnsupportedViewMode, "mode must be all, mine or saved", requestID)
		return
	}
	maxDuration, err := parseMaxDuration(query.Get("max_duration"))
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid max duration", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidQueryArgument, err.Error(), requestID)
		return
	}
	userID, _ := token.UserIDFromCtx(ctx)
	criteria := recipe.Criteria{
		Mode:        mode,
		UserID:      userID,
		Term:        query.Get("q"),
		MaxDuration: maxDuration,
	}

	env.Logger.DebugContext(ctx, "Listing recipes", slog.String("mode", string(criteria.EffectiveMode())))
	recipes, err := env.Cookbook.ListRecipes(ctx, criteria)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, ListRecipesResponse{Mode: criteria.EffectiveMode(), Recipes: recipes})
}

// HandleCreateRecipe godoc
//
//	@Summary		Create a recipe.
//	@Description	Expects multipart/form-data with the recipe as JSON in the "recipe" field and an
//	@Description	optional JPEG or PNG image of at most 5 MB in the "image" field. Upload progress
//	@Description	is pushed to the user's session watchers.
//	@Tags			Recipes
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			recipe	formData	string	true	"recipe.Draft as JSON"
//	@Param			image	formData	file	false	"Recipe image (JPEG/PNG)"
//	@Success		201		{object}	recipe.Recipe
//	@Failure		400		{object}	apiError.Error	"Malformed form"
//	@Failure		401		{object}	apiError.Error	"Login required"
//	@Failure		413		{object}	apiError.Error	"Image too large"
//	@Failure		415		{object}	apiError.Error	"Unsupported image type"
//	@Failure		422		{object}	apiError.Error	"Invalid recipe"
//	@Security		AccessTokenCookie
//	@Router			/api/recipes [post]
func HandleCreateRecipe(w http.ResponseWriter, r *http.Request) {
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

	var draft recipe.Draft
	if err := mJson.DecodeStrict(&draft, strings.NewReader(r.FormValue(recipeField))); err != nil {
		env.Logger.ErrorContext(ctx, "failed to decode recipe field", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid recipe field", requestID)
		return
	}

	img, err := form.ReadImage(r, imageField)
	switch {
	case errors.Is(err, form.ErrNoImageUploaded):
		env.Logger.DebugContext(ctx, "no image uploaded")
		img = nil
	case errors.Is(err, form.ErrUnsupportedMimeType):
		env.Logger.ErrorContext(ctx, "unsupported file type", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidImage, "only JPEG and PNG images are accepted", requestID)
		return
	case errors.Is(err, form.ErrImageTooLarge):
		env.Logger.ErrorContext(ctx, "image too large", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ImageTooLarge, "image must be at most 5 MB", requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "failed to read recipe image", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid image", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Creating recipe")
	progress := func(percent int) {
		env.Sessions.Publish(userID, session.Progress(uploadTarget, percent))
	}
	created, err := env.Cookbook.CreateRecipe(ctx, userID, draft, img, progress)
	switch {
	case errors.Is(err, recipe.ErrEmptyName),
		errors.Is(err, recipe.ErrInvalidDuration),
		errors.Is(err, recipe.ErrNoSteps):
		env.Logger.ErrorContext(ctx, "invalid recipe", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidRecipe, err.Error(), requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "failed to create recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusCreated, created)
}

// HandleGetRecipe godoc
//
//	@Summary	Get a recipe with its creator and average score.
//	@Tags		Recipes
//	@Produce	json
//	@Param		id	path		string	true	"Recipe ID"
//	@Success	200	{object}	cookbook.Detail
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id} [get]
func HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	recipeID := chi.URLParam(r, recipeIDParam)
	viewerID, _ := token.UserIDFromCtx(ctx)

	env.Logger.DebugContext(ctx, "Getting recipe", slog.String("recipe", recipeID))
	detail, err := env.Cookbook.GetRecipe(ctx, recipeID, viewerID)
	if errors.Is(err, cookbook.ErrRecipeNotFound) {
		env.Logger.ErrorContext(ctx, "recipe not found", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, detail)
}

// HandleDeleteRecipe godoc
//
//	@Summary		Delete a recipe and its ratings.
//	@Description	Only the owner may delete a recipe. A partial_delete error means the recipe was
//	@Description	removed but some of its ratings may remain.
//	@Tags			Recipes
//	@Param			id	path	string	true	"Recipe ID"
//	@Success		204
//	@Failure		401	{object}	apiError.Error	"Login required"
//	@Failure		403	{object}	apiError.Error	"Not the owner"
//	@Failure		404	{object}	apiError.Error	"Recipe not found"
//	@Failure		500	{object}	apiError.Error	"Partial delete"
//	@Security		AccessTokenCookie
//	@Router			/api/recipes/{id} [delete]
func HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	recipeID := chi.URLParam(r, recipeIDParam)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Deleting recipe", slog.String("recipe", recipeID))
	err = env.Cookbook.DeleteRecipe(ctx, recipeID, userID)
	switch {
	case errors.Is(err, cookbook.ErrRecipeNotFound):
		env.Logger.ErrorContext(ctx, "recipe not found", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	case errors.Is(err, cookbook.ErrNotOwner):
		env.Logger.ErrorContext(ctx, "user does not own recipe", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotOwned, "only the owner can delete a recipe", requestID)
		return
	case errors.Is(err, cookbook.ErrPartialDelete):
		env.Logger.ErrorContext(ctx, "recipe partially deleted", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.PartialDelete, "recipe deleted but some ratings remain", requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "failed to delete recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListRatings godoc
//
//	@Summary	List the ratings of a recipe.
//	@Tags		Ratings
//	@Produce	json
//	@Param		id	path		string	true	"Recipe ID"
//	@Success	200	{object}	cookbook.RatingList
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/ratings [get]
func HandleListRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	recipeID := chi.URLParam(r, recipeIDParam)

	env.Logger.DebugContext(ctx, "Listing ratings", slog.String("recipe", recipeID))
	ratings, err := env.Cookbook.ListRatings(ctx, recipeID)
	if errors.Is(err, cookbook.ErrRecipeNotFound) {
		env.Logger.ErrorContext(ctx, "recipe not found", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to list ratings", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, ratings)
}

// HandleAddRating godoc
//
//	@Summary	Rate a recipe.
//	@Tags		Ratings
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Recipe ID"
//	@Param		request	body		AddRatingRequest	true	"Rating"
//	@Success	201		{object}	recipe.Rating
//	@Failure	403		{object}	apiError.Error	"Own recipe"
//	@Failure	404		{object}	apiError.Error	"Recipe not found"
//	@Failure	422		{object}	apiError.Error	"Invalid rating"
//	@Security	AccessTokenCookie
//	@Router		/api/recipes/{id}/ratings [post]
func HandleAddRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	recipeID := chi.URLParam(r, recipeIDParam)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	var request AddRatingRequest
	if !bind.JSON(w, r, &request) {
		return
	}

	env.Logger.DebugContext(ctx, "Adding rating", slog.String("recipe", recipeID))
	rating, err := env.Cookbook.AddRating(ctx, userID, recipeID, request.Score, request.Message)
	switch {
	case errors.Is(err, cookbook.ErrInvalidScore), errors.Is(err, cookbook.ErrEmptyMessage):
		env.Logger.ErrorContext(ctx, "invalid rating", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidRating, err.Error(), requestID)
		return
	case errors.Is(err, cookbook.ErrOwnRecipe):
		env.Logger.ErrorContext(ctx, "user rated own recipe", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.OwnRecipe, "you cannot rate your own recipe", requestID)
		return
	case errors.Is(err, cookbook.ErrRecipeNotFound):
		env.Logger.ErrorContext(ctx, "recipe not found", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "failed to add rating", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusCreated, rating)
}

// HandleSaveRecipe godoc
//
//	@Summary	Save a recipe to the user's list.
//	@Tags		Saved
//	@Produce	json
//	@Param		id	path		string	true	"Recipe ID"
//	@Success	200	{object}	SavedRecipesResponse
//	@Failure	404	{object}	apiError.Error	"Recipe or profile not found"
//	@Failure	409	{object}	apiError.Error	"Already saved"
//	@Security	AccessTokenCookie
//	@Router		/api/recipes/{id}/save [put]
func HandleSaveRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	recipeID := chi.URLParam(r, recipeIDParam)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Saving recipe", slog.String("recipe", recipeID))
	profile, err := env.Cookbook.SaveRecipe(ctx, userID, recipeID)
	switch {
	case errors.Is(err, cookbook.ErrAlreadySaved):
		env.Logger.ErrorContext(ctx, "recipe already saved", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.AlreadySaved, "recipe already saved", requestID)
		return
	case errors.Is(err, cookbook.ErrProfileNotFound):
		env.Logger.ErrorContext(ctx, "profile not found")
		_ = apiError.EncodeError(w, apiError.UserNotFound, "profile not found", requestID)
		return
	case errors.Is(err, cookbook.ErrRecipeNotFound):
		env.Logger.ErrorContext(ctx, "recipe not found", slog.String("recipe", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	case err != nil:
		env.Logger.ErrorContext(ctx, "failed to save recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, SavedRecipesResponse{Saved: profile.Saved})
}

// HandleUnsaveRecipe godoc
//
//	@Summary	Remove a recipe from the user's list.
//	@Tags		Saved
//	@Produce	json
//	@Param		id	path		string	true	"Recipe ID"
//	@Success	200	{object}	SavedRecipesResponse
//	@Failure	404	{object}	apiError.Error	"Profile not found"
//	@Security	AccessTokenCookie
//	@Router		/api/recipes/{id}/save [delete]
func HandleUnsaveRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := render.RequestID(ctx)
	recipeID := chi.URLParam(r, recipeIDParam)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Removing saved recipe", slog.String("recipe", recipeID))
	profile, err := env.Cookbook.UnsaveRecipe(ctx, userID, recipeID)
	if errors.Is(err, cookbook.ErrProfileNotFound) {
		env.Logger.ErrorContext(ctx, "profile not found")
		_ = apiError.EncodeError(w, apiError.UserNotFound, "profile not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to remove saved recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	render.JSON(ctx, w, http.StatusOK, SavedRecipesResponse{Saved: profile.Saved})
}
