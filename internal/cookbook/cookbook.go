// Package cookbook implements the recipe application's operations on top
// of the document and blob stores.
package cookbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/matt-dz/recetario/internal/docstore"
	"github.com/matt-dz/recetario/internal/filestore"
	"github.com/matt-dz/recetario/internal/form"
	"github.com/matt-dz/recetario/internal/log"
	"github.com/matt-dz/recetario/internal/recipe"
	"github.com/matt-dz/recetario/internal/upload"
	"github.com/matt-dz/recetario/internal/user"
)

var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotOwner        = errors.New("only the owner can delete a recipe")
	ErrPartialDelete   = errors.New("recipe deletion did not complete")
	ErrAlreadySaved    = errors.New("recipe already saved")
	ErrOwnRecipe       = errors.New("cannot rate own recipe")
	ErrInvalidScore    = errors.New("score must be between 1 and 5")
	ErrEmptyMessage    = errors.New("rating message is required")
)

type Service struct {
	recipes docstore.Collection[recipe.Recipe]
	ratings docstore.Collection[recipe.Rating]
	users   docstore.Collection[user.Profile]
	files   *filestore.FileStore
	logger  *slog.Logger

	now              func() time.Time
	newID            func() string
	progressInterval time.Duration
}

func New(store docstore.Store, files *filestore.FileStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = log.NullLogger()
	}
	return &Service{
		recipes:          docstore.NewCollection[recipe.Recipe](store, docstore.Recipes),
		ratings:          docstore.NewCollection[recipe.Rating](store, docstore.Ratings),
		users:            docstore.NewCollection[user.Profile](store, docstore.Users),
		files:            files,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
		progressInterval: upload.DefaultInterval,
	}
}

func (s *Service) getRecipe(ctx context.Context, id string) (recipe.Recipe, error) {
	r, err := s.recipes.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return r, ErrRecipeNotFound
	} else if err != nil {
		return r, fmt.Errorf("getting recipe: %w", err)
	}
	return r, nil
}

func (s *Service) getProfile(ctx context.Context, userID string) (user.Profile, error) {
	p, err := s.users.Get(ctx, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return p, ErrProfileNotFound
	} else if err != nil {
		return p, fmt.Errorf("getting profile: %w", err)
	}
	return p, nil
}

// lookupName resolves a user's full name for rating and creator display.
func (s *Service) lookupName(ctx context.Context, userID string) (string, error) {
	p, err := s.users.Get(ctx, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", recipe.ErrUserNotFound
	} else if err != nil {
		s.logger.WarnContext(ctx, "failed to look up user name",
			slog.String("author", userID), slog.Any("error", err))
		return "", err
	}
	return p.FullName(), nil
}

// storeImage uploads an image while reporting simulated progress.
func (s *Service) storeImage(
	ctx context.Context,
	progress upload.Observer,
	write func(ctx context.Context) (filestore.Object, error),
) (filestore.Object, error) {
	p := upload.Start(ctx, s.progressInterval, progress)
	obj, err := write(ctx)
	if err != nil {
		p.Stop()
		return obj, err
	}
	p.Done()
	return obj, nil
}

func (s *Service) writeRecipeImage(
	ctx context.Context, ownerID, recipeID string, img *form.File, progress upload.Observer,
) (filestore.Object, error) {
	return s.storeImage(ctx, progress, func(ctx context.Context) (filestore.Object, error) {
		return s.files.WriteRecipeImage(ctx, ownerID, recipeID, img.Suffix, img.MimeType, img.Data)
	})
}
