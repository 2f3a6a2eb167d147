package cookbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/matt-dz/recetario/internal/form"
	"github.com/matt-dz/recetario/internal/recipe"
	"github.com/matt-dz/recetario/internal/upload"
)

// ListRecipes returns the stored recipes matching c, in creation order.
func (s *Service) ListRecipes(ctx context.Context, c recipe.Criteria) ([]recipe.Recipe, error) {
	all, err := s.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	if c.EffectiveMode() == recipe.ViewSaved {
		profile, err := s.getProfile(ctx, c.UserID)
		switch {
		case errors.Is(err, ErrProfileNotFound):
			c.SavedIDs = map[string]struct{}{}
		case err != nil:
			return nil, err
		default:
			c.SavedIDs = recipe.SavedIDs(profile.Saved)
		}
	}
	return recipe.Filter(all, c), nil
}

// Detail is a recipe as shown on its own page.
type Detail struct {
	recipe.Recipe

	CreatorName  string         `json:"creator_name"`
	Average      recipe.Average `json:"average"`
	AverageError string         `json:"average_error,omitempty"`
	CanDelete    bool           `json:"can_delete"`
}

const averageUnavailable = "Error loading rating"

// GetRecipe returns a recipe with its creator's name and average score.
// A failure to load ratings is reported in AverageError rather than
// failing the whole detail.
func (s *Service) GetRecipe(ctx context.Context, id, viewerID string) (Detail, error) {
	r, err := s.getRecipe(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{
		Recipe:      r,
		CreatorName: recipe.DisplayName(ctx, s.lookupName, r.OwnerID),
		CanDelete:   recipe.CanDelete(r, viewerID),
	}
	ratings, err := s.ratings.Query(ctx, recipe.FieldRecipeID, id)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load ratings", slog.String("recipe", id), slog.Any("error", err))
		d.AverageError = averageUnavailable
		return d, nil
	}
	d.Average = recipe.Aggregate(ratings)
	return d, nil
}

// CreateRecipe validates the draft, uploads the optional image and stores
// the recipe. Nothing is stored when validation fails.
func (s *Service) CreateRecipe(
	ctx context.Context, ownerID string, draft recipe.Draft, img *form.File, progress upload.Observer,
) (recipe.Recipe, error) {
	draft, err := draft.Normalize()
	if err != nil {
		return recipe.Recipe{}, err
	}

	id := s.newID()
	r := draft.Recipe(id, ownerID, "", s.now())
	if img != nil {
		obj, err := s.writeRecipeImage(ctx, ownerID, id, img, progress)
		if err != nil {
			if obj.Key != "" {
				s.removeBlob(ctx, obj.Key)
			}
			return recipe.Recipe{}, fmt.Errorf("uploading recipe image: %w", err)
		}
		r.PhotoURL = obj.URL
		r.PhotoKey = obj.Key
	}

	if err := s.recipes.Create(ctx, id, r); err != nil {
		if r.PhotoKey != "" {
			s.removeBlob(ctx, r.PhotoKey)
		}
		return recipe.Recipe{}, fmt.Errorf("creating recipe: %w", err)
	}
	return r, nil
}

// DeleteRecipe removes a recipe and all of its ratings. The rating
// deletions run concurrently. There is no rollback: when any step fails
// the recipe may be gone while some ratings remain, and ErrPartialDelete
// is returned.
func (s *Service) DeleteRecipe(ctx context.Context, id, userID string) error {
	r, err := s.getRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !recipe.CanDelete(r, userID) {
		return ErrNotOwner
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: deleting recipe: %w", ErrPartialDelete, err)
	}

	ratings, err := s.ratings.Query(ctx, recipe.FieldRecipeID, id)
	if err != nil {
		return fmt.Errorf("%w: querying ratings: %w", ErrPartialDelete, err)
	}
	// Every deletion runs to completion; one failure must not cancel the rest.
	var g errgroup.Group
	for _, rating := range ratings {
		g.Go(func() error {
			return s.ratings.Delete(ctx, rating.ID)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: deleting ratings: %w", ErrPartialDelete, err)
	}

	if r.PhotoKey != "" {
		s.removeBlob(ctx, r.PhotoKey)
	}
	return nil
}

func (s *Service) removeBlob(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete blob", slog.String("key", key), slog.Any("error", err))
	}
}
