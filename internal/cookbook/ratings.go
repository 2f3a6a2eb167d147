package cookbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/matt-dz/recetario/internal/recipe"
)

type RatingList struct {
	Ratings []recipe.AuthoredRating `json:"ratings"`
	Average recipe.Average          `json:"average"`
}

// ListRatings returns the ratings of a recipe with their authors' names.
func (s *Service) ListRatings(ctx context.Context, recipeID string) (RatingList, error) {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return RatingList{}, err
	}
	ratings, err := s.ratings.Query(ctx, recipe.FieldRecipeID, recipeID)
	if err != nil {
		return RatingList{}, fmt.Errorf("querying ratings: %w", err)
	}
	return RatingList{
		Ratings: recipe.ResolveAuthors(ctx, ratings, s.lookupName),
		Average: recipe.Aggregate(ratings),
	}, nil
}

// AddRating stores a rating by userID. A nil score means the default.
// Owners cannot rate their own recipes.
func (s *Service) AddRating(
	ctx context.Context, userID, recipeID string, score *int, message string,
) (recipe.Rating, error) {
	value := recipe.DefaultScore
	if score != nil {
		value = *score
	}
	if !recipe.ValidScore(value) {
		return recipe.Rating{}, ErrInvalidScore
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return recipe.Rating{}, ErrEmptyMessage
	}

	r, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return recipe.Rating{}, err
	}
	if r.OwnerID == userID {
		return recipe.Rating{}, ErrOwnRecipe
	}

	rating := recipe.Rating{
		ID:        s.newID(),
		RecipeID:  recipeID,
		Score:     value,
		Message:   message,
		AuthorID:  userID,
		CreatedAt: s.now(),
	}
	if err := s.ratings.Create(ctx, rating.ID, rating); err != nil {
		return recipe.Rating{}, fmt.Errorf("creating rating: %w", err)
	}
	return rating, nil
}
