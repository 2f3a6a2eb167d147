// Package recipe contains the recipe data model and the logic applied to
// recipe collections: filtering, rating aggregation, saved lists and
// draft normalization.
package recipe

import (
	"time"
)

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Type     string `json:"type,omitempty"`
}

type Recipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Duration    int          `json:"duration"`
	PhotoURL    string       `json:"photo_url"`
	PhotoKey    string       `json:"photo_key,omitempty"`
	Steps       []string     `json:"steps"`
	Ingredients []Ingredient `json:"ingredients"`
	Tags        []string     `json:"tags"`
	OwnerID     string       `json:"owner_id"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Rating is a score and comment attached to one recipe by one user.
// Ratings are immutable once created.
type Rating struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	Score     int       `json:"score"`
	Message   string    `json:"message"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	MinScore     = 1
	MaxScore     = 5
	DefaultScore = MaxScore
)

// Field names used for equality queries against stored documents.
const (
	FieldRecipeID = "recipe_id"
	FieldOwnerID  = "owner_id"
)

// CanDelete reports whether userID may delete r. Only the owner can.
func CanDelete(r Recipe, userID string) bool {
	return userID != "" && r.OwnerID == userID
}

func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
