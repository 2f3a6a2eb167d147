package recipes

import (
	"github.com/matt-dz/recetario/internal/recipe"
)

type ListRecipesResponse struct {
	Mode    recipe.ViewMode `json:"mode"`
	Recipes []recipe.Recipe `json:"recipes"`
}

type SavedRecipesResponse struct {
	Saved []recipe.Recipe `json:"saved"`
}
