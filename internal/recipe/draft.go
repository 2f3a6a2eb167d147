package recipe

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyName       = errors.New("recipe name is required")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrNoSteps         = errors.New("at least one step is required")
)

// Draft is the user input for a new recipe.
type Draft struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Duration    int          `json:"duration"`
	Steps       []string     `json:"steps"`
	Ingredients []Ingredient `json:"ingredients"`
	Tags        []string     `json:"tags"`
}

// Normalize trims the draft, drops blank steps and unnamed ingredients,
// dedupes tags and checks the required fields.
func (d Draft) Normalize() (Draft, error) {
	out := Draft{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Duration:    d.Duration,
		Steps:       make([]string, 0, len(d.Steps)),
		Ingredients: make([]Ingredient, 0, len(d.Ingredients)),
		Tags:        make([]string, 0, len(d.Tags)),
	}

	for _, s := range d.Steps {
		if s = strings.TrimSpace(s); s != "" {
			out.Steps = append(out.Steps, s)
		}
	}
	for _, ing := range d.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			continue
		}
		ing.Quantity = strings.TrimSpace(ing.Quantity)
		ing.Type = strings.TrimSpace(ing.Type)
		out.Ingredients = append(out.Ingredients, ing)
	}
	for _, t := range d.Tags {
		out.Tags = AddTag(out.Tags, t)
	}

	if out.Name == "" {
		return out, ErrEmptyName
	}
	if out.Duration <= 0 {
		return out, ErrInvalidDuration
	}
	if len(out.Steps) == 0 {
		return out, ErrNoSteps
	}
	return out, nil
}

// AddTag appends the trimmed tag unless it is blank or already present.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags
	}
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

// Recipe builds the stored record for a normalized draft.
func (d Draft) Recipe(id, ownerID, photoURL string, createdAt time.Time) Recipe {
	return Recipe{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Duration:    d.Duration,
		PhotoURL:    photoURL,
		Steps:       d.Steps,
		Ingredients: d.Ingredients,
		Tags:        d.Tags,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
	}
}
