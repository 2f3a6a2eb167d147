// Package user contains the user profile model.
package user

import (
	"strings"

	"github.com/matt-dz/recetario/internal/recipe"
)

type Profile struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Surname  string          `json:"surname"`
	Email    string          `json:"email"`
	PhotoURL string          `json:"photo_url"`
	Saved    []recipe.Recipe `json:"saved"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.Surname)
}

// longNameWords is the word count above which the first two words of a
// display name are treated as the given name.
const longNameWords = 3

// SplitDisplayName splits an identity provider's display name into a
// given name and a surname.
func SplitDisplayName(displayName string) (name, surname string) {
	parts := strings.Fields(displayName)
	switch {
	case len(parts) == 0:
		return "", ""
	case len(parts) > longNameWords:
		return parts[0] + " " + parts[1], strings.Join(parts[2:], " ")
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// New creates the profile stored on a user's first sign-in.
func New(id, displayName, email, photoURL string) Profile {
	name, surname := SplitDisplayName(displayName)
	return Profile{
		ID:       id,
		Name:     name,
		Surname:  surname,
		Email:    email,
		PhotoURL: photoURL,
		Saved:    []recipe.Recipe{},
	}
}
