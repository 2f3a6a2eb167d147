package recipe

import (
	"errors"
	"fmt"
	"strings"
)

type ViewMode string

const (
	ViewAll   ViewMode = "all"
	ViewMine  ViewMode = "mine"
	ViewSaved ViewMode = "saved"
)

var ErrUnknownViewMode = errors.New("unknown view mode")

// ParseViewMode parses a view mode. The empty string is ViewAll.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewMine:
		return ViewMine, nil
	case ViewSaved:
		return ViewSaved, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownViewMode)
}

// Criteria selects recipes from a collection.
type Criteria struct {
	Mode ViewMode
	// UserID is empty for anonymous callers.
	UserID   string
	SavedIDs map[string]struct{}
	Term     string
	// MaxDuration is an inclusive upper bound in minutes. Nil means no bound.
	MaxDuration *int
}

// EffectiveMode is the mode actually applied. Anonymous callers always
// see every recipe.
func (c Criteria) EffectiveMode() ViewMode {
	if c.UserID == "" || c.Mode == "" {
		return ViewAll
	}
	return c.Mode
}

func (c Criteria) matches(r Recipe, mode ViewMode, term string) bool {
	switch mode {
	case ViewMine:
		if r.OwnerID != c.UserID {
			return false
		}
	case ViewSaved:
		if _, ok := c.SavedIDs[r.ID]; !ok {
			return false
		}
	}

	if term != "" && !strings.Contains(strings.ToLower(r.Name), term) {
		return false
	}

	if c.MaxDuration != nil && r.Duration > *c.MaxDuration {
		return false
	}

	return true
}

// Filter returns the recipes satisfying c, in their original order.
// The result is never nil.
func Filter(recipes []Recipe, c Criteria) []Recipe {
	mode := c.EffectiveMode()
	term := strings.ToLower(c.Term)

	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if c.matches(r, mode, term) {
			out = append(out, r)
		}
	}
	return out
}
