package recipe

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Placeholders shown instead of an author's name.
const (
	UnknownUser  = "Unknown user"
	DeletedUser  = "Deleted user"
	LookupFailed = "Error loading user"
)

const NoRatings = "No ratings"

// ErrUserNotFound is returned by a NameLookup when no profile exists for the user.
var ErrUserNotFound = errors.New("user not found")

// Average is the mean score of a set of ratings. The zero value is the
// "no ratings" state.
type Average struct {
	Value float64
	Count int
}

// Aggregate computes the mean score of ratings rounded to one decimal place.
func Aggregate(ratings []Rating) Average {
	if len(ratings) == 0 {
		return Average{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	mean := float64(sum) / float64(len(ratings))

	return Average{
		Value: math.Round(mean*10) / 10,
		Count: len(ratings),
	}
}

func (a Average) Rated() bool {
	return a.Count > 0
}

func (a Average) String() string {
	if !a.Rated() {
		return NoRatings
	}
	return strconv.FormatFloat(a.Value, 'f', 1, 64)
}

type averageJSON struct {
	Rated   bool     `json:"rated"`
	Value   *float64 `json:"value"`
	Count   int      `json:"count"`
	Display string   `json:"display"`
}

func (a Average) MarshalJSON() ([]byte, error) {
	out := averageJSON{
		Rated:   a.Rated(),
		Count:   a.Count,
		Display: a.String(),
	}
	if a.Rated() {
		v := a.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// NameLookup returns the full name of a user.
type NameLookup func(ctx context.Context, userID string) (string, error)

// DisplayName resolves a user's name, falling back to a placeholder when
// the user is unknown or the lookup fails.
func DisplayName(ctx context.Context, lookup NameLookup, userID string) string {
	if userID == "" {
		return UnknownUser
	}

	name, err := lookup(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return DeletedUser
	} else if err != nil {
		return LookupFailed
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownUser
	}
	return name
}

type AuthoredRating struct {
	Rating

	AuthorName string `json:"author_name"`
}

// ResolveAuthors attaches author names to ratings. Each author is looked
// up at most once.
func ResolveAuthors(ctx context.Context, ratings []Rating, lookup NameLookup) []AuthoredRating {
	names := make(map[string]string)
	out := make([]AuthoredRating, 0, len(ratings))
	for _, r := range ratings {
		name, ok := names[r.AuthorID]
		if !ok {
			name = DisplayName(ctx, lookup, r.AuthorID)
			names[r.AuthorID] = name
		}
		out = append(out, AuthoredRating{Rating: r, AuthorName: name})
	}
	return out
}
