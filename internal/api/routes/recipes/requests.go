package recipes

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidMaxDuration = errors.New("max_duration must be a non-negative integer")

// parseMaxDuration parses the max_duration query argument. An empty value
// means no bound.
func parseMaxDuration(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, ErrInvalidMaxDuration
	}
	return &v, nil
}

type AddRatingRequest struct {
	// Score defaults to 5 when omitted.
	Score   *int   `json:"score"`
	Message string `json:"message" validate:"required"`
}
