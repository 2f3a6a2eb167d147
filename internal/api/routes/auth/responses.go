package auth

import (
	"github.com/matt-dz/recetario/internal/session"
	"github.com/matt-dz/recetario/internal/user"
)

type SessionResponse struct {
	State      session.State `json:"state"`
	Profile    user.Profile  `json:"profile"`
	NewProfile bool          `json:"new_profile"`
}
