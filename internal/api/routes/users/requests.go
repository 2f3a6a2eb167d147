package users

import "github.com/matt-dz/recetario/internal/cookbook"

type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Surname *string `json:"surname" validate:"omitempty,max=100"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

func (u UpdateProfileRequest) update() cookbook.ProfileUpdate {
	return cookbook.ProfileUpdate{Name: u.Name, Surname: u.Surname, Email: u.Email}
}
