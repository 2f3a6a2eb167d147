package cookbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matt-dz/recetario/internal/docstore"
	"github.com/matt-dz/recetario/internal/filestore"
	"github.com/matt-dz/recetario/internal/form"
	"github.com/matt-dz/recetario/internal/identity"
	"github.com/matt-dz/recetario/internal/recipe"
	"github.com/matt-dz/recetario/internal/upload"
	"github.com/matt-dz/recetario/internal/user"
)

func (s *Service) GetProfile(ctx context.Context, userID string) (user.Profile, error) {
	return s.getProfile(ctx, userID)
}

// EnsureProfile creates the profile of a user signing in for the first
// time. It reports whether a profile was created.
func (s *Service) EnsureProfile(ctx context.Context, id identity.Identity) (user.Profile, bool, error) {
	p, err := s.getProfile(ctx, id.UserID)
	if err == nil {
		return p, false, nil
	} else if !errors.Is(err, ErrProfileNotFound) {
		return p, false, err
	}

	p = user.New(id.UserID, id.DisplayName, id.Email, id.PhotoURL)
	if err := s.users.Create(ctx, p.ID, p); errors.Is(err, docstore.ErrConflict) {
		p, err = s.getProfile(ctx, id.UserID)
		return p, false, err
	} else if err != nil {
		return p, false, fmt.Errorf("creating profile: %w", err)
	}
	return p, true, nil
}

// ProfileUpdate holds the profile fields to change. Nil fields are kept.
type ProfileUpdate struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (user.Profile, error) {
	p, err := s.getProfile(ctx, userID)
	if err != nil {
		return p, err
	}
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Surname != nil {
		p.Surname = strings.TrimSpace(*u.Surname)
	}
	if u.Email != nil {
		p.Email = strings.TrimSpace(*u.Email)
	}
	if err := s.users.Update(ctx, userID, p); err != nil {
		return p, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}

// SetProfilePhoto uploads a new profile photo, replacing the previous one.
func (s *Service) SetProfilePhoto(
	ctx context.Context, userID string, img *form.File, progress upload.Observer,
) (user.Profile, error) {
	p, err := s.getProfile(ctx, userID)
	if err != nil {
		return p, err
	}
	obj, err := s.storeImage(ctx, progress, func(ctx context.Context) (filestore.Object, error) {
		return s.files.WriteProfilePhoto(ctx, userID, img.Suffix, img.MimeType, img.Data)
	})
	if err != nil {
		return p, fmt.Errorf("uploading profile photo: %w", err)
	}
	p.PhotoURL = obj.URL
	if err := s.users.Update(ctx, userID, p); err != nil {
		return p, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}

// SaveRecipe appends a snapshot of a recipe to the user's saved list. The
// check and the write are separate operations, so concurrent saves of the
// same recipe may both succeed.
func (s *Service) SaveRecipe(ctx context.Context, userID, recipeID string) (user.Profile, error) {
	p, err := s.getProfile(ctx, userID)
	if err != nil {
		return p, err
	}
	r, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return p, err
	}

	saved, appended := recipe.AppendSaved(p.Saved, r)
	if !appended {
		return p, ErrAlreadySaved
	}
	p.Saved = saved
	if err := s.users.Update(ctx, userID, p); err != nil {
		return p, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}

// UnsaveRecipe removes a recipe from the user's saved list. Removing a
// recipe that is not saved is a no-op.
func (s *Service) UnsaveRecipe(ctx context.Context, userID, recipeID string) (user.Profile, error) {
	p, err := s.getProfile(ctx, userID)
	if err != nil {
		return p, err
	}
	saved, removed := recipe.RemoveSaved(p.Saved, recipeID)
	if !removed {
		return p, nil
	}
	p.Saved = saved
	if err := s.users.Update(ctx, userID, p); err != nil {
		return p, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}
