// Package filestore scopes blob keys per user and hides the storage backend.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	imagesDir       = "images"
	recipesDir      = "recipes"
	profilePhotoKey = "profile_photo"
)

const (
	DefaultURLPrefix = "/files"
)

var (
	ErrInvalidKeyPart = errors.New("invalid key part")
	ErrNoBackend      = errors.New("no blob backend configured")
)

// Backend stores blobs by key.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	// URL resolves a download URL for a stored blob.
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Object describes a stored blob.
type Object struct {
	Key string
	URL string
}

type FileStore struct {
	backend Backend
}

func New(backend Backend) *FileStore {
	return &FileStore{backend: backend}
}

func (f *FileStore) Backend() Backend {
	if f == nil {
		return nil
	}
	return f.backend
}

func (f *FileStore) WriteRecipeImage(
	ctx context.Context, userID, recipeID, suffix, contentType string, data []byte,
) (Object, error) {
	key, err := RecipeImageKey(userID, recipeID, suffix)
	if err != nil {
		return Object{}, err
	}
	return f.write(ctx, key, contentType, data)
}

func (f *FileStore) WriteProfilePhoto(
	ctx context.Context, userID, suffix, contentType string, data []byte,
) (Object, error) {
	key, err := ProfilePhotoKey(userID, suffix)
	if err != nil {
		return Object{}, err
	}
	return f.write(ctx, key, contentType, data)
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if f.Backend() == nil {
		return ErrNoBackend
	}
	return f.backend.Delete(ctx, key)
}

func (f *FileStore) write(ctx context.Context, key, contentType string, data []byte) (Object, error) {
	if f.Backend() == nil {
		return Object{}, ErrNoBackend
	}
	if err := f.backend.Put(ctx, key, contentType, data); err != nil {
		return Object{}, fmt.Errorf("storing %q: %w", key, err)
	}
	url, err := f.backend.URL(ctx, key)
	if err != nil {
		return Object{Key: key}, fmt.Errorf("resolving url of %q: %w", key, err)
	}
	return Object{Key: key, URL: url}, nil
}

// RecipeImageKey returns images/{userID}/recipes/{recipeID}{suffix}.
func RecipeImageKey(userID, recipeID, suffix string) (string, error) {
	if err := checkKeyParts(userID, recipeID); err != nil {
		return "", err
	}
	return path.Join(imagesDir, userID, recipesDir, recipeID+suffix), nil
}

// ProfilePhotoKey returns images/{userID}/profile_photo{suffix}.
func ProfilePhotoKey(userID, suffix string) (string, error) {
	if err := checkKeyParts(userID); err != nil {
		return "", err
	}
	return path.Join(imagesDir, userID, profilePhotoKey+suffix), nil
}

func checkKeyParts(parts ...string) error {
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return fmt.Errorf("%q: %w", p, ErrInvalidKeyPart)
		}
	}
	return nil
}
