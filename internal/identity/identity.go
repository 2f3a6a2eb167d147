// Package identity authenticates users with a password or a Google ID
// token.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/matt-dz/recetario/internal/argon2id"
	"github.com/matt-dz/recetario/internal/docstore"
	"github.com/matt-dz/recetario/internal/password"
)

// Identity is an authenticated user as reported by a sign-in method.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
	PhotoURL    string
}

type Provider string

const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("weak password")
)

// Credential links a sign-in key to a user. Password credentials are
// keyed by lowercase email, Google ones by subject.
type Credential struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	Provider     Provider `json:"provider"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"password_hash,omitempty"`
}

type Accounts struct {
	credentials docstore.Collection[Credential]
	params      argon2id.ArgonParams
}

func NewAccounts(store docstore.Store, params argon2id.ArgonParams) *Accounts {
	return &Accounts{
		credentials: docstore.NewCollection[Credential](store, docstore.Credentials),
		params:      params,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// SignUp registers a password account and returns the identity of the new
// user.
func (a *Accounts) SignUp(ctx context.Context, email, pw, displayName string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if err := password.ValidatePassword(pw, email); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}
	hash, err := argon2id.EncodeHash(pw, a.params)
	if err != nil {
		return Identity{}, fmt.Errorf("hashing password: %w", err)
	}

	cred := Credential{
		ID:           email,
		UserID:       uuid.NewString(),
		Provider:     ProviderPassword,
		Email:        email,
		PasswordHash: hash,
	}
	if err := a.credentials.Create(ctx, cred.ID, cred); errors.Is(err, docstore.ErrConflict) {
		return Identity{}, ErrEmailTaken
	} else if err != nil {
		return Identity{}, fmt.Errorf("storing credential: %w", err)
	}
	return Identity{
		UserID:      cred.UserID,
		DisplayName: strings.TrimSpace(displayName),
		Email:       email,
	}, nil
}

// Login checks an email and password. Unknown emails and wrong passwords
// both yield ErrInvalidCredentials.
func (a *Accounts) Login(ctx context.Context, email, pw string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	cred, err := a.credentials.Get(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) {
		return Identity{}, ErrInvalidCredentials
	} else if err != nil {
		return Identity{}, fmt.Errorf("getting credential: %w", err)
	}
	if cred.Provider != ProviderPassword {
		return Identity{}, ErrInvalidCredentials
	}
	ok, err := argon2id.ComparePasswordAndHash(pw, cred.PasswordHash)
	if err != nil {
		return Identity{}, fmt.Errorf("comparing password: %w", err)
	}
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UserID: cred.UserID, Email: cred.Email}, nil
}

// LinkGoogle returns the user bound to a verified Google account, binding
// a new user on first sign-in.
func (a *Accounts) LinkGoogle(ctx context.Context, g GoogleIdentity) (Identity, error) {
	id := string(ProviderGoogle) + ":" + g.Subject
	cred, err := a.credentials.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		cred = Credential{
			ID:       id,
			UserID:   uuid.NewString(),
			Provider: ProviderGoogle,
			Email:    strings.ToLower(g.Email),
		}
		err = a.credentials.Create(ctx, id, cred)
		if errors.Is(err, docstore.ErrConflict) {
			// Concurrent first sign-in; use the winner's binding.
			cred, err = a.credentials.Get(ctx, id)
		}
	}
	if err != nil {
		return Identity{}, fmt.Errorf("linking google account: %w", err)
	}
	return Identity{
		UserID:      cred.UserID,
		DisplayName: g.Name,
		Email:       cred.Email,
		PhotoURL:    g.Picture,
	}, nil
}
