// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"context"
	"log/slog"

	"github.com/matt-dz/recetario/internal/argon2id"
	"github.com/matt-dz/recetario/internal/config"
	"github.com/matt-dz/recetario/internal/cookbook"
	"github.com/matt-dz/recetario/internal/docstore"
	"github.com/matt-dz/recetario/internal/docstore/memory"
	"github.com/matt-dz/recetario/internal/filestore"
	mHttp "github.com/matt-dz/recetario/internal/http"
	"github.com/matt-dz/recetario/internal/identity"
	"github.com/matt-dz/recetario/internal/log"
	"github.com/matt-dz/recetario/internal/session"
)

type Env struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    docstore.Store
	Files    *filestore.FileStore
	Cookbook *cookbook.Service
	Accounts *identity.Accounts
	Google   *identity.GoogleVerifier
	Sessions *session.Hub
	HTTP     *mHttp.HTTP
}

// New builds the services that sit on top of the stores. A nil logger
// discards logs.
func New(
	logger *slog.Logger, conf *config.Config, store docstore.Store, files *filestore.FileStore, client *mHttp.HTTP,
) *Env {
	if logger == nil {
		logger = log.NullLogger()
	}
	if conf == nil {
		conf = &config.Config{}
	}
	if client == nil {
		client = mHttp.New(mHttp.DefaultConfig(), logger)
	}
	tokenInfoURL := conf.Google.TokenInfoURL
	if tokenInfoURL == "" {
		tokenInfoURL = config.DefaultTokenInfoURL
	}
	return &Env{
		Logger:   logger,
		Config:   conf,
		Store:    store,
		Files:    files,
		Cookbook: cookbook.New(store, files, logger),
		Accounts: identity.NewAccounts(store, argon2id.DefaultParams),
		Google:   identity.NewGoogleVerifier(client, tokenInfoURL, conf.Google.ClientID),
		Sessions: session.NewHub(),
		HTTP:     client,
	}
}

// Null returns an environment backed by an in-memory document store and
// no blob storage.
func Null() *Env {
	return New(nil, nil, memory.New(), nil, nil)
}

// AppSecret returns the key used to sign access tokens.
func (e *Env) AppSecret() []byte {
	if e.Config == nil || e.Config.AppSecret.Value == nil {
		return nil
	}
	return []byte(*e.Config.AppSecret.Value)
}

func (e *Env) AppSecretVersion() string {
	if e.Config == nil {
		return ""
	}
	return e.Config.AppSecret.Version
}

func (e *Env) Production() bool {
	return e.Config != nil && e.Config.Production()
}

type envKeyType struct{}

var envKey envKeyType

func WithCtx(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// EnvFromCtx returns the environment stored in ctx, or Null() when there
// is none.
func EnvFromCtx(ctx context.Context) *Env {
	if env, ok := ctx.Value(envKey).(*Env); ok {
		return env
	}
	return Null()
}
