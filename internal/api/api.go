// Package api sets up and starts the API
// server with routing, middleware, and Swagger documentation.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/matt-dz/recetario/docs"
	"github.com/matt-dz/recetario/internal/api/middleware"
	"github.com/matt-dz/recetario/internal/api/routes/auth"
	"github.com/matt-dz/recetario/internal/api/routes/ping"
	"github.com/matt-dz/recetario/internal/api/routes/recipes"
	"github.com/matt-dz/recetario/internal/api/routes/sessions"
	"github.com/matt-dz/recetario/internal/api/routes/users"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/fileserver"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func addDocs(r chi.Router, hostOrigin string) {
	swagger := httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("%s/api/swagger/doc.json", hostOrigin)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)

	r.Mount("/api/swagger", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Handle preflight
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if req.Method == http.MethodGet {
			swagger.ServeHTTP(w, req)
			return
		}

		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}))
}

// addFiles serves stored blobs when they live on the local volume.
func addFiles(r chi.Router, e *env.Env) {
	if e.Files == nil {
		return
	}
	fs, ok := e.Files.Backend().(*fileserver.FileServer)
	if !ok || fs.URLPrefix() == "" {
		return
	}
	prefix := fs.URLPrefix()
	handler := http.StripPrefix(prefix, http.FileServer(http.Dir(fs.BaseDirectory())))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		handler.ServeHTTP(w, req)
	})
}

func addRoutes(router chi.Router, e *env.Env) {
	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.HandlePing)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.LimitAuth(e.Config.HTTP.AuthRate))

				r.Post("/signup", auth.HandleSignUp)
				r.Post("/login", auth.HandleLogin)
				r.Post("/google", auth.HandleGoogleLogin)
			})
			r.With(middleware.IdentifyRequest).Post("/logout", auth.HandleLogout)
		})

		r.Route("/session", func(r chi.Router) {
			r.Use(middleware.IdentifyRequest)

			r.Get("/", sessions.HandleGetSession)
			r.Get("/watch", sessions.HandleWatchSession)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.With(middleware.IdentifyRequest).Get("/", recipes.HandleListRecipes)
			r.With(middleware.AuthorizeRequest).Post("/", recipes.HandleCreateRecipe)

			r.Route("/{id}", func(r chi.Router) {
				r.With(middleware.IdentifyRequest).Get("/", recipes.HandleGetRecipe)
				r.Get("/ratings", recipes.HandleListRatings)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AuthorizeRequest)

					r.Delete("/", recipes.HandleDeleteRecipe)
					r.Post("/ratings", recipes.HandleAddRating)
					r.Put("/save", recipes.HandleSaveRecipe)
					r.Delete("/save", recipes.HandleUnsaveRecipe)
				})
			})
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(middleware.AuthorizeRequest)

			r.Get("/", users.HandleGetMe)
			r.Patch("/", users.HandleUpdateMe)
			r.Put("/photo", users.HandleSetPhoto)
		})
	})
}

// NewRouter wires the middleware and every route of the API.
func NewRouter(e *env.Env) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.AddRequestID)
	router.Use(middleware.LogRequest(e.Logger))
	router.Use(middleware.InjectEnv(e))
	router.Use(middleware.Cors(e.Config))

	addRoutes(router, e)
	addDocs(router, e.Config.HostOrigin)
	addFiles(router, e)
	return router
}

// Start godoc
//
//	@title						Recetario API
//	@version					1.0
//	@description				API Server for the Recetario recipe sharing application.
//
//	@securityDefinitions.apikey	AccessTokenCookie
//	@in							cookie
//	@name						access
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//
//	@host						localhost:8080
//	@BasePath					/api
func Start(ctx context.Context, e *env.Env) error {
	server := &http.Server{
		Addr:              e.Config.HTTP.Address,
		Handler:           NewRouter(e),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		e.Logger.Info(fmt.Sprintf("Listening at %s", server.Addr))
		e.Logger.Info(fmt.Sprintf("Swagger UI available at %s/api/swagger/index.html", e.Config.HostOrigin))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	e.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error("graceful shutdown failed", slog.Any("error", err))
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
