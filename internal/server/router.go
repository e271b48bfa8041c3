// Package server assembles the HTTP router and middleware chain.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	authhandler "todoapp/internal/auth/handler"
	"todoapp/internal/security"
	"todoapp/internal/server/middleware"
	todohandler "todoapp/internal/todo/handler"
)

// NewRouter wires the public auth endpoints and the gated routes. Everything
// after /login and /refresh requires a valid Bearer access token.
func NewRouter(auth *authhandler.AuthHandler, todos *todohandler.TodoHandler, tokens *security.TokenProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.ClientIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Post("/register", auth.Register)
	r.Post("/login", auth.Login)
	r.Post("/refresh", auth.Refresh)
	r.Post("/logout", auth.Logout)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(tokens))
		pr.Post("/logout/all", auth.LogoutAll)
		pr.Route("/todos", func(tr chi.Router) {
			tr.Get("/", todos.List)
			tr.Post("/", todos.Create)
			tr.Put("/{id}", todos.Update)
			tr.Delete("/{id}", todos.Delete)
		})
	})

	return otelhttp.NewHandler(r, "todoapp")
}
