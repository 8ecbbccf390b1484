package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/ayush/bloglist/internal/auth"
	"github.com/ayush/bloglist/internal/blogs"
	"github.com/ayush/bloglist/internal/logutil"
	"github.com/ayush/bloglist/internal/middleware"
	"github.com/ayush/bloglist/internal/users"
)

// Store is everything the handlers persist through.
type Store interface {
	auth.UserStore
	blogs.Store
	users.Store
}

// Deps are the collaborators the router wires together.
type Deps struct {
	Store       Store
	Cache       blogs.ListCache
	Passwords   *auth.Passwords
	Tokens      *auth.Tokens
	Logger      zerolog.Logger
	CORSOrigins []string
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(d Deps) http.Handler {
	authHandler := auth.NewHandler(d.Store, d.Passwords, d.Tokens)
	blogHandler := blogs.NewHandler(d.Store, d.Cache)
	userHandler := users.NewHandler(d.Store, d.Passwords)
	requireUser := middleware.RequireUser(d.Tokens, d.Store)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logutil.AccessLog(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{logutil.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.Pipeline(middleware.ExtractToken))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/blogs", func(r chi.Router) {
		r.Get("/", blogHandler.List)
		r.Get("/stats", blogHandler.Stats)
		r.With(requireUser).Post("/", blogHandler.Create)
		r.With(requireUser).Delete("/{id}", blogHandler.Delete)
		// public; see Handler.Update
		r.Put("/{id}", blogHandler.Update)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.Post("/", userHandler.Register)
	})

	r.Post("/api/login", authHandler.Login)

	return r
}
