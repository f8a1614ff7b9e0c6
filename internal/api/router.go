package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/second-brain-be/internal/api/handlers"
	"github.com/isdelr/second-brain-be/internal/auth"
	"github.com/isdelr/second-brain-be/internal/services"
)

// RouterDeps bundles what the router needs to wire its handlers.
type RouterDeps struct {
	UserService  services.UserServiceProvider
	BrainService services.BrainServiceProvider
	ItemService  services.ItemServiceProvider
	Verifier     auth.GoogleVerifier
	JWTSecret    []byte
	CORSOrigin   string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.UserService, deps.Verifier, deps.JWTSecret)
	brainHandler := handlers.NewBrainHandler(deps.BrainService)
	itemHandler := handlers.NewItemHandler(deps.ItemService)

	requireAuth := auth.JWTMiddleware(deps.JWTSecret)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/google", authHandler.GoogleLogin)
			r.With(requireAuth).Get("/me", authHandler.GetMe)
		})

		r.Route("/brains", func(r chi.Router) {
			// Public share resolution stays outside the auth guard
			r.Get("/shared/{token}", brainHandler.GetShared)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", brainHandler.GetAll)
				r.Post("/", brainHandler.Create)
				r.Post("/{id}/share", brainHandler.Share)
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", itemHandler.GetAll)
			r.Post("/", itemHandler.Create)
			r.Put("/{id}", itemHandler.Update)
			r.Delete("/{id}", itemHandler.Delete)
		})
	})

	return r
}
