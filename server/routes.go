package server

import (
	"net/http"

	"github.com/bazaarhq/bazaar-server/handlers"
	"github.com/bazaarhq/bazaar-server/middlewares"
	"github.com/bazaarhq/bazaar-server/models"
	"github.com/bazaarhq/bazaar-server/realtime"
	"github.com/bazaarhq/bazaar-server/store"
	"github.com/bazaarhq/bazaar-server/utils"
	"github.com/go-chi/chi"
)

type Server struct {
	chi.Router
}

// Deps carries everything the route table needs. Built once in main and
// threaded in explicitly; no package-level state.
type Deps struct {
	JWTSecret      string
	AllowedOrigins []string

	Admins *store.AdminRepository

	Listings *handlers.ListingHandler
	Admin    *handlers.AdminHandler
	Auth     *handlers.AuthHandler
	Catalog  *handlers.CatalogHandler
	Hub      *realtime.Hub
}

// SetupRoutes provides all the routes that can be used
func SetupRoutes(deps Deps) *Server {
	router := chi.NewRouter()

	authOnly := middlewares.Auth(deps.JWTSecret)
	adminOnly := middlewares.AdminOnly(deps.Admins)

	router.Route("/api", func(r chi.Router) {
		r.Use(middlewares.CommonMiddlewares(deps.AllowedOrigins)...)

		// health endpoint
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
		})

		// public routes
		r.Get("/listings", deps.Listings.List)
		r.Get("/items", deps.Catalog.Items)

		// authenticated routes
		r.Group(func(auth chi.Router) {
			auth.Use(authOnly)

			auth.Post("/listings", deps.Listings.Create)
			auth.Put("/listings/{id}", deps.Listings.Update)
			auth.Delete("/listings/{id}", deps.Listings.Delete)

			auth.Get("/is-admin", deps.Admin.IsAdmin)

			// admin-gated routes
			auth.Route("/admin", func(admin chi.Router) {
				admin.Use(adminOnly)

				admin.Delete("/listings/{id}", deps.Listings.AdminDelete)
				admin.Get("/users", deps.Admin.ListAdmins)
				admin.Post("/users/add", deps.Admin.AddAdmin)
				admin.Post("/users/remove", deps.Admin.RemoveAdmin)
			})
		})
	})

	// OAuth handshake; browser redirects, not JSON
	router.Route("/auth", func(r chi.Router) {
		r.Get("/discord", deps.Auth.Login)
		r.Get("/discord/callback", deps.Auth.Callback)
	})

	// realtime broadcast channel
	router.Get("/ws", deps.Hub.ServeWS)

	return &Server{Router: router}
}

func (svc *Server) Run(addr string) error {
	return http.ListenAndServe(addr, svc)
}
