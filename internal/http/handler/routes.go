package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"tarvee/internal/auth"
	"tarvee/internal/database"
	"tarvee/internal/http/middleware"
	"tarvee/internal/service"
	"tarvee/internal/storage"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	DB       database.Pinger
	Listings service.ListingService
	Auth     auth.Service
	// Images, when set, serves stored listing images under /images/.
	Images       storage.Storage
	CookieSecure bool
	Logger       *slog.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Every route after this call sees the session resolved by middleware.Authenticate.
func RegisterRoutes(app *fiber.App, d Deps) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	if d.Images != nil {
		app.Get("/images/*", ServeImage(d.Images))
	}

	app.Use(middleware.Authenticate(d.Auth, log))

	api := app.Group("/api")
	api.Get("/categories", ListCategories())
	api.Get("/categories/:slug/listings", ListCategoryListings(d.Listings))
	api.Get("/listings", ListListings(d.Listings))
	api.Post("/listings", middleware.RequireUser(), CreateListing(d.Listings, log))

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", SignUp(d.Auth, d.CookieSecure))
	authGroup.Post("/login", SignIn(d.Auth, d.CookieSecure))
	authGroup.Post("/logout", SignOut(d.Auth, d.CookieSecure, log))
	authGroup.Get("/me", CurrentUser())

	app.Get("/sell", SellPage())
}
