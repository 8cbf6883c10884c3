package api

import (
	"net/http"

	"github.com/fitstudio/fitstudio-server/internal/api/handlers"
	"github.com/fitstudio/fitstudio-server/internal/api/middleware"
	"github.com/fitstudio/fitstudio-server/internal/config"
	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/identity"
	"github.com/fitstudio/fitstudio-server/internal/realtime"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/fitstudio/fitstudio-server/internal/session"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, identityClient *identity.Client, repos *repository.Repositories, hub *realtime.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	cookies := &session.CookieWriter{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}
	negotiator := session.NewNegotiator(identityClient, repos.Profile, cookies)
	negotiator.SetRefreshListener(hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(identityClient, services.Account, negotiator, repos.Profile, cookies, hub)
	profileHandler := handlers.NewProfileHandler(services.Account)
	classHandler := handlers.NewClassHandler(services.Class)
	adminHandler := handlers.NewAdminHandler(services.Account)
	videoHandler := handlers.NewVideoHandler(services.Video)
	webhookHandler := handlers.NewWebhookHandler(services.Video, cfg.VideoWebhookSecret)
	eventsHandler := handlers.NewEventsHandler(hub, identityClient)
	pageHandler := handlers.NewPageHandler()

	// Page routes behind the route gate. The gate decides from cookie
	// shape alone; API handlers below re-verify against the identity
	// provider.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Gate(cookies))
		r.Get("/", pageHandler.Shell)
		r.Get("/auth/login", pageHandler.Shell)
		r.Get("/auth/register", pageHandler.Shell)
		r.Get("/dashboard", pageHandler.Shell)
		r.Get("/admin", pageHandler.Shell)
		r.Get("/admin/*", pageHandler.Shell)
		r.Get("/content-admin", pageHandler.Shell)
		r.Get("/content-admin/*", pageHandler.Shell)
		r.Get("/instructor", pageHandler.Shell)
		r.Get("/instructor/*", pageHandler.Shell)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)
		})

		// Video host webhook (HMAC-authenticated)
		r.Post("/webhooks/video", webhookHandler.HandleVideoEvent)

		// Public class browsing
		r.Get("/classes", classHandler.List)
		r.Get("/classes/{id}", classHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(identityClient, repos.Profile))

			// Profile routes
			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.Get)
				r.Put("/", profileHandler.Update)
			})

			// Class management and enrollment
			r.Route("/classes", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleContentAdmin, domain.RoleInstructor))
					r.Post("/", classHandler.Create)
					r.Put("/{id}", classHandler.Update)
					r.Delete("/{id}", classHandler.Delete)
					r.Get("/{id}/roster", classHandler.Roster)
				})

				r.Post("/{id}/enroll", classHandler.Enroll)
				r.Delete("/{id}/enroll", classHandler.Unenroll)
			})

			// Instructor routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleInstructor))
				r.Get("/instructor/classes", classHandler.MyClasses)
			})

			// Member routes
			r.Get("/users/me/enrollments", classHandler.MyEnrollments)

			// Admin user management
			r.Route("/admin/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/", adminHandler.ListUsers)
				r.Post("/", adminHandler.CreateUser)
				r.Delete("/{id}", adminHandler.DeleteUser)
			})

			// Video content management
			r.Route("/videos", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleContentAdmin))
				r.Post("/uploads", videoHandler.CreateUpload)
				r.Get("/", videoHandler.List)
				r.Get("/{id}", videoHandler.Get)
				r.Delete("/{id}", videoHandler.Delete)
			})
		})

		// Session event stream
		r.Get("/session/events", eventsHandler.Handle)
	})

	return r
}
