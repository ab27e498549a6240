package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/sitework/internal/auth"
	httpmiddleware "github.com/wolfeidau/sitework/internal/http"
	"github.com/wolfeidau/sitework/internal/logger"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/service"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/telemetry"
)

// Config holds the HTTP surface settings.
type Config struct {
	CORSOrigins []string

	// TrustProxy honours X-Forwarded-For and X-Real-IP when resolving client addresses.
	TrustProxy bool

	// AuthRatePerMinute and AuthBurst bound the public /auth endpoints per client IP.
	// A zero rate disables the limiter.
	AuthRatePerMinute int
	AuthBurst         int
}

// Server wires the HTTP API to the services.
type Server struct {
	cfg      Config
	services *service.Services
	authn    *auth.Authenticator
	authz    *auth.Authorizer
	metrics  *telemetry.HTTPMetrics
}

// NewServer creates a new server over the given stores and services.
func NewServer(cfg Config, stores store.Stores, codec *auth.Codec, services *service.Services) *Server {
	return &Server{
		cfg:      cfg,
		services: services,
		authn:    auth.NewAuthenticator(codec, stores.Users, stores.Companies),
		authz:    auth.NewAuthorizer(stores.Companies),
		metrics:  telemetry.NewHTTPMetrics(),
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(httpmiddleware.ClientIPMiddleware(s.cfg.TrustProxy))
	r.Use(logger.NewRequests(log, func(r *http.Request) string {
		return httpmiddleware.ClientIPFromContext(r.Context())
	}).Handler)
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	// Health check endpoint for load balancer
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authn.Middleware())

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if s.cfg.AuthRatePerMinute > 0 {
					r.Use(httpmiddleware.NewRateLimiter(s.cfg.AuthRatePerMinute, s.cfg.AuthBurst).Middleware())
				}
				r.Post("/login", s.login)
				r.Post("/register", s.register)
				r.Post("/refresh", s.refresh)
			})

			r.With(s.authz.Require(auth.Policy{})).Post("/logout", s.logout)
			r.With(s.authz.Require(auth.Policy{})).Get("/me", s.me)
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(s.authz.Require(auth.Policy{AllowTarget: true})).Get("/", s.listProjects)
			r.With(s.authz.Require(auth.Policy{MinRole: models.RoleManager})).Post("/", s.createProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.With(s.authz.Require(auth.Policy{})).Get("/", s.getProject)
				r.With(s.authz.Require(auth.Policy{MinRole: models.RoleManager})).Put("/", s.updateProject)
				r.With(s.authz.Require(auth.Policy{MinRole: models.RoleAdmin})).Delete("/", s.deleteProject)

				r.With(s.authz.Require(auth.Policy{})).Get("/tasks", s.listTasks)
				r.With(s.authz.Require(auth.Policy{})).Post("/tasks", s.createTask)
			})
		})

		r.With(s.authz.Require(auth.Policy{})).Put("/tasks/{taskID}", s.updateTask)

		r.Route("/users", func(r chi.Router) {
			r.With(s.authz.Require(auth.Policy{MinRole: models.RoleManager, AllowTarget: true})).Get("/", s.listUsers)
			r.With(s.authz.Require(auth.Policy{MinRole: models.RoleAdmin})).Post("/", s.createUser)
			r.With(s.authz.Require(auth.Policy{MinRole: models.RoleAdmin})).Patch("/{userID}", s.updateUser)
		})

		r.Route("/admin/companies", func(r chi.Router) {
			r.Use(s.authz.Require(auth.Policy{RootOnly: true}))
			r.Get("/", s.listCompanies)
			r.Post("/", s.createCompany)
			r.Get("/{companyID}", s.getCompany)
			r.Patch("/{companyID}", s.updateCompany)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteProblem(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteProblem(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
