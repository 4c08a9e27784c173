package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mrops-br/restyle-storefront/internal/infrastructure/auth"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/config"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/handler"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/middleware"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/telemetry"
)

// InstrumentationName names the tracer and meter of the storefront
const InstrumentationName = "restyle-storefront"

// Handlers groups the route handlers the server mounts
type Handlers struct {
	Pages     *handler.PageHandler
	Products  *handler.ProductHandler
	Favorites *handler.FavoritesHandler
	Auth      *handler.AuthHandler
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	config     *config.Config
	handlers   Handlers
	auth       *auth.Authenticator
	meter      metric.Meter
	logger     *slog.Logger
	telemetry  *telemetry.Telemetry
	httpServer *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	handlers Handlers,
	authenticator *auth.Authenticator,
	telem *telemetry.Telemetry,
) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		handlers:  handlers,
		auth:      authenticator,
		meter:     telem.MeterProvider.Meter(InstrumentationName),
		logger:    telem.Logger,
		telemetry: telem,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: s.Handler(),
	}

	return s
}

// setupMiddleware configures the middleware chain shared by every route
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.HTTPRouteContext())
	s.router.Use(middleware.ActiveRequests(s.meter))

	if s.config.Server.DurationMetricMs {
		s.router.Use(middleware.DurationMilliseconds(s.meter))
	}
}

// setupRoutes mounts the storefront pages, the JSON API and the ops endpoints
func (s *Server) setupRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Favorites(&s.config.Favorites, s.meter, s.logger))
		r.Use(middleware.Session(s.auth))

		pages := s.handlers.Pages
		r.Get("/", pages.Home)
		r.Get("/search", pages.Search)
		r.Get("/products/{id}", pages.Product)
		r.Get("/favorites", pages.Favorites)
		r.Post("/favorites/{id}/toggle", pages.ToggleFavorite)
		r.With(middleware.RequireSession).Get("/account", pages.Account)

		r.Get("/sign-in", s.handlers.Auth.SignInPage)
		r.Post("/sign-in", s.handlers.Auth.SignIn)
		r.Post("/sign-out", s.handlers.Auth.SignOut)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.New(cors.Options{
				AllowedOrigins:   s.config.CORS.AllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: true,
			}).Handler)

			r.Get("/products", s.handlers.Products.ListProducts)
			r.Get("/products/{id}", s.handlers.Products.GetProduct)

			r.Get("/favorites", s.handlers.Favorites.List)
			r.Post("/favorites/{id}/toggle", s.handlers.Favorites.Toggle)
			r.Put("/favorites/{id}", s.handlers.Favorites.Add)
			r.Delete("/favorites/{id}", s.handlers.Favorites.Remove)

			r.Get("/auth/session", s.handlers.Auth.Session)
		})
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint backed by the OpenTelemetry Prometheus reader
	s.router.Get("/metrics", promhttp.HandlerFor(s.telemetry.Registry, promhttp.HandlerOpts{}).ServeHTTP)
}

// Handler returns the router wrapped with otelhttp for request spans and
// the standard http.server.* metrics.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithTracerProvider(s.telemetry.TracerProvider),
		otelhttp.WithMeterProvider(s.telemetry.MeterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			return []attribute.KeyValue{
				attribute.String("http.route", route),
			}
		}),
	)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
