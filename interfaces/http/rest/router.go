package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"schoolride-backend/application/commands/bus"
	querybus "schoolride-backend/application/queries/bus"
	"schoolride-backend/application/services"
	"schoolride-backend/infrastructure/config"
	"schoolride-backend/interfaces/http/rest/handlers"
	"schoolride-backend/interfaces/http/rest/middleware"
	"schoolride-backend/pkg/auth"
	"schoolride-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	mongoClient  *mongo.Client
	jwtValidator *auth.JWTValidator
	mirrorSync   *services.MirrorSyncService
	cfg          *config.Config
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	mongoClient *mongo.Client,
	jwtValidator *auth.JWTValidator,
	mirrorSync *services.MirrorSyncService,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		mongoClient:  mongoClient,
		jwtValidator: jwtValidator,
		mirrorSync:   mirrorSync,
		cfg:          cfg,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableTracing {
		router.Use(observability.TracingMiddleware("schoolride-backend"))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.schoolride.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.jwtValidator, rt.cfg.IsLambda, rt.logger))

		// Student endpoints
		r.Route("/students", func(r chi.Router) {
			studentHandler := handlers.NewStudentHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/", studentHandler.CreateStudent)
			r.Get("/", studentHandler.ListStudents)
			r.Get("/{studentID}", studentHandler.GetStudent)
			r.Put("/{studentID}", studentHandler.UpdateStudent)
			r.Delete("/{studentID}", studentHandler.DeleteStudent)
		})

		// Person endpoints
		r.Route("/persons", func(r chi.Router) {
			personHandler := handlers.NewPersonHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/", personHandler.CreatePerson)
			r.Get("/", personHandler.ListPersons)
			r.Get("/{personID}", personHandler.GetPerson)
			r.Put("/{personID}", personHandler.UpdatePerson)
			r.Delete("/{personID}", personHandler.DeletePerson)
		})

		// Operational endpoints for the secondary store
		r.Route("/admin/mirror", func(r chi.Router) {
			adminHandler := handlers.NewAdminHandler(rt.mirrorSync, rt.logger)
			r.Post("/sync", adminHandler.SyncMirror)
			r.Get("/audit", adminHandler.AuditMirror)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck pings the primary store before reporting ready
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if rt.mongoClient != nil {
		if err := rt.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
