package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"archetypes/internal/catalog"
	"archetypes/internal/service"
	"archetypes/internal/transport/rest/handler"
	"archetypes/internal/transport/rest/middleware"
	"archetypes/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Catalog           *catalog.Catalog
	AuthService       *service.AuthService
	SessionService    *service.SessionService
	AssessmentService *service.AssessmentService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	characterHandler := handler.NewCharacterHandler(c.Catalog)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AssessmentService)
	assessmentHandler := handler.NewAssessmentHandler(c.SessionService, c.AssessmentService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/characters", characterHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/characters/{characterId}", characterHandler.Get).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{sessionId}/responses", sessionHandler.Responses).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/sessions/{sessionId}/characters/{characterId}/start", assessmentHandler.Start).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{sessionId}/characters/{characterId}/question", assessmentHandler.Current).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{sessionId}/characters/{characterId}/answers", assessmentHandler.Answer).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{sessionId}/characters/{characterId}/complete", assessmentHandler.Complete).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
