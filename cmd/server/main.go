package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"archetypes/internal/cache"
	"archetypes/internal/catalog"
	"archetypes/internal/config"
	"archetypes/internal/repository"
	"archetypes/internal/service"
	"archetypes/internal/transport/rest"
	"archetypes/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Intent:   %s", aiConfig.Models.Intent)
	log.Printf("  Analysis: %s", aiConfig.Models.Analysis)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:  configured ✓")
	} else {
		log.Println("  API Key:  NOT SET (using deterministic fallbacks)")
	}

	// Character catalog (schema violations are fatal)
	cat, err := catalog.Load(catalog.Path())
	if err != nil {
		log.Fatal("Failed to load character catalog:", err)
	}
	log.Printf("Loaded %d characters from %s", cat.Len(), catalog.Path())

	// MongoDB connection
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
		log.Println("Warning: MONGO_URI not set, using default")
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("archetypes")

	// Redis connection
	redisAddr := os.Getenv("REDIS_URI")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
		log.Println("Warning: REDIS_URI not set, using default")
	}
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	userRepo := repository.NewUserRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	responseRepo := repository.NewResponseRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	flowCache := cache.NewFlowCache(rdb)

	// Initialize services
	gemini := service.NewGeminiClient(aiConfig)
	authSvc := service.NewAuthService(userRepo)
	classifier := service.NewClassifierService(aiConfig, gemini)
	flow := service.NewFlowService(classifier)
	analyzer := service.NewAnalyzerService(aiConfig, gemini)
	sessionSvc := service.NewSessionService(sessionRepo, responseRepo, sessionCache)
	assessmentSvc := service.NewAssessmentService(cat, flow, analyzer, sessionSvc, responseRepo, flowCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	assessmentSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		Catalog:           cat,
		AuthService:       authSvc,
		SessionService:    sessionSvc,
		AssessmentService: assessmentSvc,
		WSHub:             wsHub,
	}

	router := rest.NewRouter(container)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/register")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/characters")
		log.Println("  POST/GET /v1/sessions")
		log.Println("  GET  /v1/sessions/{id}/responses")
		log.Println("  POST /v1/sessions/{id}/characters/{cid}/start")
		log.Println("  POST /v1/sessions/{id}/characters/{cid}/answers")
		log.Println("  POST /v1/sessions/{id}/characters/{cid}/complete")
		log.Println("  WS   /v1/ws/sessions/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
