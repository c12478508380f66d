package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"archetypes/internal/catalog"
	"archetypes/internal/model"
	"archetypes/internal/repository"
)

// Seeds a demo account and an empty session, and sanity-checks the
// character catalog the server will load.
func main() {
	_ = godotenv.Load()

	cat, err := catalog.Load(catalog.Path())
	if err != nil {
		log.Fatalf("Catalog invalid: %v", err)
	}
	for _, c := range cat.Characters() {
		followUps := 0
		for _, q := range c.Questions {
			followUps += len(q.FollowUps)
		}
		fmt.Printf("character %d %q: %d questions, %d follow-up branches\n",
			c.ID, c.Name, len(c.Questions), followUps)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("archetypes")
	userRepo := repository.NewUserRepo(db)
	sessionRepo := repository.NewSessionRepo(db)

	username := os.Getenv("SEED_USERNAME")
	if username == "" {
		username = "demo"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo123"
	}

	user, err := userRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Fatalf("Failed to look up user: %v", err)
	}
	if user == nil {
		user = &model.User{
			ID:        uuid.New().String(),
			Username:  username,
			Password:  password,
			CreatedAt: time.Now(),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Printf("created user %q (%s)\n", username, user.ID)
	} else {
		fmt.Printf("user %q already exists (%s)\n", username, user.ID)
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	if err := sessionRepo.Create(ctx, session); err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	fmt.Printf("created session %s\n", session.ID)
}
