package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"archetypes/internal/model"
)

type ResponseRepo interface {
	Create(ctx context.Context, response *model.CharacterResponse) error
	GetBySessionID(ctx context.Context, sessionID string) ([]*model.CharacterResponse, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

type responseRepo struct {
	collection *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("character_responses"),
	}
}

func (r *responseRepo) Create(ctx context.Context, response *model.CharacterResponse) error {
	if response.CreatedAt.IsZero() {
		response.CreatedAt = time.Now()
	}
	if response.ID == "" {
		response.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, response)
	return err
}

func (r *responseRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*model.CharacterResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.CharacterResponse
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) DeleteBySessionID(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}
