package activity

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(collection *mongo.Collection) (*MongoRepository, error) {
	return &MongoRepository{collection: collection}, nil
}

func (r *MongoRepository) Insert(ctx context.Context, event *Event) error {
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
