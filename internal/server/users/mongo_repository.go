package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/premrelay/internal/common"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(collection *mongo.Collection) (*MongoRepository, error) {
	return &MongoRepository{collection: collection}, nil
}

func (r *MongoRepository) Get(ctx context.Context, userID int64) (*User, error) {
	user := &User{}

	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *MongoRepository) Create(ctx context.Context, user *User) error {
	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *MongoRepository) SetStarted(ctx context.Context, userID int64, started bool) error {
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"started": started}},
		opts)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *MongoRepository) SetDeleted(ctx context.Context, userID int64, deleted bool) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"deleted": deleted}})
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return res.ModifiedCount > 0, nil
}

func (r *MongoRepository) AddDownloadedFile(ctx context.Context, userID int64, hash string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$addToSet": bson.M{"downloaded_files": hash}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
