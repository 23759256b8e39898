package files

import (
	"context"
	"errors"
	"fmt"
	"time"

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

func (r *MongoRepository) Upsert(ctx context.Context, file *StoredFile) error {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	// $setOnInsert keeps an existing record intact: the hash is the
	// identity, re-downloads of the same content change nothing.
	update := bson.M{"$setOnInsert": bson.M{
		"file_hash":         file.Hash,
		"file_path":         file.Path,
		"original_filename": file.OriginalFilename,
		"created_at":        file.CreatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"file_hash": file.Hash}, update, opts); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *MongoRepository) GetByHash(ctx context.Context, hash string) (*StoredFile, error) {
	file := &StoredFile{}

	err := r.collection.FindOne(ctx, bson.M{"file_hash": hash}).Decode(file)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *MongoRepository) GetByHashes(ctx context.Context, hashes []string) ([]*StoredFile, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"file_hash": bson.M{"$in": hashes}})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cursor.Close(ctx)

	byHash := make(map[string]*StoredFile, len(hashes))
	for cursor.Next(ctx) {
		file := &StoredFile{}
		if err := cursor.Decode(file); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		byHash[file.Hash] = file
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	// Preserve the caller's ordering (download history order).
	result := make([]*StoredFile, 0, len(hashes))
	for _, h := range hashes {
		if file, ok := byHash[h]; ok {
			result = append(result, file)
		}
	}

	return result, nil
}

func (r *MongoRepository) SetThumbnail(ctx context.Context, hash, thumbnailPath string) error {
	// Filter on the field being absent so the first writer wins.
	filter := bson.M{
		"file_hash":      hash,
		"thumbnail_path": bson.M{"$exists": false},
	}

	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"thumbnail_path": thumbnailPath}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
