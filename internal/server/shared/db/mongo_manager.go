package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dmitrijs2005/premrelay/internal/server/activity"
	"github.com/dmitrijs2005/premrelay/internal/server/files"
	"github.com/dmitrijs2005/premrelay/internal/server/users"
)

const (
	usersCollection    = "users"
	filesCollection    = "files"
	activityCollection = "activity"
)

type MongoRepositoryManager struct {
	client   *mongo.Client
	users    users.Repository
	files    files.Repository
	activity activity.Repository
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MongoRepositoryManager) Files() files.Repository {
	return m.files
}

func (m *MongoRepositoryManager) Activity() activity.Repository {
	return m.activity
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes creates the unique keys the repositories rely on: one record
// per user ID and one record per content hash.
func ensureIndexes(ctx context.Context, database *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = database.Collection(filesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "file_hash", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("files index: %w", err)
	}

	return nil
}

func NewMongoRepositoryManager(ctx context.Context, uri, dbName string) (RepositoryManager, error) {

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	database := client.Database(dbName)

	if err := ensureIndexes(ctx, database); err != nil {
		return nil, fmt.Errorf("index bootstrap error: %w", err)
	}

	userRepo, err := users.NewMongoRepository(database.Collection(usersCollection))
	if err != nil {
		return nil, fmt.Errorf("user repo creation error: %w", err)
	}

	fileRepo, err := files.NewMongoRepository(database.Collection(filesCollection))
	if err != nil {
		return nil, fmt.Errorf("file repo creation error: %w", err)
	}

	activityRepo, err := activity.NewMongoRepository(database.Collection(activityCollection))
	if err != nil {
		return nil, fmt.Errorf("activity repo creation error: %w", err)
	}

	m := &MongoRepositoryManager{
		client:   client,
		users:    userRepo,
		files:    fileRepo,
		activity: activityRepo,
	}

	return m, nil
}
