package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mgc/inscriptions/internal/config"
	"github.com/mgc/inscriptions/internal/pkg/logger"
)

// MongoDB database connection structure
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to MongoDB and prepares the application database.
func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	database := client.Database(cfg.Database.DBName)

	db := &MongoDB{
		Client:   client,
		Database: database,
	}

	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return db, nil
}

// ensureIndexes creates the indexes the application relies on. The unique
// index on readableId is the storage-level guarantee behind ticket IDs.
func (db *MongoDB) ensureIndexes(ctx context.Context) error {
	students := db.Database.Collection("students")

	_, err := students.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "readableId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "dateAjout", Value: -1}},
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating student indexes")
		return fmt.Errorf("failed to create student indexes: %w", err)
	}

	return nil
}

// Close disconnects the client with a bounded context.
func (db *MongoDB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
