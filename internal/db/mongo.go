// internal/db/mongo.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	log      *zap.Logger
}

func NewMongoDB(ctx context.Context, mongoURL, database string, retry Retry, logger *zap.Logger) (*MongoDB, error) {
	opts := options.Client().
		ApplyURI(mongoURL).
		SetMaxPoolSize(25).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	err = retry.Do(ctx, logger.With(zap.String("store", "mongo")), func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", database))
	return &MongoDB{Client: client, Database: client.Database(database), log: logger}, nil
}

func (m *MongoDB) Close(ctx context.Context) {
	if m.Client != nil {
		if err := m.Client.Disconnect(ctx); err != nil {
			m.log.Warn("mongo disconnect failed", zap.Error(err))
			return
		}
		m.log.Info("MongoDB connection closed")
	}
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// EnsureMongoIndexes creates the indexes the document repositories rely
// on. The unique indexes carry the one-membership and one-vote rules.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		repository.CollUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		repository.CollRefreshTokens: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		repository.CollCommitteeMembers: {
			{Keys: bson.D{{Key: "committee_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		repository.CollMotions: {
			{Keys: bson.D{{Key: "committee_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		repository.CollVotes: {
			{Keys: bson.D{{Key: "motion_id", Value: 1}, {Key: "author_id", Value: 1}}, Options: unique},
		},
		repository.CollDebateEntries: {
			{Keys: bson.D{{Key: "motion_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
