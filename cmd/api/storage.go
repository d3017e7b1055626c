package main

import (
	"context"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api"
	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/db"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"go.uber.org/zap"
)

// storage is the opened backing store for the configured driver.
type storage struct {
	repos  *repository.Repositories
	checks map[string]api.HealthCheck
	close  func()
}

func (a *app) openStorage(ctx context.Context, migrate bool) (*storage, error) {
	cfg := a.cfg
	retry := db.Retry{Attempts: cfg.DBConnectAttempts, Backoff: cfg.DBConnectBackoff}
	logger := a.logger.Named("db")

	switch cfg.StorageDriver {
	case config.DriverMongo:
		mongoDB, err := db.NewMongoDB(ctx, cfg.MongoURL, cfg.MongoDatabase, retry, logger)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureMongoIndexes(ctx, mongoDB.Database); err != nil {
			mongoDB.Close(context.Background())
			return nil, err
		}
		return &storage{
			repos:  repository.NewMongoRepositories(mongoDB.Database),
			checks: map[string]api.HealthCheck{"database": mongoDB.Ping},
			close:  func() { mongoDB.Close(context.Background()) },
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		return &storage{
			repos:  repository.NewRepositories(),
			checks: map[string]api.HealthCheck{},
			close:  func() {},
		}, nil

	default:
		// ============================================
		// Run Database Migrations FIRST
		// ============================================
		if migrate {
			if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}
		pg, err := db.NewPostgresDB(ctx, cfg.DatabaseURL, retry, logger)
		if err != nil {
			return nil, err
		}
		return &storage{
			repos:  repository.NewPgRepositories(pg.Pool),
			checks: map[string]api.HealthCheck{"database": pg.Ping},
			close:  pg.Close,
		}, nil
	}
}

// openRedis connects the optional cache. A failed connection is logged and
// the service runs without it.
func (a *app) openRedis(ctx context.Context) *db.RedisDB {
	if a.cfg.RedisURL == "" {
		return nil
	}
	redisDB, err := db.NewRedisDB(ctx, a.cfg.RedisURL, a.logger.Named("redis"))
	if err != nil {
		a.logger.Warn("failed to connect to Redis, continuing without sweep lock", zap.Error(err))
		return nil
	}
	return redisDB
}
