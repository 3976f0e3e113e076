// Package storage opens the configured book repository and owns the
// long-lived connection behind it.
package storage

import (
	"context"
	"fmt"
	"time"

	"bookcomments/internal/book"
	"bookcomments/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// Store is an opened repository plus the function releasing its connection.
type Store struct {
	Repo  book.Repository
	close func(context.Context) error
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected by cfg.StoreDriver and verifies it
// with a ping.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg, logger)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return &Store{Repo: book.NewMemoryRepo()}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo (%s): %w", config.RedactedDSN(cfg.Mongo.URI), err)
	}

	repo := book.NewMongoRepo(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection), cfg.QueryTimeout)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("mongo connection OK",
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection),
	)
	return &Store{Repo: repo, close: client.Disconnect}, nil
}

func openPostgres(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", config.RedactedDSN(cfg.Postgres.DSN), err)
	}

	logger.Info("database connection OK")
	return &Store{
		Repo: book.NewPostgresRepo(pool, cfg.QueryTimeout),
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}
