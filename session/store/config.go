package store

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/chatroute/config"
	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/session"
)

// Open builds the backend selected by cfg.Backend. The returned close function
// releases its connections.
func Open(ctx context.Context, cfg config.Store) (session.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", "memory":
		return NewInMemoryStore(), noop, nil
	case "redis":
		s, err := NewRedisStore(&RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		return s, s.Close, nil
	case "mongo":
		s, err := NewMongoStore(ctx, &MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return s.Close(context.Background()) }, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, &PostgresConfig{DSN: cfg.PostgresDSN, Table: cfg.PostgresTable})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("store backend %q: %w", cfg.Backend, errorspkg.ErrInvalidInput)
}
