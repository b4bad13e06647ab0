package store

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/sweetpotato0/chatroute/config"
	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
	"github.com/sweetpotato0/chatroute/session"
)

// testStore runs the behavior every backend shares.
func testStore(t *testing.T, s session.Store) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		record := session.NewRecord("chat-1", "First")
		record.Provider = "openai"
		record.Options = provider.Options{"model": "gpt-4o-mini"}
		record.Pairs = []*message.Pair{
			message.NewPair("hello", "hi"),
			message.NewPair("secret", "ok", message.Hidden()),
		}

		if err := s.Save(ctx, record); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := s.Load(ctx, "chat-1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Name != "First" || loaded.Provider != "openai" || loaded.Options["model"] != "gpt-4o-mini" {
			t.Errorf("unexpected record %+v", loaded)
		}
		if len(loaded.Pairs) != 2 || loaded.Pairs[0].Answer != "hi" || loaded.Pairs[1].Visible {
			t.Errorf("pairs not preserved: %+v", loaded.Pairs)
		}
	})

	t.Run("save overwrites", func(t *testing.T) {
		record := session.NewRecord("chat-1", "Renamed")
		record.Preset = &provider.Preset{Name: "Writer", Provider: "claude", Creativity: "1.0"}
		if err := s.Save(ctx, record); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		loaded, err := s.Load(ctx, "chat-1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Name != "Renamed" || len(loaded.Pairs) != 0 {
			t.Errorf("record not replaced: %+v", loaded)
		}
		if loaded.Preset == nil || loaded.Selector().Preset.Provider != "claude" {
			t.Error("preset not preserved")
		}
	})

	t.Run("list count exists", func(t *testing.T) {
		if err := s.Save(ctx, session.NewRecord("chat-2", "Second")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		ids, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		slices.Sort(ids)
		if !slices.Equal(ids, []string{"chat-1", "chat-2"}) {
			t.Errorf("unexpected ids %v", ids)
		}
		if n, _ := s.Count(ctx); n != 2 {
			t.Errorf("expected 2 chats, got %d", n)
		}
		if ok, _ := s.Exists(ctx, "chat-2"); !ok {
			t.Error("chat-2 should exist")
		}
		if ok, _ := s.Exists(ctx, "nope"); ok {
			t.Error("nope should not exist")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "chat-2"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := s.Load(ctx, "chat-2"); !errors.Is(err, errorspkg.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := s.Delete(ctx, "chat-2"); !errors.Is(err, errorspkg.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("invalid record", func(t *testing.T) {
		if err := s.Save(ctx, nil); !errors.Is(err, errorspkg.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err := s.Save(ctx, session.NewRecord("", "x")); !errors.Is(err, errorspkg.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestInMemoryStore(t *testing.T) {
	testStore(t, NewInMemoryStore())

	t.Run("load returns a copy", func(t *testing.T) {
		s := NewInMemoryStore()
		record := session.NewRecord("c", "c")
		record.Pairs = []*message.Pair{message.NewPair("p", "a")}
		s.Save(context.Background(), record)

		record.Pairs[0].Answer = "changed"
		loaded, _ := s.Load(context.Background(), "c")
		loaded.Pairs[0].Prompt = "changed"

		again, _ := s.Load(context.Background(), "c")
		if again.Pairs[0].Answer != "a" || again.Pairs[0].Prompt != "p" {
			t.Error("store should not share state with callers")
		}
	})
}

// TestRedisStore requires a running Redis server; set REDIS_ADDR to run it.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis store tests")
	}

	s, err := NewRedisStore(&RedisConfig{Addr: addr, DB: 15, Prefix: "chatroute:test:"})
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Skipf("Failed to connect to Redis: %v", err)
	}
	s.client.FlushDB(context.Background())

	testStore(t, s)
}

// TestMongoStore requires a running MongoDB server; set MONGODB_URI to run it.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set, skipping MongoDB store tests")
	}

	s, err := NewMongoStore(context.Background(), &MongoConfig{URI: uri, Database: "chatroute_test", Collection: "chats_test"})
	if err != nil {
		t.Skipf("Failed to connect to MongoDB: %v", err)
	}
	defer s.Close(context.Background())
	s.Clear(context.Background())

	testStore(t, s)
}

// TestPostgresStore requires a running PostgreSQL server; set POSTGRES_DSN to run it.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set, skipping PostgreSQL store tests")
	}

	s, err := NewPostgresStore(context.Background(), &PostgresConfig{DSN: dsn, Table: "chats_test"})
	if err != nil {
		t.Skipf("Failed to connect to PostgreSQL: %v", err)
	}
	defer s.Close()
	s.Clear(context.Background())

	testStore(t, s)
}

func TestPostgresConfigValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewPostgresStore(ctx, nil); !errors.Is(err, errorspkg.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil config, got %v", err)
	}
	if _, err := NewPostgresStore(ctx, &PostgresConfig{DSN: "postgres://x", Table: "chats; DROP"}); !errors.Is(err, errorspkg.ErrInvalidInput) {
		t.Errorf("expected table name rejection, got %v", err)
	}
	if _, err := NewPostgresStore(ctx, &PostgresConfig{}); err == nil {
		t.Error("expected validation error for empty config")
	}
}

func TestOpen(t *testing.T) {
	s, closeFn, err := Open(context.Background(), config.Store{Backend: "memory"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*InMemoryStore); !ok {
		t.Errorf("expected in-memory store, got %T", s)
	}
	if err := closeFn(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}

	if _, _, err := Open(context.Background(), config.Store{Backend: "sqlite"}); !errors.Is(err, errorspkg.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := Open(context.Background(), config.Store{Backend: "redis"}); err == nil {
		t.Error("redis without address should fail validation")
	}
}
