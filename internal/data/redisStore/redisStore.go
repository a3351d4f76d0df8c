package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kbase/pkg/logger_i"
)

// Store wraps one logical redis database. Handles are constructed once in
// main and passed down by reference - no package-level client state.
type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

func NewStore(ctx context.Context, addr string, password string, dbType int) (*Store, error) {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis db %d is offline: %w", dbType, err)
	}

	store := &Store{
		client: newClient,
		Type:   dbType,
		logger: logger_i.NewLogger(fmt.Sprintf("Redis Store %d", dbType)),
	}
	store.logger.Info("Redis store init successfully")

	go store.closeOnDone(ctx)
	return store, nil
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("Closing Redis store")
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
	}
}

// Only for _test.go files
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("test redis"),
	}
}
