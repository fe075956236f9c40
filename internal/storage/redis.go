package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	runKeyPrefix = "run:"

	// DefaultRunTTL is how long an untouched saved run is kept.
	DefaultRunTTL = 7 * 24 * time.Hour
)

// RedisRunStore implements RunStore using Redis.
type RedisRunStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisRunStore implements RunStore interface
var _ RunStore = (*RedisRunStore)(nil)

// NewRedisRunStore creates a run store for a redis:// URL.
func NewRedisRunStore(redisURL string, logger *slog.Logger) (*RedisRunStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRunStore{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    DefaultRunTTL,
	}, nil
}

// WithTTL sets how long saved runs live.
// Returns the RedisRunStore for method chaining
func (r *RedisRunStore) WithTTL(ttl time.Duration) *RedisRunStore {
	r.ttl = ttl
	return r
}

// Health and lifecycle methods

func (r *RedisRunStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisRunStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisRunStore) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Run operations

func (r *RedisRunStore) SaveRun(ctx context.Context, run *Run) error {
	if run == nil || run.Session == nil {
		return fmt.Errorf("failed to save run: no session")
	}
	id := run.Session.ID
	run.SavedAt = time.Now()

	data, err := json.Marshal(run)
	if err != nil {
		r.logger.Error("Failed to marshal run", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := r.client.Set(ctx, runKeyPrefix+id.String(), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save run", "uuid", id, "error", err)
		return fmt.Errorf("failed to save run: %w", err)
	}
	r.logger.Debug("Run saved", "uuid", id, "event_count", run.Session.EventCount)
	return nil
}

func (r *RedisRunStore) LoadRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	data, err := r.client.Get(ctx, runKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Run not found", "uuid", id)
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		r.logger.Error("Failed to load run", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		r.logger.Error("Failed to unmarshal run", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

func (r *RedisRunStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, runKeyPrefix+id.String()).Err(); err != nil {
		r.logger.Error("Failed to delete run", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

func (r *RedisRunStore) ListRuns(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, runKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(strings.TrimPrefix(iter.Val(), runKeyPrefix))
		if err != nil {
			r.logger.Warn("Skipping malformed run key", "key", iter.Val())
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return ids, nil
}
