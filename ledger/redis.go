package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis connection and set key
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string // redis key for the seen set
}

// RedisLedger stores seen IDs in a Redis set
type RedisLedger struct {
	client *redis.Client
	key    string
}

// NewRedisLedger creates a Redis-backed ledger and verifies connectivity
func NewRedisLedger(cfg RedisConfig) (*RedisLedger, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Key == "" {
		cfg.Key = "shortsbot:seen"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisLedger{client: client, key: cfg.Key}, nil
}

// Load returns every member of the set
func (r *RedisLedger) Load(ctx context.Context) (Set, error) {
	members, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("SMEMBERS %s: %w", r.key, err)
	}
	return NewSet(members...), nil
}

// Record adds ids with SADD. The key never expires.
func (r *RedisLedger) Record(ctx context.Context, ids []string) error {
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return nil
	}
	if err := r.client.SAdd(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("SADD %s: %w", r.key, err)
	}
	return nil
}

// Close closes the underlying Redis client
func (r *RedisLedger) Close() error {
	return r.client.Close()
}
