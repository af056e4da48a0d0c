package baseline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

type RedisStore struct {
	redis       *redis.Client
	keyTemplate string
	ttl         time.Duration
}

func NewRedisStore(cfg Config) (*RedisStore, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisStore(client, cfg), nil
}

func newRedisStore(client *redis.Client, cfg Config) *RedisStore {
	tpl := cfg.KeyTemplate
	if tpl == "" {
		tpl = DefaultKeyTemplate
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{redis: client, keyTemplate: tpl, ttl: ttl}
}

func (s *RedisStore) key(session, course string) string {
	return formatKey(s.keyTemplate, session, course)
}

func (s *RedisStore) Capture(ctx context.Context, session, course string, mark float64) (bool, error) {
	key := s.key(session, course)
	stored, err := s.redis.SetNX(ctx, key, strconv.FormatFloat(mark, 'f', -1, 64), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to capture baseline %s: %w", key, err)
	}
	if !stored {
		logger.Debug.Printf("Baseline already captured for key: %s", key)
	}
	return stored, nil
}

func (s *RedisStore) Lookup(ctx context.Context, session, course string) (float64, bool, error) {
	key := s.key(session, course)
	raw, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis error: %w", err)
	}

	mark, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt baseline under %s: %w", key, err)
	}
	return mark, true, nil
}

func (s *RedisStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
