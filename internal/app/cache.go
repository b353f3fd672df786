// internal/app/cache.go
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

// RankingCache keeps computed cohort rankings in redis. A disabled cache
// always misses and every call is a no-op.
type RankingCache struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	ttl         time.Duration
}

func NewRankingCache(config *Config) (*RankingCache, error) {
	if !config.Cache.Enabled {
		return &RankingCache{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RankingCache{
		enabled:     true,
		redis:       client,
		keyTemplate: config.Cache.KeyTemplate,
		ttl:         time.Duration(config.Cache.TTLSeconds) * time.Second,
	}, nil
}

func (c *RankingCache) Enabled() bool {
	return c.enabled
}

func (c *RankingCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

func (c *RankingCache) key(level, track string) string {
	return strings.NewReplacer(
		"{level}", level,
		"{track}", track,
	).Replace(c.keyTemplate)
}

// Get returns the cached ranking and whether it was found.
// Redis or decoding failures are logged and reported as a miss.
func (c *RankingCache) Get(ctx context.Context, level, track string) ([]models.Result, bool) {
	if !c.enabled {
		return nil, false
	}

	key := c.key(level, track)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		logger.Debug.Printf("Ranking cache miss for key: %s", key)
		return nil, false
	}
	if err != nil {
		logger.Error.Printf("Redis error reading %s: %v", key, err)
		return nil, false
	}

	var results []models.Result
	if err := json.Unmarshal(data, &results); err != nil {
		logger.Error.Printf("Dropping unreadable cached ranking %s: %v", key, err)
		c.redis.Del(ctx, key)
		return nil, false
	}
	return results, true
}

func (c *RankingCache) Set(ctx context.Context, level, track string, results []models.Result) {
	if !c.enabled {
		return
	}

	key := c.key(level, track)
	data, err := json.Marshal(results)
	if err != nil {
		logger.Error.Printf("Failed to encode ranking for %s: %v", key, err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Error.Printf("Redis error writing %s: %v", key, err)
	}
}

// Invalidate drops the cached rankings of the given cohorts.
func (c *RankingCache) Invalidate(ctx context.Context, cohorts ...Cohort) {
	if !c.enabled || len(cohorts) == 0 {
		return
	}

	keys := make([]string, 0, len(cohorts))
	for _, cohort := range cohorts {
		keys = append(keys, c.key(cohort.Level, cohort.Track))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		logger.Error.Printf("Redis error invalidating %v: %v", keys, err)
		return
	}
	logger.Debug.Printf("Invalidated ranking cache keys: %v", keys)
}

// Cohort is a (level, track) pair.
type Cohort struct {
	Level string
	Track string
}

func cohortOf(s models.Student) Cohort {
	return Cohort{Level: s.Level, Track: s.Track}
}
