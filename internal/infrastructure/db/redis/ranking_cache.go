package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mechshop/service-api/internal/api/metrics"
	"github.com/mechshop/service-api/internal/core/domain"
)

const (
	rankingKey        = "mechanics:ranked"
	defaultRankingTTL = 5 * time.Minute
)

// RankingCache stores the mechanic leaderboard as one JSON value.
// Invalidation deletes the key; the next read recomputes it.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRankingCache wraps client. A non-positive ttl uses defaultRankingTTL.
func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = defaultRankingTTL
	}
	return &RankingCache{client: client, ttl: ttl}
}

func (c *RankingCache) Get(ctx context.Context) ([]domain.MechanicRank, bool, error) {
	raw, err := c.client.Get(ctx, rankingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RankingCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ranking cache get: %w", err)
	}
	var ranks []domain.MechanicRank
	if err := json.Unmarshal(raw, &ranks); err != nil {
		return nil, false, fmt.Errorf("ranking cache decode: %w", err)
	}
	metrics.RankingCacheTotal.WithLabelValues("hit").Inc()
	return ranks, true, nil
}

func (c *RankingCache) Set(ctx context.Context, ranks []domain.MechanicRank) error {
	raw, err := json.Marshal(ranks)
	if err != nil {
		return fmt.Errorf("ranking cache encode: %w", err)
	}
	return c.client.Set(ctx, rankingKey, raw, c.ttl).Err()
}

func (c *RankingCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rankingKey).Err()
}
