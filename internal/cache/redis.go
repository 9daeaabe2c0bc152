package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pulsecam/internal/metrics"
	"pulsecam/internal/models"
	"pulsecam/internal/session"
)

const resultsKey = "results"

// RedisCache keeps the history of completed measurements in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and checks the connection
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func resultKey(runID string) string {
	return fmt.Sprintf("result:%s", runID)
}

// StoreResult implements session.ResultSink. The result is stored under its
// own key and indexed in a sorted set scored by completion time.
func (r *RedisCache) StoreResult(ctx context.Context, res session.Result) error {
	err := r.storeResult(ctx, models.NewResult(res))
	if err != nil {
		metrics.RedisOperations.WithLabelValues("store_result", "error").Inc()
		return err
	}
	metrics.RedisOperations.WithLabelValues("store_result", "success").Inc()
	return nil
}

func (r *RedisCache) storeResult(ctx context.Context, res models.Result) error {
	jsonData, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	key := resultKey(res.RunID)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, jsonData, r.ttl)
	pipe.ZAdd(ctx, resultsKey, redis.Z{
		Score:  float64(res.CompletedAt.UnixMilli()),
		Member: res.RunID,
	})
	if r.ttl > 0 {
		// drop index entries whose result key has expired
		cutoff := res.CompletedAt.Add(-r.ttl).UnixMilli()
		pipe.ZRemRangeByScore(ctx, resultsKey, "-inf", fmt.Sprintf("(%d", cutoff))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store result %s: %w", res.RunID, err)
	}
	return nil
}

// GetRecentResults returns up to limit results, newest first
func (r *RedisCache) GetRecentResults(ctx context.Context, limit int) ([]models.Result, error) {
	if limit <= 0 {
		return []models.Result{}, nil
	}

	ids, err := r.client.ZRevRange(ctx, resultsKey, 0, int64(limit-1)).Result()
	if err != nil {
		metrics.RedisOperations.WithLabelValues("get_results", "error").Inc()
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	if len(ids) == 0 {
		return []models.Result{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = resultKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.RedisOperations.WithLabelValues("get_results", "error").Inc()
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	metrics.RedisOperations.WithLabelValues("get_results", "success").Inc()

	results := make([]models.Result, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// expired between the index read and the lookup
			continue
		}
		var res models.Result
		if err := json.Unmarshal([]byte(s), &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Ping checks Redis availability
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetStats reports the size of the result index alongside the client's
// connection pool counters.
func (r *RedisCache) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stored, err := r.client.ZCard(ctx, resultsKey).Result()
	if err != nil {
		metrics.RedisOperations.WithLabelValues("get_stats", "error").Inc()
		return nil, fmt.Errorf("failed to count results: %w", err)
	}
	metrics.RedisOperations.WithLabelValues("get_stats", "success").Inc()

	pool := r.client.PoolStats()
	return map[string]interface{}{
		"stored_results": stored,
		"ttl_seconds":    int64(r.ttl.Seconds()),
		"pool": map[string]interface{}{
			"hits":        pool.Hits,
			"misses":      pool.Misses,
			"timeouts":    pool.Timeouts,
			"total_conns": pool.TotalConns,
			"idle_conns":  pool.IdleConns,
		},
	}, nil
}
