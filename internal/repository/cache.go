package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/axellelanca/linkshortener/internal/config"
	"github.com/axellelanca/linkshortener/internal/models"
)

// LookupCache garde en mémoire les enregistrements résolus récemment.
// Il ne sert qu'à la redirection : les statistiques lisent toujours la base.
type LookupCache interface {
	Get(ctx context.Context, code string) (*models.URLRecord, bool, error)
	Set(ctx context.Context, record *models.URLRecord) error
	Delete(ctx context.Context, codes ...string) error
}

const cacheKeyPrefix = "shortener:record:"

func cacheKey(code string) string {
	return cacheKeyPrefix + code
}

// RedisCache stocke les enregistrements encodés en JSON avec une durée de vie fixe.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient ouvre le client Redis décrit par la configuration et vérifie qu'il répond.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s failed", cfg.Addr)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, code string) (*models.URLRecord, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get failed")
	}

	var record models.URLRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, errors.Wrap(err, "decode cached record failed")
	}
	return &record, true, nil
}

func (c *RedisCache) Set(ctx context.Context, record *models.URLRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode record failed")
	}
	if err := c.client.Set(ctx, cacheKey(record.Code), raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set failed")
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = cacheKey(code)
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "redis del failed")
}

// NoopCache est utilisé quand le cache est désactivé : chaque lecture est un miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.URLRecord, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, *models.URLRecord) error { return nil }

func (NoopCache) Delete(context.Context, ...string) error { return nil }
