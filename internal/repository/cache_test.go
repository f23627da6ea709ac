package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/linkshortener/internal/config"
	"github.com/axellelanca/linkshortener/internal/models"
)

func TestNoopCache(t *testing.T) {
	var c LookupCache = NoopCache{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.URLRecord{Code: "abc"}))
	rec, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
	assert.NoError(t, c.Delete(ctx, "abc"))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "shortener:record:abc", cacheKey("abc"))
}

// TestRedisCache nécessite un Redis joignable (SHORTENER_TEST_REDIS_ADDR).
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SHORTENER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SHORTENER_TEST_REDIS_ADDR non défini")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.CacheConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisCache(client, time.Minute)
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &models.URLRecord{ID: 42, Code: "cache42", Target: "https://example.com", CreatedAt: time.Now().UTC(), ExpiresAt: &exp}

	require.NoError(t, c.Set(ctx, rec))
	t.Cleanup(func() { _ = c.Delete(ctx, rec.Code) })

	got, ok, err := c.Get(ctx, rec.Code)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.Target, got.Target)
	gotExp, hasExp := got.Expiry()
	require.True(t, hasExp)
	assert.True(t, gotExp.Equal(exp))

	require.NoError(t, c.Delete(ctx, rec.Code))
	_, ok, err = c.Get(ctx, rec.Code)
	require.NoError(t, err)
	assert.False(t, ok)
}
