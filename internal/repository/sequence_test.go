package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/axellelanca/linkshortener/internal/config"
	"github.com/axellelanca/linkshortener/internal/models"
)

func TestTableSequenceConcurrentUnique(t *testing.T) {
	db := setupTestDB(t)
	seq := NewTableSequence(db, models.URLRecordSequence)

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{})
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 25; j++ {
				id, err := seq.Next(ctx)
				if err != nil {
					return err
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seen, 200)
}

func TestTableSequenceMissingRow(t *testing.T) {
	db := setupTestDB(t)
	seq := NewTableSequence(db, "absent")

	_, err := seq.Next(context.Background())
	assert.Error(t, err)
}

func TestSnowflakeSequence(t *testing.T) {
	seq, err := NewSnowflakeSequence(3)
	require.NoError(t, err)

	var last int64
	for i := 0; i < 100; i++ {
		id, err := seq.Next(context.Background())
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = seq.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewSnowflakeSequence(5000)
	assert.Error(t, err)
}

func TestNewSequence(t *testing.T) {
	db := setupTestDB(t)

	seq, err := NewSequence(db, config.ShortenerConfig{IDSource: config.IDSourceStore})
	require.NoError(t, err)
	assert.IsType(t, &TableSequence{}, seq)

	seq, err = NewSequence(db, config.ShortenerConfig{IDSource: config.IDSourceSnowflake, NodeID: 1})
	require.NoError(t, err)
	assert.IsType(t, &SnowflakeSequence{}, seq)
}
