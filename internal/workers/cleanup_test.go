package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) Cleanup(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestCleanupWorkerSweepsUntilCancelled(t *testing.T) {
	cleaner := &countingCleaner{}
	w := NewCleanupWorker(cleaner, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return cleaner.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("le worker ne s'est pas arrêté")
	}
}

func TestCleanupWorkerKeepsRunningAfterFailure(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("base indisponible")}
	w := NewCleanupWorker(cleaner, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, time.Millisecond)
}
