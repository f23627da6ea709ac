package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cleaner supprime les liens expirés et retourne leur nombre.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// CleanupWorker lance le balayage des liens expirés à intervalle régulier.
type CleanupWorker struct {
	cleaner  Cleaner
	interval time.Duration
	logger   *zap.Logger
}

func NewCleanupWorker(cleaner Cleaner, interval time.Duration, logger *zap.Logger) *CleanupWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupWorker{cleaner: cleaner, interval: interval, logger: logger}
}

// Run bloque jusqu'à l'annulation de ctx. Un balayage en échec est journalisé
// et le suivant est tenté au prochain tick.
func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cleanup worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopped")
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	start := time.Now()
	deleted, err := w.cleaner.Cleanup(ctx)
	if err != nil {
		w.logger.Error("cleanup sweep failed", zap.Error(err))
		return
	}
	w.logger.Info("cleanup sweep done", zap.Int64("deleted", deleted), zap.Duration("took", time.Since(start)))
}
