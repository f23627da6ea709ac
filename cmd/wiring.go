package cmd

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/axellelanca/linkshortener/internal/database"
	"github.com/axellelanca/linkshortener/internal/repository"
	"github.com/axellelanca/linkshortener/internal/services"
)

// Deps regroupe les ressources partagées par les sous-commandes.
type Deps struct {
	DB      *gorm.DB
	Service *services.URLService
	closers []func() error
}

// Close libère la base et, le cas échéant, le client Redis.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			Logger.Warn("close resource failed", zap.Error(err))
		}
	}
}

// OpenDeps ouvre la base configurée dans Cfg et construit le service de liens.
// migrate applique les migrations avant de rendre la main.
func OpenDeps(ctx context.Context, migrate bool) (*Deps, error) {
	db, err := database.Open(Cfg.Database)
	if err != nil {
		return nil, err
	}
	deps := &Deps{DB: db}
	deps.closers = append(deps.closers, func() error { return database.Close(db) })

	if migrate {
		if err := database.Migrate(db); err != nil {
			deps.Close()
			return nil, err
		}
	}

	seq, err := repository.NewSequence(db, Cfg.Shortener)
	if err != nil {
		deps.Close()
		return nil, err
	}
	repo := repository.NewURLRepository(db, seq, Cfg.Database.QueryTimeout())

	opts := []services.Option{}
	if Cfg.Cache.Enabled {
		client, err := repository.NewRedisClient(ctx, Cfg.Cache)
		if err != nil {
			deps.Close()
			return nil, errors.Wrap(err, "cache redis indisponible")
		}
		deps.closers = append(deps.closers, client.Close)
		opts = append(opts, services.WithCache(repository.NewRedisCache(client, Cfg.Cache.TTL())))
		Logger.Info("redis lookup cache enabled", zap.String("addr", Cfg.Cache.Addr))
	}

	deps.Service = services.NewURLService(repo, Cfg.Shortener, Logger, opts...)
	return deps, nil
}
