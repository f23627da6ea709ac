package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/axellelanca/linkshortener/internal/config"
	"github.com/axellelanca/linkshortener/internal/encoder"
	apperrors "github.com/axellelanca/linkshortener/internal/errors"
	"github.com/axellelanca/linkshortener/internal/models"
	"github.com/axellelanca/linkshortener/internal/repository"
	"github.com/axellelanca/linkshortener/internal/validator"
)

// URLService fournit la logique métier des liens : allocation des codes,
// résolution et nettoyage.
// IMPORTANT : repo est du type de l'interface, ce qui permet d'injecter un faux store dans les tests.
type URLService struct {
	repo          repository.URLRepository
	cache         repository.LookupCache
	logger        *zap.Logger
	now           func() time.Time
	minCodeLength int
	maxAttempts   int
}

// Option modifie un URLService à sa construction.
type Option func(*URLService)

// WithClock remplace l'horloge murale (tests).
func WithClock(now func() time.Time) Option {
	return func(s *URLService) { s.now = now }
}

// WithCache branche un cache de résolution. Seul Resolve le consulte ;
// Cleanup en retire les liens supprimés.
func WithCache(cache repository.LookupCache) Option {
	return func(s *URLService) { s.cache = cache }
}

// NewURLService crée et retourne une nouvelle instance de URLService.
func NewURLService(repo repository.URLRepository, cfg config.ShortenerConfig, logger *zap.Logger, opts ...Option) *URLService {
	s := &URLService{
		repo:          repo,
		cache:         repository.NoopCache{},
		logger:        logger,
		now:           time.Now,
		minCodeLength: cfg.MinCodeLength,
		maxAttempts:   cfg.MaxAttempts,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.minCodeLength < 1 {
		s.minCodeLength = 6
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 5
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type shortenOptions struct {
	alias     *string
	expiresAt *time.Time
}

// ShortenOption porte les paramètres facultatifs de Shorten.
type ShortenOption func(*shortenOptions)

// WithAlias demande un code personnalisé au lieu d'un code généré.
func WithAlias(alias string) ShortenOption {
	return func(o *shortenOptions) { o.alias = &alias }
}

// WithExpiry fixe la date après laquelle le lien ne redirige plus.
func WithExpiry(expiresAt time.Time) ShortenOption {
	return func(o *shortenOptions) { o.expiresAt = &expiresAt }
}

// Shorten crée un nouveau lien raccourci pour rawURL.
// Le code est l'alias s'il est fourni, sinon il est dérivé d'un ID de séquence
// (ou tiré au hasard si l'encodage est trop court). Les collisions détectées par
// l'index unique consomment une tentative et relancent l'allocation.
func (s *URLService) Shorten(ctx context.Context, rawURL string, opts ...ShortenOption) (*models.URLRecord, error) {
	var o shortenOptions
	for _, opt := range opts {
		opt(&o)
	}

	target := validator.Normalize(rawURL)
	if !validator.IsValidURL(target) {
		return nil, &apperrors.ErrInvalidURL{URL: rawURL}
	}

	now := s.now().UTC()
	// Une date passée est conservée telle quelle : le lien ne redirigera jamais
	// et sera supprimé au prochain nettoyage.
	var expiresAt *time.Time
	if o.expiresAt != nil {
		exp := o.expiresAt.UTC()
		expiresAt = &exp
	}

	if o.alias != nil {
		return s.shortenWithAlias(ctx, *o.alias, target, now, expiresAt)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, code, err := s.allocateCode(ctx)
		if err != nil {
			return nil, err
		}

		taken, err := s.repo.ExistsCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			s.logger.Debug("short code already exists, retrying",
				zap.String("code", code), zap.Int("attempt", attempt), zap.Int("max_attempts", s.maxAttempts))
			continue
		}

		record := &models.URLRecord{
			ID:        id,
			Code:      code,
			Target:    target,
			CreatedAt: now,
			ExpiresAt: expiresAt,
		}
		err = s.repo.Save(ctx, record)
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			s.logger.Debug("short code taken concurrently, retrying",
				zap.String("code", code), zap.Int("attempt", attempt), zap.Int("max_attempts", s.maxAttempts))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("link created", zap.String("code", code), zap.Int64("id", id))
		return record, nil
	}

	s.logger.Warn("short code allocation exhausted", zap.Int("attempts", s.maxAttempts))
	return nil, &apperrors.ErrCodeGenerationFailed{Attempts: s.maxAttempts}
}

// allocateCode réserve un ID et en dérive un code d'au moins minCodeLength symboles.
func (s *URLService) allocateCode(ctx context.Context) (int64, string, error) {
	id, err := s.repo.NextID(ctx)
	if err != nil {
		return 0, "", err
	}
	if id < 0 {
		return 0, "", fmt.Errorf("identifiant de séquence négatif: %d", id)
	}

	code := encoder.Encode(uint64(id))
	if len(code) < s.minCodeLength {
		code, err = encoder.RandomCode(s.minCodeLength)
		if err != nil {
			return 0, "", err
		}
	}
	return id, code, nil
}

func (s *URLService) shortenWithAlias(ctx context.Context, alias, target string, now time.Time, expiresAt *time.Time) (*models.URLRecord, error) {
	if !validator.IsValidAlias(alias) {
		return nil, &apperrors.ErrInvalidAlias{Alias: alias}
	}
	alias = strings.TrimSpace(alias)

	// Vérifications indicatives : l'index unique reste l'arbitre final.
	taken, err := s.repo.ExistsAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if !taken {
		taken, err = s.repo.ExistsCode(ctx, alias)
		if err != nil {
			return nil, err
		}
	}
	if taken {
		return nil, &apperrors.ErrAliasTaken{Alias: alias}
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, err
	}

	record := &models.URLRecord{
		ID:        id,
		Code:      alias,
		Alias:     &alias,
		Target:    target,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	err = s.repo.Save(ctx, record)
	if errors.Is(err, apperrors.ErrDuplicateKey) {
		return nil, &apperrors.ErrAliasTaken{Alias: alias}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("link created with alias", zap.String("code", alias), zap.Int64("id", id))
	return record, nil
}

// Resolve retourne l'URL cible d'un code ou d'un alias et compte la visite.
// Un lien expiré ne redirige pas et son compteur reste inchangé.
func (s *URLService) Resolve(ctx context.Context, codeOrAlias string) (string, error) {
	record, err := s.cachedLookup(ctx, codeOrAlias)
	if err != nil {
		return "", err
	}

	if exp, ok := record.Expiry(); ok && s.now().After(exp) {
		return "", &apperrors.ErrLinkExpired{ShortCode: record.Code, ExpiredAt: exp}
	}

	// Le comptage n'est pas critique : un échec n'empêche pas la redirection.
	incremented, err := s.repo.IncrementClicks(ctx, record.Code)
	switch {
	case err != nil:
		s.logger.Warn("failed to increment clicks", zap.String("code", record.Code), zap.Error(err))
	case !incremented:
		s.logger.Debug("link deleted before click was counted", zap.String("code", record.Code))
	}

	return record.Target, nil
}

// GetRecord retourne l'enregistrement complet pour les statistiques,
// sans vérifier l'expiration ni incrémenter les clics.
func (s *URLService) GetRecord(ctx context.Context, codeOrAlias string) (*models.URLRecord, error) {
	return s.lookup(ctx, codeOrAlias)
}

// IsExpired applique la règle d'expiration avec l'horloge du service.
func (s *URLService) IsExpired(record *models.URLRecord) bool {
	return record.IsExpiredAt(s.now())
}

// Cleanup supprime les liens dont la date d'expiration est dépassée et retourne leur nombre.
func (s *URLService) Cleanup(ctx context.Context) (int64, error) {
	now := s.now()

	var codes []string
	if _, noop := s.cache.(repository.NoopCache); !noop {
		var err error
		if codes, err = s.repo.ExpiredCodes(ctx, now); err != nil {
			return 0, err
		}
	}

	deleted, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(codes) > 0 {
		if err := s.cache.Delete(ctx, codes...); err != nil {
			s.logger.Warn("cache eviction failed", zap.Int("codes", len(codes)), zap.Error(err))
		}
	}
	s.logger.Info("expired links removed", zap.Int64("deleted", deleted))
	return deleted, nil
}

// Ping vérifie que le store est joignable.
func (s *URLService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// lookup cherche par code puis par alias : les deux partagent le même espace de noms.
func (s *URLService) lookup(ctx context.Context, codeOrAlias string) (*models.URLRecord, error) {
	record, err := s.repo.FindByCode(ctx, codeOrAlias)
	if err == nil {
		return record, nil
	}
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, err
	}
	return s.repo.FindByAlias(ctx, codeOrAlias)
}

func (s *URLService) cachedLookup(ctx context.Context, codeOrAlias string) (*models.URLRecord, error) {
	record, hit, err := s.cache.Get(ctx, codeOrAlias)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("code", codeOrAlias), zap.Error(err))
	}
	if hit {
		return record, nil
	}

	record, err = s.lookup(ctx, codeOrAlias)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, record); err != nil {
		s.logger.Warn("cache write failed", zap.String("code", record.Code), zap.Error(err))
	}
	return record, nil
}
