package repository

import (
	"context"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	apperrors "github.com/axellelanca/linkshortener/internal/errors"
	"github.com/axellelanca/linkshortener/internal/models"
)

// URLRepository est une interface qui définit les méthodes d'accès aux données
// pour les enregistrements de liens courts.
// L'unicité de code et d'alias est garantie par des index uniques : Save est la
// seule source de vérité pour la détection des collisions.
type URLRepository interface {
	NextID(ctx context.Context) (int64, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	ExistsAlias(ctx context.Context, alias string) (bool, error)
	Save(ctx context.Context, record *models.URLRecord) error
	FindByCode(ctx context.Context, code string) (*models.URLRecord, error)
	FindByAlias(ctx context.Context, alias string) (*models.URLRecord, error)
	IncrementClicks(ctx context.Context, code string) (bool, error)
	ExpiredCodes(ctx context.Context, now time.Time) ([]string, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Ping(ctx context.Context) error
}

// GormURLRepository est l'implémentation de URLRepository utilisant GORM.
type GormURLRepository struct {
	db      *gorm.DB
	seq     Sequence
	timeout time.Duration
}

// NewURLRepository crée et retourne une nouvelle instance de GormURLRepository.
// timeout borne chaque requête SQL (0 = pas de borne en plus du contexte appelant).
func NewURLRepository(db *gorm.DB, seq Sequence, timeout time.Duration) *GormURLRepository {
	return &GormURLRepository{db: db, seq: seq, timeout: timeout}
}

var _ URLRepository = (*GormURLRepository)(nil)

func (r *GormURLRepository) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if r.timeout <= 0 {
		return r.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

// NextID retourne un identifiant strictement croissant issu de la séquence.
func (r *GormURLRepository) NextID(ctx context.Context) (int64, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	id, err := r.seq.Next(ctx)
	if err != nil {
		return 0, apperrors.StoreUnavailable("next_id", err)
	}
	return id, nil
}

// ExistsCode indique si un enregistrement utilise déjà ce code.
func (r *GormURLRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, "code", code)
}

// ExistsAlias indique si un enregistrement utilise déjà cet alias.
func (r *GormURLRepository) ExistsAlias(ctx context.Context, alias string) (bool, error) {
	return r.exists(ctx, "alias", alias)
}

func (r *GormURLRepository) exists(ctx context.Context, column, value string) (bool, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	result := db.Model(&models.URLRecord{}).Where(column+" = ?", value).Limit(1).Count(&count)
	if result.Error != nil {
		return false, apperrors.StoreUnavailable("exists_"+column, result.Error)
	}
	return count > 0, nil
}

// Save insère un nouvel enregistrement en une seule instruction.
// Il renvoie apperrors.ErrDuplicateKey si le code ou l'alias existe déjà.
func (r *GormURLRepository) Save(ctx context.Context, record *models.URLRecord) error {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	record.CreatedAt = record.CreatedAt.UTC()
	if record.ExpiresAt != nil {
		exp := record.ExpiresAt.UTC()
		record.ExpiresAt = &exp
	}

	if err := db.Create(record).Error; err != nil {
		if isDuplicateKey(err) {
			return errors.Wrapf(apperrors.ErrDuplicateKey, "code %q", record.Code)
		}
		return apperrors.StoreUnavailable("save", err)
	}
	return nil
}

// FindByCode récupère un enregistrement par son code, expiré ou non.
// Il renvoie *apperrors.ErrLinkNotFound si aucun lien n'est trouvé.
func (r *GormURLRepository) FindByCode(ctx context.Context, code string) (*models.URLRecord, error) {
	return r.findBy(ctx, "code", code)
}

// FindByAlias récupère un enregistrement par son alias personnalisé.
func (r *GormURLRepository) FindByAlias(ctx context.Context, alias string) (*models.URLRecord, error) {
	return r.findBy(ctx, "alias", alias)
}

func (r *GormURLRepository) findBy(ctx context.Context, column, value string) (*models.URLRecord, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var record models.URLRecord
	// La méthode First de GORM recherche le premier enregistrement correspondant et le mappe à 'record'.
	if err := db.Where(column+" = ?", value).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.ErrLinkNotFound{ShortCode: value}
		}
		return nil, apperrors.StoreUnavailable("find_by_"+column, err)
	}
	return &record, nil
}

// IncrementClicks incrémente le compteur de façon atomique côté base
// (UPDATE ... SET clicks = clicks + 1). Retourne false si le code n'existe pas.
func (r *GormURLRepository) IncrementClicks(ctx context.Context, code string) (bool, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	result := db.Model(&models.URLRecord{}).
		Where("code = ?", code).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		return false, apperrors.StoreUnavailable("increment_clicks", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ExpiredCodes liste les codes que DeleteExpired supprimerait pour le même now.
func (r *GormURLRepository) ExpiredCodes(ctx context.Context, now time.Time) ([]string, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var codes []string
	err := db.Model(&models.URLRecord{}).
		Where("expires_at IS NOT NULL AND expires_at < ?", now.UTC()).
		Pluck("code", &codes).Error
	if err != nil {
		return nil, apperrors.StoreUnavailable("expired_codes", err)
	}
	return codes, nil
}

// DeleteExpired supprime les enregistrements dont la date d'expiration est antérieure à now.
func (r *GormURLRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	result := db.Where("expires_at IS NOT NULL AND expires_at < ?", now.UTC()).Delete(&models.URLRecord{})
	if result.Error != nil {
		return 0, apperrors.StoreUnavailable("delete_expired", result.Error)
	}
	return result.RowsAffected, nil
}

// Ping vérifie que la base répond.
func (r *GormURLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperrors.StoreUnavailable("ping", err)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return apperrors.StoreUnavailable("ping", sqlDB.PingContext(ctx))
}

// isDuplicateKey reconnaît une violation d'index unique, quel que soit le driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// Le driver SQLite pur Go n'expose pas de code typé stable.
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
