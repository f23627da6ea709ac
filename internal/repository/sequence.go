package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/axellelanca/linkshortener/internal/config"
	"github.com/axellelanca/linkshortener/internal/database"
	"github.com/axellelanca/linkshortener/internal/models"
)

// Sequence fournit des identifiants strictement croissants, jamais réutilisés.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// NewSequence choisit la source d'identifiants selon la configuration et le driver :
// snowflake si demandé, séquence native sur PostgreSQL, compteur en table sinon.
func NewSequence(db *gorm.DB, cfg config.ShortenerConfig) (Sequence, error) {
	if cfg.IDSource == config.IDSourceSnowflake {
		return NewSnowflakeSequence(cfg.NodeID)
	}
	if db.Dialector.Name() == database.DriverPostgres {
		return NewPostgresSequence(db, database.PostgresSequence), nil
	}
	return NewTableSequence(db, models.URLRecordSequence), nil
}

// TableSequence émule une séquence avec une ligne de la table 'id_sequences'.
// L'UPDATE verrouille la ligne jusqu'au commit, ce qui sérialise les appels concurrents.
type TableSequence struct {
	db   *gorm.DB
	name string
}

func NewTableSequence(db *gorm.DB, name string) *TableSequence {
	return &TableSequence{db: db, name: name}
}

func (s *TableSequence) Next(ctx context.Context) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.IDSequence{}).
			Where("name = ?", s.name).
			UpdateColumn("value", gorm.Expr("value + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.Errorf("séquence %q absente, lancer la migration", s.name)
		}

		var seq models.IDSequence
		if err := tx.Where("name = ?", s.name).First(&seq).Error; err != nil {
			return err
		}
		value = seq.Value
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "next value of %s", s.name)
	}
	return value, nil
}

// PostgresSequence s'appuie sur une SEQUENCE PostgreSQL (nextval est atomique et non transactionnel).
type PostgresSequence struct {
	db   *gorm.DB
	stmt string
}

func NewPostgresSequence(db *gorm.DB, name string) *PostgresSequence {
	return &PostgresSequence{db: db, stmt: fmt.Sprintf("SELECT nextval('%s')", name)}
}

func (s *PostgresSequence) Next(ctx context.Context) (int64, error) {
	var value int64
	if err := s.db.WithContext(ctx).Raw(s.stmt).Scan(&value).Error; err != nil {
		return 0, errors.Wrap(err, "nextval failed")
	}
	return value, nil
}

// SnowflakeSequence génère des IDs 63 bits ordonnés dans le temps sans aller-retour en base.
// Chaque instance doit avoir un node ID distinct.
type SnowflakeSequence struct {
	node *snowflake.Node
}

func NewSnowflakeSequence(nodeID int64) (*SnowflakeSequence, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "create snowflake node failed")
	}
	return &SnowflakeSequence{node: node}, nil
}

func (s *SnowflakeSequence) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.node.Generate().Int64(), nil
}
