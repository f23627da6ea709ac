// Package database ouvre la connexion GORM (SQLite, PostgreSQL ou MySQL),
// configure le pool de connexions et applique les migrations.
package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite" // Driver SQLite pour GORM (pur Go, sans CGO)
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/axellelanca/linkshortener/internal/config"
	"github.com/axellelanca/linkshortener/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// PostgresSequence est la séquence native utilisée par PostgreSQL pour attribuer les IDs.
const PostgresSequence = "url_records_id_seq"

// Open ouvre la base configurée et applique les réglages du pool.
// SQLite n'accepte qu'un seul écrivain : le pool est alors limité à une connexion.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.Name))
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("driver de base de données inconnu %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect db failed")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get core db failed")
	}

	if cfg.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime())
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping core db failed")
	}
	return db, nil
}

// SQLiteDSN ajoute les pragmas nécessaires à un usage concurrent (attente sur verrou, WAL).
func SQLiteDSN(name string) string {
	if name == ":memory:" || strings.Contains(name, "_pragma=") {
		return name
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Migrate crée ou met à jour les tables 'url_records' et 'id_sequences', puis la
// séquence d'identifiants propre au driver.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.URLRecord{}, &models.IDSequence{}); err != nil {
		return errors.Wrap(err, "auto migrate failed")
	}

	if db.Dialector.Name() == DriverPostgres {
		stmt := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s", PostgresSequence)
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrap(err, "create sequence failed")
		}
		return nil
	}

	// Sur SQLite et MySQL, la séquence est émulée par une ligne de compteur.
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.IDSequence{Name: models.URLRecordSequence, Value: 0}).Error
	if err != nil {
		return errors.Wrap(err, "init id sequence failed")
	}
	return nil
}

// Close ferme le pool de connexions sous-jacent.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get core db failed")
	}
	return sqlDB.Close()
}
