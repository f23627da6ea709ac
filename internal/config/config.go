package config

import (
	"fmt"
	"log" // Pour logger les informations ou erreurs de chargement de config
	"strings"
	"time"

	"github.com/spf13/viper" // La bibliothèque pour la gestion de configuration
)

// EnvPrefix préfixe les variables d'environnement qui surchargent le fichier
// (server.port -> SHORTENER_SERVER_PORT).
const EnvPrefix = "SHORTENER"

// Sources d'identifiants pour l'allocation des codes.
const (
	IDSourceStore     = "store"
	IDSourceSnowflake = "snowflake"
)

// Config est la structure principale qui mappe l'intégralité de la configuration de l'application.
// Les tags `mapstructure` sont utilisés par Viper pour mapper les clés du fichier de config
// (ou des variables d'environnement) aux champs de la structure Go.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Shortener ShortenerConfig `mapstructure:"shortener"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contient la configuration du serveur web Gin.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"`
	BaseURL                string `mapstructure:"base_url"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
}

// DatabaseConfig contient la configuration de la base de données et du pool de connexions.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver"` // sqlite, postgres ou mysql
	Name                   string `mapstructure:"name"`   // Fichier SQLite
	DSN                    string `mapstructure:"dsn"`    // DSN PostgreSQL/MySQL
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
	QueryTimeoutSeconds    int    `mapstructure:"query_timeout_seconds"`
}

// ShortenerConfig contient les paramètres d'allocation des codes courts.
type ShortenerConfig struct {
	MinCodeLength int    `mapstructure:"min_code_length"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
	IDSource      string `mapstructure:"id_source"` // store ou snowflake
	NodeID        int64  `mapstructure:"node_id"`   // Identifiant de nœud snowflake
}

// CleanupConfig contient la configuration du nettoyage périodique des liens expirés.
type CleanupConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// CacheConfig contient la configuration du cache Redis de résolution (optionnel).
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// LogConfig contient la configuration du logger zap.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json ou console
}

// QueryTimeout retourne le délai maximal accordé à une requête SQL.
func (c DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// ConnMaxLifetime retourne la durée de vie maximale d'une connexion du pool.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// Interval retourne la période du nettoyage.
func (c CleanupConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// TTL retourne la durée de vie d'une entrée du cache.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ShutdownTimeout retourne le délai accordé à l'arrêt gracieux du serveur.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// SetDefaults définit les valeurs par défaut pour toutes les options de configuration.
// Ces valeurs seront utilisées si les clés correspondantes ne sont pas trouvées dans le fichier de config
// ou si le fichier n'existe pas.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.name", "url_shortener.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 30)
	v.SetDefault("database.query_timeout_seconds", 5)

	v.SetDefault("shortener.min_code_length", 6)
	v.SetDefault("shortener.max_attempts", 5)
	v.SetDefault("shortener.id_source", "store")
	v.SetDefault("shortener.node_id", 1)

	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.interval_minutes", 24*60)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl_seconds", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig charge la configuration de l'application en utilisant une instance Viper dédiée.
// Si path est vide, elle recherche un fichier 'config.yaml' dans le dossier 'configs/' puis dans '.'.
// Les variables d'environnement SHORTENER_* surchargent le fichier.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// on cherche dans le dossier 'configs' relatif au répertoire d'exécution.
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Lire le fichier de configuration.
	if err := v.ReadInConfig(); err != nil {
		// Si le fichier n'est pas trouvé, on continue avec les valeurs par défaut
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Fichier de configuration non trouvé. Utilisation des valeurs par défaut.")
		} else {
			// Autre erreur de lecture
			return nil, fmt.Errorf("erreur lors de la lecture du fichier de configuration: %w", err)
		}
	} else {
		log.Printf("Fichier de configuration chargé: %s", v.ConfigFileUsed())
	}

	// Démapper (unmarshal) la configuration lue (ou les valeurs par défaut) dans la structure Config.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("erreur lors du démappage de la configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Driver=%s, Min Code Length=%d, Cleanup Interval=%dmin",
		cfg.Server.Port, cfg.Database.Driver, cfg.Shortener.MinCodeLength, cfg.Cleanup.IntervalMinutes)

	return &cfg, nil
}

// Validate vérifie la cohérence des valeurs chargées.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Name == "" {
			return fmt.Errorf("configuration invalide: database.name est requis pour sqlite")
		}
	case "postgres", "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("configuration invalide: database.dsn est requis pour %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("configuration invalide: driver de base de données inconnu %q", c.Database.Driver)
	}

	if c.Shortener.MinCodeLength < 1 {
		return fmt.Errorf("configuration invalide: shortener.min_code_length doit être >= 1")
	}
	if c.Shortener.MaxAttempts < 1 {
		return fmt.Errorf("configuration invalide: shortener.max_attempts doit être >= 1")
	}
	switch c.Shortener.IDSource {
	case IDSourceStore, IDSourceSnowflake:
	default:
		return fmt.Errorf("configuration invalide: shortener.id_source inconnu %q", c.Shortener.IDSource)
	}

	if c.Cleanup.Enabled && c.Cleanup.IntervalMinutes < 1 {
		return fmt.Errorf("configuration invalide: cleanup.interval_minutes doit être >= 1")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("configuration invalide: log.format doit valoir json ou console")
	}
	return nil
}
