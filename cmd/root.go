package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axellelanca/linkshortener/internal/config"
	"github.com/axellelanca/linkshortener/internal/logger"
)

var (
	// Cfg est la configuration chargée avant l'exécution de chaque sous-commande.
	Cfg *config.Config
	// Logger est le logger zap construit à partir de Cfg.Log.
	Logger *zap.Logger

	configPath string
)

// RootCmd représente la commande de base lorsque l'application est appelée sans sous-commande.
var RootCmd = &cobra.Command{
	Use:   "url-shortener",
	Short: "Service de raccourcissement d'URL avec alias, expiration et compteur de clics.",
	Long: `url-shortener attribue des codes courts uniques à des URLs longues,
redirige les visiteurs vers la cible et compte les visites.

Utilisez 'run-server' pour démarrer l'API HTTP, ou les commandes 'create',
'stats', 'migrate' et 'cleanup' pour administrer la base.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("impossible de charger la configuration: %w", err)
		}
		l, err := logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("impossible d'initialiser le logger: %w", err)
		}
		Cfg = cfg
		Logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Logger != nil {
			_ = Logger.Sync()
		}
	},
}

// Execute ajoute toutes les sous-commandes à RootCmd et l'exécute.
// Elle est appelée une seule fois par main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Chemin du fichier de configuration (défaut: ./configs/config.yaml)")
}
