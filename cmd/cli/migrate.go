package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	cmd2 "github.com/axellelanca/linkshortener/cmd"
	"github.com/axellelanca/linkshortener/internal/database"
)

// MigrateCmd représente la commande 'migrate'
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Exécute les migrations de la base de données pour créer ou mettre à jour les tables.",
	Long: `Cette commande se connecte à la base de données configurée (SQLite, PostgreSQL ou MySQL)
et exécute les migrations automatiques de GORM pour créer les tables 'url_records'
et 'id_sequences', ainsi que la séquence d'identifiants.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmd2.Cfg
		if cfg == nil {
			log.Fatalf("FATAL: La configuration n'a pas été chargée correctement.")
		}

		db, err := database.Open(cfg.Database)
		if err != nil {
			log.Fatalf("FATAL: Impossible de se connecter à la base de données: %v", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Printf("Attention: Erreur lors de la fermeture de la connexion à la base de données: %v", err)
			}
		}()

		log.Println("Exécution des migrations de la base de données...")
		if err := database.Migrate(db); err != nil {
			log.Fatalf("FATAL: Erreur lors de l'exécution des migrations: %v", err)
		}

		fmt.Println("Migrations de la base de données exécutées avec succès.")
	},
}

func init() {
	cmd2.RootCmd.AddCommand(MigrateCmd)
}
