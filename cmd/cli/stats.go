package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	cmd2 "github.com/axellelanca/linkshortener/cmd"
	apperrors "github.com/axellelanca/linkshortener/internal/errors"
)

// shortCodeFlag stockera la valeur du flag --code
var shortCodeFlag string

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Affiche les statistiques (nombre de clics) pour un lien court.",
	Long: `Cette commande permet de récupérer et d'afficher le nombre total de clics
pour une URL courte spécifique en utilisant son code ou son alias.
La lecture ne compte pas comme un clic, et les liens expirés restent consultables.

Exemple:
  url-shortener stats --code="xyz123"`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := cmd2.OpenDeps(context.Background(), false)
		if err != nil {
			log.Fatalf("FATAL: Impossible d'initialiser le service: %v", err)
		}
		defer deps.Close()

		record, err := deps.Service.GetRecord(context.Background(), shortCodeFlag)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				log.Fatalf("FATAL: Code court '%s' introuvable", shortCodeFlag)
			}
			log.Fatalf("FATAL: Erreur lors de la récupération des statistiques: %v", err)
		}

		fmt.Printf("Statistiques pour le code court: %s\n", record.Code)
		fmt.Printf("URL longue: %s\n", record.Target)
		fmt.Printf("Créé le: %s\n", record.CreatedAt.Format(time.RFC3339))
		if alias, ok := record.CustomAlias(); ok {
			fmt.Printf("Alias: %s\n", alias)
		}
		if exp, ok := record.Expiry(); ok {
			fmt.Printf("Expire le: %s (expiré: %t)\n", exp.Format(time.RFC3339), deps.Service.IsExpired(record))
		}
		fmt.Printf("Total de clics: %d\n", record.Clicks)
	},
}

func init() {
	StatsCmd.Flags().StringVarP(&shortCodeFlag, "code", "c", "", "Le code court dont on veut les statistiques")

	// Marquer le flag comme requis
	_ = StatsCmd.MarkFlagRequired("code")

	cmd2.RootCmd.AddCommand(StatsCmd)
}
