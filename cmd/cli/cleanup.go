package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	cmd2 "github.com/axellelanca/linkshortener/cmd"
)

// CleanupCmd représente la commande 'cleanup'
var CleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Supprime les liens dont la date d'expiration est dépassée.",
	Long: `Cette commande lance immédiatement le balayage des liens expirés,
celui que le serveur exécute périodiquement, et affiche le nombre de liens supprimés.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := cmd2.OpenDeps(context.Background(), false)
		if err != nil {
			log.Fatalf("FATAL: Impossible d'initialiser le service: %v", err)
		}
		defer deps.Close()

		deleted, err := deps.Service.Cleanup(context.Background())
		if err != nil {
			log.Fatalf("FATAL: Échec du nettoyage: %v", err)
		}
		fmt.Printf("%d lien(s) expiré(s) supprimé(s).\n", deleted)
	},
}

func init() {
	cmd2.RootCmd.AddCommand(CleanupCmd)
}
