package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cmd2 "github.com/axellelanca/linkshortener/cmd"
	"github.com/axellelanca/linkshortener/internal/services"
)

var (
	// longURLFlag stockera la valeur du flag --url
	longURLFlag string
	// aliasFlag stockera l'alias personnalisé (optionnel)
	aliasFlag string
	// expiresInFlag stockera la durée de vie du lien (optionnel)
	expiresInFlag time.Duration
)

// CreateCmd représente la commande 'create'
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crée une URL courte à partir d'une URL longue.",
	Long: `Cette commande raccourcit une URL longue fournie et affiche le code court généré.
Un alias personnalisé et une durée de vie peuvent être précisés.

Exemples:
  url-shortener create --url="https://www.google.com/search?q=go+lang"
  url-shortener create --url="example.com" --alias="promo-2025" --expires-in=72h`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := cmd2.OpenDeps(context.Background(), false)
		if err != nil {
			log.Fatalf("FATAL: Impossible d'initialiser le service: %v", err)
		}
		defer deps.Close()

		var opts []services.ShortenOption
		if strings.TrimSpace(aliasFlag) != "" {
			opts = append(opts, services.WithAlias(aliasFlag))
		}
		if expiresInFlag > 0 {
			opts = append(opts, services.WithExpiry(time.Now().Add(expiresInFlag)))
		}

		record, err := deps.Service.Shorten(context.Background(), longURLFlag, opts...)
		if err != nil {
			log.Fatalf("FATAL: Échec de la création du lien court: %v", err)
		}

		fullShortURL := fmt.Sprintf("%s/%s", strings.TrimRight(cmd2.Cfg.Server.BaseURL, "/"), record.Code)
		fmt.Printf("URL courte créée avec succès:\n")
		fmt.Printf("Code: %s\n", record.Code)
		fmt.Printf("URL cible: %s\n", record.Target)
		fmt.Printf("URL complète: %s\n", fullShortURL)
		if exp, ok := record.Expiry(); ok {
			fmt.Printf("Expire le: %s\n", exp.Format(time.RFC3339))
		}
	},
}

// init() s'exécute automatiquement lors de l'importation du package.
// Il est utilisé pour définir les flags que cette commande accepte.
func init() {
	CreateCmd.Flags().StringVarP(&longURLFlag, "url", "u", "", "L'URL longue à raccourcir")
	CreateCmd.Flags().StringVarP(&aliasFlag, "alias", "a", "", "Alias personnalisé (3 à 50 caractères)")
	CreateCmd.Flags().DurationVar(&expiresInFlag, "expires-in", 0, "Durée de vie du lien (ex: 30m, 72h)")

	// Marquer le flag comme requis
	_ = CreateCmd.MarkFlagRequired("url")

	// Ajouter la commande à RootCmd
	cmd2.RootCmd.AddCommand(CreateCmd)
}
