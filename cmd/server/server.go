package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	cmd2 "github.com/axellelanca/linkshortener/cmd"
	"github.com/axellelanca/linkshortener/internal/api"
	"github.com/axellelanca/linkshortener/internal/middleware"
	"github.com/axellelanca/linkshortener/internal/workers"
)

// RunServerCmd représente la commande 'run-server'
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API de raccourcissement d'URLs et le nettoyage périodique.",
	Long: `Cette commande applique les migrations, démarre le serveur HTTP Gin
et, si activé, le worker qui supprime les liens expirés.
Le serveur s'arrête proprement sur SIGINT ou SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			log.Fatalf("FATAL: %v", err)
		}
	},
}

func run() error {
	cfg := cmd2.Cfg
	logger := cmd2.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := cmd2.OpenDeps(ctx, true)
	if err != nil {
		return fmt.Errorf("impossible d'initialiser le service: %w", err)
	}
	defer deps.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), middleware.Recovery(logger))
	api.SetupRoutes(router, deps.Service, cfg, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("base_url", cfg.Server.BaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("le serveur HTTP s'est arrêté: %w", err)
		}
		return nil
	})

	if cfg.Cleanup.Enabled {
		worker := workers.NewCleanupWorker(deps.Service, cfg.Cleanup.Interval(), logger.Named("cleanup"))
		g.Go(func() error { return worker.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func init() {
	cmd2.RootCmd.AddCommand(RunServerCmd)
}
