package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/axellelanca/linkshortener/internal/config"
	apperrors "github.com/axellelanca/linkshortener/internal/errors"
	"github.com/axellelanca/linkshortener/internal/middleware"
	"github.com/axellelanca/linkshortener/internal/models"
	"github.com/axellelanca/linkshortener/internal/services"
)

// KindInvalidRequest signale un corps de requête illisible ou incomplet.
const KindInvalidRequest apperrors.Kind = "InvalidRequest"

// LinkService regroupe les opérations du service de liens utilisées par l'API.
type LinkService interface {
	Shorten(ctx context.Context, rawURL string, opts ...services.ShortenOption) (*models.URLRecord, error)
	Resolve(ctx context.Context, codeOrAlias string) (string, error)
	GetRecord(ctx context.Context, codeOrAlias string) (*models.URLRecord, error)
	IsExpired(record *models.URLRecord) bool
	Cleanup(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

var _ LinkService = (*services.URLService)(nil)

// SetupRoutes configure toutes les routes de l'API Gin et injecte les dépendances nécessaires.
func SetupRoutes(router *gin.Engine, linkService LinkService, cfg *config.Config, logger *zap.Logger) {
	h := &handlers{svc: linkService, baseURL: strings.TrimRight(cfg.Server.BaseURL, "/"), logger: logger}

	// Route de Health Check, /health
	router.GET("/health", h.health)

	// Routes de l'API
	api := router.Group("/api/v1")
	{
		api.POST("/links", h.createLink)
		api.GET("/links/:code/stats", h.linkStats)
		api.POST("/cleanup", h.cleanup)
	}

	// Route de Redirection (au niveau racine pour les short codes)
	router.GET("/:code", h.redirect)
}

type handlers struct {
	svc     LinkService
	baseURL string
	logger  *zap.Logger
}

// CreateLinkRequest représente le corps de la requête JSON pour la création d'un lien.
// expires_at et expiration_minutes sont exclusifs ; une date passée crée un lien déjà expiré.
type CreateLinkRequest struct {
	URL               string     `json:"url" binding:"required"`
	Alias             *string    `json:"alias,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`                                   // RFC3339
	ExpirationMinutes int        `json:"expiration_minutes,omitempty" binding:"omitempty,min=1"` // Durée de vie relative
}

// CreateLinkResponse est renvoyée avec un statut 201.
type CreateLinkResponse struct {
	Code      string     `json:"code"`
	ShortURL  string     `json:"short_url"`
	Target    string     `json:"target"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// LinkStatsResponse expose l'enregistrement complet, expiré ou non.
type LinkStatsResponse struct {
	Code      string     `json:"code"`
	Target    string     `json:"target"`
	Clicks    int64      `json:"clicks"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsExpired bool       `json:"is_expired"`
	Alias     *string    `json:"alias,omitempty"`
}

// health vérifie que la base répond.
func (h *handlers) health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createLink gère la création d'une URL courte.
func (h *handlers) createLink(c *gin.Context) {
	var req CreateLinkRequest
	// Tente de lier le JSON de la requête à la structure CreateLinkRequest.
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, KindInvalidRequest, "requête invalide: "+err.Error())
		return
	}
	if req.ExpiresAt != nil && req.ExpirationMinutes > 0 {
		h.fail(c, &apperrors.ErrInvalidExpiry{Reason: "expires_at et expiration_minutes sont exclusifs"})
		return
	}

	var opts []services.ShortenOption
	// Un alias vide équivaut à une absence d'alias.
	if req.Alias != nil && strings.TrimSpace(*req.Alias) != "" {
		opts = append(opts, services.WithAlias(*req.Alias))
	}
	switch {
	case req.ExpiresAt != nil:
		opts = append(opts, services.WithExpiry(*req.ExpiresAt))
	case req.ExpirationMinutes > 0:
		opts = append(opts, services.WithExpiry(time.Now().Add(time.Duration(req.ExpirationMinutes)*time.Minute)))
	}

	record, err := h.svc.Shorten(c.Request.Context(), req.URL, opts...)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateLinkResponse{
		Code:      record.Code,
		ShortURL:  h.baseURL + "/" + record.Code,
		Target:    record.Target,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	})
}

// redirect gère la redirection d'une URL courte vers l'URL longue.
func (h *handlers) redirect(c *gin.Context) {
	code := c.Param("code")

	target, err := h.svc.Resolve(c.Request.Context(), code)
	if err != nil {
		var expired *apperrors.ErrLinkExpired
		if errors.As(err, &expired) {
			c.JSON(http.StatusGone, gin.H{
				"error_kind": apperrors.KindExpired,
				"error":      err.Error(),
				"expired_at": expired.ExpiredAt.Format(time.RFC3339),
			})
			return
		}
		h.fail(c, err)
		return
	}

	// Effectuer la redirection HTTP 302 (StatusFound) vers l'URL longue.
	c.Redirect(http.StatusFound, target)
}

// linkStats renvoie les statistiques d'un lien, sans compter de clic.
func (h *handlers) linkStats(c *gin.Context) {
	record, err := h.svc.GetRecord(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, LinkStatsResponse{
		Code:      record.Code,
		Target:    record.Target,
		Clicks:    record.Clicks,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
		IsExpired: h.svc.IsExpired(record),
		Alias:     record.Alias,
	})
}

// cleanup déclenche immédiatement un balayage des liens expirés.
func (h *handlers) cleanup(c *gin.Context) {
	deleted, err := h.svc.Cleanup(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// fail traduit une erreur du service en réponse HTTP.
// Les messages des erreurs 5xx ne sont jamais transmis au client.
func (h *handlers) fail(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("error_kind", string(kind)),
			zap.Error(err))
		writeError(c, status, kind, http.StatusText(status))
		return
	}
	writeError(c, status, kind, err.Error())
}

// StatusFor associe une catégorie d'erreur à un statut HTTP.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidURL, apperrors.KindInvalidAlias, apperrors.KindInvalidExpiry, KindInvalidRequest:
		return http.StatusBadRequest
	case apperrors.KindAliasTaken:
		return http.StatusConflict
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindExpired:
		return http.StatusGone
	case apperrors.KindStoreUnavailable, apperrors.KindAllocationExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, kind apperrors.Kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error_kind": kind, "error": msg})
}
