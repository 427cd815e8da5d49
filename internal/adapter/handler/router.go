package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/podflow-team/podflow/internal/infrastructure/http/middleware"
	"github.com/podflow-team/podflow/pkg/config"
	pkgjwt "github.com/podflow-team/podflow/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	episodeHandler  *EpisodeHandler
	webhookHandler  *WebhookHandler
	artifactHandler *ArtifactHandler
	jwtManager      *pkgjwt.Manager
}

// NewRouter creates a new router with all handlers. A nil jwtManager leaves
// the episode routes unauthenticated (local development); a nil
// artifactHandler hides the artifact routes.
func NewRouter(cfg *config.Config, episodeHandler *EpisodeHandler, webhookHandler *WebhookHandler, artifactHandler *ArtifactHandler, jwtManager *pkgjwt.Manager) *Router {
	return &Router{
		cfg:             cfg,
		episodeHandler:  episodeHandler,
		webhookHandler:  webhookHandler,
		artifactHandler: artifactHandler,
		jwtManager:      jwtManager,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupEpisodeRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

// setupEpisodeRoutes configures episode submission and retrieval routes
func (rt *Router) setupEpisodeRoutes(g *echo.Group) {
	episodeGroup := g.Group("/episodes")

	if rt.jwtManager != nil {
		episodeGroup.Use(middleware.EchoAuth(rt.jwtManager))
	}

	if rt.episodeHandler != nil {
		episodeGroup.POST("", rt.episodeHandler.CreateEpisode)
		episodeGroup.GET("", rt.episodeHandler.ListEpisodes)
		episodeGroup.GET("/:id", rt.episodeHandler.GetEpisode)
		episodeGroup.GET("/:id/jobs", rt.episodeHandler.ListJobs)
		episodeGroup.GET("/:id/content", rt.episodeHandler.GetResult)
	} else {
		episodeGroup.POST("", rt.notImplemented)
		episodeGroup.GET("", rt.notImplemented)
		episodeGroup.GET("/:id", rt.notImplemented)
		episodeGroup.GET("/:id/jobs", rt.notImplemented)
		episodeGroup.GET("/:id/content", rt.notImplemented)
	}

	if rt.artifactHandler != nil {
		episodeGroup.GET("/:id/artifacts", rt.artifactHandler.ListArtifacts)
	}
}

// setupWebhookRoutes configures provider callback routes. These are verified
// with the shared webhook secret, never with user JWTs.
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhookGroup := g.Group("/webhooks")

	if rt.webhookHandler != nil {
		webhookGroup.POST("/assemblyai", rt.webhookHandler.HandleAssemblyAI)
	} else {
		webhookGroup.POST("/assemblyai", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
