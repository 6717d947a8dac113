package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voxdesk-app/voxdesk/internal/infrastructure/http/middleware"
	"github.com/voxdesk-app/voxdesk/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	syncHandler     *Sync
	backfillHandler *Backfill
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, syncHandler *Sync, backfillHandler *Backfill, authMiddleware *middleware.AuthMiddleware) *Router {
	return &Router{
		cfg:             cfg,
		syncHandler:     syncHandler,
		backfillHandler: backfillHandler,
		authMiddleware:  authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1", rt.authMiddleware.Authenticate)

	rt.setupSyncRoutes(v1)
	rt.setupBackfillRoutes(v1)
}

func (rt *Router) setupSyncRoutes(g *echo.Group) {
	syncGroup := g.Group("/sync")

	syncGroup.POST("/calls", rt.syncHandler.SyncCalls)
	syncGroup.POST("/leads", rt.syncHandler.SyncLeads)
	syncGroup.GET("/status", rt.syncHandler.Status)
}

func (rt *Router) setupBackfillRoutes(g *echo.Group) {
	backfillGroup := g.Group("/admin/backfill")

	backfillGroup.POST("/assistants", rt.backfillHandler.Assistants)
	backfillGroup.POST("/caller-names", rt.backfillHandler.CallerNames)
	backfillGroup.POST("/score-scale", rt.backfillHandler.ScoreScale)
	backfillGroup.POST("/evaluations", rt.backfillHandler.Evaluations)
	backfillGroup.POST("/transcripts", rt.backfillHandler.Transcripts)
	backfillGroup.POST("/recordings/archive", rt.backfillHandler.ArchiveRecordings)
}

// healthCheck reports process liveness
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
		"version":     "1.0.0",
	})
}
