package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                  *config.Config
	transcriptionHandler *Transcription
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, transcriptionHandler *Transcription) *Router {
	return &Router{
		cfg:                  cfg,
		transcriptionHandler: transcriptionHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupTranscriptionRoutes(v1)
}

// setupTranscriptionRoutes configures transcription routes
func (rt *Router) setupTranscriptionRoutes(g *echo.Group) {
	group := g.Group("/transcriptions")

	if rt.transcriptionHandler != nil {
		group.POST("", rt.transcriptionHandler.Create)
		group.GET("", rt.transcriptionHandler.List)
		group.GET("/files/:name", rt.transcriptionHandler.Download)
	} else {
		group.POST("", rt.notImplemented)
		group.GET("", rt.notImplemented)
		group.GET("/files/:name", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	environment := "development"
	if rt.cfg != nil {
		environment = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": environment,
	})
}
