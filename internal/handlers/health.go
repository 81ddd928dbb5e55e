package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/everyday-christian-tagger/internal/repository"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store  repository.VerseRepository
	driver string
}

// NewHealthHandler creates a new health handler. store may be nil when no
// database is configured.
func NewHealthHandler(store repository.VerseRepository, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

// HealthResponse is the response for basic health check
type HealthResponse struct {
	Status string `json:"status"`
}

// DatabaseHealthResponse is the response for database health check
type DatabaseHealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// DatabaseHealth handles GET /health/db
func (h *HealthHandler) DatabaseHealth(c echo.Context) error {
	if h.store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_configured",
			"error":  "verse store is not configured",
		})
	}

	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, DatabaseHealthResponse{
		Status:   "connected",
		Database: h.driver,
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/db", h.DatabaseHealth)
}
