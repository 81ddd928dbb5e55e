package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/everyday-christian-tagger/internal/config"
	"github.com/everyday-christian-tagger/internal/models"
	"github.com/everyday-christian-tagger/internal/repository"
	"github.com/everyday-christian-tagger/internal/services"
	"github.com/everyday-christian-tagger/internal/themes"
)

const maxMappingLimit = 100

// ThemeHandler handles classification and theme lookup endpoints
type ThemeHandler struct {
	classifier *themes.Classifier
	mapping    *services.MappingService
	store      repository.VerseRepository
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(classifier *themes.Classifier, mapping *services.MappingService, store repository.VerseRepository) *ThemeHandler {
	return &ThemeHandler{
		classifier: classifier,
		mapping:    mapping,
		store:      store,
	}
}

// Classify handles POST /classify - themes for one verse
func (h *ThemeHandler) Classify(c echo.Context) error {
	var req models.ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if strings.TrimSpace(req.Reference) == "" && strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Reference or text is required")
	}

	return c.JSON(http.StatusOK, models.ClassifyResponse{
		Reference: req.Reference,
		Themes:    h.classifier.Classify(req.Reference, req.Text),
	})
}

// Vocabulary handles GET /themes
func (h *ThemeHandler) Vocabulary(c echo.Context) error {
	table := h.classifier.Table()
	return c.JSON(http.StatusOK, models.VocabularyResponse{
		ClassifierThemes: table.Vocabulary(),
		MappingThemes:    table.MappingThemes(),
	})
}

// ThemeVerses handles GET /themes/:theme/verses - ranked candidate verses
func (h *ThemeHandler) ThemeVerses(c echo.Context) error {
	limit := themes.DefaultMatchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Limit must be a positive integer")
		}
		limit = min(n, maxMappingLimit)
	}

	mapping, err := h.mapping.MapTheme(c.Request().Context(), c.Param("theme"), limit)
	if errors.Is(err, themes.ErrUnknownTheme) {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown theme: "+c.Param("theme"))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Mapping failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, mapping)
}

// VerseThemes handles GET /verses/:id/themes - stored themes of a verse
func (h *ThemeHandler) VerseThemes(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid verse id")
	}

	verse, err := h.store.GetVerse(c.Request().Context(), id)
	if errors.Is(err, repository.ErrVerseNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Verse not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Lookup failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, models.VerseThemesResponse{
		VerseID:   verse.ID,
		Reference: verse.Reference,
		Themes:    verse.Themes,
	})
}

// Coverage handles GET /coverage?books=a,b
func (h *ThemeHandler) Coverage(c echo.Context) error {
	books := config.SplitList(c.QueryParam("books"))

	coverage, err := h.store.Coverage(c.Request().Context(), books)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Coverage failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, models.CoverageResponse{
		Books:   books,
		Total:   coverage.Total,
		Tagged:  coverage.Tagged,
		Percent: coverage.Percent(),
	})
}

// RegisterRoutes registers theme routes
func (h *ThemeHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/classify", h.Classify)
	g.GET("/themes", h.Vocabulary)
	g.GET("/themes/:theme/verses", h.ThemeVerses)
	g.GET("/verses/:id/themes", h.VerseThemes)
	g.GET("/coverage", h.Coverage)
}
