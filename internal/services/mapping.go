package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/everyday-christian-tagger/internal/models"
	"github.com/everyday-christian-tagger/internal/repository"
	"github.com/everyday-christian-tagger/internal/themes"
)

// MappingService ranks candidate verses for the mapping vocabulary
type MappingService struct {
	store  repository.VerseRepository
	table  *themes.Table
	logger *zap.Logger
}

// NewMappingService creates a new mapping service
func NewMappingService(store repository.VerseRepository, table *themes.Table, logger *zap.Logger) *MappingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MappingService{
		store:  store,
		table:  table,
		logger: logger,
	}
}

// MapTheme returns the best limit verses for theme. Unknown themes return
// themes.ErrUnknownTheme.
func (s *MappingService) MapTheme(ctx context.Context, theme string, limit int) (models.ThemeMapping, error) {
	keywords, err := s.table.Keywords(theme)
	if err != nil {
		return models.ThemeMapping{}, err
	}

	candidates, err := s.store.SearchByKeywords(ctx, keywords)
	if err != nil {
		return models.ThemeMapping{}, fmt.Errorf("map theme %s: %w", theme, err)
	}

	ranked := themes.TopMatches(keywords, candidates, limit)
	s.logger.Debug("Mapped theme",
		zap.String("theme", theme),
		zap.Int("candidates", len(candidates)),
		zap.Int("verses", len(ranked)))
	return models.NewThemeMapping(theme, keywords, ranked), nil
}

// MapAll maps every mapping theme in declaration order
func (s *MappingService) MapAll(ctx context.Context, limit int) ([]models.ThemeMapping, error) {
	names := s.table.MappingThemes()
	mappings := make([]models.ThemeMapping, 0, len(names))
	for _, theme := range names {
		if err := ctx.Err(); err != nil {
			return mappings, err
		}
		m, err := s.MapTheme(ctx, theme, limit)
		if err != nil {
			return mappings, err
		}
		s.logger.Info("Theme mapped", zap.String("theme", theme), zap.Int("verse_count", m.VerseCount))
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// WriteMappings writes mappings as a JSON object keyed by theme, creating
// parent directories as needed
func WriteMappings(path string, mappings []models.ThemeMapping) error {
	byTheme := make(map[string]models.ThemeMapping, len(mappings))
	for _, m := range mappings {
		byTheme[m.Theme] = m
	}

	data, err := json.MarshalIndent(byTheme, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write mappings: %w", err)
	}
	return nil
}
