package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/everyday-christian-tagger/internal/models"
	"github.com/everyday-christian-tagger/internal/repository"
)

// ExportTagged writes tagged verses of books to w as JSON lines and returns
// the number written
func ExportTagged(ctx context.Context, store repository.VerseRepository, books []string, w io.Writer) (int, error) {
	encoder := json.NewEncoder(w)
	count := 0

	err := store.EachTagged(ctx, books, func(v models.Verse) error {
		line := models.TaggedVerse{
			VerseID:   v.ID,
			Reference: v.Reference,
			Book:      v.Book,
			Text:      v.MatchText(),
			Themes:    v.Themes,
		}
		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("encode verse %d: %w", v.ID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("export tagged verses: %w", err)
	}
	return count, nil
}
