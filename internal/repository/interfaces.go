package repository

import (
	"context"
	"errors"

	"github.com/everyday-christian-tagger/internal/models"
)

var (
	// ErrVerseNotFound is returned when a verse id does not exist
	ErrVerseNotFound = errors.New("verse not found")
	// ErrRunNotFound is returned when a tagging run id does not exist
	ErrRunNotFound = errors.New("tagging run not found")
)

// VerseRepository defines operations on the verse store
type VerseRepository interface {
	// FetchUntagged returns verses in books whose themes are NULL or empty, ordered by id.
	// An empty books slice selects every book.
	FetchUntagged(ctx context.Context, books []string) ([]models.Verse, error)

	// CommitBatch writes theme assignments and advances the run counters in one transaction.
	// Assignments for ids that no longer exist are reported as skipped.
	CommitBatch(ctx context.Context, runID string, assignments []models.ThemeAssignment) (models.BatchResult, error)

	// SetThemes writes the themes of a single verse
	SetThemes(ctx context.Context, id int64, themes []string) error

	// GetVerse returns a verse with its decoded themes
	GetVerse(ctx context.Context, id int64) (models.Verse, error)

	// GetThemes returns the stored themes of a verse
	GetThemes(ctx context.Context, id int64) ([]string, error)

	// SearchByKeywords returns verses whose match text contains any keyword, ordered by id
	SearchByKeywords(ctx context.Context, keywords []string) ([]models.Verse, error)

	// InsertVerses adds verses and returns their assigned ids
	InsertVerses(ctx context.Context, verses []models.Verse) ([]int64, error)

	// EachTagged streams tagged verses of books (all books when empty) in
	// book, chapter, verse order. Iteration stops at the first error from fn;
	// fn must not call back into the store.
	EachTagged(ctx context.Context, books []string, fn func(models.Verse) error) error

	// Coverage counts all and tagged verses in books (all books when empty)
	Coverage(ctx context.Context, books []string) (models.Coverage, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error
}

// RunRepository records tagging run progress
type RunRepository interface {
	StartRun(ctx context.Context, run models.Run) error
	FinishRun(ctx context.Context, runID string, status models.RunStatus) error
	GetRun(ctx context.Context, runID string) (models.Run, error)
}

// Store is the combined verse and run store used by the tagging driver
type Store interface {
	VerseRepository
	RunRepository
}
