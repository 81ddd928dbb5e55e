package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/everyday-christian-tagger/internal/models"
	"github.com/everyday-christian-tagger/internal/repository"
	"github.com/everyday-christian-tagger/internal/themes"
)

// Phase is a named group of books tagged together
type Phase struct {
	Name  string
	Books []string
}

// DefaultPhases tags the comfort books first: Psalms, the Gospels, then the key epistles
var DefaultPhases = []Phase{
	{Name: "Psalms", Books: []string{"Psalms"}},
	{Name: "Gospels", Books: []string{"Matthew", "Mark", "Luke", "John"}},
	{Name: "Key Epistles", Books: []string{
		"Romans", "Ephesians", "Philippians", "Colossians",
		"1 Corinthians", "2 Corinthians", "Galatians",
	}},
}

// RunSummary reports the outcome of one TagBooks call
type RunSummary struct {
	RunID   string           `json:"run_id"`
	Books   []string         `json:"books"`
	Total   int              `json:"total"`
	Tagged  int              `json:"tagged"`
	Empty   int              `json:"empty"` // written with no themes
	Skipped []int64          `json:"skipped"`
	Batches int              `json:"batches"`
	Status  models.RunStatus `json:"status"`
	Elapsed time.Duration    `json:"elapsed"`
}

// PhaseSummary is the RunSummary of one phase
type PhaseSummary struct {
	Phase string `json:"phase"`
	RunSummary
}

// TaggingOptions tunes the batch driver
type TaggingOptions struct {
	BatchSize int
	Workers   int
}

// TaggingService classifies untagged verses and writes their themes back in batches
type TaggingService struct {
	store      repository.Store
	classifier *themes.Classifier
	logger     *zap.Logger
	batchSize  int
	workers    int
}

// NewTaggingService creates a new tagging service
func NewTaggingService(store repository.Store, classifier *themes.Classifier, logger *zap.Logger, opts TaggingOptions) *TaggingService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaggingService{
		store:      store,
		classifier: classifier,
		logger:     logger,
		batchSize:  opts.BatchSize,
		workers:    opts.Workers,
	}
}

// TagBooks tags every untagged verse of books (all books when empty).
// Cancellation is checked between batches; batches already committed stay
// committed and the run is recorded as interrupted.
func (s *TaggingService) TagBooks(ctx context.Context, books []string) (RunSummary, error) {
	summary := RunSummary{
		RunID:   uuid.NewString(),
		Books:   books,
		Skipped: []int64{},
		Status:  models.RunStatusRunning,
	}
	start := time.Now()
	log := s.logger.With(zap.String("run_id", summary.RunID), zap.Strings("books", books))

	if err := s.store.StartRun(ctx, models.Run{ID: summary.RunID, Books: books, StartedAt: start}); err != nil {
		return summary, fmt.Errorf("start tagging run: %w", err)
	}

	log.Info("Finding untagged verses")
	verses, err := s.store.FetchUntagged(ctx, books)
	if err != nil {
		s.finish(ctx, &summary, start, models.RunStatusFailed)
		return summary, fmt.Errorf("fetch untagged verses: %w", err)
	}
	summary.Total = len(verses)

	if summary.Total == 0 {
		log.Info("All verses already tagged")
		s.finish(ctx, &summary, start, models.RunStatusCompleted)
		return summary, nil
	}

	batches := (summary.Total + s.batchSize - 1) / s.batchSize
	log.Info("Tagging verses",
		zap.Int("total", summary.Total),
		zap.Int("batch_size", s.batchSize),
		zap.Int("workers", s.workers))

	for i := 0; i < batches; i++ {
		if err := ctx.Err(); err != nil {
			log.Warn("Tagging interrupted", zap.Int("batches_committed", summary.Batches))
			s.finish(ctx, &summary, start, models.RunStatusInterrupted)
			return summary, fmt.Errorf("tagging interrupted: %w", err)
		}

		lo := i * s.batchSize
		hi := min(lo+s.batchSize, summary.Total)
		batch := verses[lo:hi]

		assignments, err := s.classifyBatch(ctx, batch)
		if err != nil {
			status := models.RunStatusFailed
			if ctx.Err() != nil {
				status = models.RunStatusInterrupted
			}
			s.finish(ctx, &summary, start, status)
			return summary, fmt.Errorf("classify batch %d: %w", i+1, err)
		}

		result, err := s.store.CommitBatch(ctx, summary.RunID, assignments)
		if err != nil {
			status := models.RunStatusFailed
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				status = models.RunStatusInterrupted
			}
			s.finish(ctx, &summary, start, status)
			return summary, fmt.Errorf("commit batch %d: %w", i+1, err)
		}

		summary.Batches++
		summary.Tagged += result.Updated
		summary.Skipped = append(summary.Skipped, result.Skipped...)
		for _, a := range assignments {
			if len(a.Themes) == 0 && !containsID(result.Skipped, a.VerseID) {
				summary.Empty++
			}
		}
		for _, id := range result.Skipped {
			log.Warn("Verse vanished before commit", zap.Int64("verse_id", id))
		}

		done := hi
		elapsed := time.Since(start)
		rate := float64(done) / elapsed.Seconds()
		var eta time.Duration
		if rate > 0 {
			eta = time.Duration(float64(summary.Total-done) / rate * float64(time.Second))
		}
		log.Info("Batch committed",
			zap.Int("batch", i+1),
			zap.Int("batches", batches),
			zap.Int("done", done),
			zap.Int("total", summary.Total),
			zap.Float64("verses_per_sec", rate),
			zap.Duration("eta", eta))
	}

	s.finish(ctx, &summary, start, models.RunStatusCompleted)
	log.Info("Tagging completed",
		zap.Int("tagged", summary.Tagged),
		zap.Int("empty", summary.Empty),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// TagPhases runs TagBooks for each phase in order, stopping at the first error
func (s *TaggingService) TagPhases(ctx context.Context, phases []Phase) ([]PhaseSummary, error) {
	summaries := make([]PhaseSummary, 0, len(phases))
	for _, phase := range phases {
		s.logger.Info("Starting phase", zap.String("phase", phase.Name), zap.Strings("books", phase.Books))
		summary, err := s.TagBooks(ctx, phase.Books)
		summaries = append(summaries, PhaseSummary{Phase: phase.Name, RunSummary: summary})
		if err != nil {
			return summaries, fmt.Errorf("phase %s: %w", phase.Name, err)
		}
	}
	return summaries, nil
}

// classifyBatch classifies verses concurrently; results keep the batch order
func (s *TaggingService) classifyBatch(ctx context.Context, batch []models.Verse) ([]models.ThemeAssignment, error) {
	assignments := make([]models.ThemeAssignment, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			assignments[i] = models.ThemeAssignment{
				VerseID: batch[i].ID,
				Themes:  s.classifier.ClassifyVerse(batch[i]),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// finish records the final status. It runs detached from ctx so a cancelled
// run can still be stamped.
func (s *TaggingService) finish(ctx context.Context, summary *RunSummary, start time.Time, status models.RunStatus) {
	summary.Status = status
	summary.Elapsed = time.Since(start)
	if err := s.store.FinishRun(context.WithoutCancel(ctx), summary.RunID, status); err != nil {
		s.logger.Error("Failed to record run status",
			zap.String("run_id", summary.RunID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
