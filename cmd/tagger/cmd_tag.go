package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/everyday-christian-tagger/internal/config"
	"github.com/everyday-christian-tagger/internal/services"
)

var (
	tagBooks  []string
	tagPhases bool
)

// tagCmd tags untagged verses in batches
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag untagged verses with themes",
	Long: `Classifies every untagged verse of the selected books and writes the
themes back in batches. Interrupting the run keeps the batches already
committed; running again resumes with the verses still untagged.

Examples:
  tagger tag --books Galatians,Ephesians
  tagger tag --phases   # Psalms, Gospels, then the key epistles`,
	RunE: runTag,
}

func init() {
	tagCmd.Flags().StringSliceVar(&tagBooks, "books", nil, "Books to tag (default: TAGGER_BOOKS)")
	tagCmd.Flags().BoolVar(&tagPhases, "phases", false, "Tag Psalms, Gospels and key epistles in order")
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig()

	classifier, err := loadClassifier()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := services.NewTaggingService(store, classifier, logger, services.TaggingOptions{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
	})
	out := cmd.OutOrStdout()

	if tagPhases {
		summaries, err := svc.TagPhases(ctx, services.DefaultPhases)
		for _, s := range summaries {
			fmt.Fprintf(out, "Phase %s:\n", s.Phase)
			printRunSummary(out, s.RunSummary)
		}
		if err != nil {
			return err
		}
	} else {
		books := tagBooks
		if len(books) == 0 {
			books = cfg.Books
		}
		summary, err := svc.TagBooks(ctx, books)
		printRunSummary(out, summary)
		if err != nil {
			return err
		}
	}

	coverage, err := store.Coverage(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total verses: %d\nTagged verses: %d\nCoverage: %.1f%%\n",
		coverage.Total, coverage.Tagged, coverage.Percent())
	return nil
}

func printRunSummary(w io.Writer, s services.RunSummary) {
	fmt.Fprintf(w, "  run %s (%s): %d/%d verses tagged in %d batches, %d without themes, %d skipped, %s\n",
		s.RunID, s.Status, s.Tagged, s.Total, s.Batches, s.Empty, len(s.Skipped), s.Elapsed.Round(time.Millisecond))
}
