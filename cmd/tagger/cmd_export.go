package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everyday-christian-tagger/internal/services"
)

var (
	exportBooks  []string
	exportOutput string
)

// exportCmd writes tagged verses as JSON lines
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tagged verses as JSONL training data",
	Long: `Writes one JSON object per tagged verse (verse_id, reference, book,
text, themes), ordered by book, chapter and verse.

Example:
  tagger export --books Psalms --output assets/training_data/psalms.jsonl`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportBooks, "books", nil, "Restrict to these books")
	exportCmd.Flags().StringVar(&exportOutput, "output", "assets/training_data/tagged_verses.jsonl", "Output JSONL file path")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := os.MkdirAll(filepath.Dir(exportOutput), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	count, err := services.ExportTagged(ctx, store, exportBooks, f)
	if err != nil {
		return err
	}
	logger.Info("Exported tagged verses", zap.String("output", exportOutput), zap.Int("count", count))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d verses to %s\n", count, exportOutput)
	return nil
}
