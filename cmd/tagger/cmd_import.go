package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everyday-christian-tagger/internal/models"
)

// importCmd loads verses into the store
var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Insert verses from a JSON array",
	Long: `Reads a JSON array of verses and inserts them in one transaction.
Each element needs book, chapter, verse_number and text; reference is
derived when missing and clean_text is optional.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	var verses []models.Verse
	if err := json.Unmarshal(data, &verses); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	ids, err := store.InsertVerses(ctx, verses)
	if err != nil {
		return err
	}
	logger.Info("Imported verses", zap.String("file", args[0]), zap.Int("count", len(ids)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d verses\n", len(ids))
	return nil
}
