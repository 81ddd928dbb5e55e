package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everyday-christian-tagger/internal/config"
	"github.com/everyday-christian-tagger/internal/services"
)

var (
	mapTheme  string
	mapLimit  int
	mapOutput string
)

// mapCmd ranks candidate verses for the mapping themes
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Rank candidate verses for each mapping theme",
	Long: `Searches the verse store for each mapping theme's keywords and keeps the
best-scoring verses for manual curation.

With --theme the single mapping is printed as JSON. Otherwise every
mapping theme is written to --output as one JSON object keyed by theme.`,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().StringVar(&mapTheme, "theme", "", "Map a single theme and print it")
	mapCmd.Flags().IntVar(&mapLimit, "limit", 0, "Verses per theme (default: MAPPING_LIMIT)")
	mapCmd.Flags().StringVar(&mapOutput, "output", "", "Output file (default: MAPPING_OUTPUT)")
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig()

	limit := mapLimit
	if limit <= 0 {
		limit = cfg.MappingLimit
	}
	output := mapOutput
	if output == "" {
		output = cfg.MappingOutput
	}

	table, err := loadTable()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := services.NewMappingService(store, table, logger)
	out := cmd.OutOrStdout()

	if mapTheme != "" {
		mapping, err := svc.MapTheme(ctx, mapTheme, limit)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(mapping, "", "  ")
		if err != nil {
			return fmt.Errorf("encode mapping: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	mappings, err := svc.MapAll(ctx, limit)
	if err != nil {
		return err
	}
	if err := services.WriteMappings(output, mappings); err != nil {
		return err
	}

	total := 0
	for _, m := range mappings {
		total += m.VerseCount
	}
	fmt.Fprintf(out, "Mapped %d themes, %d verses -> %s\n", len(mappings), total, output)
	return nil
}
