package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var coverageBooks []string

// coverageCmd reports how much of the corpus carries themes
var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Show total and tagged verse counts",
	RunE:  runCoverage,
}

func init() {
	coverageCmd.Flags().StringSliceVar(&coverageBooks, "books", nil, "Restrict to these books")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	coverage, err := store.Coverage(ctx, coverageBooks)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Total verses: %d\nTagged verses: %d\nCoverage: %.1f%%\n",
		coverage.Total, coverage.Tagged, coverage.Percent())
	return nil
}
