package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// classifyCmd classifies one verse without touching the database
var classifyCmd = &cobra.Command{
	Use:     "classify <reference> <text>",
	Short:   "Print the themes of a single verse as JSON",
	Example: `  tagger classify "Philippians 4:4" "Rejoice in the Lord always"`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	classifier, err := loadClassifier()
	if err != nil {
		return err
	}

	text := strings.Join(args[1:], " ")
	data, err := json.Marshal(classifier.Classify(args[0], text))
	if err != nil {
		return fmt.Errorf("encode themes: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
