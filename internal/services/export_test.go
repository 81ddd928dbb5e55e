package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everyday-christian-tagger/internal/models"
)

func TestExportTagged(t *testing.T) {
	store := newMemStore(
		models.Verse{ID: 1, Book: "Philippians", Reference: "Philippians 4:4", Text: "Rejoice", Themes: []string{"joy"}},
		models.Verse{ID: 2, Book: "Genesis", Reference: "Genesis 1:1", Text: "In the beginning"},
		models.Verse{ID: 3, Book: "Romans", Reference: "Romans 8:24", Text: "\\add saved\\add* by hope", CleanText: "saved by hope", Themes: []string{"hope"}},
	)

	var buf bytes.Buffer
	n, err := ExportTagged(context.Background(), store, nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var lines []models.TaggedVerse
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line models.TaggedVerse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, models.TaggedVerse{VerseID: 1, Reference: "Philippians 4:4", Book: "Philippians", Text: "Rejoice", Themes: []string{"joy"}}, lines[0])
	assert.Equal(t, "saved by hope", lines[1].Text)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportTagged_WriteError(t *testing.T) {
	store := newMemStore(models.Verse{ID: 1, Book: "Philippians", Text: "Rejoice", Themes: []string{"joy"}})

	n, err := ExportTagged(context.Background(), store, []string{"Philippians"}, failingWriter{})
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}
