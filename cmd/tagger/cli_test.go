package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everyday-christian-tagger/internal/models"
	"github.com/everyday-christian-tagger/internal/repository/sqlstore"
	"github.com/everyday-christian-tagger/pkg/schema/config"
	"github.com/everyday-christian-tagger/pkg/schema/db"
)

// execute runs the root command with args, resetting flag variables first
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, keywordsPath, dbPath = false, "", ""
	tagBooks, tagPhases = nil, false
	mapTheme, mapLimit, mapOutput = "", 0, ""
	coverageBooks = nil
	exportBooks = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	verses := []models.Verse{
		{Book: "Galatians", Chapter: 5, VerseNumber: 1, Text: "Stand fast therefore in the liberty wherewith Christ hath made us free"},
		{Book: "Philippians", Chapter: 4, VerseNumber: 4, Text: "Rejoice in the Lord always: and again I say, Rejoice."},
		{Book: "Psalms", Chapter: 130, VerseNumber: 5, Text: "I wait for the LORD, my soul doth wait, and in his word do I hope."},
	}
	data, err := json.Marshal(verses)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "verses.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestClassifyCommand(t *testing.T) {
	out, err := execute(t, "classify", "Philippians 4:4", "Rejoice", "in", "the", "Lord", "always")
	require.NoError(t, err)
	assert.Equal(t, "[\"joy\"]\n", out)

	out, err = execute(t, "classify", "Genesis 1:1", "In the beginning")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestClassifyCommand_Errors(t *testing.T) {
	_, err := execute(t, "classify", "Philippians 4:4")
	assert.Error(t, err)

	_, err = execute(t, "--keywords", filepath.Join(t.TempDir(), "missing.yaml"), "classify", "John 3:16", "love")
	assert.Error(t, err)
}

func TestImportTagCoverage(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "bible.db")
	corpus := writeCorpus(t)

	out, err := execute(t, "--db", dbFile, "import", corpus)
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 verses\n", out)

	out, err = execute(t, "--db", dbFile, "tag", "--books", "Galatians,Philippians")
	require.NoError(t, err)
	assert.Contains(t, out, "2/2 verses tagged")
	assert.Contains(t, out, "Tagged verses: 2")

	out, err = execute(t, "--db", dbFile, "coverage", "--books", "Psalms")
	require.NoError(t, err)
	assert.Equal(t, "Total verses: 1\nTagged verses: 0\nCoverage: 0.0%\n", out)

	conn, err := db.Open(context.Background(), &config.Config{Driver: db.DriverSQLite, DBPath: dbFile})
	require.NoError(t, err)
	defer conn.Close()
	store := sqlstore.NewStore(conn)

	untagged, err := store.FetchUntagged(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, untagged, 1)
	assert.Equal(t, "Psalms 130:5", untagged[0].Reference)

	tagged, err := store.FetchUntagged(context.Background(), []string{"Philippians"})
	require.NoError(t, err)
	assert.Empty(t, tagged)

	export := filepath.Join(t.TempDir(), "out", "tagged.jsonl")
	out, err = execute(t, "--db", dbFile, "export", "--output", export)
	require.NoError(t, err)
	assert.Equal(t, "Exported 2 verses to "+export+"\n", out)

	data, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"reference":"Galatians 5:1"`)
	assert.Contains(t, string(data), `"themes":["joy"]`)
}

func TestImportCommand_BadFile(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"book":`), 0o644))

	_, err := execute(t, "--db", filepath.Join(t.TempDir(), "bible.db"), "import", bad)
	assert.Error(t, err)
}

func TestMapCommand(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "bible.db")
	_, err := execute(t, "--db", dbFile, "import", writeCorpus(t))
	require.NoError(t, err)

	out, err := execute(t, "--db", dbFile, "map", "--theme", "hope", "--limit", "5")
	require.NoError(t, err)
	var mapping models.ThemeMapping
	require.NoError(t, json.Unmarshal([]byte(out), &mapping))
	assert.Equal(t, "hope", mapping.Theme)
	require.Equal(t, 1, mapping.VerseCount)
	assert.Equal(t, "Psalms 130:5", mapping.Verses[0].Reference)

	_, err = execute(t, "--db", dbFile, "map", "--theme", "astrology")
	assert.Error(t, err)

	output := filepath.Join(dir, "training_data", "mappings.json")
	out, err = execute(t, "--db", dbFile, "map", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var byTheme map[string]models.ThemeMapping
	require.NoError(t, json.Unmarshal(data, &byTheme))
	assert.Contains(t, byTheme, "hope")
	assert.Contains(t, byTheme, "doubt")
}
