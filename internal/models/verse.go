package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verse represents a row of the verse store
type Verse struct {
	ID          int64    `json:"id" db:"id"`
	Book        string   `json:"book" db:"book"`
	Chapter     int      `json:"chapter" db:"chapter"`
	VerseNumber int      `json:"verse_number" db:"verse_number"`
	Reference   string   `json:"reference" db:"reference"`
	Text        string   `json:"text" db:"text"`
	CleanText   string   `json:"clean_text,omitempty" db:"clean_text"`
	Themes      []string `json:"themes,omitempty" db:"-"`
}

// MatchText returns the text used for keyword recall: the cleaned text when
// one has been stored, otherwise the raw text.
func (v Verse) MatchText() string {
	if v.CleanText != "" {
		return v.CleanText
	}
	return v.Text
}

// ScoredVerse represents a verse with its keyword match score
type ScoredVerse struct {
	Verse Verse `json:"verse"`
	Score int   `json:"score"`
}

// ThemeAssignment is the classifier output for one verse, keyed by id
type ThemeAssignment struct {
	VerseID int64    `json:"verse_id"`
	Themes  []string `json:"themes"`
}

// EncodeThemes serializes an ordered theme list for the themes column.
// An empty list is stored as "[]", which still counts as untagged.
func EncodeThemes(themes []string) (string, error) {
	if themes == nil {
		themes = []string{}
	}
	data, err := json.Marshal(themes)
	if err != nil {
		return "", fmt.Errorf("encode themes: %w", err)
	}
	return string(data), nil
}

// DecodeThemes parses a themes column value. NULL, empty and "[]" all decode
// to an empty list.
func DecodeThemes(raw *string) ([]string, error) {
	if raw == nil {
		return []string{}, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return []string{}, nil
	}

	var themes []string
	if err := json.Unmarshal([]byte(value), &themes); err != nil {
		return nil, fmt.Errorf("decode themes %q: %w", value, err)
	}
	if themes == nil {
		themes = []string{}
	}
	return themes, nil
}

// TaggedVerse is one line of the tagged-verse JSONL export
type TaggedVerse struct {
	VerseID   int64    `json:"verse_id"`
	Reference string   `json:"reference"`
	Book      string   `json:"book"`
	Text      string   `json:"text"`
	Themes    []string `json:"themes"`
}
