package models

import "time"

// ThemeMapping is the ranked verse list produced for one mapping theme
type ThemeMapping struct {
	Theme      string        `json:"theme"`
	Keywords   []string      `json:"keywords"`
	VerseCount int           `json:"verse_count"`
	Verses     []MappedVerse `json:"verses"`
}

// MappedVerse is a candidate verse for a theme, awaiting manual curation
type MappedVerse struct {
	VerseID    int64  `json:"verse_id"`
	Reference  string `json:"reference"`
	Text       string `json:"text"`
	MatchScore int    `json:"match_score"`
}

// NewThemeMapping builds a mapping from ranked verses
func NewThemeMapping(theme string, keywords []string, ranked []ScoredVerse) ThemeMapping {
	verses := make([]MappedVerse, len(ranked))
	for i, r := range ranked {
		verses[i] = MappedVerse{
			VerseID:    r.Verse.ID,
			Reference:  r.Verse.Reference,
			Text:       r.Verse.MatchText(),
			MatchScore: r.Score,
		}
	}
	return ThemeMapping{
		Theme:      theme,
		Keywords:   keywords,
		VerseCount: len(verses),
		Verses:     verses,
	}
}

// RunStatus is the lifecycle state of a tagging run
type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusCompleted   RunStatus = "completed"
	RunStatusFailed      RunStatus = "failed"
	RunStatusInterrupted RunStatus = "interrupted"
)

// Run records the progress of one tagging run. BatchesCommitted is updated in
// the same transaction as each batch, so it survives an aborted run.
type Run struct {
	ID               string     `json:"id" db:"id"`
	Books            []string   `json:"books" db:"-"`
	StartedAt        time.Time  `json:"started_at" db:"-"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" db:"-"`
	BatchesCommitted int        `json:"batches_committed" db:"batches_committed"`
	VersesTagged     int        `json:"verses_tagged" db:"verses_tagged"`
	VersesSkipped    int        `json:"verses_skipped" db:"verses_skipped"`
	Status           RunStatus  `json:"status" db:"status"`
}

// BatchResult summarizes one committed batch
type BatchResult struct {
	Updated int     `json:"updated"`
	Skipped []int64 `json:"skipped,omitempty"`
}

// Coverage reports how many verses carry at least one theme
type Coverage struct {
	Total  int `json:"total" db:"total"`
	Tagged int `json:"tagged" db:"tagged"`
}

// Percent returns the tagged share of all verses
func (c Coverage) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return 100 * float64(c.Tagged) / float64(c.Total)
}
