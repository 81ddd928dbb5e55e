package themes

import (
	"sort"
	"strings"

	"github.com/everyday-christian-tagger/internal/models"
)

// DefaultMatchLimit is the number of verses kept per theme by the mapper
const DefaultMatchLimit = 25

// TopMatches ranks corpus by the number of distinct keywords contained in each
// verse's lower-cased match text. Matching is plain substring containment,
// looser than the classifier, because the output is a recall list for manual
// curation. Verses without any keyword are dropped; a verse id seen more than
// once keeps its best score at its first position. Ties keep corpus order.
func TopMatches(keywords []string, corpus []models.Verse, limit int) []models.ScoredVerse {
	if limit <= 0 || len(keywords) == 0 {
		return []models.ScoredVerse{}
	}

	// substring compilation cannot fail on non-empty keywords
	matchers, err := Compile(nonEmpty(keywords), MatchSubstring)
	if err != nil || len(matchers) == 0 {
		return []models.ScoredVerse{}
	}

	results := make([]models.ScoredVerse, 0)
	position := make(map[int64]int)

	for _, verse := range corpus {
		score := Score(strings.ToLower(verse.MatchText()), matchers)
		if score == 0 {
			continue
		}
		if verse.ID != 0 {
			if idx, seen := position[verse.ID]; seen {
				if score > results[idx].Score {
					results[idx].Score = score
				}
				continue
			}
			position[verse.ID] = len(results)
		}
		results = append(results, models.ScoredVerse{Verse: verse, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// MatchTheme ranks corpus against the mapping keywords declared for theme
func (t *Table) MatchTheme(theme string, corpus []models.Verse, limit int) ([]models.ScoredVerse, error) {
	keywords, err := t.Keywords(theme)
	if err != nil {
		return nil, err
	}
	return TopMatches(keywords, corpus, limit), nil
}

func nonEmpty(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			out = append(out, kw)
		}
	}
	return out
}
