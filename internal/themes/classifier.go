package themes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/everyday-christian-tagger/internal/models"
)

// MaxThemes is the most themes a verse can carry
const MaxThemes = 3

// OverridePolicy controls how replace_first override rules behave
type OverridePolicy string

const (
	// PolicyParity honours replace_first rules, reproducing earlier tagging runs.
	PolicyParity OverridePolicy = "parity"
	// PolicyAppendOnly treats every rule as append-if-room.
	PolicyAppendOnly OverridePolicy = "append-only"
)

// ParseOverridePolicy validates a policy name. Empty selects PolicyParity.
func ParseOverridePolicy(s string) (OverridePolicy, error) {
	switch OverridePolicy(strings.TrimSpace(s)) {
	case "", PolicyParity:
		return PolicyParity, nil
	case PolicyAppendOnly:
		return PolicyAppendOnly, nil
	default:
		return "", fmt.Errorf("invalid override policy %q (want %q or %q)", s, PolicyParity, PolicyAppendOnly)
	}
}

// Classifier assigns up to MaxThemes themes to a verse. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	table  *Table
	policy OverridePolicy
}

// NewClassifier creates a classifier over table
func NewClassifier(table *Table, policy OverridePolicy) *Classifier {
	if policy == "" {
		policy = PolicyParity
	}
	return &Classifier{table: table, policy: policy}
}

// Table returns the keyword table the classifier was built with
func (c *Classifier) Table() *Table {
	return c.table
}

// Classify returns the themes for a verse, most relevant first. The book used
// for override rules is parsed from reference; an unparseable reference only
// disables the overrides. The result is never nil.
func (c *Classifier) Classify(reference, text string) []string {
	book := ""
	if ref, ok := ParseReference(reference); ok {
		book = ref.Book
	}
	return c.classify(book, text)
}

// ClassifyVerse classifies a stored verse, preferring its book column over
// the reference string.
func (c *Classifier) ClassifyVerse(v models.Verse) []string {
	if v.Book != "" {
		return c.classify(v.Book, v.Text)
	}
	return c.Classify(v.Reference, v.Text)
}

func (c *Classifier) classify(book, text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return []string{}
	}

	result := c.rank(lower)
	result = c.applyOverrides(book, lower, result)

	if len(result) > MaxThemes {
		result = result[:MaxThemes]
	}
	return result
}

type themeScore struct {
	theme string
	score int
}

// rank scores every classifier theme and keeps the best MaxThemes. Scores are
// collected in declaration order and sorted stably, so ties go to the theme
// declared first.
func (c *Classifier) rank(lower string) []string {
	scores := make([]themeScore, 0, len(c.table.classifier))
	for _, entry := range c.table.classifier {
		if s := Score(lower, entry.matchers); s > 0 {
			scores = append(scores, themeScore{theme: entry.theme, score: s})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	n := min(len(scores), MaxThemes)
	result := make([]string, n, MaxThemes)
	for i := 0; i < n; i++ {
		result[i] = scores[i].theme
	}
	return result
}

func (c *Classifier) applyOverrides(book, lower string, result []string) []string {
	if book == "" {
		return result
	}

	for _, rule := range c.table.overrides {
		if !strings.EqualFold(rule.Book, book) {
			continue
		}
		if !anyMatch(lower, rule.triggers) || contains(result, rule.Theme) {
			continue
		}
		if len(result) < MaxThemes {
			result = append(result, rule.Theme)
			continue
		}
		if rule.OnFull == FullReplaceFirst && c.policy == PolicyParity {
			result[0] = rule.Theme
		}
	}
	return result
}

func contains(themes []string, theme string) bool {
	for _, t := range themes {
		if t == theme {
			return true
		}
	}
	return false
}
