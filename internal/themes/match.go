package themes

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchMode selects how a keyword pattern is tested against verse text
type MatchMode int

const (
	// MatchWord treats patterns as regular expressions anchored with word
	// boundaries as written in the table (whole word or stem prefix).
	MatchWord MatchMode = iota
	// MatchSubstring treats patterns as literal substrings.
	MatchSubstring
)

func (m MatchMode) String() string {
	switch m {
	case MatchWord:
		return "word"
	case MatchSubstring:
		return "substring"
	default:
		return fmt.Sprintf("MatchMode(%d)", int(m))
	}
}

// Matcher tests a single keyword pattern against lower-cased text
type Matcher interface {
	Match(lower string) bool
	Pattern() string
}

type wordMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func (m wordMatcher) Match(lower string) bool { return m.re.MatchString(lower) }
func (m wordMatcher) Pattern() string         { return m.pattern }

type substringMatcher struct {
	needle string
}

func (m substringMatcher) Match(lower string) bool { return strings.Contains(lower, m.needle) }
func (m substringMatcher) Pattern() string         { return m.needle }

// Compile builds matchers for a pattern list. Duplicate patterns are dropped so
// that each distinct pattern contributes at most once to a score.
func Compile(patterns []string, mode MatchMode) ([]Matcher, error) {
	matchers := make([]Matcher, 0, len(patterns))
	seen := make(map[string]bool, len(patterns))

	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			return nil, fmt.Errorf("empty %s pattern", mode)
		}

		switch mode {
		case MatchWord:
			if seen[pattern] {
				continue
			}
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
			}
			matchers = append(matchers, wordMatcher{pattern: pattern, re: re})
		case MatchSubstring:
			pattern = strings.ToLower(pattern)
			if seen[pattern] {
				continue
			}
			matchers = append(matchers, substringMatcher{needle: pattern})
		default:
			return nil, fmt.Errorf("unknown match mode %s", mode)
		}
		seen[pattern] = true
	}

	return matchers, nil
}

// Score counts the matchers that match lower at least once. Repeated hits of
// one pattern still count once, so the score rewards breadth.
func Score(lower string, matchers []Matcher) int {
	score := 0
	for _, m := range matchers {
		if m.Match(lower) {
			score++
		}
	}
	return score
}

func anyMatch(lower string, matchers []Matcher) bool {
	for _, m := range matchers {
		if m.Match(lower) {
			return true
		}
	}
	return false
}
