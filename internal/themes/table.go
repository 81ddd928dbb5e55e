// Package themes assigns topical themes to verse text and ranks verses for a
// theme. Both directions are driven by an immutable keyword Table.
package themes

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_keywords.yaml
var defaultKeywords []byte

// ErrUnknownTheme is returned when a theme is not declared in the table
var ErrUnknownTheme = errors.New("unknown theme")

// FullAction decides what an override rule does when the theme list is full
type FullAction string

const (
	// FullSkip leaves a full list untouched.
	FullSkip FullAction = "skip"
	// FullReplaceFirst overwrites the most relevant theme.
	FullReplaceFirst FullAction = "replace_first"
)

// tableFile is the on-disk YAML layout
type tableFile struct {
	Classifier []struct {
		Theme    string   `yaml:"theme"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"classifier"`
	Overrides []struct {
		Book     string     `yaml:"book"`
		Triggers []string   `yaml:"triggers"`
		Theme    string     `yaml:"theme"`
		OnFull   FullAction `yaml:"on_full"`
	} `yaml:"overrides"`
	Mapping []struct {
		Theme    string   `yaml:"theme"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"mapping"`
}

type themePatterns struct {
	theme    string
	matchers []Matcher
}

type themeKeywords struct {
	theme    string
	keywords []string
}

// OverrideRule is a book-conditioned adjustment applied after base ranking
type OverrideRule struct {
	Book     string
	Theme    string
	OnFull   FullAction
	triggers []Matcher
}

// Table holds the compiled keyword configuration. It is built once and never
// mutated, so a single Table can be shared by concurrent classifiers.
type Table struct {
	classifier []themePatterns
	overrides  []OverrideRule
	mapping    []themeKeywords
	vocabulary map[string]bool
	mappingIdx map[string]int
}

// DefaultTable returns the embedded keyword table
func DefaultTable() (*Table, error) {
	t, err := ParseTable(defaultKeywords)
	if err != nil {
		return nil, fmt.Errorf("parse default keyword table: %w", err)
	}
	return t, nil
}

// LoadTable reads a keyword table from a YAML file. An empty path selects
// the embedded default.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse keyword table %s: %w", path, err)
	}
	return t, nil
}

// ParseTable compiles a YAML keyword table. Any invalid pattern, duplicate
// theme or rule naming an undeclared theme fails the whole table.
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(file.Classifier) == 0 {
		return nil, errors.New("no classifier themes declared")
	}

	t := &Table{
		vocabulary: make(map[string]bool, len(file.Classifier)),
		mappingIdx: make(map[string]int, len(file.Mapping)),
	}

	for i, entry := range file.Classifier {
		theme := strings.TrimSpace(entry.Theme)
		if theme == "" {
			return nil, fmt.Errorf("classifier entry %d: empty theme", i)
		}
		if t.vocabulary[theme] {
			return nil, fmt.Errorf("classifier entry %d: duplicate theme %q", i, theme)
		}
		if len(entry.Patterns) == 0 {
			return nil, fmt.Errorf("classifier theme %q: no patterns", theme)
		}
		matchers, err := Compile(entry.Patterns, MatchWord)
		if err != nil {
			return nil, fmt.Errorf("classifier theme %q: %w", theme, err)
		}
		t.vocabulary[theme] = true
		t.classifier = append(t.classifier, themePatterns{theme: theme, matchers: matchers})
	}

	for i, entry := range file.Overrides {
		book := strings.TrimSpace(entry.Book)
		theme := strings.TrimSpace(entry.Theme)
		if book == "" {
			return nil, fmt.Errorf("override %d: empty book", i)
		}
		if !t.vocabulary[theme] {
			return nil, fmt.Errorf("override %d (%s): %w %q", i, book, ErrUnknownTheme, theme)
		}
		if len(entry.Triggers) == 0 {
			return nil, fmt.Errorf("override %d (%s): no triggers", i, book)
		}
		onFull := entry.OnFull
		switch onFull {
		case "":
			onFull = FullSkip
		case FullSkip, FullReplaceFirst:
		default:
			return nil, fmt.Errorf("override %d (%s): invalid on_full %q", i, book, onFull)
		}
		triggers, err := Compile(entry.Triggers, MatchWord)
		if err != nil {
			return nil, fmt.Errorf("override %d (%s): %w", i, book, err)
		}
		t.overrides = append(t.overrides, OverrideRule{
			Book:     book,
			Theme:    theme,
			OnFull:   onFull,
			triggers: triggers,
		})
	}

	for i, entry := range file.Mapping {
		theme := strings.TrimSpace(entry.Theme)
		if theme == "" {
			return nil, fmt.Errorf("mapping entry %d: empty theme", i)
		}
		if _, dup := t.mappingIdx[theme]; dup {
			return nil, fmt.Errorf("mapping entry %d: duplicate theme %q", i, theme)
		}
		if len(entry.Keywords) == 0 {
			return nil, fmt.Errorf("mapping theme %q: no keywords", theme)
		}
		keywords := make([]string, 0, len(entry.Keywords))
		for _, kw := range entry.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("mapping theme %q: empty keyword", theme)
			}
			keywords = append(keywords, kw)
		}
		t.mappingIdx[theme] = len(t.mapping)
		t.mapping = append(t.mapping, themeKeywords{theme: theme, keywords: keywords})
	}

	return t, nil
}

// Vocabulary returns the classifier themes in declaration order
func (t *Table) Vocabulary() []string {
	out := make([]string, len(t.classifier))
	for i, entry := range t.classifier {
		out[i] = entry.theme
	}
	return out
}

// InVocabulary reports whether theme is a classifier theme
func (t *Table) InVocabulary(theme string) bool {
	return t.vocabulary[theme]
}

// Overrides returns the override rules in evaluation order
func (t *Table) Overrides() []OverrideRule {
	out := make([]OverrideRule, len(t.overrides))
	copy(out, t.overrides)
	return out
}

// MappingThemes returns the mapping themes in declaration order
func (t *Table) MappingThemes() []string {
	out := make([]string, len(t.mapping))
	for i, entry := range t.mapping {
		out[i] = entry.theme
	}
	return out
}

// Keywords returns the mapping keywords for theme
func (t *Table) Keywords(theme string) ([]string, error) {
	idx, ok := t.mappingIdx[theme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	out := make([]string, len(t.mapping[idx].keywords))
	copy(out, t.mapping[idx].keywords)
	return out, nil
}
