package themes

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everyday-christian-tagger/internal/models"
)

func newDefaultClassifier(t *testing.T, policy OverridePolicy) *Classifier {
	t.Helper()
	table, err := DefaultTable()
	require.NoError(t, err)
	return NewClassifier(table, policy)
}

var sampleVerses = []struct {
	reference string
	text      string
}{
	{"Philippians 4:4", "Rejoice in the Lord alway: and again I say, Rejoice."},
	{"Galatians 5:1", "Stand fast therefore in the liberty wherewith Christ hath made us free, and be not entangled again with the yoke of bondage."},
	{"Galatians 5:18", "But if ye be led of the Spirit, ye are not under the law."},
	{"Galatians 5:22", "But the fruit of the Spirit is love, joy, peace, longsuffering, gentleness, goodness, faith,"},
	{"Ephesians 4:4", "There is one body, and one Spirit, even as ye are called in one hope of your calling;"},
	{"Ephesians 6:11", "Put on the whole armour of God, that ye may be able to stand against the wiles of the devil."},
	{"Ephesians 6:12", "For we wrestle not against flesh and blood, but against principalities, against powers, against the rulers of the darkness of this world."},
	{"Philippians 4:6", "Be careful for nothing; but in every thing by prayer and supplication with thanksgiving let your requests be made known unto God."},
	{"Philippians 4:13", "I can do all things through Christ which strengtheneth me."},
	{"Colossians 1:19", "For it pleased the Father that in him should all fulness dwell;"},
	{"Colossians 3:14", "And above all these things put on charity, which is the bond of perfectness."},
	{"Colossians 1:16", "For by Christ were all things created, that are in heaven, and that are in earth."},
	{"Genesis 1:1", "In the beginning God created the heaven and the earth."},
	{"1 John 4:8", "He that loveth not knoweth not God; for God is love."},
	{"not a reference", "Grace be unto you, and love with faith, that your joy may be full."},
}

func TestClassify_Scenarios(t *testing.T) {
	c := newDefaultClassifier(t, PolicyParity)

	tests := []struct {
		name      string
		reference string
		text      string
		want      []string
	}{
		{
			name:      "philippians rejoice yields joy",
			reference: "Philippians 4:4",
			text:      "Rejoice in the Lord always",
			want:      []string{"joy"},
		},
		{
			name:      "galatians liberty and law yields freedom",
			reference: "Galatians 5:1",
			text:      "Stand fast therefore in the liberty... the law of Moses",
			want:      []string{"freedom"},
		},
		{
			name:      "no keyword matches",
			reference: "Genesis 1:1",
			text:      "In the beginning God created the heavens and the earth",
			want:      []string{},
		},
		{
			name:      "galatians rules both append",
			reference: "Galatians 5:18",
			text:      "But if ye be led of the Spirit, ye are not under the law.",
			want:      []string{"freedom", "holiness"},
		},
		{
			name:      "ties go to declaration order",
			reference: "Ephesians 4:4",
			text:      "There is one body, and one Spirit, even as ye are called in one hope of your calling;",
			want:      []string{"hope", "unity"},
		},
		{
			name:      "breadth beats repetition",
			reference: "Romans 15:13",
			text:      "hope hope hope, and faith that believeth",
			want:      []string{"faith", "hope"},
		},
		{
			name:      "higher score beats earlier declaration",
			reference: "2 Corinthians 5:18",
			text:      "peace and reconciliation, with charity",
			want:      []string{"peace", "love"},
		},
		{
			name:      "only three themes kept",
			reference: "Romans 5:1",
			text:      "faith hope love grace peace joy",
			want:      []string{"faith", "love", "grace"},
		},
		{
			name:      "philippians replaces first theme when full",
			reference: "Philippians 1:4",
			text:      "Grace be unto you, and love with faith, that your joy may be full.",
			want:      []string{"joy", "love", "grace"},
		},
		{
			name:      "override ignored for other books",
			reference: "Romans 1:4",
			text:      "Grace be unto you, and love with faith, that your joy may be full.",
			want:      []string{"faith", "love", "grace"},
		},
		{
			name:      "malformed reference skips overrides",
			reference: "Galatians",
			text:      "But if ye be led of the Spirit, ye are not under the law.",
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.reference, tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.reference, diff)
			}
		})
	}
}

func TestClassify_AppendOnlyPolicy(t *testing.T) {
	c := newDefaultClassifier(t, PolicyAppendOnly)

	got := c.Classify("Philippians 1:4", "Grace be unto you, and love with faith, that your joy may be full.")
	assert.Equal(t, []string{"faith", "love", "grace"}, got)

	// room left: the rule still appends
	got = c.Classify("Philippians 1:4", "Rejoice, and have faith")
	assert.Equal(t, []string{"faith", "joy"}, got)
}

func TestClassify_EmptyText(t *testing.T) {
	c := newDefaultClassifier(t, PolicyParity)

	for _, ref := range []string{"Philippians 4:4", "Galatians 5:1", "", "???"} {
		assert.Equal(t, []string{}, c.Classify(ref, ""), ref)
		assert.Equal(t, []string{}, c.Classify(ref, "   \n"), ref)
	}
}

func TestClassify_Properties(t *testing.T) {
	c := newDefaultClassifier(t, PolicyParity)
	vocabulary := c.Table().Vocabulary()

	for _, v := range sampleVerses {
		t.Run(v.reference, func(t *testing.T) {
			first := c.Classify(v.reference, v.text)
			second := c.Classify(v.reference, v.text)
			assert.Equal(t, first, second, "deterministic")

			assert.LessOrEqual(t, len(first), MaxThemes)
			assert.Subset(t, vocabulary, first)

			seen := map[string]bool{}
			for _, theme := range first {
				assert.False(t, seen[theme], "duplicate theme %q", theme)
				seen[theme] = true
			}

			assert.Equal(t, first, c.Classify(v.reference, strings.ToUpper(v.text)), "case insensitive")
			assert.Equal(t, first, c.Classify(v.reference, strings.ToLower(v.text)), "case insensitive")
		})
	}
}

func TestClassify_OverridesKeepBaseThemes(t *testing.T) {
	c := newDefaultClassifier(t, PolicyParity)

	for _, v := range sampleVerses {
		ref, _ := ParseReference(v.reference)
		if ref.Book == "Philippians" {
			continue
		}
		base := c.rank(strings.ToLower(v.text))
		got := c.Classify(v.reference, v.text)
		assert.Subset(t, got, base, "%s lost a base theme", v.reference)
	}
}

func TestClassify_BookMatchIsExact(t *testing.T) {
	table, err := ParseTable([]byte(`
classifier:
  - theme: love
    patterns: ['\blove\b']
  - theme: peace
    patterns: ['\bpeace\b']
overrides:
  - book: John
    triggers: ['\blove\b']
    theme: peace
`))
	require.NoError(t, err)
	c := NewClassifier(table, PolicyParity)

	assert.Equal(t, []string{"love", "peace"}, c.Classify("John 15:12", "love one another"))
	assert.Equal(t, []string{"love"}, c.Classify("1 John 4:8", "God is love"))
	assert.Equal(t, []string{"love", "peace"}, c.Classify("john 3:16", "God so love"))
}

func TestClassifyVerse_PrefersBookColumn(t *testing.T) {
	c := newDefaultClassifier(t, PolicyParity)

	v := models.Verse{
		Book:      "Galatians",
		Reference: "Gal 5:18",
		Text:      "But if ye be led of the Spirit, ye are not under the law.",
	}
	assert.Equal(t, []string{"freedom", "holiness"}, c.ClassifyVerse(v))

	v.Book = ""
	v.Reference = "Galatians 5:18"
	assert.Equal(t, []string{"freedom", "holiness"}, c.ClassifyVerse(v))
}

func TestClassify_Concurrent(t *testing.T) {
	c := newDefaultClassifier(t, PolicyParity)

	want := make([][]string, len(sampleVerses))
	for i, v := range sampleVerses {
		want[i] = c.Classify(v.reference, v.text)
	}

	var wg sync.WaitGroup
	got := make([][]string, len(sampleVerses))
	for i, v := range sampleVerses {
		wg.Add(1)
		go func(i int, reference, text string) {
			defer wg.Done()
			got[i] = c.Classify(reference, text)
		}(i, v.reference, v.text)
	}
	wg.Wait()

	assert.Equal(t, want, got)
}

func TestParseOverridePolicy(t *testing.T) {
	p, err := ParseOverridePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyParity, p)

	p, err = ParseOverridePolicy("append-only")
	require.NoError(t, err)
	assert.Equal(t, PolicyAppendOnly, p)

	_, err = ParseOverridePolicy("replace")
	assert.Error(t, err)
}
