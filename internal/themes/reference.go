package themes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Reference is a parsed verse reference such as "1 John 4:8"
type Reference struct {
	Book    string
	Chapter int
	Verse   int
}

func (r Reference) String() string {
	if r.Verse == 0 {
		return fmt.Sprintf("%s %d", r.Book, r.Chapter)
	}
	return FormatReference(r.Book, r.Chapter, r.Verse)
}

// book, chapter, optional verse, optional trailing range ("4:4-7")
var referencePattern = regexp.MustCompile(`^\s*(.+?)\s+(\d+)(?::(\d+)(?:\s*[-–]\s*\d+)?)?\s*$`)

// ParseReference splits a human-readable reference into book, chapter and
// verse. The book keeps its leading number and inner spaces ("Song of
// Solomon"). It reports false when the string does not look like a reference.
func ParseReference(ref string) (Reference, bool) {
	m := referencePattern.FindStringSubmatch(ref)
	if m == nil {
		return Reference{}, false
	}

	chapter, err := strconv.Atoi(m[2])
	if err != nil || chapter <= 0 {
		return Reference{}, false
	}

	verse := 0
	if m[3] != "" {
		verse, err = strconv.Atoi(m[3])
		if err != nil || verse <= 0 {
			return Reference{}, false
		}
	}

	book := strings.Join(strings.Fields(m[1]), " ")
	return Reference{Book: book, Chapter: chapter, Verse: verse}, true
}

// FormatReference renders "Book C:V"
func FormatReference(book string, chapter, verse int) string {
	return fmt.Sprintf("%s %d:%d", book, chapter, verse)
}
