package models

// ClassifyRequest is the request for classifying a single verse
type ClassifyRequest struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// ClassifyResponse is the response for verse classification
type ClassifyResponse struct {
	Reference string   `json:"reference"`
	Themes    []string `json:"themes"`
}

// VocabularyResponse lists the configured themes
type VocabularyResponse struct {
	ClassifierThemes []string `json:"classifier_themes"`
	MappingThemes    []string `json:"mapping_themes"`
}

// VerseThemesResponse is the stored theme list of one verse
type VerseThemesResponse struct {
	VerseID   int64    `json:"verse_id"`
	Reference string   `json:"reference"`
	Themes    []string `json:"themes"`
}

// CoverageResponse reports tagging coverage for a set of books
type CoverageResponse struct {
	Books   []string `json:"books,omitempty"`
	Total   int      `json:"total"`
	Tagged  int      `json:"tagged"`
	Percent float64  `json:"percent"`
}
