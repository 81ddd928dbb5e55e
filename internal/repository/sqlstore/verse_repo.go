// Package sqlstore implements the verse store over sqlx. Queries are written
// with ? placeholders and rebound per driver, so the same code serves SQLite
// and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/everyday-christian-tagger/internal/models"
	"github.com/everyday-christian-tagger/internal/repository"
	"github.com/everyday-christian-tagger/internal/themes"
)

// untaggedCondition matches NULL, empty and "[]" values; nothing of length <= 2 holds a theme
const untaggedCondition = `(themes IS NULL OR themes = '' OR LENGTH(themes) <= 2)`

const verseColumns = `id, book, chapter, verse_number, reference, text, clean_text, themes`

// Store implements repository.Store
type Store struct {
	db *sqlx.DB
}

var _ repository.Store = (*Store)(nil)

// NewStore creates a verse store over db
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type verseRow struct {
	ID          int64          `db:"id"`
	Book        string         `db:"book"`
	Chapter     int            `db:"chapter"`
	VerseNumber int            `db:"verse_number"`
	Reference   string         `db:"reference"`
	Text        string         `db:"text"`
	CleanText   sql.NullString `db:"clean_text"`
	Themes      sql.NullString `db:"themes"`
}

func (r verseRow) toModel() (models.Verse, error) {
	decoded, err := models.DecodeThemes(nullable(r.Themes))
	if err != nil {
		return models.Verse{}, fmt.Errorf("verse %d: %w", r.ID, err)
	}
	return models.Verse{
		ID:          r.ID,
		Book:        r.Book,
		Chapter:     r.Chapter,
		VerseNumber: r.VerseNumber,
		Reference:   r.Reference,
		Text:        r.Text,
		CleanText:   r.CleanText.String,
		Themes:      decoded,
	}, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func toModels(rows []verseRow) ([]models.Verse, error) {
	verses := make([]models.Verse, 0, len(rows))
	for _, row := range rows {
		v, err := row.toModel()
		if err != nil {
			return nil, err
		}
		verses = append(verses, v)
	}
	return verses, nil
}

// withBooks appends a book IN (...) filter when books is non-empty
func withBooks(query string, hasWhere bool, books []string) (string, []interface{}, error) {
	if len(books) == 0 {
		return query, nil, nil
	}
	if hasWhere {
		query += ` AND book IN (?)`
	} else {
		query += ` WHERE book IN (?)`
	}
	return sqlx.In(query, books)
}

// FetchUntagged returns untagged verses of books ordered by id
func (s *Store) FetchUntagged(ctx context.Context, books []string) ([]models.Verse, error) {
	query, args, err := withBooks(`SELECT `+verseColumns+` FROM verses WHERE `+untaggedCondition, true, books)
	if err != nil {
		return nil, fmt.Errorf("build untagged query: %w", err)
	}
	query = s.db.Rebind(query + ` ORDER BY id`)

	var rows []verseRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("fetch untagged verses: %w", err)
	}
	return toModels(rows)
}

// CommitBatch writes one batch of assignments and the run progress atomically
func (s *Store) CommitBatch(ctx context.Context, runID string, assignments []models.ThemeAssignment) (models.BatchResult, error) {
	var result models.BatchResult

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`UPDATE verses SET themes = ? WHERE id = ?`))
	if err != nil {
		return result, fmt.Errorf("prepare theme update: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		encoded, err := models.EncodeThemes(a.Themes)
		if err != nil {
			return models.BatchResult{}, err
		}
		res, err := stmt.ExecContext(ctx, encoded, a.VerseID)
		if err != nil {
			return models.BatchResult{}, fmt.Errorf("update verse %d: %w", a.VerseID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return models.BatchResult{}, fmt.Errorf("rows affected for verse %d: %w", a.VerseID, err)
		}
		if n == 0 {
			result.Skipped = append(result.Skipped, a.VerseID)
			continue
		}
		result.Updated++
	}

	if runID != "" {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE tagging_runs
			SET batches_committed = batches_committed + 1,
			    verses_tagged = verses_tagged + ?,
			    verses_skipped = verses_skipped + ?
			WHERE id = ?`),
			result.Updated, len(result.Skipped), runID)
		if err != nil {
			return models.BatchResult{}, fmt.Errorf("record batch progress: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return models.BatchResult{}, fmt.Errorf("record batch progress for %s: %w", runID, repository.ErrRunNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.BatchResult{}, fmt.Errorf("commit batch: %w", err)
	}
	return result, nil
}

// SetThemes writes the themes of a single verse
func (s *Store) SetThemes(ctx context.Context, id int64, themeList []string) error {
	encoded, err := models.EncodeThemes(themeList)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE verses SET themes = ? WHERE id = ?`), encoded, id)
	if err != nil {
		return fmt.Errorf("set themes for verse %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for verse %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set themes for verse %d: %w", id, repository.ErrVerseNotFound)
	}
	return nil
}

// GetVerse returns a single verse
func (s *Store) GetVerse(ctx context.Context, id int64) (models.Verse, error) {
	var row verseRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+verseColumns+` FROM verses WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Verse{}, fmt.Errorf("get verse %d: %w", id, repository.ErrVerseNotFound)
	}
	if err != nil {
		return models.Verse{}, fmt.Errorf("get verse %d: %w", id, err)
	}
	return row.toModel()
}

// GetThemes returns the stored themes of a verse
func (s *Store) GetThemes(ctx context.Context, id int64) ([]string, error) {
	var raw sql.NullString
	err := s.db.GetContext(ctx, &raw, s.db.Rebind(`SELECT themes FROM verses WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get themes for verse %d: %w", id, repository.ErrVerseNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get themes for verse %d: %w", id, err)
	}
	return models.DecodeThemes(nullable(raw))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByKeywords returns verses whose clean text (or raw text) contains any
// keyword. It only narrows the corpus; scoring happens in themes.TopMatches.
func (s *Store) SearchByKeywords(ctx context.Context, keywords []string) ([]models.Verse, error) {
	if len(keywords) == 0 {
		return []models.Verse{}, nil
	}

	query := `SELECT ` + verseColumns + ` FROM verses WHERE `
	args := make([]interface{}, 0, len(keywords))
	for i, kw := range keywords {
		if i > 0 {
			query += " OR "
		}
		query += `LOWER(COALESCE(NULLIF(clean_text, ''), text)) LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(kw))+"%")
	}
	query += " ORDER BY id"

	var rows []verseRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("search verses by keywords: %w", err)
	}
	return toModels(rows)
}

// InsertVerses adds verses in one transaction. A missing reference is derived
// from book, chapter and verse number.
func (s *Store) InsertVerses(ctx context.Context, verses []models.Verse) ([]int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO verses (book, chapter, verse_number, text, clean_text, reference, themes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`))
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(verses))
	for i, v := range verses {
		if v.Book == "" || v.Chapter <= 0 || v.VerseNumber <= 0 {
			return nil, fmt.Errorf("verse %d: book, chapter and verse number are required", i)
		}
		reference := v.Reference
		if reference == "" {
			reference = themes.FormatReference(v.Book, v.Chapter, v.VerseNumber)
		}

		var cleanText, themeValue *string
		if v.CleanText != "" {
			cleanText = &v.CleanText
		}
		if len(v.Themes) > 0 {
			encoded, err := models.EncodeThemes(v.Themes)
			if err != nil {
				return nil, err
			}
			themeValue = &encoded
		}

		var id int64
		if err := stmt.QueryRowxContext(ctx, v.Book, v.Chapter, v.VerseNumber, v.Text, cleanText, reference, themeValue).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert %s: %w", reference, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return ids, nil
}

// EachTagged streams tagged verses row by row
func (s *Store) EachTagged(ctx context.Context, books []string, fn func(models.Verse) error) error {
	query, args, err := withBooks(`SELECT `+verseColumns+` FROM verses WHERE NOT `+untaggedCondition, true, books)
	if err != nil {
		return fmt.Errorf("build tagged query: %w", err)
	}
	query = s.db.Rebind(query + ` ORDER BY book, chapter, verse_number`)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query tagged verses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row verseRow
		if err := rows.StructScan(&row); err != nil {
			return fmt.Errorf("scan tagged verse: %w", err)
		}
		v, err := row.toModel()
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tagged verses: %w", err)
	}
	return nil
}

// Coverage counts all and tagged verses
func (s *Store) Coverage(ctx context.Context, books []string) (models.Coverage, error) {
	query, args, err := withBooks(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN themes IS NOT NULL AND LENGTH(themes) > 2 THEN 1 ELSE 0 END), 0) AS tagged
		FROM verses`, false, books)
	if err != nil {
		return models.Coverage{}, fmt.Errorf("build coverage query: %w", err)
	}

	var coverage models.Coverage
	if err := s.db.GetContext(ctx, &coverage, s.db.Rebind(query), args...); err != nil {
		return models.Coverage{}, fmt.Errorf("count coverage: %w", err)
	}
	return coverage, nil
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
