package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// verses mirrors the table built by the Bible import; clean_text holds the
// markup-free text used for keyword recall.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS verses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		book TEXT NOT NULL,
		chapter INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		text TEXT NOT NULL,
		clean_text TEXT,
		translation TEXT DEFAULT 'WEB',
		reference TEXT NOT NULL,
		themes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_book_chapter ON verses(book, chapter)`,
	`CREATE INDEX IF NOT EXISTS idx_reference ON verses(reference)`,
	`CREATE INDEX IF NOT EXISTS idx_book ON verses(book)`,
	tagRunsTable,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS verses (
		id BIGSERIAL PRIMARY KEY,
		book TEXT NOT NULL,
		chapter INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		text TEXT NOT NULL,
		clean_text TEXT,
		translation TEXT DEFAULT 'WEB',
		reference TEXT NOT NULL,
		themes TEXT
	)`,
	`ALTER TABLE verses ADD COLUMN IF NOT EXISTS clean_text TEXT`,
	`CREATE INDEX IF NOT EXISTS idx_book_chapter ON verses(book, chapter)`,
	`CREATE INDEX IF NOT EXISTS idx_reference ON verses(reference)`,
	`CREATE INDEX IF NOT EXISTS idx_book ON verses(book)`,
	tagRunsTable,
}

// Timestamps are RFC 3339 text so both dialects share one representation.
const tagRunsTable = `CREATE TABLE IF NOT EXISTS tagging_runs (
		id TEXT PRIMARY KEY,
		books TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		batches_committed INTEGER NOT NULL DEFAULT 0,
		verses_tagged INTEGER NOT NULL DEFAULT 0,
		verses_skipped INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL
	)`

// Migrate creates the verse and run tables when they are missing. Databases
// built before clean_text existed get the column added.
func Migrate(ctx context.Context, conn *sqlx.DB) error {
	statements := sqliteSchema
	if IsPostgres(conn) {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if !IsPostgres(conn) {
		var hasCleanText int
		err := conn.GetContext(ctx, &hasCleanText,
			`SELECT COUNT(*) FROM pragma_table_info('verses') WHERE name = 'clean_text'`)
		if err != nil {
			return fmt.Errorf("inspect verses table: %w", err)
		}
		if hasCleanText == 0 {
			if _, err := conn.ExecContext(ctx, `ALTER TABLE verses ADD COLUMN clean_text TEXT`); err != nil {
				return fmt.Errorf("add clean_text column: %w", err)
			}
		}
	}

	return nil
}
