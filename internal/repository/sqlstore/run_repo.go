package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/everyday-christian-tagger/internal/models"
	"github.com/everyday-christian-tagger/internal/repository"
)

type runRow struct {
	ID               string         `db:"id"`
	Books            string         `db:"books"`
	StartedAt        string         `db:"started_at"`
	FinishedAt       sql.NullString `db:"finished_at"`
	BatchesCommitted int            `db:"batches_committed"`
	VersesTagged     int            `db:"verses_tagged"`
	VersesSkipped    int            `db:"verses_skipped"`
	Status           string         `db:"status"`
}

// StartRun records a new tagging run
func (s *Store) StartRun(ctx context.Context, run models.Run) error {
	books := run.Books
	if books == nil {
		books = []string{}
	}
	encoded, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode run books: %w", err)
	}

	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	status := run.Status
	if status == "" {
		status = models.RunStatusRunning
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO tagging_runs (id, books, started_at, status)
		VALUES (?, ?, ?, ?)`),
		run.ID, string(encoded), startedAt.UTC().Format(time.RFC3339Nano), string(status))
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stamps the final status of a run
func (s *Store) FinishRun(ctx context.Context, runID string, status models.RunStatus) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE tagging_runs SET status = ?, finished_at = ? WHERE id = ?`),
		string(status), time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, repository.ErrRunNotFound)
	}
	return nil
}

// GetRun returns a recorded run
func (s *Store) GetRun(ctx context.Context, runID string) (models.Run, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, books, started_at, finished_at, batches_committed, verses_tagged, verses_skipped, status
		FROM tagging_runs WHERE id = ?`), runID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Run{}, fmt.Errorf("get run %s: %w", runID, repository.ErrRunNotFound)
	}
	if err != nil {
		return models.Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}

	run := models.Run{
		ID:               row.ID,
		BatchesCommitted: row.BatchesCommitted,
		VersesTagged:     row.VersesTagged,
		VersesSkipped:    row.VersesSkipped,
		Status:           models.RunStatus(row.Status),
	}
	if err := json.Unmarshal([]byte(row.Books), &run.Books); err != nil {
		return models.Run{}, fmt.Errorf("decode books of run %s: %w", runID, err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, row.StartedAt); err != nil {
		return models.Run{}, fmt.Errorf("parse start of run %s: %w", runID, err)
	}
	if row.FinishedAt.Valid {
		finished, err := time.Parse(time.RFC3339Nano, row.FinishedAt.String)
		if err != nil {
			return models.Run{}, fmt.Errorf("parse finish of run %s: %w", runID, err)
		}
		run.FinishedAt = &finished
	}
	return run, nil
}
