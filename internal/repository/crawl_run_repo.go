package repository

import (
	"context"

	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/models"
)

// crawlRunRepo is the concrete implementation of CrawlRunRepository
type crawlRunRepo struct {
	db *database.DB
}

// NewCrawlRunRepo creates a new crawl run repository
func NewCrawlRunRepo(db *database.DB) CrawlRunRepository {
	return &crawlRunRepo{db: db}
}

// Create inserts a new crawl run
func (r *crawlRunRepo) Create(ctx context.Context, run *models.CrawlRun) error {
	query := `
		INSERT INTO crawl_runs (id, status, rows_seen, rows_stored, detail_failures, duration_ms, error, started_at, completed_at)
		VALUES (:id, :status, :rows_seen, :rows_stored, :detail_failures, :duration_ms, :error, :started_at, :completed_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, run)
	return err
}

// Update updates run status and counters
func (r *crawlRunRepo) Update(ctx context.Context, run *models.CrawlRun) error {
	query := `
		UPDATE crawl_runs SET
			status = :status, rows_seen = :rows_seen, rows_stored = :rows_stored,
			detail_failures = :detail_failures, duration_ms = :duration_ms,
			error = :error, completed_at = :completed_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the latest runs, newest first
func (r *crawlRunRepo) ListRecent(ctx context.Context, limit int) ([]*models.CrawlRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.db.Rebind(`
		SELECT id, status, rows_seen, rows_stored, detail_failures, duration_ms, error, started_at, completed_at
		FROM crawl_runs ORDER BY started_at DESC LIMIT ?
	`)

	runs := []*models.CrawlRun{}
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
