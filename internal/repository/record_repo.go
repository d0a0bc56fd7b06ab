package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/models"
	"github.com/jmoiron/sqlx"
)

const recordColumns = `id, title, content, keywords, link, publish_date, event_date, views, favorites, image_url, category`

// recordRepo is the concrete implementation of RecordRepository
type recordRepo struct {
	db *database.DB
}

// NewRecordRepo creates a new record repository
func NewRecordRepo(db *database.DB) RecordRepository {
	return &recordRepo{db: db}
}

// InsertIfAbsent inserts rec unless an identical (content, event_date) row exists
func (r *recordRepo) InsertIfAbsent(ctx context.Context, category models.Category, rec *models.Record) (bool, error) {
	table, err := tableFor(category)
	if err != nil {
		return false, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var count int
	query := tx.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE content = ? AND event_date = ?`, table))
	if err := tx.GetContext(ctx, &count, query, rec.Content, rec.EventDate); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if err := insertRecord(ctx, tx, table, rec); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// Replace deletes every row of the category, resets its id sequence and
// inserts recs, all in one transaction
func (r *recordRepo) Replace(ctx context.Context, category models.Category, recs []*models.Record) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	switch r.db.Driver {
	case database.DriverPostgres:
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`TRUNCATE TABLE %s RESTART IDENTITY`, table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	default:
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = ?`, table); err != nil {
			return fmt.Errorf("failed to reset %s ids: %w", table, err)
		}
	}

	for _, rec := range recs {
		if err := insertRecord(ctx, tx, table, rec); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// List returns the category's records, newest first
func (r *recordRepo) List(ctx context.Context, category models.Category, filter models.RecordFilter) ([]*models.Record, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1 = 1`, recordColumns, table)
	var args []interface{}

	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query += ` AND (title LIKE ? OR content LIKE ? OR keywords LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY publish_date DESC, id DESC`

	records := []*models.Record{}
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return records, nil
}

// GetAndView increments the view counter of a record and returns it
func (r *recordRepo) GetAndView(ctx context.Context, category models.Category, id int64) (*models.Record, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(`UPDATE %s SET views = views + 1 WHERE id = ?`, table)), id)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	var rec models.Record
	query := tx.Rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, recordColumns, table))
	if err := tx.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &rec, tx.Commit()
}

// IncrementFavorites bumps the favorite counter and returns the new value
func (r *recordRepo) IncrementFavorites(ctx context.Context, category models.Category, id int64) (int, error) {
	table, err := tableFor(category)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(`UPDATE %s SET favorites = favorites + 1 WHERE id = ?`, table)), id)
	if err != nil {
		return 0, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}

	var favorites int
	if err := tx.GetContext(ctx, &favorites, tx.Rebind(fmt.Sprintf(`SELECT favorites FROM %s WHERE id = ?`, table)), id); err != nil {
		return 0, err
	}

	return favorites, tx.Commit()
}

// Count returns the number of rows in the category
func (r *recordRepo) Count(ctx context.Context, category models.Category) (int, error) {
	table, err := tableFor(category)
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table))
	return count, err
}

func insertRecord(ctx context.Context, tx *sqlx.Tx, table string, rec *models.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, content, keywords, link, publish_date, event_date, views, favorites, image_url, category)
		VALUES (:title, :content, :keywords, :link, :publish_date, :event_date, 0, 0, :image_url, :category)
	`, table)
	_, err := tx.NamedExecContext(ctx, query, rec)
	return err
}
