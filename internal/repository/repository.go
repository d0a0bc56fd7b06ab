package repository

import (
	"context"
	"errors"

	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/models"
)

var (
	// ErrNotFound is returned when a record id does not exist
	ErrNotFound = errors.New("record not found")
	// ErrUnknownCategory is returned for table names outside the fixed set
	ErrUnknownCategory = errors.New("unknown category")
)

// RecordRepository defines the operations on one store's category tables
type RecordRepository interface {
	// InsertIfAbsent stores rec unless a row with the same content and
	// event date already exists in the category. The check and the insert
	// share one transaction.
	InsertIfAbsent(ctx context.Context, category models.Category, rec *models.Record) (bool, error)
	// Replace swaps the category's contents for recs in one transaction
	Replace(ctx context.Context, category models.Category, recs []*models.Record) error
	List(ctx context.Context, category models.Category, filter models.RecordFilter) ([]*models.Record, error)
	GetAndView(ctx context.Context, category models.Category, id int64) (*models.Record, error)
	IncrementFavorites(ctx context.Context, category models.Category, id int64) (int, error)
	Count(ctx context.Context, category models.Category) (int, error)
}

// CrawlRunRepository defines the operations on crawl run history
type CrawlRunRepository interface {
	Create(ctx context.Context, run *models.CrawlRun) error
	Update(ctx context.Context, run *models.CrawlRun) error
	ListRecent(ctx context.Context, limit int) ([]*models.CrawlRun, error)
}

// Repositories holds the repositories of one store
type Repositories struct {
	Records   RecordRepository
	CrawlRuns CrawlRunRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Records:   NewRecordRepo(db),
		CrawlRuns: NewCrawlRunRepo(db),
	}
}

func tableFor(category models.Category) (string, error) {
	if !category.Valid() {
		return "", ErrUnknownCategory
	}
	return category.Table(), nil
}
