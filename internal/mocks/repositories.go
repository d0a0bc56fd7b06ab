package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
)

// MockRecordRepository is a mock implementation of RecordRepository
type MockRecordRepository struct {
	Records        map[models.Category][]*models.Record
	InsertFunc     func(ctx context.Context, category models.Category, rec *models.Record) (bool, error)
	ReplaceFunc    func(ctx context.Context, category models.Category, recs []*models.Record) error
	ListError      error
	InsertCalls    int
	ReplaceCalls   int
	ReplacedTables []models.Category
	nextID         int64
}

// Verify interface compliance
var _ repository.RecordRepository = (*MockRecordRepository)(nil)

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{
		Records: make(map[models.Category][]*models.Record),
	}
}

func (m *MockRecordRepository) InsertIfAbsent(ctx context.Context, category models.Category, rec *models.Record) (bool, error) {
	m.InsertCalls++
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, category, rec)
	}
	if !category.Valid() {
		return false, repository.ErrUnknownCategory
	}
	for _, existing := range m.Records[category] {
		if existing.Content == rec.Content && existing.EventDate == rec.EventDate {
			return false, nil
		}
	}
	m.add(category, rec)
	return true, nil
}

func (m *MockRecordRepository) add(category models.Category, rec *models.Record) {
	m.nextID++
	stored := *rec
	stored.ID = m.nextID
	stored.Views, stored.Favorites = 0, 0
	m.Records[category] = append(m.Records[category], &stored)
}

func (m *MockRecordRepository) Replace(ctx context.Context, category models.Category, recs []*models.Record) error {
	m.ReplaceCalls++
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, category, recs)
	}
	m.ReplacedTables = append(m.ReplacedTables, category)
	m.Records[category] = nil
	m.nextID = 0
	for _, rec := range recs {
		m.add(category, rec)
	}
	return nil
}

func (m *MockRecordRepository) List(ctx context.Context, category models.Category, filter models.RecordFilter) ([]*models.Record, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := []*models.Record{}
	for _, r := range m.Records[category] {
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(r.Title, filter.Keyword) &&
			!strings.Contains(r.Content, filter.Keyword) &&
			!strings.Contains(r.Keywords, filter.Keyword) {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PublishDate > out[j].PublishDate })
	return out, nil
}

func (m *MockRecordRepository) find(category models.Category, id int64) *models.Record {
	for _, r := range m.Records[category] {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (m *MockRecordRepository) GetAndView(ctx context.Context, category models.Category, id int64) (*models.Record, error) {
	r := m.find(category, id)
	if r == nil {
		return nil, repository.ErrNotFound
	}
	r.Views++
	copied := *r
	return &copied, nil
}

func (m *MockRecordRepository) IncrementFavorites(ctx context.Context, category models.Category, id int64) (int, error) {
	r := m.find(category, id)
	if r == nil {
		return 0, repository.ErrNotFound
	}
	r.Favorites++
	return r.Favorites, nil
}

func (m *MockRecordRepository) Count(ctx context.Context, category models.Category) (int, error) {
	if m.ListError != nil {
		return 0, m.ListError
	}
	return len(m.Records[category]), nil
}

// MockCrawlRunRepository is a mock implementation of CrawlRunRepository
type MockCrawlRunRepository struct {
	Runs        map[string]*models.CrawlRun
	Order       []string
	CreateError error
	UpdateCalls int
}

// Verify interface compliance
var _ repository.CrawlRunRepository = (*MockCrawlRunRepository)(nil)

func NewMockCrawlRunRepository() *MockCrawlRunRepository {
	return &MockCrawlRunRepository{
		Runs: make(map[string]*models.CrawlRun),
	}
}

func (m *MockCrawlRunRepository) Create(ctx context.Context, run *models.CrawlRun) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	copied := *run
	m.Runs[run.ID] = &copied
	m.Order = append(m.Order, run.ID)
	return nil
}

func (m *MockCrawlRunRepository) Update(ctx context.Context, run *models.CrawlRun) error {
	m.UpdateCalls++
	if _, ok := m.Runs[run.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *run
	m.Runs[run.ID] = &copied
	return nil
}

func (m *MockCrawlRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.CrawlRun, error) {
	out := []*models.CrawlRun{}
	for i := len(m.Order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Runs[m.Order[i]])
	}
	return out, nil
}

// NewMockRepositories bundles fresh mocks the way repository.New does
func NewMockRepositories() (*repository.Repositories, *MockRecordRepository, *MockCrawlRunRepository) {
	records := NewMockRecordRepository()
	runs := NewMockCrawlRunRepository()
	return &repository.Repositories{Records: records, CrawlRuns: runs}, records, runs
}
