package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/campus-notice-collector/internal/cache"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/service"
)

// MockQueryService is a mock implementation of QueryService
type MockQueryService struct {
	Items        []*models.Record
	Stats        map[models.Category]models.CategoryStats
	Runs         []*models.CrawlRun
	Err          error
	GetItemFunc  func(ctx context.Context, source models.Source, category models.Category, id int64) (*models.Record, error)
	FavoriteFunc func(ctx context.Context, source models.Source, category models.Category, id int64) (int, error)
	LastCategory models.Category
	LastQuery    service.ItemsQuery
}

// Verify interface compliance
var _ service.QueryService = (*MockQueryService)(nil)

func NewMockQueryService() *MockQueryService {
	return &MockQueryService{
		Items: make([]*models.Record, 0),
		Stats: make(map[models.Category]models.CategoryStats),
	}
}

func (m *MockQueryService) ListItems(ctx context.Context, category models.Category, q service.ItemsQuery) ([]*models.Record, error) {
	m.LastCategory = category
	m.LastQuery = q
	return m.Items, m.Err
}

func (m *MockQueryService) Search(ctx context.Context, q service.ItemsQuery) ([]*models.Record, error) {
	m.LastQuery = q
	return m.Items, m.Err
}

func (m *MockQueryService) GetItem(ctx context.Context, source models.Source, category models.Category, id int64) (*models.Record, error) {
	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, source, category, id)
	}
	return nil, m.Err
}

func (m *MockQueryService) Favorite(ctx context.Context, source models.Source, category models.Category, id int64) (int, error) {
	if m.FavoriteFunc != nil {
		return m.FavoriteFunc(ctx, source, category, id)
	}
	return 0, m.Err
}

func (m *MockQueryService) CategoryStats(ctx context.Context) (map[models.Category]models.CategoryStats, error) {
	return m.Stats, m.Err
}

func (m *MockQueryService) RecentCrawls(ctx context.Context, limit int) ([]*models.CrawlRun, error) {
	return m.Runs, m.Err
}

// MockCache is an in-memory Cache that records its traffic
type MockCache struct {
	mu      sync.Mutex
	Entries map[string][]byte
	Gets    int
	Hits    int
	Sets    int
}

// Verify interface compliance
var _ cache.Cache = (*MockCache)(nil)

func NewMockCache() *MockCache {
	return &MockCache{Entries: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	v, ok := m.Entries[key]
	if ok {
		m.Hits++
	}
	return v, ok, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	m.Entries[key] = value
	return nil
}

// MockHealthService returns a fixed store report
type MockHealthService struct {
	Report map[models.Source]string
}

var _ service.HealthService = (*MockHealthService)(nil)

func (m *MockHealthService) Check(ctx context.Context) map[models.Source]string {
	return m.Report
}
