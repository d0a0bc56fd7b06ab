package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/campus-notice-collector/internal/cache"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/rs/zerolog"
)

// ErrSourceUnavailable is returned when no queried store could answer
var ErrSourceUnavailable = errors.New("source store unavailable")

// ItemsQuery narrows list and search queries
type ItemsQuery struct {
	Source   models.Source   // empty queries both stores
	Category models.Category // matches the record's category column
	Keyword  string
}

// QueryService defines the read side over both source stores
type QueryService interface {
	ListItems(ctx context.Context, category models.Category, q ItemsQuery) ([]*models.Record, error)
	Search(ctx context.Context, q ItemsQuery) ([]*models.Record, error)
	GetItem(ctx context.Context, source models.Source, category models.Category, id int64) (*models.Record, error)
	Favorite(ctx context.Context, source models.Source, category models.Category, id int64) (int, error)
	CategoryStats(ctx context.Context) (map[models.Category]models.CategoryStats, error)
	RecentCrawls(ctx context.Context, limit int) ([]*models.CrawlRun, error)
}

// queryService is the concrete implementation of QueryService
type queryService struct {
	stores map[models.Source]*repository.Repositories
	cache  cache.Cache
	ttl    time.Duration
	log    zerolog.Logger
}

func newQueryService(stores map[models.Source]*repository.Repositories, c cache.Cache, ttl time.Duration, log zerolog.Logger) *queryService {
	if c == nil {
		c = cache.Nop{}
	}
	return &queryService{
		stores: stores,
		cache:  c,
		ttl:    ttl,
		log:    log.With().Str("service", "query").Logger(),
	}
}

// sources lists the stores a query touches, chat first
func (s *queryService) sources(only models.Source) []models.Source {
	var out []models.Source
	for _, src := range []models.Source{models.SourceChat, models.SourceWeb} {
		if only != "" && only != src {
			continue
		}
		out = append(out, src)
	}
	return out
}

// collect lists categories from every selected store. One failing store
// is logged and skipped; an error means none could answer.
func (s *queryService) collect(ctx context.Context, only models.Source, categories []models.Category, filter models.RecordFilter) ([]*models.Record, error) {
	var (
		records  []*models.Record
		failures int
		queried  int
	)

	for _, src := range s.sources(only) {
		repos := s.stores[src]
		queried++
		if repos == nil {
			failures++
			s.log.Warn().Str("source", string(src)).Msg("Store not configured")
			continue
		}

		for _, category := range categories {
			recs, err := repos.Records.List(ctx, category, filter)
			if err != nil {
				failures++
				s.log.Error().Err(err).Str("source", string(src)).Str("category", string(category)).Msg("Failed to query store")
				break
			}
			for _, r := range recs {
				r.Source = src
				r.Table = category
			}
			records = append(records, recs...)
		}
	}

	if queried > 0 && failures == queried {
		return nil, ErrSourceUnavailable
	}

	sortNewestFirst(records)
	for _, r := range records {
		normalize(r)
	}
	return records, nil
}

// ListItems returns one category's records from the selected stores
func (s *queryService) ListItems(ctx context.Context, category models.Category, q ItemsQuery) ([]*models.Record, error) {
	key := fmt.Sprintf("items:%s:%s:%s", category, q.Source, q.Category)
	var records []*models.Record
	if s.cached(ctx, key, &records) {
		return records, nil
	}

	records, err := s.collect(ctx, q.Source, []models.Category{category}, models.RecordFilter{Category: q.Category})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, key, records)
	return records, nil
}

// Search matches the keyword against title, content and keywords in all
// four categories
func (s *queryService) Search(ctx context.Context, q ItemsQuery) ([]*models.Record, error) {
	key := fmt.Sprintf("search:%s:%s:%s", q.Keyword, q.Source, q.Category)
	var records []*models.Record
	if s.cached(ctx, key, &records) {
		return records, nil
	}

	records, err := s.collect(ctx, q.Source, models.Categories, models.RecordFilter{Keyword: q.Keyword, Category: q.Category})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, key, records)
	return records, nil
}

// GetItem returns a record and counts the view
func (s *queryService) GetItem(ctx context.Context, source models.Source, category models.Category, id int64) (*models.Record, error) {
	repos, err := s.repos(source)
	if err != nil {
		return nil, err
	}

	rec, err := repos.Records.GetAndView(ctx, category, id)
	if err != nil {
		return nil, err
	}
	rec.Source = source
	rec.Table = category
	normalize(rec)
	return rec, nil
}

// Favorite increments a record's favorite counter
func (s *queryService) Favorite(ctx context.Context, source models.Source, category models.Category, id int64) (int, error) {
	repos, err := s.repos(source)
	if err != nil {
		return 0, err
	}
	return repos.Records.IncrementFavorites(ctx, category, id)
}

// CategoryStats counts each category's records per source
func (s *queryService) CategoryStats(ctx context.Context) (map[models.Category]models.CategoryStats, error) {
	const key = "stats"
	var stats map[models.Category]models.CategoryStats
	if s.cached(ctx, key, &stats) {
		return stats, nil
	}

	stats = make(map[models.Category]models.CategoryStats, len(models.Categories))
	for _, category := range models.Categories {
		stats[category] = models.CategoryStats{models.SourceChat: 0, models.SourceWeb: 0}
	}

	for _, src := range s.sources("") {
		repos := s.stores[src]
		if repos == nil {
			continue
		}
		for _, category := range models.Categories {
			count, err := repos.Records.Count(ctx, category)
			if err != nil {
				s.log.Error().Err(err).Str("source", string(src)).Str("category", string(category)).Msg("Failed to count records")
				continue
			}
			stats[category][src] = count
		}
	}

	s.remember(ctx, key, stats)
	return stats, nil
}

// RecentCrawls lists the latest portal crawl runs
func (s *queryService) RecentCrawls(ctx context.Context, limit int) ([]*models.CrawlRun, error) {
	repos, err := s.repos(models.SourceWeb)
	if err != nil {
		return nil, err
	}
	return repos.CrawlRuns.ListRecent(ctx, limit)
}

func (s *queryService) repos(source models.Source) (*repository.Repositories, error) {
	repos := s.stores[source]
	if repos == nil {
		return nil, ErrSourceUnavailable
	}
	return repos, nil
}

func (s *queryService) cached(ctx context.Context, key string, dst interface{}) bool {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding malformed cache entry")
		return false
	}
	return true
}

func (s *queryService) remember(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// sortNewestFirst orders by publish date, undated records last
func sortNewestFirst(records []*models.Record) {
	keys := make(map[*models.Record]time.Time, len(records))
	for _, r := range records {
		if t, ok := parseDate(r.PublishDate); ok {
			keys[r] = t
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return keys[records[i]].After(keys[records[j]])
	})
}

func normalize(r *models.Record) {
	r.PublishDate = StandardizeDate(r.PublishDate)
	r.EventDate = standardizeDateList(r.EventDate)
}
