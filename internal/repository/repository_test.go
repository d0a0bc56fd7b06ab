package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func setupStore(t *testing.T) *repository.Repositories {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "store.db"),
		BusyTimeout:  time.Second,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		MaxLifetime:  time.Minute,
	}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to migrate store: %v", err)
	}
	return repository.New(db)
}

func record(title, content, eventDate, publishDate string) *models.Record {
	return &models.Record{
		Title:       title,
		Content:     content,
		Keywords:    "竞赛,通知",
		PublishDate: publishDate,
		EventDate:   eventDate,
	}
}

func TestInsertIfAbsent_Dedup(t *testing.T) {
	repos := setupStore(t)
	ctx := context.Background()
	rec := record("竞赛报名", "4月8号 竞赛报名通知", "2026-04-08", "2026-03-01 10:00:00")

	inserted, err := repos.Records.InsertIfAbsent(ctx, models.CategoryCompetitions, rec)
	if err != nil || !inserted {
		t.Fatalf("Expected first insert to succeed, got %v (%v)", inserted, err)
	}

	inserted, err = repos.Records.InsertIfAbsent(ctx, models.CategoryCompetitions, rec)
	if err != nil {
		t.Fatalf("Second insert failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate to be skipped")
	}

	// Same content with a different event date is a different record.
	other := record("竞赛报名", "4月8号 竞赛报名通知", "2026-04-09", "2026-03-01 10:00:00")
	if inserted, _ := repos.Records.InsertIfAbsent(ctx, models.CategoryCompetitions, other); !inserted {
		t.Error("Expected different event date to insert")
	}

	count, _ := repos.Records.Count(ctx, models.CategoryCompetitions)
	if count != 2 {
		t.Errorf("Expected 2 rows, got %d", count)
	}

	// Dedup is scoped per category.
	if inserted, _ := repos.Records.InsertIfAbsent(ctx, models.CategoryNotices, rec); !inserted {
		t.Error("Expected insert into another category to succeed")
	}
}

func TestInsertIfAbsent_CountersStartAtZero(t *testing.T) {
	repos := setupStore(t)
	ctx := context.Background()
	rec := record("t", "c", "", "2026-03-01 10:00:00")
	rec.Views, rec.Favorites = 9, 9

	repos.Records.InsertIfAbsent(ctx, models.CategoryExams, rec)

	list, err := repos.Records.List(ctx, models.CategoryExams, models.RecordFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Views != 0 || list[0].Favorites != 0 {
		t.Errorf("Expected zero counters, got %+v", list)
	}
}

func TestUnknownCategory(t *testing.T) {
	repos := setupStore(t)

	_, err := repos.Records.InsertIfAbsent(context.Background(), "users; DROP TABLE exams", record("t", "c", "", ""))
	if !errors.Is(err, repository.ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	repos := setupStore(t)
	ctx := context.Background()

	first := []*models.Record{
		record("a", "a", "", "2026-01-01"),
		record("b", "b", "", "2026-01-02"),
	}
	if err := repos.Records.Replace(ctx, models.CategoryNotices, first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	second := []*models.Record{record("c", "c", "", "2026-02-01")}
	if err := repos.Records.Replace(ctx, models.CategoryNotices, second); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	list, _ := repos.Records.List(ctx, models.CategoryNotices, models.RecordFilter{})
	if len(list) != 1 || list[0].Title != "c" {
		t.Fatalf("Expected only the second batch, got %+v", list)
	}
	if list[0].ID != 1 {
		t.Errorf("Expected ids to restart at 1, got %d", list[0].ID)
	}

	if err := repos.Records.Replace(ctx, models.CategoryNotices, nil); err != nil {
		t.Fatalf("Replace with no rows failed: %v", err)
	}
	if count, _ := repos.Records.Count(ctx, models.CategoryNotices); count != 0 {
		t.Errorf("Expected empty category, got %d rows", count)
	}
}

func TestList_FiltersAndOrder(t *testing.T) {
	repos := setupStore(t)
	ctx := context.Background()

	recs := []*models.Record{
		{Title: "期末考试安排", Content: "全校期末考试", Keywords: "期末", PublishDate: "2026-06-01", Category: models.CategoryExams},
		{Title: "补考通知", Content: "补考安排", Keywords: "补考", PublishDate: "2026-08-20", Category: models.CategoryExams},
		{Title: "实践周", Content: "实习基地", Keywords: "基地", PublishDate: "2026-07-01", Category: models.CategoryInternships},
	}
	if err := repos.Records.Replace(ctx, models.CategoryExams, recs); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	all, _ := repos.Records.List(ctx, models.CategoryExams, models.RecordFilter{})
	if len(all) != 3 || all[0].Title != "补考通知" || all[2].Title != "期末考试安排" {
		t.Errorf("Expected newest first, got %v", titles(all))
	}

	byKeyword, _ := repos.Records.List(ctx, models.CategoryExams, models.RecordFilter{Keyword: "期末"})
	if len(byKeyword) != 1 || byKeyword[0].Title != "期末考试安排" {
		t.Errorf("Expected keyword match, got %v", titles(byKeyword))
	}

	byContent, _ := repos.Records.List(ctx, models.CategoryExams, models.RecordFilter{Keyword: "基地"})
	if len(byContent) != 1 {
		t.Errorf("Expected content/keyword match, got %v", titles(byContent))
	}

	byCategory, _ := repos.Records.List(ctx, models.CategoryExams, models.RecordFilter{Category: models.CategoryInternships})
	if len(byCategory) != 1 || byCategory[0].Title != "实践周" {
		t.Errorf("Expected category filter match, got %v", titles(byCategory))
	}
}

func TestGetAndView(t *testing.T) {
	repos := setupStore(t)
	ctx := context.Background()
	repos.Records.InsertIfAbsent(ctx, models.CategoryCompetitions, record("t", "c", "", "2026-01-01"))

	rec, err := repos.Records.GetAndView(ctx, models.CategoryCompetitions, 1)
	if err != nil {
		t.Fatalf("GetAndView failed: %v", err)
	}
	if rec.Views != 1 {
		t.Errorf("Expected 1 view, got %d", rec.Views)
	}

	rec, _ = repos.Records.GetAndView(ctx, models.CategoryCompetitions, 1)
	if rec.Views != 2 {
		t.Errorf("Expected 2 views, got %d", rec.Views)
	}

	if _, err := repos.Records.GetAndView(ctx, models.CategoryCompetitions, 99); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestIncrementFavorites(t *testing.T) {
	repos := setupStore(t)
	ctx := context.Background()
	repos.Records.InsertIfAbsent(ctx, models.CategoryNotices, record("t", "c", "", "2026-01-01"))

	for want := 1; want <= 3; want++ {
		got, err := repos.Records.IncrementFavorites(ctx, models.CategoryNotices, 1)
		if err != nil {
			t.Fatalf("IncrementFavorites failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %d favorites, got %d", want, got)
		}
	}

	if _, err := repos.Records.IncrementFavorites(ctx, models.CategoryNotices, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCrawlRuns(t *testing.T) {
	repos := setupStore(t)
	ctx := context.Background()

	older := &models.CrawlRun{ID: uuid.New().String(), Status: models.CrawlStatusCompleted, StartedAt: time.Now().Add(-time.Hour).UTC()}
	run := &models.CrawlRun{ID: uuid.New().String(), Status: models.CrawlStatusRunning, StartedAt: time.Now().UTC()}

	for _, r := range []*models.CrawlRun{older, run} {
		if err := repos.CrawlRuns.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	completed := time.Now().UTC()
	run.Status = models.CrawlStatusCompleted
	run.RowsSeen = 12
	run.RowsStored = 10
	run.CompletedAt = &completed
	if err := repos.CrawlRuns.Update(ctx, run); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	runs, err := repos.CrawlRuns.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != run.ID || runs[0].RowsStored != 10 || runs[0].CompletedAt == nil {
		t.Errorf("Expected latest run first with counters, got %+v", runs[0])
	}

	missing := &models.CrawlRun{ID: uuid.New().String(), Status: models.CrawlStatusFailed}
	if err := repos.CrawlRuns.Update(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func titles(recs []*models.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}
