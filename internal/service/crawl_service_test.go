package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-notice-collector/internal/mocks"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/service"
	"github.com/rs/zerolog"
)

type fakeCrawler struct {
	sliceProducer
	seen, failures int
	started        chan struct{}
	block          chan struct{}
}

func (f *fakeCrawler) Produce(ctx context.Context, emit service.EmitFunc) error {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.seen = len(f.items)
	return f.sliceProducer.Produce(ctx, emit)
}

func (f *fakeCrawler) Counters() (int, int) { return f.seen, f.failures }

func TestCrawlService_RunOnce(t *testing.T) {
	repos, records, runs := mocks.NewMockRepositories()
	crawler := &fakeCrawler{
		sliceProducer: sliceProducer{items: []models.Classified{
			{Record: models.Record{Title: "a", Category: models.CategoryExams}, Categories: []models.Category{models.CategoryExams}},
			{Record: models.Record{Title: "b", Category: models.CategoryNotices}, Categories: []models.Category{models.CategoryNotices}},
		}},
		failures: 1,
	}
	svc := service.NewCrawlService(crawler, repos, testPolicy(), zerolog.Nop())

	run, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if run.Status != models.CrawlStatusCompleted {
		t.Errorf("Expected completed, got %s", run.Status)
	}
	if run.RowsSeen != 2 || run.RowsStored != 2 || run.DetailFailures != 1 {
		t.Errorf("Unexpected counters %+v", run)
	}
	if stored := runs.Runs[run.ID]; stored == nil || stored.Status != models.CrawlStatusCompleted {
		t.Errorf("Expected run history updated, got %+v", stored)
	}
	if len(records.Records[models.CategoryExams]) != 1 || len(records.Records[models.CategoryNotices]) != 1 {
		t.Errorf("Expected records replaced, got %v", records.Records)
	}
}

func TestCrawlService_ProducerFailure(t *testing.T) {
	repos, records, runs := mocks.NewMockRepositories()
	crawler := &fakeCrawler{sliceProducer: sliceProducer{err: context.Canceled}}
	svc := service.NewCrawlService(crawler, repos, testPolicy(), zerolog.Nop())

	run, err := svc.RunOnce(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected cancellation error, got %v", err)
	}
	if run.Status != models.CrawlStatusFailed || run.Error == "" {
		t.Errorf("Expected failed run with error, got %+v", run)
	}
	if records.ReplaceCalls != 0 {
		t.Errorf("Expected no replace, got %d", records.ReplaceCalls)
	}
	if runs.UpdateCalls != 1 {
		t.Errorf("Expected run history update, got %d", runs.UpdateCalls)
	}
}

func TestCrawlService_RejectsOverlap(t *testing.T) {
	repos, _, _ := mocks.NewMockRepositories()
	crawler := &fakeCrawler{started: make(chan struct{}), block: make(chan struct{})}
	svc := service.NewCrawlService(crawler, repos, testPolicy(), zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.RunOnce(context.Background())
		done <- err
	}()

	<-crawler.started
	if _, err := svc.RunOnce(context.Background()); !errors.Is(err, service.ErrCrawlInProgress) {
		t.Errorf("Expected ErrCrawlInProgress, got %v", err)
	}
	close(crawler.block)

	if err := <-done; err != nil {
		t.Errorf("First run failed: %v", err)
	}
}
