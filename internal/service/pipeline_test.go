package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/campus-notice-collector/internal/classify"
	"github.com/campus-notice-collector/internal/extract"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/service"
	"github.com/rs/zerolog"
)

// wordTagger tags every listed word found in the text as a noun
type wordTagger []string

func (w wordTagger) Tag(text string) []extract.TaggedWord {
	var out []extract.TaggedWord
	for _, word := range w {
		if strings.Contains(text, word) {
			out = append(out, extract.TaggedWord{Text: word, Tag: "n"})
		}
	}
	return out
}

type fakeResolver struct {
	requested []string
}

func (f *fakeResolver) ResolveAll(ctx context.Context, urls []string) []string {
	f.requested = append(f.requested, urls...)
	out := make([]string, 0, len(urls))
	for i := range urls {
		out = append(out, "img/"+string(rune('a'+i))+".jpg")
	}
	return out
}

func newTestPipeline(images service.ImageResolver) *service.Pipeline {
	classifier := classify.NewClassifier(classify.DefaultTaxonomy())
	keywords := extract.NewKeywordExtractor(wordTagger{"学院", "操场"}, classifier.Terms())
	return service.NewPipeline(keywords, classifier, images, 20, zerolog.Nop())
}

func TestPipeline_AdminNoticeScenario(t *testing.T) {
	resolver := &fakeResolver{}
	p := newTestPipeline(resolver)
	received := time.Date(2026, time.March, 30, 14, 5, 9, 0, time.Local)

	msg := models.ChatMessage{
		MessageID:  "1",
		Content:    "[CQ:image,file=a.jpg,url=http://x/y.png] 4月8号 竞赛报名通知 http://example.com/signup",
		ReceivedAt: received,
	}

	c, ok := p.Process(context.Background(), msg)
	if !ok {
		t.Fatal("Expected message to be classified")
	}

	if len(c.Categories) != 1 || c.Categories[0] != models.CategoryCompetitions {
		t.Errorf("Expected competitions, got %v", c.Categories)
	}
	if c.Record.EventDate != "2026-04-08" {
		t.Errorf("Expected event date 2026-04-08, got %s", c.Record.EventDate)
	}
	if c.Record.Link != "http://example.com/signup" {
		t.Errorf("Expected signup link, got %s", c.Record.Link)
	}
	if c.Record.ImageURL != "img/a.jpg" {
		t.Errorf("Expected resolved image id, got %s", c.Record.ImageURL)
	}
	if len(resolver.requested) != 1 || resolver.requested[0] != "http://x/y.png" {
		t.Errorf("Expected image url to be resolved, got %v", resolver.requested)
	}
	if strings.Contains(c.Record.Content, "CQ:image") {
		t.Errorf("Expected image reference removed from content, got %q", c.Record.Content)
	}
	if c.Record.PublishDate != "2026-03-30 14:05:09" {
		t.Errorf("Unexpected publish date %s", c.Record.PublishDate)
	}
	if !strings.Contains(c.Record.Keywords, "竞赛") || !strings.Contains(c.Record.Keywords, "通知") {
		t.Errorf("Expected table terms in keywords, got %s", c.Record.Keywords)
	}
}

func TestPipeline_FanOut(t *testing.T) {
	p := newTestPipeline(nil)

	c, ok := p.Process(context.Background(), models.ChatMessage{Content: "期末 实习 安排"})
	if !ok {
		t.Fatal("Expected message to be classified")
	}

	want := []models.Category{models.CategoryExams, models.CategoryInternships}
	if len(c.Categories) != 2 || c.Categories[0] != want[0] || c.Categories[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, c.Categories)
	}
}

func TestPipeline_DropsUnclassifiable(t *testing.T) {
	p := newTestPipeline(nil)

	tests := []struct {
		name    string
		content string
	}{
		{"no keywords", "好的收到"},
		{"nouns without category", "学院操场"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := p.Process(context.Background(), models.ChatMessage{Content: tt.content}); ok {
				t.Error("Expected message to be dropped")
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"短通知", "短通知"},
		{"一二三四五六七八九十一二三四五六七八九十", "一二三四五六七八九十一二三四五六七八九十"},
		{"一二三四五六七八九十一二三四五六七八九十多", "一二三四五六七八九十一二三四五六七八九十..."},
	}

	for _, tt := range tests {
		if got := service.Title(tt.content, 20); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
