package service

import (
	"context"
	"strings"
	"time"

	"github.com/campus-notice-collector/internal/classify"
	"github.com/campus-notice-collector/internal/extract"
	"github.com/campus-notice-collector/internal/models"
	"github.com/rs/zerolog"
)

// ImageResolver localizes remote image URLs
type ImageResolver interface {
	ResolveAll(ctx context.Context, urls []string) []string
}

// Pipeline turns an admitted chat message into a classified record
type Pipeline struct {
	keywords    *extract.KeywordExtractor
	classifier  *classify.Classifier
	images      ImageResolver
	titleLength int
	now         func() time.Time
	log         zerolog.Logger
}

// NewPipeline wires the extraction, classification and image stages
func NewPipeline(keywords *extract.KeywordExtractor, classifier *classify.Classifier, images ImageResolver, titleLength int, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		keywords:    keywords,
		classifier:  classifier,
		images:      images,
		titleLength: titleLength,
		now:         time.Now,
		log:         log.With().Str("service", "pipeline").Logger(),
	}
}

// Process extracts features from msg and classifies it. It reports false
// when the message has no keywords or matches no category.
func (p *Pipeline) Process(ctx context.Context, msg models.ChatMessage) (models.Classified, bool) {
	received := msg.ReceivedAt
	if received.IsZero() {
		received = p.now()
	}

	imageURLs, text := extract.ExtractImages(msg.Content)

	keywords := p.keywords.Extract(text)
	if len(keywords) == 0 {
		p.log.Debug().Str("message_id", msg.MessageID).Msg("No keywords, message dropped")
		return models.Classified{}, false
	}

	categories := p.classifier.Classify(keywords)
	if len(categories) == 0 {
		p.log.Debug().
			Str("message_id", msg.MessageID).
			Strs("keywords", keywords).
			Msg("No category matched, message dropped")
		return models.Classified{}, false
	}

	links := extract.ExtractLinks(msg.Content)
	dates := extract.ExtractDates(text, received)

	var imageIDs []string
	if len(imageURLs) > 0 && p.images != nil {
		imageIDs = p.images.ResolveAll(ctx, imageURLs)
	}

	rec := models.Record{
		Title:       Title(text, p.titleLength),
		Content:     text,
		Keywords:    models.JoinList(keywords),
		Link:        models.JoinList(links),
		PublishDate: received.Format(models.PublishDateLayout),
		EventDate:   strings.Join(dates, ","), // repeats kept
		ImageURL:    models.JoinList(imageIDs),
	}

	return models.Classified{Record: rec, Categories: categories}, true
}

// Title shortens content to n characters, marking truncation with "..."
func Title(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
