package portal

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/campus-notice-collector/internal/extract"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/service"
	"github.com/rs/zerolog"
)

// ErrPortalUnreachable is returned when no listing page could be read.
// The crawl then fails instead of emptying every category.
var ErrPortalUnreachable = errors.New("no portal listing could be read")

// Crawler is the web ingestion producer. It walks the pages in order and
// emits one record per listing row; the row's category is its page's.
type Crawler struct {
	pages    []PageConfig
	linkBase string
	fetcher  Fetcher
	text     extract.TextExtractor
	delay    time.Duration
	now      func() time.Time
	log      zerolog.Logger

	rowsSeen       int
	detailFailures int
}

// NewCrawler creates a crawler. delay is waited between detail requests.
func NewCrawler(pages []PageConfig, linkBase string, fetcher Fetcher, text extract.TextExtractor, delay time.Duration, log zerolog.Logger) *Crawler {
	return &Crawler{
		pages:    pages,
		linkBase: linkBase,
		fetcher:  fetcher,
		text:     text,
		delay:    delay,
		now:      time.Now,
		log:      log.With().Str("component", "portal_crawler").Logger(),
	}
}

// Name implements service.Producer
func (c *Crawler) Name() string { return "portal" }

// Counters reports rows seen and failed detail fetches of the last run
func (c *Crawler) Counters() (int, int) {
	return c.rowsSeen, c.detailFailures
}

// Produce implements service.Producer. A page whose listing cannot be
// read is skipped; a row whose detail cannot be read is still emitted
// with empty content and keywords.
func (c *Crawler) Produce(ctx context.Context, emit service.EmitFunc) error {
	c.rowsSeen, c.detailFailures = 0, 0
	listed := 0

	for _, page := range c.pages {
		log := c.log.With().Str("page", string(page.Name)).Logger()

		rows, err := c.listing(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("url", page.URL).Msg("Skipping page, listing unavailable")
			continue
		}
		listed++
		log.Info().Int("rows", len(rows)).Msg("Listing read")

		for i, row := range rows {
			if i > 0 && c.delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.delay):
				}
			}

			c.rowsSeen++
			rec := c.record(ctx, page, row, log)
			if err := emit(ctx, models.Classified{Record: rec, Categories: []models.Category{page.Name}}); err != nil {
				return err
			}
		}
	}

	if listed == 0 && len(c.pages) > 0 {
		return ErrPortalUnreachable
	}
	return nil
}

func (c *Crawler) listing(ctx context.Context, page PageConfig) ([]models.ListingRow, error) {
	body, err := c.fetcher.Fetch(ctx, page.URL)
	if err != nil {
		return nil, err
	}
	return ParseListing(bytes.NewReader(body), page, c.linkBase)
}

func (c *Crawler) record(ctx context.Context, page PageConfig, row models.ListingRow, log zerolog.Logger) models.Record {
	rec := models.Record{
		Title:       row.Title,
		Link:        row.Link,
		PublishDate: row.Date,
		Category:    page.Name,
	}

	body, err := c.fetcher.Fetch(ctx, row.Link)
	if err != nil {
		c.detailFailures++
		log.Warn().Err(err).Str("title", row.Title).Msg("Detail fetch failed, storing row without content")
		return rec
	}
	detail, err := ParseDetail(bytes.NewReader(body), row.Link)
	if err != nil {
		c.detailFailures++
		log.Warn().Err(err).Str("title", row.Title).Msg("Detail parse failed, storing row without content")
		return rec
	}

	now := c.now()
	dates := extract.ExtractPortalDates(detail.Content, now)
	for _, att := range detail.Attachments {
		dates = append(dates, c.attachmentDates(ctx, att, now, log)...)
	}

	rec.Content = detail.Content
	rec.Keywords = models.JoinList(page.Keywords(row.Title, detail.Content))
	rec.EventDate = models.JoinList(dates)
	return rec
}

func (c *Crawler) attachmentDates(ctx context.Context, link string, now time.Time, log zerolog.Logger) []string {
	if c.text == nil {
		return nil
	}
	data, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		log.Warn().Err(err).Str("attachment", link).Msg("Attachment fetch failed")
		return nil
	}
	text, err := c.text.ExtractText(ctx, data)
	if err != nil {
		log.Warn().Err(err).Str("attachment", link).Msg("Attachment text extraction failed")
		return nil
	}
	return extract.ExtractPortalDates(text, now)
}
