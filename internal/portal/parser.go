package portal

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/campus-notice-collector/internal/models"
)

// ErrListingNotFound is returned when a page has no listing table,
// usually because the session expired or the layout changed
var ErrListingNotFound = errors.New("listing table not found")

// ParseListing reads the rows of a listing page. Relative links are
// prefixed with linkBase and the page's title filters are applied.
func ParseListing(r io.Reader, page PageConfig, linkBase string) ([]models.ListingRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("div#ajaxpage-list table").First()
	if table.Length() == 0 && page.TableClass != "" {
		table = doc.Find("table." + page.TableClass).First()
	}
	if table.Length() == 0 {
		return nil, ErrListingNotFound
	}

	var rows []models.ListingRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() < 3 {
			return
		}

		a := cells.Eq(1).Find("a").First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		title := strings.TrimSpace(a.Text())
		if !page.Admit(title) {
			return
		}

		link := strings.TrimSpace(href)
		if !strings.HasPrefix(link, "http") {
			link = linkBase + link
		}

		dateCell := cells.Eq(2).Find("div").First()
		if dateCell.Length() == 0 {
			dateCell = cells.Eq(2)
		}
		date := strings.Trim(strings.TrimSpace(dateCell.Text()), "[]")

		rows = append(rows, models.ListingRow{Title: title, Link: link, Date: date})
	})

	return rows, nil
}

// ParseDetail reads a detail page body and the PDF attachments it links.
// Attachment links are resolved against pageURL.
func ParseDetail(r io.Reader, pageURL string) (models.Detail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.Detail{}, err
	}

	var detail models.Detail
	body := doc.Find("div#zoom").First()
	if body.Length() == 0 {
		body = doc.Find("div#textarea").First()
	}
	if body.Length() > 0 {
		detail.Content = strings.Join(textLines(body), "\n")
	}

	base, _ := url.Parse(pageURL)
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !isPDF(href) {
			return
		}
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		if !seen[href] {
			seen[href] = true
			detail.Attachments = append(detail.Attachments, href)
		}
	})

	return detail, nil
}

func isPDF(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// textLines returns every non-blank text node under s, trimmed
func textLines(s *goquery.Selection) []string {
	var lines []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if t := strings.TrimSpace(c.Text()); t != "" {
				lines = append(lines, t)
			}
		case "script", "style":
		default:
			lines = append(lines, textLines(c)...)
		}
	})
	return lines
}
