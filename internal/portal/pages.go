// Package portal crawls the university teaching portal: listing tables
// per category page, detail pages and their PDF attachments.
package portal

import (
	"fmt"
	"strings"

	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/models"
)

const (
	// DefaultBaseURL is the portal root reached through the campus web VPN
	DefaultBaseURL = "https://webvpn.njfu.edu.cn/webvpn/LjIwMS4xNjkuMjE4LjE2OA==/LjIwMy4xNzIuMjAxLjEwMi4xNjIuMTU5LjIwMi4xNjguMTQ3LjE1MS4xNTYuMTczLjE0OC4xNTMuMTY1"
	// DefaultLinkBase prefixes relative links found in listings
	DefaultLinkBase = "https://webvpn.njfu.edu.cn"

	defaultTableClass = "datalist"
)

// Rule adds Emit to a row's keywords when Trigger occurs in its title or
// content
type Rule struct {
	Trigger string
	Emit    []string
}

// PageConfig describes one listing page and the category it feeds
type PageConfig struct {
	Name          models.Category
	URL           string
	TableClass    string
	Rules         []Rule
	RequireSuffix string
	ExcludeTitles []string
}

// Admit applies the page's title filters
func (p PageConfig) Admit(title string) bool {
	if p.RequireSuffix != "" && !strings.HasSuffix(title, p.RequireSuffix) {
		return false
	}
	for _, ex := range p.ExcludeTitles {
		if strings.Contains(title, ex) {
			return false
		}
	}
	return true
}

// Keywords collects the emitted keywords of every rule that fires, in
// rule order
func (p PageConfig) Keywords(title, content string) []string {
	var out []string
	for _, r := range p.Rules {
		if strings.Contains(title, r.Trigger) || strings.Contains(content, r.Trigger) {
			out = append(out, r.Emit...)
		}
	}
	return models.UniqueStrings(out)
}

func pageURL(baseURL, path string) string {
	return baseURL + "//" + strings.Trim(path, "/") + "/index.html?vpn-0"
}

func same(terms ...string) []Rule {
	rules := make([]Rule, len(terms))
	for i, t := range terms {
		rules[i] = Rule{Trigger: t, Emit: []string{t}}
	}
	return rules
}

// DefaultPages returns the four listing pages of the portal at baseURL
func DefaultPages(baseURL string) []PageConfig {
	return []PageConfig{
		{
			Name:          models.CategoryCompetitions,
			URL:           pageURL(baseURL, "sjjx/xkjs"),
			TableClass:    defaultTableClass,
			Rules:         same("竞赛", "创新", "设计", "通知"),
			RequireSuffix: "通知",
			ExcludeTitles: []string{"统计工作", "更新调整工作"},
		},
		{
			Name:       models.CategoryNotices,
			URL:        pageURL(baseURL, "jwgl/jwtz"),
			TableClass: defaultTableClass,
			Rules:      same("考试", "选课", "教学", "毕业", "成绩"),
		},
		{
			Name:       models.CategoryExams,
			URL:        pageURL(baseURL, "ksgl/kstz"),
			TableClass: defaultTableClass,
			Rules: []Rule{
				{Trigger: "期末", Emit: []string{"期末考试"}},
				{Trigger: "期中", Emit: []string{"期中考试"}},
				{Trigger: "补考", Emit: []string{"补考"}},
				{Trigger: "重修", Emit: []string{"重修"}},
				{Trigger: "考场", Emit: []string{"考场安排"}},
				{Trigger: "时间", Emit: []string{"考试时间"}},
			},
		},
		{
			Name:       models.CategoryInternships,
			URL:        pageURL(baseURL, "sjjx/jzsjhj"),
			TableClass: defaultTableClass,
			Rules: []Rule{
				{Trigger: "实习", Emit: []string{"实习"}},
				{Trigger: "实训", Emit: []string{"实训"}},
				{Trigger: "基地", Emit: []string{"实习基地"}},
				{Trigger: "报到", Emit: []string{"报到"}},
				{Trigger: "鉴定", Emit: []string{"实习鉴定"}},
				{Trigger: "总结", Emit: []string{"实习总结"}},
				{Trigger: "指导", Emit: []string{"实习指导"}},
			},
		},
	}
}

// FromCatalog builds the page list and link base from the catalog's
// portal section, falling back to the built-in pages when it lists none
func FromCatalog(c *config.Catalog) ([]PageConfig, string, error) {
	baseURL := c.Portal.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	linkBase := c.Portal.LinkBase
	if linkBase == "" {
		linkBase = DefaultLinkBase
	}

	if len(c.Portal.Pages) == 0 {
		return DefaultPages(baseURL), linkBase, nil
	}

	pages := make([]PageConfig, 0, len(c.Portal.Pages))
	for _, entry := range c.Portal.Pages {
		category := models.Category(entry.Category)
		if !category.Valid() {
			return nil, "", fmt.Errorf("portal page %q: unknown category %q", entry.Path, entry.Category)
		}
		if entry.Path == "" {
			return nil, "", fmt.Errorf("portal page for %s has no path", entry.Category)
		}

		page := PageConfig{
			Name:          category,
			URL:           pageURL(baseURL, entry.Path),
			TableClass:    entry.TableClass,
			RequireSuffix: entry.RequireSuffix,
			ExcludeTitles: entry.ExcludeTitles,
		}
		if page.TableClass == "" {
			page.TableClass = defaultTableClass
		}
		for _, r := range entry.Rules {
			emit := r.Emit
			if len(emit) == 0 {
				emit = []string{r.Trigger}
			}
			page.Rules = append(page.Rules, Rule{Trigger: r.Trigger, Emit: emit})
		}
		pages = append(pages, page)
	}
	return pages, linkBase, nil
}
