package portal_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/portal"
)

const listingHTML = `<html><body>
<table class="datalist">
  <tr><th>序号</th><th>标题</th><th>日期</th></tr>
  <tr><td>1</td><td><a href="/sjjx/xkjs/1.html">关于举办程序设计竞赛的通知</a></td><td><div>[2026-03-01]</div></td></tr>
  <tr><td>2</td><td><a href="https://other.example/2.html">创新创业大赛结果公示</a></td><td>[2026-02-20]</td></tr>
  <tr><td>3</td><td><a href="/sjjx/xkjs/3.html">学科竞赛统计工作的通知</a></td><td>2026-02-10</td></tr>
  <tr><td>4</td><td><a href="https://other.example/4.html">数学建模竞赛通知</a></td><td>2026-02-01</td></tr>
  <tr><td>only two cells</td><td><a href="/x.html">通知</a></td></tr>
</table>
</body></html>`

const ajaxListingHTML = `<html><body>
<table class="datalist"><tr><td>1</td><td><a href="/wrong.html">wrong table</a></td><td>2026-01-01</td></tr></table>
<div id="ajaxpage-list"><table>
  <tr><td>1</td><td><a href="/jwgl/jwtz/9.html"> 2026年春季选课安排 </a></td><td>[2026-01-05]</td></tr>
</table></div>
</body></html>`

const detailHTML = `<html><body>
<div id="zoom">
  <p>各学院：</p>
  <p>报名时间：2026年3月10日至2026-03-20</p>
  <script>var x = 1;</script>
  <p>  期末考试安排 <strong>见附件</strong></p>
  <p>   </p>
</div>
<a href="/files/plan.pdf">附件1</a>
<a href="https://cdn.example/a/notice.PDF?v=2">附件2</a>
<a href="/files/plan.pdf">附件1副本</a>
<a href="/files/form.docx">报名表</a>
</body></html>`

func pageByName(name models.Category) portal.PageConfig {
	for _, p := range portal.DefaultPages("https://portal.example") {
		if p.Name == name {
			return p
		}
	}
	panic("no page " + name)
}

func TestParseListing_Filters(t *testing.T) {
	page := pageByName(models.CategoryCompetitions)

	rows, err := portal.ParseListing(strings.NewReader(listingHTML), page, "https://vpn.example")
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows after filters, got %d: %+v", len(rows), rows)
	}

	want := models.ListingRow{Title: "关于举办程序设计竞赛的通知", Link: "https://vpn.example/sjjx/xkjs/1.html", Date: "2026-03-01"}
	if rows[0] != want {
		t.Errorf("Expected %+v, got %+v", want, rows[0])
	}
	if rows[1].Link != "https://other.example/4.html" || rows[1].Date != "2026-02-01" {
		t.Errorf("Unexpected second row %+v", rows[1])
	}
}

func TestParseListing_NoFiltersOnOtherPages(t *testing.T) {
	page := pageByName(models.CategoryNotices)

	rows, err := portal.ParseListing(strings.NewReader(listingHTML), page, "https://vpn.example")
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("Expected all 4 complete rows, got %d", len(rows))
	}
}

func TestParseListing_PrefersAjaxList(t *testing.T) {
	page := pageByName(models.CategoryNotices)

	rows, err := portal.ParseListing(strings.NewReader(ajaxListingHTML), page, "https://vpn.example")
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "2026年春季选课安排" || rows[0].Date != "2026-01-05" {
		t.Errorf("Expected the ajax list row, got %+v", rows)
	}
}

func TestParseListing_MissingTable(t *testing.T) {
	page := pageByName(models.CategoryExams)

	_, err := portal.ParseListing(strings.NewReader("<html><body><form id=login></form></body></html>"), page, "")
	if !errors.Is(err, portal.ErrListingNotFound) {
		t.Errorf("Expected ErrListingNotFound, got %v", err)
	}
}

func TestParseDetail(t *testing.T) {
	detail, err := portal.ParseDetail(strings.NewReader(detailHTML), "https://vpn.example/jwgl/jwtz/9.html")
	if err != nil {
		t.Fatalf("ParseDetail failed: %v", err)
	}

	wantContent := "各学院：\n报名时间：2026年3月10日至2026-03-20\n期末考试安排\n见附件"
	if detail.Content != wantContent {
		t.Errorf("Expected content %q, got %q", wantContent, detail.Content)
	}

	wantAtt := []string{"https://vpn.example/files/plan.pdf", "https://cdn.example/a/notice.PDF?v=2"}
	if fmt.Sprint(detail.Attachments) != fmt.Sprint(wantAtt) {
		t.Errorf("Expected attachments %v, got %v", wantAtt, detail.Attachments)
	}
}

func TestParseDetail_TextareaFallback(t *testing.T) {
	html := `<div id="textarea">实习报到<br>须知</div>`
	detail, err := portal.ParseDetail(strings.NewReader(html), "")
	if err != nil {
		t.Fatalf("ParseDetail failed: %v", err)
	}
	if detail.Content != "实习报到\n须知" {
		t.Errorf("Unexpected content %q", detail.Content)
	}
}

func TestPageKeywords(t *testing.T) {
	tests := []struct {
		name     models.Category
		title    string
		content  string
		expected []string
	}{
		{models.CategoryExams, "期末安排", "考场见附件", []string{"期末考试", "考场安排"}},
		{models.CategoryInternships, "实习基地报到", "", []string{"实习", "实习基地", "报到"}},
		{models.CategoryNotices, "放假", "无关内容", nil},
		{models.CategoryCompetitions, "设计竞赛通知", "", []string{"竞赛", "设计", "通知"}},
	}

	for _, tt := range tests {
		got := pageByName(tt.name).Keywords(tt.title, tt.content)
		if fmt.Sprint(got) != fmt.Sprint(tt.expected) && !(len(got) == 0 && len(tt.expected) == 0) {
			t.Errorf("%s %q: expected %v, got %v", tt.name, tt.title, tt.expected, got)
		}
	}
}

func TestDefaultPages(t *testing.T) {
	pages := portal.DefaultPages("https://portal.example")
	if len(pages) != 4 {
		t.Fatalf("Expected 4 pages, got %d", len(pages))
	}
	if pages[1].URL != "https://portal.example//jwgl/jwtz/index.html?vpn-0" {
		t.Errorf("Unexpected URL %s", pages[1].URL)
	}
	for i, p := range pages {
		if p.Name != models.Categories[i] {
			t.Errorf("Page %d: expected %s, got %s", i, models.Categories[i], p.Name)
		}
		if p.TableClass != "datalist" {
			t.Errorf("Page %s: unexpected table class %s", p.Name, p.TableClass)
		}
	}
}

func TestFromCatalog(t *testing.T) {
	pages, linkBase, err := portal.FromCatalog(&config.Catalog{})
	if err != nil || len(pages) != 4 || linkBase != portal.DefaultLinkBase {
		t.Errorf("Expected defaults, got %d pages, %s (%v)", len(pages), linkBase, err)
	}

	cat := &config.Catalog{Portal: config.PortalCatalog{
		BaseURL:  "https://p.example",
		LinkBase: "https://l.example",
		Pages: []config.PageEntry{{
			Category: "exams",
			Path:     "/ksgl/kstz/",
			Rules:    []config.RuleEntry{{Trigger: "补考"}, {Trigger: "期末", Emit: []string{"期末考试"}}},
		}},
	}}
	pages, linkBase, err = portal.FromCatalog(cat)
	if err != nil {
		t.Fatalf("FromCatalog failed: %v", err)
	}
	if len(pages) != 1 || linkBase != "https://l.example" {
		t.Fatalf("Unexpected result %+v %s", pages, linkBase)
	}
	if pages[0].URL != "https://p.example//ksgl/kstz/index.html?vpn-0" || pages[0].TableClass != "datalist" {
		t.Errorf("Unexpected page %+v", pages[0])
	}
	if got := pages[0].Keywords("补考期末", ""); fmt.Sprint(got) != "[补考 期末考试]" {
		t.Errorf("Unexpected keywords %v", got)
	}

	cat.Portal.Pages[0].Category = "sports"
	if _, _, err := portal.FromCatalog(cat); err == nil {
		t.Error("Expected error for unknown category")
	}
}
