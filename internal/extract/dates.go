package extract

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// DateLayout is the format of every extracted date
const DateLayout = "2006-01-02"

type dateKind int

const (
	monthDay dateKind = iota
	chineseMonthDay
	nextMonthDay
	bareDay
)

type datePattern struct {
	re   *regexp.Regexp
	kind dateKind
}

// Ordered most specific first. A span of text matched by an earlier pattern
// is not matched again by a later one.
var datePatterns = []datePattern{
	{regexp.MustCompile(`截止到(\d{1,2})月(\d{1,2})[号日]`), monthDay},
	{regexp.MustCompile(`截止日期[：:]\s*(\d{1,2})月(\d{1,2})[号日]`), monthDay},
	{regexp.MustCompile(`报名截止[：:]\s*(\d{1,2})月(\d{1,2})[号日]`), monthDay},
	{regexp.MustCompile(`下个月(\d{1,2})[号日]`), nextMonthDay},
	{regexp.MustCompile(`(\d{1,2})月(\d{1,2})[号日]`), monthDay},
	{regexp.MustCompile(`(十一|十二|一|二|三|四|五|六|七|八|九|十)月(\d{1,2})[号日]`), chineseMonthDay},
	{regexp.MustCompile(`(\d{1,2})\.(\d{1,2})`), monthDay},
	{regexp.MustCompile(`(\d{1,2})[号日]`), bareDay},
}

var chineseMonths = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6,
	"七": 7, "八": 8, "九": 9, "十": 10, "十一": 11, "十二": 12,
}

type dateMatch struct {
	start, end int
	date       time.Time
	valid      bool
}

// ExtractDates finds day-precision dates mentioned in text and returns them
// as YYYY-MM-DD in order of appearance. The year is always taken from now,
// so a December notice naming "1月5号" resolves to January of the current
// year. Repeated mentions are all returned, but each span of text yields
// at most one date: "4月8号" is read by the month-day pattern only and not
// again as a bare day, unlike collecting every match of every pattern.
//
// Matches with a month outside 1-12 or a day outside 1-31 are skipped.
// Days past the end of a month (2月30日) roll over into the next month.
func ExtractDates(text string, now time.Time) []string {
	var matches []dateMatch

	for _, p := range datePatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := idx[0], idx[1]
			if overlaps(matches, start, end) {
				continue
			}
			// Out of range matches still claim their span.
			date, ok := resolveDate(p.kind, text, idx, now)
			matches = append(matches, dateMatch{start: start, end: end, date: date, valid: ok})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	dates := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.valid {
			dates = append(dates, m.date.Format(DateLayout))
		}
	}
	return dates
}

func overlaps(matches []dateMatch, start, end int) bool {
	for _, m := range matches {
		if start < m.end && m.start < end {
			return true
		}
	}
	return false
}

func resolveDate(kind dateKind, text string, idx []int, now time.Time) (time.Time, bool) {
	group := func(n int) string { return text[idx[2*n]:idx[2*n+1]] }

	year, month := now.Year(), int(now.Month())
	var day int

	switch kind {
	case monthDay:
		month, _ = strconv.Atoi(group(1))
		day, _ = strconv.Atoi(group(2))
	case chineseMonthDay:
		month = chineseMonths[group(1)]
		day, _ = strconv.Atoi(group(2))
	case nextMonthDay:
		month++
		if month > 12 {
			month = 1
			year++
		}
		day, _ = strconv.Atoi(group(1))
	case bareDay:
		day, _ = strconv.Atoi(group(1))
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()), true
}
