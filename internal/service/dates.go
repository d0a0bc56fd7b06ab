package service

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日",
	"2006.1.2",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	"2006年1月2日 15:04:05",
	"2006.1.2 15:04:05",
	"2006-1-2 15:04",
	"2006/1/2 15:04",
	"2006年1月2日 15:04",
	"2006.1.2 15:04",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StandardizeDate rewrites any recognized date spelling as YYYY-MM-DD and
// returns unrecognized input unchanged.
func StandardizeDate(s string) string {
	if t, ok := parseDate(s); ok {
		return t.Format("2006-01-02")
	}
	return s
}

func standardizeDateList(s string) string {
	if s == "" {
		return s
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = StandardizeDate(p)
	}
	return strings.Join(parts, ",")
}
