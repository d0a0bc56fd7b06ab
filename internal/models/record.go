package models

import (
	"strings"
)

// Category is one of the four fixed notice collections
type Category string

const (
	CategoryCompetitions Category = "competitions"
	CategoryNotices      Category = "notices"
	CategoryExams        Category = "exams"
	CategoryInternships  Category = "college_internships"
)

// Categories lists every category in canonical order
var Categories = []Category{
	CategoryCompetitions,
	CategoryNotices,
	CategoryExams,
	CategoryInternships,
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Table returns the storage table backing the category
func (c Category) Table() string {
	return string(c)
}

// Source identifies which ingestion path produced a record
type Source string

const (
	SourceChat Source = "QQ群"
	SourceWeb  Source = "官网"
)

// ParseSource maps user supplied labels onto a Source
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case strings.ToLower(string(SourceChat)), "chat", "qq":
		return SourceChat, true
	case string(SourceWeb), "web", "portal":
		return SourceWeb, true
	}
	return "", false
}

// Record is one stored announcement
type Record struct {
	ID          int64    `json:"id" db:"id"`
	Title       string   `json:"title" db:"title"`
	Content     string   `json:"content" db:"content"`
	Keywords    string   `json:"keywords" db:"keywords"`
	Link        string   `json:"link" db:"link"`
	PublishDate string   `json:"publish_date" db:"publish_date"`
	EventDate   string   `json:"event_date" db:"event_date"`
	Views       int      `json:"views" db:"views"`
	Favorites   int      `json:"favorites" db:"favorites"`
	ImageURL    string   `json:"image_url" db:"image_url"`
	Category    Category `json:"category" db:"category"`
	Source      Source   `json:"source" db:"-"`
	Table       Category `json:"table_name,omitempty" db:"-"`
}

// Classified pairs a record with the categories it fans out to
type Classified struct {
	Record
	Categories []Category
}

// RecordFilter narrows list and search queries
type RecordFilter struct {
	Keyword  string
	Category Category
}

// JoinList serializes a list field the way it is stored: comma-joined,
// duplicates and empty entries removed, first occurrence wins.
func JoinList(items []string) string {
	return strings.Join(UniqueStrings(items), ",")
}

// UniqueStrings drops empty and repeated entries while keeping order
func UniqueStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
