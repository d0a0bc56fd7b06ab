package models

// ListingRow is one row of a portal listing table
type ListingRow struct {
	Title string
	Link  string
	Date  string
}

// Detail is the parsed body of a portal detail page
type Detail struct {
	Content     string
	Attachments []string
}

// CategoryStats holds per-source record counts for one category
type CategoryStats map[Source]int
