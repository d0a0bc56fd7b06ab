package models

import (
	"time"
)

// CrawlStatus represents the state of a portal crawl run
type CrawlStatus string

const (
	CrawlStatusRunning   CrawlStatus = "running"
	CrawlStatusCompleted CrawlStatus = "completed"
	CrawlStatusFailed    CrawlStatus = "failed"
)

// CrawlRun records one full refresh of the web store
type CrawlRun struct {
	ID             string      `json:"run_id" db:"id"`
	Status         CrawlStatus `json:"status" db:"status"`
	RowsSeen       int         `json:"rows_seen" db:"rows_seen"`
	RowsStored     int         `json:"rows_stored" db:"rows_stored"`
	DetailFailures int         `json:"detail_failures" db:"detail_failures"`
	DurationMs     int64       `json:"duration_ms,omitempty" db:"duration_ms"`
	Error          string      `json:"error,omitempty" db:"error"`
	StartedAt      time.Time   `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}
