package entity

import "time"

// Well-known sync cursor keys. Each job resumes from its own key; the
// delta and fallback strategies never share one.
const (
	CursorImportNextPage   = "import:next_page"
	CursorFallbackNextPage = "fallback:next_page"
	CursorStockLastSync    = "stock:last_sync"
)

// SyncCursor is one resumable piece of coordination state. The value
// is the sole source of truth for resuming work; absence means "start
// from the beginning".
type SyncCursor struct {
	Key       string
	Value     string
	UpdatedAt *time.Time
}
