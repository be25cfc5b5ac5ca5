package models

import "time"

// File upload statuses.
const (
	FileStatusUploaded = "uploaded"
	FileStatusOrphaned = "orphaned"
)

// File is the bookkeeping row for one uploaded photo blob. A file whose blob
// could not be removed during a permanent delete is marked orphaned.
type File struct {
	StorageKey string    `json:"storageKey"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
