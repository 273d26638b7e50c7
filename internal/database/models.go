package database

import "time"

// ImportStatus is the lifecycle state of an import run.
type ImportStatus string

const (
	ImportRunning   ImportStatus = "running"
	ImportSucceeded ImportStatus = "succeeded"
	ImportFailed    ImportStatus = "failed"
	// ImportRejected marks uploads refused before any state changed, such as
	// archives with unsafe entries.
	ImportRejected ImportStatus = "rejected"
)

// ImportRecord is one upload as stored in the imports table.
type ImportRecord struct {
	ID         string       `json:"id"`
	Status     ImportStatus `json:"status"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt,omitempty"`
	Items      int          `json:"items"`
	Groups     int          `json:"groups"`
	Images     int          `json:"images"`
	Bytes      int64        `json:"bytes"`
	Error      string       `json:"error,omitempty"`
	Log        []string     `json:"log"`
}

// Duration is how long the run took, or zero while it is running.
func (r ImportRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
