package models

import "time"

// DatasetSource records where the reference tables came from.
type DatasetSource string

const (
	SourceNone     DatasetSource = "none"
	SourceRemote   DatasetSource = "remote"
	SourceFallback DatasetSource = "fallback"
)

// DetectionEvent is raised the first time a participant is found with disallowed
// entries in a session.
type DetectionEvent struct {
	ID         string                `json:"id"`
	Session    string                `json:"session"`
	UserID     string                `json:"user_id"`
	DetectedAt time.Time             `json:"detected_at"`
	Result     *ClassificationResult `json:"result"`
}

// DatasetCounts summarizes a loaded reference dataset.
type DatasetCounts struct {
	Source     DatasetSource `json:"source"`
	Disallowed int           `json:"cheats"`
	Permitted  int           `json:"mods"`
}

// RoomSummary counts the cached results for the active session.
type RoomSummary struct {
	InSession   bool   `json:"in_session"`
	Session     string `json:"session,omitempty"`
	Total       int    `json:"total"`
	WithEntries int    `json:"with_entries"`
	Disallowed  int    `json:"disallowed"`
}
