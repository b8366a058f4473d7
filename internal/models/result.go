package models

import (
	"fmt"
	"strings"
)

// Status summarizes a classification result for display.
type Status string

const (
	StatusIllegal Status = "illegal"
	StatusLegal   Status = "legal"
	StatusUnknown Status = "unknown"
	StatusNone    Status = "none"
)

// ValidStatuses is the set of all valid statuses.
var ValidStatuses = []Status{
	StatusIllegal,
	StatusLegal,
	StatusUnknown,
	StatusNone,
}

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// UnknownName is the display name used when a participant's nickname cannot be resolved.
const UnknownName = "Unknown"

// Property is a single entry of a participant's public metadata.
type Property struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Metadata is a participant's public metadata in host enumeration order.
type Metadata []Property

// Keys returns the metadata keys in enumeration order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, p := range m {
		keys = append(keys, p.Key)
	}
	return keys
}

// ClassificationResult is the outcome of classifying one participant at one point in time.
// Every key in AllEntries appears in exactly one of Disallowed, Permitted or Unrecognized.
type ClassificationResult struct {
	Handle       string   `json:"handle"`
	DisplayName  string   `json:"display_name"`
	UserID       string   `json:"user_id,omitempty"`
	ActorNumber  int      `json:"actor_number"`
	AllEntries   []string `json:"all_entries"`
	Disallowed   []string `json:"disallowed"`
	Permitted    []string `json:"permitted"`
	Unrecognized []string `json:"unrecognized"`
}

// NewClassificationResult returns an empty result with non-nil lists.
func NewClassificationResult(handle, displayName string) *ClassificationResult {
	if displayName == "" {
		displayName = UnknownName
	}
	return &ClassificationResult{
		Handle:       handle,
		DisplayName:  displayName,
		ActorNumber:  -1,
		AllEntries:   []string{},
		Disallowed:   []string{},
		Permitted:    []string{},
		Unrecognized: []string{},
	}
}

// HasDisallowed reports whether any entry matched the disallowed table.
func (r *ClassificationResult) HasDisallowed() bool {
	return len(r.Disallowed) > 0
}

// HasAny reports whether the participant published any countable entries.
func (r *ClassificationResult) HasAny() bool {
	return len(r.AllEntries) > 0
}

// Status derives the display status of the result.
func (r *ClassificationResult) Status() Status {
	switch {
	case r.HasDisallowed():
		return StatusIllegal
	case len(r.Permitted) > 0 && len(r.Unrecognized) == 0:
		return StatusLegal
	case len(r.Unrecognized) > 0:
		return StatusUnknown
	default:
		return StatusNone
	}
}

// StatusText renders a short label with the count of the dominant category.
func (r *ClassificationResult) StatusText() string {
	switch {
	case r.HasDisallowed():
		return fmt.Sprintf("ILLEGAL (%d)", len(r.Disallowed))
	case len(r.Permitted) > 0:
		return fmt.Sprintf("Legal (%d)", len(r.Permitted))
	case len(r.Unrecognized) > 0:
		return fmt.Sprintf("Unknown (%d)", len(r.Unrecognized))
	default:
		return "No Mods"
	}
}

// FormatEntries renders every classified entry as "[tag:name]", disallowed first.
func (r *ClassificationResult) FormatEntries() string {
	parts := make([]string, 0, len(r.AllEntries))
	for _, name := range r.Disallowed {
		parts = append(parts, "[illegal:"+name+"]")
	}
	for _, name := range r.Permitted {
		parts = append(parts, "[legal:"+name+"]")
	}
	for _, key := range r.Unrecognized {
		parts = append(parts, "[unknown:"+key+"]")
	}
	return strings.Join(parts, " ")
}

// Clone returns a deep copy so cached results cannot be mutated through a query.
func (r *ClassificationResult) Clone() *ClassificationResult {
	if r == nil {
		return nil
	}
	c := *r
	c.AllEntries = append([]string{}, r.AllEntries...)
	c.Disallowed = append([]string{}, r.Disallowed...)
	c.Permitted = append([]string{}, r.Permitted...)
	c.Unrecognized = append([]string{}, r.Unrecognized...)
	return &c
}
