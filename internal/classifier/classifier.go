package classifier

import (
	"log/slog"

	"github.com/ajitpratap0/modaudit/internal/models"
)

// ReservedOnboardingKey is published by every client that finished onboarding
// and says nothing about installed modifications.
const ReservedOnboardingKey = "didTutorial"

// Tables is the lookup surface the classifier reads. *dataset.Store implements it.
type Tables interface {
	Disallowed(key string) (string, bool)
	Permitted(key string) (string, bool)
}

// Classifier sorts a participant's reported entries into disallowed, permitted and unrecognized.
type Classifier interface {
	Classify(handle, displayName string, meta models.Metadata) *models.ClassificationResult
}

// MetadataClassifier classifies public metadata keys against reference tables.
type MetadataClassifier struct {
	tables   Tables
	reserved map[string]struct{}
	logger   *slog.Logger
}

// NewClassifier creates a classifier over tables. A nil reserved list selects
// ReservedOnboardingKey.
func NewClassifier(tables Tables, reserved []string, logger *slog.Logger) *MetadataClassifier {
	if reserved == nil {
		reserved = []string{ReservedOnboardingKey}
	}
	set := make(map[string]struct{}, len(reserved))
	for _, k := range reserved {
		set[k] = struct{}{}
	}
	return &MetadataClassifier{tables: tables, reserved: set, logger: logger}
}

// Classify walks meta in enumeration order. Each counted key lands in exactly one
// output list; the disallowed table is consulted before the permitted one, so a
// key present in both is disallowed. Nil metadata yields an empty result.
func (c *MetadataClassifier) Classify(handle, displayName string, meta models.Metadata) *models.ClassificationResult {
	result := models.NewClassificationResult(handle, displayName)

	for _, prop := range meta {
		key := prop.Key
		if key == "" {
			continue
		}
		if _, skip := c.reserved[key]; skip {
			continue
		}

		result.AllEntries = append(result.AllEntries, key)

		if name, ok := c.tables.Disallowed(key); ok {
			result.Disallowed = append(result.Disallowed, name)
		} else if name, ok := c.tables.Permitted(key); ok {
			result.Permitted = append(result.Permitted, name)
		} else {
			result.Unrecognized = append(result.Unrecognized, key)
		}
	}

	c.logger.Debug("classified participant",
		"handle", handle,
		"entries", len(result.AllEntries),
		"disallowed", len(result.Disallowed),
		"permitted", len(result.Permitted),
		"unrecognized", len(result.Unrecognized),
	)
	return result
}
