package classifier_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/modaudit/internal/classifier"
	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(disallowed, permitted map[string]string) *dataset.Store {
	st := dataset.NewStore()
	st.ReplaceAll(disallowed, permitted, models.SourceRemote)
	return st
}

func meta(keys ...string) models.Metadata {
	m := make(models.Metadata, 0, len(keys))
	for _, k := range keys {
		m = append(m, models.Property{Key: k, Value: "1"})
	}
	return m
}

func TestClassify_Example(t *testing.T) {
	st := newStore(map[string]string{"x1": "Phantom"}, map[string]string{"hud": "HUD Mod"})
	cls := classifier.NewClassifier(st, nil, quietLogger())

	r := cls.Classify("rig-1", "monke", meta("x1", "hud", "foo"))

	assert.Equal(t, []string{"x1", "hud", "foo"}, r.AllEntries)
	assert.Equal(t, []string{"Phantom"}, r.Disallowed)
	assert.Equal(t, []string{"HUD Mod"}, r.Permitted)
	assert.Equal(t, []string{"foo"}, r.Unrecognized)
	assert.True(t, r.HasDisallowed())
	assert.True(t, r.HasAny())
	assert.Equal(t, "monke", r.DisplayName)
	assert.Equal(t, "rig-1", r.Handle)
}

func TestClassify_Cases(t *testing.T) {
	st := newStore(
		map[string]string{"x1": "Phantom", "both": "Cheat Name"},
		map[string]string{"hud": "HUD Mod", "both": "Mod Name", "GS": "Old GShirts"},
	)
	cls := classifier.NewClassifier(st, nil, quietLogger())

	tests := []struct {
		name         string
		meta         models.Metadata
		all          []string
		disallowed   []string
		permitted    []string
		unrecognized []string
	}{
		{
			name:         "nil metadata",
			meta:         nil,
			all:          []string{},
			disallowed:   []string{},
			permitted:    []string{},
			unrecognized: []string{},
		},
		{
			name:         "reserved key only",
			meta:         meta(classifier.ReservedOnboardingKey),
			all:          []string{},
			disallowed:   []string{},
			permitted:    []string{},
			unrecognized: []string{},
		},
		{
			name:         "disallowed wins over permitted",
			meta:         meta("both"),
			all:          []string{"both"},
			disallowed:   []string{"Cheat Name"},
			permitted:    []string{},
			unrecognized: []string{},
		},
		{
			name:         "keys are case sensitive",
			meta:         meta("X1", "gs"),
			all:          []string{"X1", "gs"},
			disallowed:   []string{},
			permitted:    []string{},
			unrecognized: []string{"X1", "gs"},
		},
		{
			name:         "empty key skipped",
			meta:         meta("", "GS"),
			all:          []string{"GS"},
			disallowed:   []string{},
			permitted:    []string{"Old GShirts"},
			unrecognized: []string{},
		},
		{
			name:         "enumeration order preserved",
			meta:         meta("foo", "GS", "didTutorial", "hud", "bar"),
			all:          []string{"foo", "GS", "hud", "bar"},
			disallowed:   []string{},
			permitted:    []string{"Old GShirts", "HUD Mod"},
			unrecognized: []string{"foo", "bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cls.Classify("h", "", tt.meta)
			assert.Equal(t, tt.all, r.AllEntries)
			assert.Equal(t, tt.disallowed, r.Disallowed)
			assert.Equal(t, tt.permitted, r.Permitted)
			assert.Equal(t, tt.unrecognized, r.Unrecognized)
			assert.Equal(t, models.UnknownName, r.DisplayName)
		})
	}
}

func TestClassify_CustomReservedKeys(t *testing.T) {
	st := newStore(nil, nil)
	cls := classifier.NewClassifier(st, []string{"platform", "color"}, quietLogger())

	r := cls.Classify("h", "n", meta("platform", "didTutorial", "color"))
	assert.Equal(t, []string{"didTutorial"}, r.AllEntries)
	assert.Equal(t, []string{"didTutorial"}, r.Unrecognized)
}

func TestClassify_EmptyStoreIsUnrecognized(t *testing.T) {
	cls := classifier.NewClassifier(dataset.NewStore(), nil, quietLogger())
	r := cls.Classify("h", "n", meta("ObsidianMC", "GFaces"))
	assert.Equal(t, []string{"ObsidianMC", "GFaces"}, r.Unrecognized)
	assert.False(t, r.HasDisallowed())
}
