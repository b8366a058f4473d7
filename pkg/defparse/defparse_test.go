package defparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/modaudit/pkg/defparse"
)

const exampleDoc = `{"Known Cheats":{"x1":"Phantom"},"Known Mods":{"hud":"HUD Mod"}}`

func TestParse_Example(t *testing.T) {
	defs, err := defparse.Parse(exampleDoc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x1": "Phantom"}, defs.Disallowed)
	assert.Equal(t, map[string]string{"hud": "HUD Mod"}, defs.Permitted)
}

func TestExtractDocument(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "raw body",
			body: "  " + exampleDoc + "\n",
			want: exampleDoc,
		},
		{
			name: "pre block",
			body: "<html><body><h1>Data</h1><pre>\n" + exampleDoc + "\n</pre><p>footer</p></body></html>",
			want: exampleDoc,
		},
		{
			name: "upper case tag",
			body: "<HTML><PRE>" + exampleDoc + "</PRE></HTML>",
			want: exampleDoc,
		},
		{
			name: "escaped quotes",
			body: `<pre>{&quot;Known Cheats&quot;:{&quot;x1&quot;:&quot;Phantom&quot;}}</pre>`,
			want: `{"Known Cheats":{"x1":"Phantom"}}`,
		},
		{
			name: "first pre wins",
			body: "<pre>first</pre><pre>second</pre>",
			want: "first",
		},
		{
			name: "markup inside pre kept verbatim",
			body: `<pre>{"Known Cheats":{"x1":"<Phantom>","x2":"Aim<br/>Bot"}}<!-- v2 --></pre>`,
			want: `{"Known Cheats":{"x1":"<Phantom>","x2":"Aim<br/>Bot"}}<!-- v2 -->`,
		},
		{
			name: "unterminated pre falls back to body",
			body: "<pre>" + exampleDoc,
			want: "<pre>" + exampleDoc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defparse.ExtractDocument(tt.body))
		})
	}
}

func TestParseSection_FirstKeyWins(t *testing.T) {
	doc := `"Known Mods": { "GS": "Old GShirts", "GS": "Other", "GC": "GCraft" }`
	entries, ok := defparse.ParseSection(doc, defparse.SectionMods)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"GS": "Old GShirts", "GC": "GCraft"}, entries)
}

func TestParseSection_Tolerance(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		found bool
		want  map[string]string
	}{
		{
			name:  "trailing commas and comments",
			doc:   "\"Known Cheats\": {\n  \"void\": \"Void\", // menu\n  \"elux\": \"Elux\",\n}\n",
			found: true,
			want:  map[string]string{"void": "Void", "elux": "Elux"},
		},
		{
			name:  "non string values skipped",
			doc:   `"Known Cheats": {"a": 1, "b": "B", "c": true}`,
			found: true,
			want:  map[string]string{"b": "B"},
		},
		{
			name:  "body ends at first closing brace",
			doc:   `"Known Cheats": {"a": "A"} "b": "B"}`,
			found: true,
			want:  map[string]string{"a": "A"},
		},
		{
			name:  "missing header",
			doc:   `{"Other": {"a": "A"}}`,
			found: false,
			want:  map[string]string{},
		},
		{
			name:  "unbalanced open brace",
			doc:   `"Known Cheats": {"a": "A"`,
			found: false,
			want:  map[string]string{},
		},
		{
			name:  "empty section",
			doc:   `"Known Cheats": {}`,
			found: true,
			want:  map[string]string{},
		},
		{
			name:  "case sensitive header",
			doc:   `"known cheats": {"a": "A"}`,
			found: false,
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, ok := defparse.ParseSection(tt.doc, defparse.SectionCheats)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, entries)
		})
	}
}

func TestParse_OneSectionMissing(t *testing.T) {
	defs, err := defparse.Parse(`{"Known Mods": {"hud": "HUD Mod"}, "Notes": "x"}`)
	require.NoError(t, err)
	assert.Empty(t, defs.Disallowed)
	assert.NotNil(t, defs.Disallowed)
	assert.Equal(t, "HUD Mod", defs.Permitted["hud"])
}

func TestParse_NoSections(t *testing.T) {
	_, err := defparse.Parse("<html>maintenance</html>")
	require.ErrorIs(t, err, defparse.ErrNoSections)
}

func TestParseBody_HTMLWrapped(t *testing.T) {
	body := "<!doctype html><html><body><pre>" +
		"{\n  \"Known Cheats\": {\n    \"ObsidianMC\": \"Obsidian\"\n  },\n" +
		"  \"Known Mods\": {\n    \"GFaces\": \"GFaces\",\n    \"github.com/maroon-shadow/SimpleBoards\": \"Simple Boards\"\n  }\n}" +
		"</pre></body></html>"

	defs, err := defparse.ParseBody(body)
	require.NoError(t, err)
	assert.Equal(t, "Obsidian", defs.Disallowed["ObsidianMC"])
	assert.Equal(t, "Simple Boards", defs.Permitted["github.com/maroon-shadow/SimpleBoards"])
	assert.Len(t, defs.Permitted, 2)
}

func TestParseBody_MarkupInDisplayName(t *testing.T) {
	body := `<html><pre>{"Known Cheats":{"x1":"<Phantom>","a&amp;b":"AB"},"Known Mods":{"hud":"<b>HUD</b>"}}</pre></html>`

	defs, err := defparse.ParseBody(body)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x1": "<Phantom>", "a&b": "AB"}, defs.Disallowed)
	assert.Equal(t, map[string]string{"hud": "<b>HUD</b>"}, defs.Permitted)
}
