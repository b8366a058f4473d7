// Package defparse extracts reference tables from the hand-maintained definitions
// document published by the dataset endpoint.
//
// The document is quasi-JSON and is not guaranteed to be well formed, so it is
// scanned rather than decoded. Tolerance contract:
//
//   - the body may be wrapped in HTML; the text of the first <pre> element is used
//     when one is present, otherwise the whole body
//   - only the named sections are read; other sections and commentary are ignored
//   - a section body ends at its first closing brace
//   - inside a section only "key": "value" pairs are read; anything else is skipped
//   - the first occurrence of a key wins
//   - Parse never panics past this package; failures are returned as errors
package defparse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Section names used by the definitions document.
const (
	SectionCheats = "Known Cheats"
	SectionMods   = "Known Mods"
)

// ErrNoSections is returned when a document contains none of the known sections.
var ErrNoSections = errors.New("no known sections in document")

var entryPattern = regexp.MustCompile(`"([^"]+)"\s*:\s*"([^"]+)"`)

// Definitions holds the two reference tables read from a document.
type Definitions struct {
	Disallowed map[string]string
	Permitted  map[string]string
}

// ExtractDocument returns the text of the first <pre> element in body, or the
// trimmed body itself when there is no complete <pre> element. Markup nested in
// the <pre> element is kept verbatim; only character references are decoded.
func ExtractDocument(body string) string {
	z := html.NewTokenizer(strings.NewReader(body))
	var (
		inPre bool
		sb    strings.Builder
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF before </pre>: an unterminated <pre> counts as no <pre> at all.
			return strings.TrimSpace(body)
		case html.TextToken:
			if inPre {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken,
			html.CommentToken, html.DoctypeToken:
			// Raw is invalidated by TagName, so copy it first.
			raw := string(z.Raw())
			var isPre bool
			if tt == html.StartTagToken || tt == html.EndTagToken {
				name, _ := z.TagName()
				isPre = string(name) == "pre"
			}
			switch {
			case isPre && tt == html.StartTagToken && !inPre:
				inPre = true
			case isPre && tt == html.EndTagToken && inPre:
				return strings.TrimSpace(sb.String())
			case inPre:
				sb.WriteString(raw)
			}
		}
	}
}

// ParseSection reads the "key": "value" pairs of the named section. The boolean
// result is false when the section header is absent.
func ParseSection(doc, name string) (map[string]string, bool) {
	entries := make(map[string]string)

	pattern := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*\{([^}]*)\}`)
	m := pattern.FindStringSubmatch(doc)
	if m == nil {
		return entries, false
	}

	for _, pair := range entryPattern.FindAllStringSubmatch(m[1], -1) {
		key, value := pair[1], pair[2]
		if _, exists := entries[key]; !exists {
			entries[key] = value
		}
	}
	return entries, true
}

// Parse reads both reference tables from an already extracted document. A missing
// section yields an empty table; a document with neither section is an error.
func Parse(doc string) (defs Definitions, err error) {
	defer func() {
		if r := recover(); r != nil {
			defs = Definitions{}
			err = fmt.Errorf("parsing definitions: %v", r)
		}
	}()

	cheats, hasCheats := ParseSection(doc, SectionCheats)
	mods, hasMods := ParseSection(doc, SectionMods)
	if !hasCheats && !hasMods {
		return Definitions{}, ErrNoSections
	}

	return Definitions{Disallowed: cheats, Permitted: mods}, nil
}

// ParseBody extracts the document from a raw response body and parses it.
func ParseBody(body string) (Definitions, error) {
	return Parse(ExtractDocument(body))
}
