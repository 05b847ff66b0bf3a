package entity

import "strings"

// TextMap maps recognized text to the box it was read from. Built fresh each
// extractor cycle and replaced wholesale. Duplicate cleaned strings collapse
// to the most recently extracted box; the map is a lossy consolidation, not
// a full record of every OCR result.
type TextMap struct {
	Generation uint64
	Entries    map[string]Box
}

// NewTextMap returns an empty generation-0 map, the cold-start value.
func NewTextMap() *TextMap {
	return &TextMap{Entries: make(map[string]Box)}
}

// Put records text against its originating box. Empty text is ignored.
func (m *TextMap) Put(text string, b Box) {
	if text == "" {
		return
	}
	m.Entries[text] = b
}

// Len returns the number of distinct recognized strings.
func (m *TextMap) Len() int { return len(m.Entries) }

// CleanText normalizes raw OCR output: newlines are stripped and every
// non-printable or non-ASCII byte is dropped.
func CleanText(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		if r == '\n' || r == '\r' {
			continue
		}
		if r < 0x20 || r > 0x7e {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}
