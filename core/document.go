package core

import "strings"

// Document is the script text as seen by the engine. Offsets are byte
// offsets into the text.
type Document struct {
	text string
}

// NewDocument returns a document holding text.
func NewDocument(text string) *Document { return &Document{text: text} }

// Text returns the full script.
func (d *Document) Text() string { return d.text }

// Len returns the length of the script in bytes.
func (d *Document) Len() int { return len(d.text) }

// Apply removes `removed` bytes at position and inserts text there. Out of
// range arguments are clamped to the document.
func (d *Document) Apply(position, removed int, inserted string) {
	position = clamp(position, 0, len(d.text))
	end := clamp(position+removed, position, len(d.text))
	d.text = d.text[:position] + inserted + d.text[end:]
}

// EndOfLine returns the offset of the line break ending the line that
// contains offset, or the document length on the last line.
func (d *Document) EndOfLine(offset int) int {
	offset = clamp(offset, 0, len(d.text))
	if i := strings.IndexByte(d.text[offset:], '\n'); i >= 0 {
		return offset + i
	}
	return len(d.text)
}

// LineStart returns the offset of the first byte of the line containing
// offset.
func (d *Document) LineStart(offset int) int {
	offset = clamp(offset, 0, len(d.text))
	return strings.LastIndexByte(d.text[:offset], '\n') + 1
}

// Slice returns the text covered by span, clamped to the document.
func (d *Document) Slice(s Span) string {
	start := clamp(s.Start, 0, len(d.text))
	end := clamp(s.End, start, len(d.text))
	return d.text[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
