// Package model defines core data structures for symgrep.
package model

// TagKind indicates whether a tag is a definition or a reference.
type TagKind string

const (
	Definition TagKind = "def"
	Reference  TagKind = "ref"
)

// SymbolKind indicates the syntactic kind of a symbol. It is the suffix of the
// query capture that produced the tag (@definition.function -> function).
type SymbolKind string

const (
	Function SymbolKind = "function"
	Method   SymbolKind = "method"
	Call     SymbolKind = "call"
)

// Tag represents a single symbol occurrence extracted from source code.
//
// Line and Column locate the start of the matched name and are 1-based.
// StartByte and EndByte delimit the whole tagged node (the definition or the
// call expression) as a half-open range into the file contents.
type Tag struct {
	Path       string
	Name       string
	Kind       TagKind
	SymbolKind SymbolKind
	Line       int
	Column     int
	StartByte  int
	EndByte    int
}

// Text returns the tagged span of source.
func (t Tag) Text(source []byte) []byte {
	return source[t.StartByte:t.EndByte]
}
