// Package lang provides a language registry mapping file extensions to
// tree-sitter languages, their embedded highlight queries, and their tag
// pattern templates.
//
// The registry is closed: each supported language is registered by an init
// function in its own file, and adding a language means adding a file here
// together with its two query files.
package lang

import (
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"text/template"

	sitter "github.com/smacker/go-tree-sitter"
)

//go:embed queries/*.scm
var queryFS embed.FS

// ID identifies a supported language.
type ID string

const (
	Python ID = "python"
	Rust   ID = "rust"
	Go     ID = "go"
	Ruby   ID = "ruby"
)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	ID         ID
	Extensions []string
	lang       *sitter.Language

	tagsOnce sync.Once
	tags     *template.Template
	tagsErr  error

	highlightsOnce sync.Once
	highlights     []byte
	highlightsErr  error
}

// Name returns the language name as used in query file names and messages.
func (l *Language) Name() string {
	return string(l.ID)
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Parsers are not safe for concurrent use.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// TagTemplate returns the parsed tag pattern template. The template expects a
// value with a Pattern field holding an already escaped query string body.
func (l *Language) TagTemplate() (*template.Template, error) {
	l.tagsOnce.Do(func() {
		name := fmt.Sprintf("queries/%s-tags.scm", l.ID)
		data, err := queryFS.ReadFile(name)
		if err != nil {
			l.tagsErr = fmt.Errorf("reading tag template: %w", err)
			return
		}
		t, err := template.New(name).Option("missingkey=error").Parse(string(data))
		if err != nil {
			l.tagsErr = fmt.Errorf("parsing tag template: %w", err)
			return
		}
		l.tags = t
	})
	return l.tags, l.tagsErr
}

// HighlightQuery returns the source of the language's highlight query.
func (l *Language) HighlightQuery() ([]byte, error) {
	l.highlightsOnce.Do(func() {
		data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s-highlights.scm", l.ID))
		if err != nil {
			l.highlightsErr = fmt.Errorf("reading highlight query: %w", err)
			return
		}
		l.highlights = data
	})
	return l.highlights, l.highlightsErr
}

// Languages maps language IDs to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[ID]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]*Language
var extensionOnce sync.Once

func getExtensionMap() map[string]*Language {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]*Language)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language for a file extension (including the dot),
// or nil if unsupported.
func ForExtension(ext string) *Language {
	return getExtensionMap()[ext]
}

// Resolve returns the language for a file path based on its extension.
func Resolve(path string) (*Language, bool) {
	l := ForExtension(filepath.Ext(path))
	return l, l != nil
}

// Get returns the language registered under id.
func Get(id ID) (*Language, bool) {
	l, ok := Languages[id]
	return l, ok
}

// All returns every registered language ordered by ID.
func All() []*Language {
	out := make([]*Language, 0, len(Languages))
	for _, l := range Languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
