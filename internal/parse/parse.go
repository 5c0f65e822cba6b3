// Package parse extracts tags from source files using tree-sitter.
package parse

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/symgrep/internal/lang"
	"github.com/phobologic/symgrep/internal/model"
	"github.com/phobologic/symgrep/internal/query"
)

var (
	// ErrConfig is returned when a compiled tag query cannot be built
	// against its grammar.
	ErrConfig = errors.New("invalid tag query")

	// ErrMatch is yielded for a single match whose predicates could not be
	// evaluated. Extraction continues with the next match.
	ErrMatch = errors.New("match evaluation failed")
)

const (
	definitionPrefix = "definition."
	referencePrefix  = "reference."
)

// Extractor runs one compiled tag query over source files of its language.
// It owns a parser and is not safe for concurrent use.
type Extractor struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// NewExtractor builds the tree-sitter query for c.
func NewExtractor(c query.Compiled) (*Extractor, error) {
	q, err := sitter.NewQuery([]byte(c.Source), c.Language.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrConfig, c.Language.Name(), err)
	}
	return &Extractor{
		parser: c.Language.NewParser(),
		query:  q,
	}, nil
}

// Close releases the parser and the query.
func (e *Extractor) Close() {
	e.query.Close()
	e.parser.Close()
}

// entry is a tag or a per-match error waiting to be yielded in source order.
type entry struct {
	tag     model.Tag
	err     error
	start   uint32
	end     uint32
	pattern uint16
}

// Extract parses source and yields its tags in source order. A failing match
// yields a non-nil error wrapping ErrMatch in place of a tag. path is used
// only for Tag.Path.
func (e *Extractor) Extract(source []byte, path string) iter.Seq2[model.Tag, error] {
	return func(yield func(model.Tag, error) bool) {
		for _, en := range e.collect(source, path) {
			if !yield(en.tag, en.err) {
				return
			}
		}
	}
}

func (e *Extractor) collect(source []byte, path string) []entry {
	if len(source) == 0 {
		return nil
	}

	tree, err := e.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return []entry{{err: fmt.Errorf("%w: parsing %s: %v", ErrMatch, path, err)}}
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(e.query, tree.RootNode())

	var entries []entry
	// One tag per name range; the earliest pattern wins.
	byName := make(map[[2]uint32]int)

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}

		filtered, err := filterPredicates(qc, match, source)
		if err != nil {
			start, end := matchRange(match)
			entries = append(entries, entry{
				err:   fmt.Errorf("%w: %s: %v", ErrMatch, path, err),
				start: start,
				end:   end,
			})
			continue
		}
		if len(filtered.Captures) == 0 {
			continue
		}

		var nameNode, tagNode *sitter.Node
		var captureName string
		for _, c := range filtered.Captures {
			cname := e.query.CaptureNameForId(c.Index)
			if cname == "name" {
				nameNode = c.Node
			} else if strings.HasPrefix(cname, definitionPrefix) || strings.HasPrefix(cname, referencePrefix) {
				captureName = cname
				tagNode = c.Node
			}
		}
		if nameNode == nil || tagNode == nil {
			continue
		}

		kind, symbolKind := classify(captureName)
		point := nameNode.StartPoint()
		en := entry{
			tag: model.Tag{
				Path:       path,
				Name:       lang.NodeText(nameNode, source),
				Kind:       kind,
				SymbolKind: symbolKind,
				Line:       int(point.Row) + 1,
				Column:     int(point.Column) + 1,
				StartByte:  int(tagNode.StartByte()),
				EndByte:    int(tagNode.EndByte()),
			},
			start:   nameNode.StartByte(),
			end:     nameNode.EndByte(),
			pattern: filtered.PatternIndex,
		}

		key := [2]uint32{en.start, en.end}
		if i, seen := byName[key]; seen {
			if en.pattern < entries[i].pattern {
				entries[i] = en
			}
			continue
		}
		byName[key] = len(entries)
		entries = append(entries, en)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].start != entries[j].start {
			return entries[i].start < entries[j].start
		}
		return entries[i].end < entries[j].end
	})
	return entries
}

// filterPredicates evaluates the #match? and #eq? predicates of m. The
// predicate engine panics on malformed predicate arguments; that is reported
// as an error for this match only.
func filterPredicates(qc *sitter.QueryCursor, m *sitter.QueryMatch, source []byte) (filtered *sitter.QueryMatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pattern %d: %v", m.PatternIndex, r)
		}
	}()
	return qc.FilterPredicates(m, source), nil
}

func matchRange(m *sitter.QueryMatch) (uint32, uint32) {
	if len(m.Captures) == 0 {
		return 0, 0
	}
	n := m.Captures[0].Node
	return n.StartByte(), n.EndByte()
}

func classify(captureName string) (model.TagKind, model.SymbolKind) {
	if rest, ok := strings.CutPrefix(captureName, definitionPrefix); ok {
		return model.Definition, model.SymbolKind(rest)
	}
	rest, _ := strings.CutPrefix(captureName, referencePrefix)
	return model.Reference, model.SymbolKind(rest)
}
