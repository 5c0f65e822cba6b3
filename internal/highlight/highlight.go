// Package highlight turns source text into a well-nested stream of scope
// events using a language's tree-sitter highlight query.
//
// Captures are resolved against a caller-supplied list of recognized scope
// names; a capture such as @function.method resolves to the recognized name
// with the most matching dot-separated parts ("function" if only that is
// recognized). When several patterns capture the same range, the first
// pattern in the query claims it. Claimed captures without a recognized name
// produce no events.
package highlight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/symgrep/internal/lang"
)

// ErrConfig is returned when a highlight query cannot be built.
var ErrConfig = errors.New("invalid highlight query")

// EventKind discriminates Event.
type EventKind uint8

const (
	// Source covers the byte range [Start, End) of the input.
	Source EventKind = iota
	// ScopeStart opens the recognized scope with index Scope.
	ScopeStart
	// ScopeEnd closes the innermost open scope.
	ScopeEnd
)

// Event is one step of a highlight stream.
type Event struct {
	Kind  EventKind
	Start int
	End   int
	Scope int
}

func (e Event) String() string {
	switch e.Kind {
	case Source:
		return fmt.Sprintf("Source(%d,%d)", e.Start, e.End)
	case ScopeStart:
		return fmt.Sprintf("Start(%d)", e.Scope)
	default:
		return "End"
	}
}

// Config is a compiled highlight query for one language and one list of
// recognized scope names.
type Config struct {
	lang   *lang.Language
	query  *sitter.Query
	names  []string
	scopes []int // capture index -> index into names, or -1
}

// Configure compiles l's highlight query and resolves its captures against
// names.
func Configure(l *lang.Language, names []string) (*Config, error) {
	data, err := l.HighlightQuery()
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrConfig, l.Name(), err)
	}
	q, err := sitter.NewQuery(data, l.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrConfig, l.Name(), err)
	}

	scopes := make([]int, q.CaptureCount())
	for i := range scopes {
		scopes[i] = Resolve(names, q.CaptureNameForId(uint32(i)))
	}

	return &Config{
		lang:   l,
		query:  q,
		names:  append([]string(nil), names...),
		scopes: scopes,
	}, nil
}

// Close releases the compiled query.
func (c *Config) Close() {
	c.query.Close()
}

// Names returns the recognized scope names; Event.Scope indexes this slice.
func (c *Config) Names() []string {
	return c.names
}

// Resolve returns the index in names of the best match for capture, or -1.
// A recognized name matches when each of its dot-separated parts appears in
// the capture name; the match with the most parts wins, ties going to the
// earlier name.
func Resolve(names []string, capture string) int {
	parts := strings.Split(capture, ".")
	best, bestLen := -1, 0
	for i, name := range names {
		n := 0
		matches := true
		for _, p := range strings.Split(name, ".") {
			n++
			if !contains(parts, p) {
				matches = false
				break
			}
		}
		if matches && n > bestLen {
			best, bestLen = i, n
		}
	}
	return best
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Highlighter produces scope events. It owns a parser and is not safe for
// concurrent use.
type Highlighter struct {
	parser *sitter.Parser
}

// NewHighlighter returns a Highlighter with a fresh parser.
func NewHighlighter() *Highlighter {
	return &Highlighter{parser: sitter.NewParser()}
}

// Close releases the parser.
func (h *Highlighter) Close() {
	h.parser.Close()
}

type capture struct {
	start   int
	end     int
	scope   int
	pattern uint16
}

// Highlight parses source with cfg's language and returns its scope events.
// Source events cover every byte of source exactly once, in order, and every
// ScopeStart is matched by a later ScopeEnd.
func (h *Highlighter) Highlight(cfg *Config, source []byte) ([]Event, error) {
	if len(source) == 0 {
		return nil, nil
	}

	h.parser.SetLanguage(cfg.lang.GetLanguage())
	tree, err := h.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", cfg.lang.Name(), err)
	}
	defer tree.Close()

	caps, err := cfg.captures(tree.RootNode(), source)
	if err != nil {
		return nil, err
	}
	return events(caps, len(source)), nil
}

func (c *Config) captures(root *sitter.Node, source []byte) (caps []capture, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluating %s highlight predicates: %v", c.lang.Name(), r)
		}
	}()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(c.query, root)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)
		for _, cp := range m.Captures {
			start, end := int(cp.Node.StartByte()), int(cp.Node.EndByte())
			if start >= end {
				continue
			}
			caps = append(caps, capture{
				start:   start,
				end:     end,
				scope:   c.scopes[cp.Index],
				pattern: m.PatternIndex,
			})
		}
	}

	// Outer ranges first; for identical ranges the earliest pattern first.
	sort.SliceStable(caps, func(i, j int) bool {
		a, b := caps[i], caps[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.end != b.end {
			return a.end > b.end
		}
		return a.pattern < b.pattern
	})

	out := caps[:0]
	for _, cp := range caps {
		if k := len(out); k > 0 && cp.start == out[k-1].start && cp.end == out[k-1].end {
			continue
		}
		out = append(out, cp)
	}
	return out, nil
}

// events converts sorted, deduplicated captures into a well-nested event
// stream over n bytes. Captures that straddle an enclosing capture's end are
// clipped to it.
func events(caps []capture, n int) []Event {
	var out []Event
	pos := 0
	var open []int // end offsets of open scopes

	advance := func(to int) {
		if to > pos {
			out = append(out, Event{Kind: Source, Start: pos, End: to})
			pos = to
		}
	}
	closeScope := func() {
		advance(open[len(open)-1])
		out = append(out, Event{Kind: ScopeEnd})
		open = open[:len(open)-1]
	}

	for _, cp := range caps {
		if cp.scope < 0 {
			continue
		}
		for len(open) > 0 && open[len(open)-1] <= cp.start {
			closeScope()
		}
		end := cp.end
		if len(open) > 0 && end > open[len(open)-1] {
			end = open[len(open)-1]
		}
		if end > n {
			end = n
		}
		if cp.start >= end {
			continue
		}
		advance(cp.start)
		out = append(out, Event{Kind: ScopeStart, Scope: cp.scope})
		open = append(open, end)
	}
	for len(open) > 0 {
		closeScope()
	}
	advance(n)
	return out
}
