package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/symgrep/internal/lang"
)

var testNames = []string{
	"function",
	"function.builtin",
	"keyword",
	"string",
	"variable",
	"variable.parameter",
	"punctuation.bracket",
	"punctuation.delimiter",
	"operator",
	"type",
	"constant",
}

func setup(t *testing.T, id lang.ID, names []string) (*Config, *Highlighter) {
	t.Helper()
	l, ok := lang.Get(id)
	require.True(t, ok)
	cfg, err := Configure(l, names)
	require.NoError(t, err)
	h := NewHighlighter()
	t.Cleanup(func() {
		h.Close()
		cfg.Close()
	})
	return cfg, h
}

func TestResolve(t *testing.T) {
	t.Parallel()

	names := []string{"function", "function.builtin", "punctuation", "punctuation.bracket", "variable"}
	tests := []struct {
		capture string
		want    int
	}{
		{"function", 0},
		{"function.builtin", 1},
		{"function.method", 0},
		{"function.macro", 0},
		{"punctuation.bracket", 3},
		{"punctuation.special", 2},
		{"variable.parameter", 4},
		{"comment", -1},
		{"number", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(names, tt.capture), "capture %q", tt.capture)
	}
}

// checkStream verifies the stream invariants: Source events tile the input,
// and scope events are balanced and never close below the base.
func checkStream(t *testing.T, events []Event, n int) {
	t.Helper()
	pos, depth := 0, 0
	for i, ev := range events {
		switch ev.Kind {
		case Source:
			require.Equal(t, pos, ev.Start, "event %d: gap or overlap", i)
			require.Greater(t, ev.End, ev.Start, "event %d: empty run", i)
			pos = ev.End
		case ScopeStart:
			depth++
		case ScopeEnd:
			depth--
			require.GreaterOrEqual(t, depth, 0, "event %d: unbalanced end", i)
		}
	}
	require.Equal(t, n, pos, "source not fully covered")
	require.Zero(t, depth, "unclosed scopes")
}

func TestHighlightPython(t *testing.T) {
	t.Parallel()
	cfg, h := setup(t, lang.Python, testNames)

	source := []byte("def foo_bar(x): pass")
	events, err := h.Highlight(cfg, source)
	require.NoError(t, err)
	checkStream(t, events, len(source))

	// "def" and "pass" are keywords, "foo_bar" a function name, "x" a parameter.
	scopeOf := scopesByText(events, source)
	assert.Equal(t, "keyword", testNames[scopeOf["def"]])
	assert.Equal(t, "keyword", testNames[scopeOf["pass"]])
	assert.Equal(t, "function", testNames[scopeOf["foo_bar"]])
	assert.Equal(t, "variable.parameter", testNames[scopeOf["x"]])
	assert.Equal(t, "punctuation.bracket", testNames[scopeOf["("]])
}

func TestHighlightBuiltinCall(t *testing.T) {
	t.Parallel()
	cfg, h := setup(t, lang.Python, testNames)

	source := []byte("len(sorted(xs))")
	events, err := h.Highlight(cfg, source)
	require.NoError(t, err)
	checkStream(t, events, len(source))

	scopeOf := scopesByText(events, source)
	assert.Equal(t, "function.builtin", testNames[scopeOf["len"]])
	assert.Equal(t, "function.builtin", testNames[scopeOf["sorted"]])
	assert.Equal(t, "variable", testNames[scopeOf["xs"]])
}

func TestHighlightUnrecognizedCapturesProduceNoScope(t *testing.T) {
	t.Parallel()
	cfg, h := setup(t, lang.Python, testNames)

	// "comment" is not among the recognized names.
	source := []byte("# just a comment\n")
	events, err := h.Highlight(cfg, source)
	require.NoError(t, err)
	checkStream(t, events, len(source))
	for _, ev := range events {
		assert.NotEqual(t, ScopeStart, ev.Kind, "unexpected %v", ev)
	}
}

func TestHighlightNoNames(t *testing.T) {
	t.Parallel()
	cfg, h := setup(t, lang.Rust, nil)

	source := []byte("fn main() { helper(); }")
	events, err := h.Highlight(cfg, source)
	require.NoError(t, err)
	assert.Equal(t, []Event{{Kind: Source, Start: 0, End: len(source)}}, events)
}

func TestHighlightEmpty(t *testing.T) {
	t.Parallel()
	cfg, h := setup(t, lang.Go, testNames)

	events, err := h.Highlight(cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHighlightAllLanguagesWellNested(t *testing.T) {
	t.Parallel()

	sources := map[lang.ID]string{
		lang.Python: "class A:\n    @staticmethod\n    def f(a, b=1, *c):\n        return f\"{a}\\n\" + A.g(b)\n",
		lang.Rust:   "impl S {\n    pub fn f<'a>(&self, x: &'a str) -> Vec<u8> { println!(\"{}\", x); Self::g(1) }\n}\n",
		lang.Go:     "package p\n\nfunc (s *S) F(xs ...int) (err error) {\n\tfor i := range xs { s.G(i) }\n\treturn nil\n}\n",
		lang.Ruby:   "module M\n  class C < Base\n    def self.f(a, *b)\n      @x = :sym\n      g(a) { |y| y }\n    end\n  end\nend\n",
	}

	for id, source := range sources {
		t.Run(string(id), func(t *testing.T) {
			t.Parallel()
			cfg, h := setup(t, id, testNames)
			events, err := h.Highlight(cfg, []byte(source))
			require.NoError(t, err)
			checkStream(t, events, len(source))
		})
	}
}

func TestEventsClipAndNest(t *testing.T) {
	t.Parallel()

	caps := []capture{
		{start: 0, end: 10, scope: 0},
		{start: 2, end: 4, scope: 1},
		{start: 3, end: 12, scope: 2}, // straddles the outer end
		{start: 5, end: 6, scope: -1},
	}
	got := events(caps, 12)
	want := []Event{
		{Kind: ScopeStart, Scope: 0},
		{Kind: Source, Start: 0, End: 2},
		{Kind: ScopeStart, Scope: 1},
		{Kind: Source, Start: 2, End: 3},
		{Kind: ScopeStart, Scope: 2},
		{Kind: Source, Start: 3, End: 4},
		{Kind: ScopeEnd},
		{Kind: ScopeEnd},
		{Kind: Source, Start: 4, End: 10},
		{Kind: ScopeEnd},
		{Kind: Source, Start: 10, End: 12},
	}
	assert.Equal(t, want, got)
}

// scopesByText maps the text of each styled run to the innermost scope
// active over it.
func scopesByText(events []Event, source []byte) map[string]int {
	out := make(map[string]int)
	var stack []int
	for _, ev := range events {
		switch ev.Kind {
		case ScopeStart:
			stack = append(stack, ev.Scope)
		case ScopeEnd:
			stack = stack[:len(stack)-1]
		case Source:
			if len(stack) > 0 {
				out[string(source[ev.Start:ev.End])] = stack[len(stack)-1]
			}
		}
	}
	return out
}
