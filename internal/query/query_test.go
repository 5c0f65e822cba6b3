package query

import (
	"regexp"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/symgrep/internal/lang"
)

func TestPatternIsCaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		term string
		name string
		want bool
	}{
		{"foobar", "FooBar", true},
		{"FOOBAR", "FooBar", true},
		{"oba", "FooBar", true},
		{"help", "helper", true},
		{"help", "help_text", true},
		{"helper", "help", false},
		{"a.c", "abc", true},
	}

	for _, tt := range tests {
		re := regexp.MustCompile(Pattern(tt.term))
		assert.Equal(t, tt.want, re.MatchString(tt.name), "term %q on %q", tt.term, tt.name)
	}
}

func TestEscapeLiteral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `plain`, EscapeLiteral("plain"))
	assert.Equal(t, `a\\d+`, EscapeLiteral(`a\d+`))
	assert.Equal(t, `say \"hi\"`, EscapeLiteral(`say "hi"`))
	assert.Equal(t, `x\ny`, EscapeLiteral("x\ny"))
}

func TestCompileEmbedsTermInEveryClause(t *testing.T) {
	t.Parallel()

	for _, l := range lang.All() {
		t.Run(l.Name(), func(t *testing.T) {
			t.Parallel()
			c, err := Compile(l, "needle")
			require.NoError(t, err)

			assert.Same(t, l, c.Language)
			assert.Equal(t, "needle", c.Term)
			assert.Equal(t, "(?i).*needle.*", c.Pattern)

			clauses := strings.Count(c.Source, "#match?")
			require.Positive(t, clauses)
			assert.Equal(t, clauses, strings.Count(c.Source, `"(?i).*needle.*"`),
				"every #match? predicate should carry the pattern")
			assert.NotContains(t, c.Source, "{{")
		})
	}
}

func TestCompileProducesValidQuery(t *testing.T) {
	t.Parallel()

	for _, term := range []string{"foo", `say"hi`, `\w+_bar`, "with space"} {
		for _, l := range lang.All() {
			c, err := Compile(l, term)
			require.NoError(t, err, "%s / %q", l.Name(), term)

			q, err := sitter.NewQuery([]byte(c.Source), l.GetLanguage())
			require.NoError(t, err, "%s / %q:\n%s", l.Name(), term, c.Source)
			q.Close()
		}
	}
}

func TestCompileRejectsInvalidRegex(t *testing.T) {
	t.Parallel()

	py, ok := lang.Get(lang.Python)
	require.True(t, ok)

	_, err := Compile(py, "foo(")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTerm)
	assert.Contains(t, err.Error(), `"foo("`)
}
