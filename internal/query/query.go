// Package query builds the per-language tag query for a search term.
//
// Each language owns a tag pattern template (see internal/lang/queries). Every
// clause of the template carries a #match? predicate on its @name capture;
// compiling substitutes a case-insensitive substring regex for the term into
// all of them, producing one query evaluated once per file.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/symgrep/internal/lang"
)

// ErrInvalidTerm is returned when the search term does not form a valid
// regular expression.
var ErrInvalidTerm = errors.New("invalid search term")

// Compiled is a tag query specialised for one language and one search term.
type Compiled struct {
	Language *lang.Language
	Term     string
	// Pattern is the regular expression the #match? predicates evaluate.
	Pattern string
	// Source is the full tree-sitter query text.
	Source string
}

// Pattern returns the predicate regex for term. The term keeps its regex
// meaning: "a.c" also matches "abc". Matching is case-insensitive and
// unanchored, so any name containing the term matches.
func Pattern(term string) string {
	return "(?i).*" + term + ".*"
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeLiteral escapes s for use inside a double-quoted query string.
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// Compile expands l's tag template for term.
func Compile(l *lang.Language, term string) (Compiled, error) {
	pattern := Pattern(term)
	if _, err := regexp.Compile(pattern); err != nil {
		return Compiled{}, fmt.Errorf("%w %q: %v", ErrInvalidTerm, term, err)
	}

	tmpl, err := l.TagTemplate()
	if err != nil {
		return Compiled{}, fmt.Errorf("%s: %w", l.Name(), err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ Pattern string }{EscapeLiteral(pattern)}); err != nil {
		return Compiled{}, fmt.Errorf("%s: expanding tag template: %w", l.Name(), err)
	}

	return Compiled{
		Language: l,
		Term:     term,
		Pattern:  pattern,
		Source:   b.String(),
	}, nil
}
