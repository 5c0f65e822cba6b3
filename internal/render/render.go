// Package render converts a scope event stream over a source slice into
// terminal-styled text.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/phobologic/symgrep/internal/highlight"
	"github.com/phobologic/symgrep/internal/theme"
)

var (
	// ErrUnbalanced is returned when a ScopeEnd has no matching ScopeStart.
	ErrUnbalanced = errors.New("scope end without matching start")

	// ErrOutOfRange is returned when a Source event lies outside the input.
	ErrOutOfRange = errors.New("source run out of range")
)

// Palette maps scope indexes to styles for one color profile.
type Palette struct {
	styles []termenv.Style
}

// NewPalette resolves the style of each name in names against th. Names the
// theme does not know get the empty style.
func NewPalette(th *theme.Theme, names []string, profile termenv.Profile) Palette {
	styles := make([]termenv.Style, len(names))
	for i, name := range names {
		c, ok := th.Color(name)
		if !ok {
			continue
		}
		styles[i] = profile.String().Foreground(profile.FromColor(c))
	}
	return Palette{styles: styles}
}

// Style returns the style for scope. Unknown scopes are unstyled.
func (p Palette) Style(scope int) termenv.Style {
	if scope < 0 || scope >= len(p.styles) {
		return termenv.Style{}
	}
	return p.styles[scope]
}

// Render writes each Source run of source wrapped in the style of the
// innermost open scope. Runs are styled independently; adjacent runs with the
// same style are not merged. On error the text rendered so far is returned
// along with it.
func Render(source []byte, events []highlight.Event, p Palette) (string, error) {
	stack := []termenv.Style{{}}
	var b strings.Builder
	b.Grow(len(source))

	for _, ev := range events {
		switch ev.Kind {
		case highlight.Source:
			if ev.Start < 0 || ev.End > len(source) || ev.Start > ev.End {
				return b.String(), fmt.Errorf("%w: [%d,%d) of %d bytes", ErrOutOfRange, ev.Start, ev.End, len(source))
			}
			b.WriteString(stack[len(stack)-1].Styled(string(source[ev.Start:ev.End])))
		case highlight.ScopeStart:
			stack = append(stack, p.Style(ev.Scope))
		case highlight.ScopeEnd:
			if len(stack) == 1 {
				return b.String(), ErrUnbalanced
			}
			stack = stack[:len(stack)-1]
		}
	}
	return b.String(), nil
}
