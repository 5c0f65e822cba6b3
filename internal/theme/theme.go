// Package theme holds the scope-name to color mapping used when rendering
// highlighted source.
package theme

import (
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme is an immutable mapping from highlight scope names to colors.
type Theme struct {
	colors map[string]colorful.Color
	names  []string
}

// New builds a theme from a name to color map. The map is copied.
func New(colors map[string]colorful.Color) *Theme {
	t := &Theme{colors: make(map[string]colorful.Color, len(colors))}
	for name, c := range colors {
		t.colors[name] = c
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t
}

// Names returns the scope names of the theme in sorted order.
func (t *Theme) Names() []string {
	return append([]string(nil), t.names...)
}

// Color returns the color for a scope name.
func (t *Theme) Color(name string) (colorful.Color, bool) {
	c, ok := t.colors[name]
	return c, ok
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Default returns the built-in theme.
func Default() *Theme {
	return New(map[string]colorful.Color{
		"attribute":             rgb(187, 194, 207),
		"constant":              rgb(255, 135, 0),
		"function.builtin":      rgb(247, 187, 59),
		"function":              rgb(247, 187, 59),
		"keyword":               rgb(175, 215, 0),
		"operator":              rgb(209, 109, 158),
		"property":              rgb(198, 120, 221),
		"punctuation":           rgb(128, 160, 194),
		"punctuation.bracket":   rgb(128, 160, 194),
		"punctuation.delimiter": rgb(128, 160, 194),
		"punctuation.special":   rgb(128, 160, 194),
		"string":                rgb(250, 183, 149),
		"string.special":        rgb(250, 183, 149),
		"tag":                   rgb(255, 135, 0),
		"type":                  rgb(233, 86, 120),
		"type.builtin":          rgb(26, 188, 156),
		"variable":              rgb(242, 242, 191),
		"variable.builtin":      rgb(242, 242, 191),
		"variable.parameter":    rgb(97, 175, 239),
	})
}
