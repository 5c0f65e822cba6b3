package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phobologic/symgrep/internal/highlight"
	"github.com/phobologic/symgrep/internal/lang"
)

func configure(t *testing.T, id string, names []string) (*highlight.Config, *highlight.Highlighter) {
	t.Helper()
	l, ok := lang.Get(lang.ID(id))
	require.True(t, ok, "language %q not registered", id)

	cfg, err := highlight.Configure(l, names)
	require.NoError(t, err)
	h := highlight.NewHighlighter()
	t.Cleanup(func() {
		h.Close()
		cfg.Close()
	})
	return cfg, h
}
