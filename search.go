package main

import (
	"fmt"
	"io"
	"os"

	"github.com/phobologic/symgrep/internal/discover"
	"github.com/phobologic/symgrep/internal/highlight"
	"github.com/phobologic/symgrep/internal/lang"
	"github.com/phobologic/symgrep/internal/model"
	"github.com/phobologic/symgrep/internal/parse"
	"github.com/phobologic/symgrep/internal/query"
	"github.com/phobologic/symgrep/internal/render"
	"github.com/phobologic/symgrep/internal/theme"
	"github.com/phobologic/symgrep/internal/toon"
)

// languageState holds what one language needs for the rest of the run. It is
// built the first time a file of that language is seen.
type languageState struct {
	extractor *parse.Extractor
	err       error

	highlight *highlight.Config
	hlErr     error
	palette   render.Palette
}

type searcher struct {
	cfg    config
	stdout io.Writer
	stderr io.Writer
	// diag receives per-file error lines: stdout for text output, stderr
	// when stdout carries a TOON document.
	diag  io.Writer
	theme *theme.Theme

	// Replaceable in tests.
	compile       func(*lang.Language, string) (query.Compiled, error)
	configure     func(*lang.Language, []string) (*highlight.Config, error)
	highlightSpan func(*highlight.Config, []byte) ([]highlight.Event, error)

	highlighter *highlight.Highlighter
	states      map[lang.ID]*languageState

	// matches collects tags for TOON output.
	matches []model.Tag
}

func newSearcher(cfg config, stdout, stderr io.Writer) *searcher {
	diag := stdout
	if cfg.format == formatTOON {
		diag = stderr
	}
	h := highlight.NewHighlighter()
	return &searcher{
		cfg:           cfg,
		stdout:        stdout,
		stderr:        stderr,
		diag:          diag,
		theme:         theme.Default(),
		compile:       query.Compile,
		configure:     highlight.Configure,
		highlightSpan: h.Highlight,
		highlighter:   h,
		states:        make(map[lang.ID]*languageState),
	}
}

// search prints every match under cfg.root. Problems with single files are
// reported inline and never stop the run.
func search(cfg config, stdout, stderr io.Writer) error {
	s := newSearcher(cfg, stdout, stderr)
	defer s.close()
	return s.run()
}

func (s *searcher) run() error {
	err := discover.Walk(s.cfg.root, func(e discover.FileEntry) error {
		s.searchFile(e)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", s.cfg.root, err)
	}
	if s.cfg.format == formatTOON {
		_, _ = fmt.Fprintln(s.stdout, toon.EncodeMatches(s.cfg.term, s.matches))
	}
	return nil
}

func (s *searcher) searchFile(e discover.FileEntry) {
	l, ok := lang.Resolve(e.Path)
	if !ok {
		return
	}

	if s.cfg.maxFileSize > 0 {
		if fi, err := os.Stat(e.Path); err == nil && fi.Size() > s.cfg.maxFileSize {
			_, _ = fmt.Fprintf(s.stderr, "Warning: %s: skipped (>%d bytes)\n", e.Path, s.cfg.maxFileSize)
			return
		}
	}

	source, err := os.ReadFile(e.Path)
	if err != nil {
		_, _ = fmt.Fprintf(s.diag, "Error reading %s: %v\n", e.Path, err)
		return
	}

	st := s.state(l)
	if st.err != nil {
		_, _ = fmt.Fprintf(s.diag, "Error in config: %v\n", st.err)
		return
	}

	reported := false
	for tag, err := range st.extractor.Extract(source, e.Path) {
		if err != nil {
			_, _ = fmt.Fprintf(s.diag, "Error in query: %v\n", err)
			continue
		}
		if s.cfg.format == formatTOON {
			s.matches = append(s.matches, tag)
			continue
		}
		if st.hlErr != nil && !reported {
			_, _ = fmt.Fprintf(s.diag, "Error in highlight config: %v\n", st.hlErr)
			reported = true
		}
		_, _ = fmt.Fprintf(s.stdout, "%s:%d:%d\n", tag.Path, tag.Line, tag.Column)
		_, _ = fmt.Fprintln(s.stdout, s.render(st, tag, source))
	}
}

// render returns the tag's span styled with its language's highlight query.
// Without a usable highlight config, or if highlighting fails, the span is
// returned as is.
func (s *searcher) render(st *languageState, tag model.Tag, source []byte) string {
	text := tag.Text(source)
	if st.highlight == nil {
		return string(text)
	}

	events, err := s.highlightSpan(st.highlight, text)
	if err != nil {
		_, _ = fmt.Fprintf(s.stderr, "Warning: %s:%d: highlighting: %v\n", tag.Path, tag.Line, err)
		return string(text)
	}
	out, err := render.Render(text, events, st.palette)
	if err != nil {
		_, _ = fmt.Fprintf(s.stderr, "Warning: %s:%d: rendering: %v\n", tag.Path, tag.Line, err)
		return string(text)
	}
	return out
}

func (s *searcher) state(l *lang.Language) *languageState {
	if st, ok := s.states[l.ID]; ok {
		return st
	}

	st := &languageState{}
	s.states[l.ID] = st

	c, err := s.compile(l, s.cfg.term)
	if err == nil {
		st.extractor, err = parse.NewExtractor(c)
	}
	if err != nil {
		st.err = err
		return st
	}
	if s.cfg.format == formatTOON {
		return st
	}

	st.highlight, st.hlErr = s.configure(l, s.theme.Names())
	if st.hlErr == nil {
		st.palette = render.NewPalette(s.theme, st.highlight.Names(), s.cfg.profile)
	}
	return st
}

func (s *searcher) close() {
	for _, st := range s.states {
		if st.extractor != nil {
			st.extractor.Close()
		}
		if st.highlight != nil {
			st.highlight.Close()
		}
	}
	s.highlighter.Close()
}
