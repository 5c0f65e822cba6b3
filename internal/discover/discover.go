// Package discover walks a directory tree yielding candidate source files.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileEntry represents a discovered file.
type FileEntry struct {
	Path string // Root joined with Rel; usable with os.ReadFile
	Rel  string // Relative to the walk root
}

// ignoreFiles are read in every directory. Patterns apply to paths below the
// directory holding the file.
var ignoreFiles = []string{".gitignore", ".ignore"}

type matcher struct {
	dir string
	gi  *ignore.GitIgnore
}

// Walk calls fn for every regular file under root in lexical order. Hidden
// files and directories, symlinks, and paths excluded by ignore files are
// skipped. If root is a file, fn is called for it alone. Unreadable
// directories are skipped silently; an error returned by fn stops the walk
// and is returned.
func Walk(root string, fn func(FileEntry) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fn(FileEntry{Path: root, Rel: filepath.Base(root)})
	}

	// The root's matchers apply everywhere; the rest form a stack following
	// the walk's current directory.
	rootMatchers := loadIgnores(root)
	matchers := rootMatchers

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if path == root {
			return nil
		}

		// Drop the matchers of directories we have left.
		for len(matchers) > len(rootMatchers) && !within(matchers[len(matchers)-1].dir, path) {
			matchers = matchers[:len(matchers)-1]
		}

		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") || ignored(matchers, path, true) {
				return filepath.SkipDir
			}
			matchers = append(matchers, loadIgnores(path)...)
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks and other non-regular files
		if !d.Type().IsRegular() {
			return nil
		}

		if ignored(matchers, path, false) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		return fn(FileEntry{Path: path, Rel: rel})
	})
}

// Files collects the entries Walk yields.
func Files(root string) ([]FileEntry, error) {
	var results []FileEntry
	err := Walk(root, func(e FileEntry) error {
		results = append(results, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func within(dir, path string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

func ignored(matchers []matcher, path string, isDir bool) bool {
	for _, m := range matchers {
		rel, err := filepath.Rel(m.dir, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if isDir {
			rel += "/"
		}
		if m.gi.MatchesPath(rel) {
			return true
		}
	}
	return false
}

func loadIgnores(dir string) []matcher {
	var out []matcher
	for _, name := range ignoreFiles {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		out = append(out, matcher{dir: dir, gi: gi})
	}
	return out
}
