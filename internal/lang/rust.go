package lang

import "github.com/smacker/go-tree-sitter/rust"

func init() {
	Languages[Rust] = &Language{
		ID:         Rust,
		Extensions: []string{".rs"},
		lang:       rust.GetLanguage(),
	}
}
