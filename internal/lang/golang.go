package lang

import "github.com/smacker/go-tree-sitter/golang"

func init() {
	Languages[Go] = &Language{
		ID:         Go,
		Extensions: []string{".go"},
		lang:       golang.GetLanguage(),
	}
}
