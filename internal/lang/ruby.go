package lang

import "github.com/smacker/go-tree-sitter/ruby"

func init() {
	Languages[Ruby] = &Language{
		ID:         Ruby,
		Extensions: []string{".rb"},
		lang:       ruby.GetLanguage(),
	}
}
