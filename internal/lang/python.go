package lang

import "github.com/smacker/go-tree-sitter/python"

func init() {
	Languages[Python] = &Language{
		ID:         Python,
		Extensions: []string{".py", ".pyi"},
		lang:       python.GetLanguage(),
	}
}
