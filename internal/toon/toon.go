// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// search results.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/symgrep/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
	escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
)

var matchColumns = []string{"path", "line", "column", "kind", "symbol", "name"}

// Table is a TOON tabular array: a header naming the columns followed by one
// indented row per element.
type Table struct {
	Name    string
	Columns []string
	rows    [][]string
}

// Add appends a row. Cells beyond the column count are dropped and missing
// cells are encoded as empty strings.
func (t *Table) Add(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", t.Name, len(t.rows), strings.Join(t.Columns, ","))
	for _, row := range t.rows {
		b.WriteString("\n  ")
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(encodeValue(cell))
		}
	}
	return b.String()
}

// EncodeMatches renders the tags found for term as a TOON document.
func EncodeMatches(term string, tags []model.Tag) string {
	t := Table{Name: "matches", Columns: matchColumns}
	for _, tag := range tags {
		t.Add(
			tag.Path,
			strconv.Itoa(tag.Line),
			strconv.Itoa(tag.Column),
			string(tag.Kind),
			string(tag.SymbolKind),
			tag.Name,
		)
	}
	return "term: " + encodeValue(term) + "\n" + t.String()
}

func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value),
		strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

func quote(value string) string {
	return `"` + escaper.Replace(value) + `"`
}
