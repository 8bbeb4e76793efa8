package table

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
)

// term matches a single search word against one cell.
type term func(cell string) bool

// matcher requires every term to match at least one cell of a row.
type matcher []term

// compileSearch splits q on whitespace. Words containing * or ? are glob
// patterns over the whole cell; other words match as substrings. Matching
// ignores case.
func compileSearch(q string) matcher {
	var m matcher
	for _, word := range strings.Fields(strings.ToLower(q)) {
		word := word
		if strings.ContainsAny(word, "*?") {
			if g, err := glob.Compile(word); err == nil {
				m = append(m, g.Match)
				continue
			}
		}
		m = append(m, func(cell string) bool {
			return strings.Contains(cell, word)
		})
	}
	return m
}

func (m matcher) matches(row models.Row) bool {
	if len(m) == 0 {
		return true
	}

	cells := make([]string, len(row.Cells))
	for i, v := range row.Cells {
		cells[i] = strings.ToLower(cellText(v))
	}

	for _, t := range m {
		found := false
		for _, cell := range cells {
			if t(cell) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
