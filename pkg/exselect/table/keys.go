package table

import (
	"fmt"
	"strings"
)

type sortKey struct {
	num     float64
	numeric bool
	text    string
}

func newSortKey(v interface{}) sortKey {
	switch n := v.(type) {
	case int64:
		return sortKey{num: float64(n), numeric: true}
	case float64:
		return sortKey{num: n, numeric: true}
	case int:
		return sortKey{num: float64(n), numeric: true}
	}
	return sortKey{text: strings.ToLower(cellText(v))}
}

// compare returns -1, 0 or 1. Numbers compare numerically with each other;
// any other pairing compares as text.
func (k sortKey) compare(o sortKey) int {
	if k.numeric && o.numeric {
		switch {
		case k.num < o.num:
			return -1
		case k.num > o.num:
			return 1
		}
		return 0
	}
	return strings.Compare(k.textValue(), o.textValue())
}

func (k sortKey) textValue() string {
	if k.numeric {
		return fmt.Sprint(k.num)
	}
	return k.text
}

func cellText(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
