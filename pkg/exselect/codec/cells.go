package codec

import (
	"fmt"
	"strconv"
)

// ParseCell converts cell text the way Decode does: integers become int64,
// decimals float64, anything else stays a string.
func ParseCell(s string) interface{} {
	return parseValue(s)
}

// CellText renders a decoded cell value back to text. ParseCell(CellText(v))
// returns v for every value Decode produces.
func CellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
