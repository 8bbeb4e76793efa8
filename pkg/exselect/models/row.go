// Package models defines data structures for spreadsheet selection.
package models

// Row represents a single data row of a decoded sheet.
type Row struct {
	// Index is the zero-based Original Index, assigned once at decode time.
	Index int `json:"index"`
	// Cells holds the cell values in header order (string, int64 or float64).
	Cells []interface{} `json:"cells"`
}

// Values returns a copy of the row's cell values.
func (r Row) Values() []interface{} {
	out := make([]interface{}, len(r.Cells))
	copy(out, r.Cells)
	return out
}
