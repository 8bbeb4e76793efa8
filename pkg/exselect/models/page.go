package models

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order describes the column a view is sorted by.
type Order struct {
	// Column is the zero-based data column index.
	Column int `json:"column"`
	// Dir is the sort direction.
	Dir Direction `json:"dir"`
}

// PageView represents the rows a table currently displays.
type PageView struct {
	// Page is the zero-based page number.
	Page int `json:"page"`
	// Length is the page length; -1 means all rows.
	Length int `json:"length"`
	// Pages is the number of pages after filtering.
	Pages int `json:"pages"`
	// Total is the number of rows in the dataset.
	Total int `json:"total"`
	// Filtered is the number of rows matching the search.
	Filtered int `json:"filtered"`
	// Start is the 1-based position of the first visible row (0 when empty).
	Start int `json:"start"`
	// End is the 1-based position of the last visible row (0 when empty).
	End int `json:"end"`
	// Order is the active sort order.
	Order Order `json:"order"`
	// Search is the active search string.
	Search string `json:"search"`
	// Rows contains the visible rows.
	Rows []Row `json:"rows"`
}

// Indices returns the Original Indices of the visible rows.
func (v PageView) Indices() []int {
	out := make([]int, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Index
	}
	return out
}

// Empty reports whether no rows are visible.
func (v PageView) Empty() bool {
	return len(v.Rows) == 0
}
