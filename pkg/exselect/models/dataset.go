package models

import "time"

// Dataset represents a decoded sheet: its header and every data row.
type Dataset struct {
	// Name is the uploaded file name (no path).
	Name string `json:"name"`
	// SheetName is the sheet the rows were read from.
	SheetName string `json:"sheet_name"`
	// Fingerprint is a hex content hash of the uploaded payload.
	Fingerprint string `json:"fingerprint"`
	// LoadedAt is when the dataset was decoded.
	LoadedAt time.Time `json:"loaded_at"`
	// Header holds the column names.
	Header []string `json:"header"`
	// Rows holds data rows ordered by Original Index.
	Rows []Row `json:"rows"`
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Row returns the row with the given Original Index.
func (d *Dataset) Row(index int) (Row, bool) {
	if d == nil || index < 0 || index >= len(d.Rows) {
		return Row{}, false
	}
	return d.Rows[index], true
}

// Valid reports whether index is an Original Index of this dataset.
func (d *Dataset) Valid(index int) bool {
	return d != nil && index >= 0 && index < len(d.Rows)
}

// HeaderValues returns the header as a cell row.
func (d *Dataset) HeaderValues() []interface{} {
	out := make([]interface{}, len(d.Header))
	for i, h := range d.Header {
		out[i] = h
	}
	return out
}
