// Package exselect provides spreadsheet import, row selection and export.
package exselect

import "regexp"

// Page lengths offered by the table view. A length of -1 shows every row.
var PageLengths = []int{5, 10, 25, 50, 100, 300, 500, -1}

const (
	// DefaultPageLength is the number of rows shown per page.
	DefaultPageLength = 10
	// DefaultExportPrefix prefixes exported file names.
	DefaultExportPrefix = "selected_data"
	// DefaultExportSheet names the single sheet of an exported workbook.
	DefaultExportSheet = "Selected Data"
	// DefaultMaxBytes bounds an uploaded spreadsheet.
	DefaultMaxBytes int64 = 32 << 20
)

var exportPrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// ValidExportPrefix reports whether p is safe to use in an export file name.
func ValidExportPrefix(p string) bool {
	return exportPrefixPattern.MatchString(p)
}

// Options configures the widget behavior.
type Options struct {
	// PageLength is the initial page length. Zero uses DefaultPageLength,
	// a negative value shows all rows.
	PageLength int
	// SheetName selects the sheet to read. Empty reads the first sheet.
	SheetName string
	// ExportPrefix prefixes exported file names.
	ExportPrefix string
	// MaxBytes bounds uploads. Zero uses DefaultMaxBytes.
	MaxBytes int64
}

// DefaultOptions returns default widget options.
func DefaultOptions() Options {
	return Options{
		PageLength:   DefaultPageLength,
		ExportPrefix: DefaultExportPrefix,
		MaxBytes:     DefaultMaxBytes,
	}
}

// EffectivePageLength returns the page length to start with.
func (o Options) EffectivePageLength() int {
	if o.PageLength == 0 {
		return DefaultPageLength
	}
	return o.PageLength
}

// EffectiveExportPrefix returns the export file name prefix.
func (o Options) EffectiveExportPrefix() string {
	if o.ExportPrefix == "" {
		return DefaultExportPrefix
	}
	return o.ExportPrefix
}

// EffectiveMaxBytes returns the upload size bound.
func (o Options) EffectiveMaxBytes() int64 {
	if o.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return o.MaxBytes
}
