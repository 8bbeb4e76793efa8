// Package codec reads uploaded spreadsheets into datasets and writes selections back out.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
	"github.com/xuri/excelize/v2"
)

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// Name is the original file name, recorded on the dataset.
	Name string
	// SheetName selects the sheet to read. Empty reads the first sheet.
	SheetName string
	// MaxBytes bounds the payload. Zero uses exselect.DefaultMaxBytes.
	MaxBytes int64
}

// Decode reads an xlsx payload into a dataset.
// The first non-blank row is the header; every following non-blank row is a
// data row whose Original Index is its position among data rows.
func Decode(r io.Reader, opts DecodeOptions) (*models.Dataset, error) {
	limit := opts.MaxBytes
	if limit <= 0 {
		limit = exselect.DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, exselect.NewDecodeError(opts.Name, "read", err)
	}
	if int64(len(data)) > limit {
		return nil, exselect.NewDecodeError(opts.Name, "read", exselect.ErrTooLarge)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, exselect.NewDecodeError(opts.Name, "open", fmt.Errorf("%w: %v", exselect.ErrInvalidFormat, err))
	}
	defer f.Close()

	sheetName := opts.SheetName
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, exselect.NewDecodeError(opts.Name, "open", errors.New("no sheets found"))
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, exselect.NewDecodeError(opts.Name, "rows", err)
	}

	header, body, err := splitRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Name, err)
	}

	return &models.Dataset{
		Name:        opts.Name,
		SheetName:   sheetName,
		Fingerprint: Fingerprint(data),
		LoadedAt:    time.Now(),
		Header:      header,
		Rows:        body,
	}, nil
}

// splitRows drops blank rows, pads every row to the sheet's data width and
// separates the header from the data rows.
func splitRows(rows [][]string) ([]string, []models.Row, error) {
	_, _, _, maxCol := findDataBounds(rows)
	width := maxCol + 1

	var kept [][]string
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		kept = append(kept, row)
	}

	if len(kept) < 2 {
		return nil, nil, exselect.ErrMalformedInput
	}

	header := make([]string, width)
	copy(header, kept[0])
	header = NormalizeHeaders(header)

	body := make([]models.Row, 0, len(kept)-1)
	for i, row := range kept[1:] {
		cells := make([]interface{}, width)
		for colIdx := range cells {
			if colIdx < len(row) {
				cells[colIdx] = parseValue(row[colIdx])
			} else {
				cells[colIdx] = ""
			}
		}
		body = append(body, models.Row{Index: i, Cells: cells})
	}

	return header, body, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
// Values with leading zeros stay strings so codes like "007" survive export.
func parseValue(s string) interface{} {
	if hasLeadingZero(s) {
		return s
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	// Return as string
	return s
}

func hasLeadingZero(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] != '.'
}
