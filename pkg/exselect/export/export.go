// Package export turns a dataset and a selection into an exported workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/codec"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
	"github.com/ukaji3/exselect-go/pkg/exselect/selection"
)

// Result is the ordered output of an export.
type Result struct {
	// Table is the header row followed by the selected rows' cells.
	Table [][]interface{}
	// Rows are the exported rows in ascending Original Index order.
	Rows []models.Row
	// Skipped lists selected indices that no longer map to a row.
	Skipped []int
}

// Options configures Write.
type Options struct {
	// SheetName names the exported sheet.
	SheetName string
}

// Rows returns the header followed by every selected row, in ascending
// Original Index order regardless of how the table is currently sorted.
func Rows(ds *models.Dataset, store *selection.Store) (*Result, error) {
	if ds == nil {
		return nil, exselect.ErrNoDataset
	}
	if store == nil || store.Len() == 0 {
		return nil, exselect.ErrNothingSelected
	}

	res := &Result{
		Table: [][]interface{}{ds.HeaderValues()},
	}
	for _, index := range store.AscendingMembers() {
		row, ok := ds.Row(index)
		if !ok {
			res.Skipped = append(res.Skipped, index)
			continue
		}
		res.Rows = append(res.Rows, row)
		res.Table = append(res.Table, row.Values())
	}

	if len(res.Rows) == 0 {
		return res, exselect.ErrNoValidRows
	}
	return res, nil
}

// Write encodes the selected rows of ds to w.
func Write(w io.Writer, ds *models.Dataset, store *selection.Store, opts Options) (*Result, error) {
	res, err := Rows(ds, store)
	if err != nil {
		return res, err
	}
	if err := codec.Encode(w, res.Table, codec.EncodeOptions{SheetName: opts.SheetName}); err != nil {
		return res, fmt.Errorf("encode export: %w", err)
	}
	return res, nil
}

// FileName returns "<prefix>_<unix millis>.xlsx".
func FileName(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = exselect.DefaultExportPrefix
	}
	return fmt.Sprintf("%s_%d.xlsx", prefix, t.UnixMilli())
}
