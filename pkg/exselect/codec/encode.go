package codec

import (
	"errors"
	"io"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/xuri/excelize/v2"
)

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// SheetName names the written sheet. Empty uses exselect.DefaultExportSheet.
	SheetName string
}

// Encode writes table as a single-sheet workbook. The first row is the
// header; it is styled bold and carries an autofilter over the written range.
func Encode(w io.Writer, table [][]interface{}, opts EncodeOptions) error {
	if len(table) == 0 {
		return errors.New("nothing to encode")
	}

	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = exselect.DefaultExportSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	width := 0
	for i := range table {
		row := table[i]
		if len(row) > width {
			width = len(row)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	if width > 0 {
		ref, err := rangeRef(len(table), width)
		if err != nil {
			return err
		}
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		endHeader, err := excelize.CoordinatesToCellName(width, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, "A1", endHeader, bold); err != nil {
			return err
		}
		if err := f.AutoFilter(sheetName, ref, nil); err != nil {
			return err
		}
	}

	return f.Write(w)
}
