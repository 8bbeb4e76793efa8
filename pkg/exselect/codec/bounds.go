package codec

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// findDataBounds finds the bounding box of non-empty cells.
// All bounds are -1 when every cell is empty.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}

// rangeRef returns the A1-style range covering rows x cols from A1.
func rangeRef(rows, cols int) (string, error) {
	if rows < 1 || cols < 1 {
		return "", fmt.Errorf("empty range %dx%d", rows, cols)
	}
	startCell, err := excelize.CoordinatesToCellName(1, 1)
	if err != nil {
		return "", err
	}
	endCell, err := excelize.CoordinatesToCellName(cols, rows)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", startCell, endCell), nil
}
