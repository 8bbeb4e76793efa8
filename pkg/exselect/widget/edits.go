package widget

import (
	"errors"
	"fmt"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/codec"
)

// ErrColumnOutOfRange indicates an edit addressed a column the dataset lacks.
var ErrColumnOutOfRange = errors.New("column out of range")

// ErrNothingToUndo indicates Undo ran with no recorded edit.
var ErrNothingToUndo = errors.New("nothing to undo")

type cellEdit struct {
	index, column int
	old, new      interface{}
}

// EditCell replaces one cell of a visible row. The text is parsed like an
// uploaded cell. Edits stay pending until MarkCommitted.
func (c *Controller) EditCell(index, column int, text string) error {
	if c.ds == nil {
		return exselect.ErrNoDataset
	}
	if _, visible := c.checked[index]; !visible {
		return ErrRowNotVisible
	}
	if column < 0 || column >= len(c.ds.Header) {
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, column)
	}

	row := &c.ds.Rows[index]
	value := codec.ParseCell(text)
	c.edits = append(c.edits, cellEdit{index: index, column: column, old: row.Cells[column], new: value})
	row.Cells[column] = value
	c.renderer.Invalidate()
	return nil
}

// Undo reverts the most recent pending edit.
func (c *Controller) Undo() error {
	if c.ds == nil {
		return exselect.ErrNoDataset
	}
	if len(c.edits) == 0 {
		return ErrNothingToUndo
	}
	last := c.edits[len(c.edits)-1]
	c.edits = c.edits[:len(c.edits)-1]
	c.ds.Rows[last.index].Cells[last.column] = last.old
	c.renderer.Invalidate()
	return nil
}

// PendingEdits returns the current text of every cell edited since the
// dataset was loaded or last committed, keyed by Original Index then column.
func (c *Controller) PendingEdits() map[int]map[int]string {
	out := make(map[int]map[int]string)
	for _, e := range c.edits {
		if out[e.index] == nil {
			out[e.index] = make(map[int]string)
		}
		out[e.index][e.column] = codec.CellText(c.ds.Rows[e.index].Cells[e.column])
	}
	return out
}

// MarkCommitted forgets pending edits once they are persisted. They can no
// longer be undone.
func (c *Controller) MarkCommitted() {
	c.edits = nil
}
