package widget

import "github.com/ukaji3/exselect-go/pkg/exselect/models"

// Snapshot is what a client needs to render the widget.
type Snapshot struct {
	Loaded      bool            `json:"loaded"`
	Name        string          `json:"name,omitempty"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Header      []string        `json:"header,omitempty"`
	View        models.PageView `json:"view"`
	// Checked is parallel to View.Rows.
	Checked   []bool          `json:"checked"`
	SelectAll models.TriState `json:"select_all"`
	Selected  int             `json:"selected"`
	// Edits counts pending cell edits.
	Edits int `json:"edits"`
}

// Snapshot captures the current widget state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		View:      c.view,
		Checked:   make([]bool, len(c.view.Rows)),
		SelectAll: c.selectAll,
		Selected:  c.store.Len(),
		Edits:     len(c.edits),
	}
	if c.view.Rows == nil {
		s.View.Rows = []models.Row{}
	}
	if c.ds != nil {
		s.Loaded = true
		s.Name = c.ds.Name
		s.Fingerprint = c.ds.Fingerprint
		s.Header = c.ds.Header
	}
	for i, row := range c.view.Rows {
		s.Checked[i] = c.checked[row.Index]
	}
	return s
}
