// Package widget keeps row checkboxes and the page-level select-all control
// consistent with the selection store across redraws.
package widget

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/export"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
	"github.com/ukaji3/exselect-go/pkg/exselect/selection"
	"github.com/ukaji3/exselect-go/pkg/exselect/table"
)

// ErrRowNotVisible indicates a checkbox toggle for a row not on the current page.
var ErrRowNotVisible = errors.New("row is not on the current page")

// ErrUploadSuperseded indicates an upload finished after a newer one began.
var ErrUploadSuperseded = errors.New("upload superseded by a newer upload")

// Ticket identifies one upload attempt.
type Ticket uint64

// Controller owns the widget state: the dataset, its selection store, the
// table renderer and the visible checkbox state. A Controller is driven from
// one goroutine at a time; callers serialize access.
type Controller struct {
	opts   exselect.Options
	logger logrus.FieldLogger

	ds       *models.Dataset
	store    *selection.Store
	renderer *table.Renderer

	view      models.PageView
	checked   map[int]bool
	selectAll models.TriState

	issued  Ticket
	applied Ticket

	edits []cellEdit
}

// New mounts an empty widget.
func New(opts exselect.Options, logger logrus.FieldLogger) *Controller {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Controller{
		opts:    opts,
		logger:  logger,
		store:   selection.New(),
		checked: make(map[int]bool),
	}
}

// BeginUpload issues a ticket for an upload about to be decoded.
func (c *Controller) BeginUpload() Ticket {
	c.issued++
	return c.issued
}

// CompleteUpload replaces the dataset with ds unless an upload that began
// later has already been applied. Such stale tickets are rejected with
// ErrUploadSuperseded and leave the widget untouched. A ticket whose decode
// failed is never completed, so it supersedes nothing.
func (c *Controller) CompleteUpload(t Ticket, ds *models.Dataset) error {
	if t <= c.applied {
		c.logger.WithFields(logrus.Fields{"ticket": t, "applied": c.applied}).Debug("discarding superseded upload")
		return ErrUploadSuperseded
	}
	c.applied = t
	c.Load(ds)
	return nil
}

// Load replaces the dataset, clears the selection and draws the first page.
func (c *Controller) Load(ds *models.Dataset) {
	c.Teardown()

	c.ds = ds
	c.renderer = table.New(ds, c.opts.EffectivePageLength())
	c.renderer.Subscribe(c)
	c.renderer.Draw()

	c.logger.WithFields(logrus.Fields{
		"name":        ds.Name,
		"rows":        ds.Len(),
		"columns":     len(ds.Header),
		"fingerprint": ds.Fingerprint,
	}).Info("dataset loaded")
}

// Teardown discards the dataset and clears the selection.
func (c *Controller) Teardown() {
	if c.ds != nil {
		c.logger.WithField("name", c.ds.Name).Debug("dataset discarded")
	}
	c.ds = nil
	c.renderer = nil
	c.store.Clear()
	c.view = models.PageView{}
	c.checked = make(map[int]bool)
	c.selectAll = models.None
	c.edits = nil
}

// PageChanged reconciles the visible checkboxes with the store, then
// recomputes the select-all control. It runs after every redraw.
func (c *Controller) PageChanged(view models.PageView) {
	c.view = view
	c.checked = make(map[int]bool, len(view.Rows))
	for _, row := range view.Rows {
		c.checked[row.Index] = c.store.Has(row.Index)
	}
	c.refreshSelectAll()
}

func (c *Controller) refreshSelectAll() {
	c.selectAll = TriStateOf(c.view.Indices(), c.store)
}

// TriStateOf derives the select-all state of a page from the store.
func TriStateOf(page []int, store *selection.Store) models.TriState {
	if len(page) == 0 {
		return models.None
	}
	selected := 0
	for _, index := range page {
		if store.Has(index) {
			selected++
		}
	}
	switch selected {
	case 0:
		return models.None
	case len(page):
		return models.All
	default:
		return models.Indeterminate
	}
}

// ToggleRow applies a checkbox change for a visible row.
func (c *Controller) ToggleRow(index int, checked bool) error {
	if c.ds == nil {
		return exselect.ErrNoDataset
	}
	if _, ok := c.checked[index]; !ok {
		return ErrRowNotVisible
	}
	if checked {
		c.store.Add(index)
	} else {
		c.store.Remove(index)
	}
	c.checked[index] = checked
	c.refreshSelectAll()
	return nil
}

// ToggleAll selects or deselects every row of the current page. Rows on
// other pages keep their state. The table is redrawn afterwards.
func (c *Controller) ToggleAll(on bool) error {
	if c.ds == nil {
		return exselect.ErrNoDataset
	}
	for _, index := range c.view.Indices() {
		if on {
			c.store.Add(index)
		} else {
			c.store.Remove(index)
		}
	}
	c.renderer.Invalidate()
	return nil
}

// Page moves to page n.
func (c *Controller) Page(n int) error {
	if c.renderer == nil {
		return exselect.ErrNoDataset
	}
	c.renderer.Page(n)
	return nil
}

// Length changes the page length; n <= 0 shows all rows.
func (c *Controller) Length(n int) error {
	if c.renderer == nil {
		return exselect.ErrNoDataset
	}
	c.renderer.Length(n)
	return nil
}

// Order sorts the table by column.
func (c *Controller) Order(column int, dir models.Direction) error {
	if c.renderer == nil {
		return exselect.ErrNoDataset
	}
	_, err := c.renderer.Order(column, dir)
	return err
}

// Search filters the table.
func (c *Controller) Search(q string) error {
	if c.renderer == nil {
		return exselect.ErrNoDataset
	}
	c.renderer.Search(q)
	return nil
}

// Checked reports a row's checkbox state and whether the row is visible.
func (c *Controller) Checked(index int) (checked, visible bool) {
	checked, visible = c.checked[index]
	return
}

// SelectAll returns the select-all control state for the current page.
func (c *Controller) SelectAll() models.TriState {
	return c.selectAll
}

// Dataset returns the loaded dataset, or nil.
func (c *Controller) Dataset() *models.Dataset {
	return c.ds
}

// Selected returns the selected Original Indices in ascending order.
func (c *Controller) Selected() []int {
	return c.store.AscendingMembers()
}

// Export writes the selected rows as a workbook.
func (c *Controller) Export(w io.Writer, opts export.Options) (*export.Result, error) {
	res, err := export.Write(w, c.ds, c.store, opts)
	if res != nil && len(res.Skipped) > 0 {
		c.logger.WithField("skipped", res.Skipped).Warn("export skipped stale selections")
	}
	return res, err
}
