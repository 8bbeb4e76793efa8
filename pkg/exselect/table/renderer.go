// Package table pages, sorts and searches a dataset and publishes each
// redrawn page to its listeners.
package table

import (
	"fmt"
	"sort"

	"github.com/ukaji3/exselect-go/pkg/exselect/models"
)

// Listener is notified after every redraw with the new visible page.
type Listener interface {
	PageChanged(view models.PageView)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(view models.PageView)

// PageChanged calls f(view).
func (f ListenerFunc) PageChanged(view models.PageView) { f(view) }

// Renderer holds the paging, sort and search state over one dataset.
// Renderer is not safe for concurrent use.
type Renderer struct {
	ds        *models.Dataset
	page      int
	length    int
	order     models.Order
	search    string
	match     matcher
	listeners []Listener
	view      models.PageView
}

// New returns a renderer over ds sorted by the first column ascending.
// Nothing is drawn until Draw or another state change is called.
func New(ds *models.Dataset, length int) *Renderer {
	return &Renderer{
		ds:     ds,
		length: length,
		order:  models.Order{Column: 0, Dir: models.Asc},
		match:  compileSearch(""),
	}
}

// Subscribe registers l for redraw notifications.
func (r *Renderer) Subscribe(l Listener) {
	r.listeners = append(r.listeners, l)
}

// View returns the most recently drawn page.
func (r *Renderer) View() models.PageView {
	return r.view
}

// Draw recomputes the visible page and notifies listeners.
func (r *Renderer) Draw() models.PageView {
	r.view = r.compute()
	r.page = r.view.Page
	for _, l := range r.listeners {
		l.PageChanged(r.view)
	}
	return r.view
}

// Invalidate redraws without changing page, order or search.
func (r *Renderer) Invalidate() models.PageView {
	return r.Draw()
}

// Page moves to page n (zero-based), clamped to the available pages.
func (r *Renderer) Page(n int) models.PageView {
	r.page = n
	return r.Draw()
}

// Length changes the page length, keeping the first visible row on screen.
// A length <= 0 shows every row.
func (r *Renderer) Length(n int) models.PageView {
	first := 0
	if r.length > 0 {
		first = r.page * r.length
	}
	r.length = n
	if n > 0 {
		r.page = first / n
	} else {
		r.page = 0
	}
	return r.Draw()
}

// Order sorts by column and returns to the first page.
func (r *Renderer) Order(column int, dir models.Direction) (models.PageView, error) {
	if column < 0 || column >= len(r.ds.Header) {
		return r.view, fmt.Errorf("order column %d out of range [0,%d)", column, len(r.ds.Header))
	}
	if dir != models.Desc {
		dir = models.Asc
	}
	r.order = models.Order{Column: column, Dir: dir}
	r.page = 0
	return r.Draw(), nil
}

// Search filters rows by q and returns to the first page.
func (r *Renderer) Search(q string) models.PageView {
	r.search = q
	r.match = compileSearch(q)
	r.page = 0
	return r.Draw()
}

func (r *Renderer) compute() models.PageView {
	filtered := make([]models.Row, 0, r.ds.Len())
	for _, row := range r.ds.Rows {
		if r.match.matches(row) {
			filtered = append(filtered, row)
		}
	}

	sortRows(filtered, r.order)

	pages := 1
	if r.length > 0 && len(filtered) > 0 {
		pages = (len(filtered) + r.length - 1) / r.length
	}
	page := r.page
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}

	start, end := 0, len(filtered)
	if r.length > 0 {
		start = page * r.length
		if start > len(filtered) {
			start = len(filtered)
		}
		end = start + r.length
		if end > len(filtered) {
			end = len(filtered)
		}
	}

	view := models.PageView{
		Page:     page,
		Length:   r.length,
		Pages:    pages,
		Total:    r.ds.Len(),
		Filtered: len(filtered),
		Order:    r.order,
		Search:   r.search,
		Rows:     filtered[start:end],
	}
	if end > start {
		view.Start = start + 1
		view.End = end
	}
	return view
}

// sortRows orders rows by one column. Equal cells keep Original Index order.
func sortRows(rows []models.Row, order models.Order) {
	keys := make(map[int]sortKey, len(rows))
	for _, row := range rows {
		var v interface{}
		if order.Column < len(row.Cells) {
			v = row.Cells[order.Column]
		}
		keys[row.Index] = newSortKey(v)
	}

	desc := order.Dir == models.Desc
	sort.SliceStable(rows, func(i, j int) bool {
		cmp := keys[rows[i].Index].compare(keys[rows[j].Index])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
