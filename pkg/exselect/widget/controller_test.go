package widget

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/export"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
	"github.com/ukaji3/exselect-go/pkg/exselect/selection"
)

func dataset(n int) *models.Dataset {
	ds := &models.Dataset{Name: fmt.Sprintf("rows-%d.xlsx", n), Header: []string{"Name", "Score"}}
	for i := 0; i < n; i++ {
		ds.Rows = append(ds.Rows, models.Row{Index: i, Cells: []interface{}{fmt.Sprintf("name-%02d", i), int64(i % 4)}})
	}
	return ds
}

func mounted(t *testing.T, n, length int) *Controller {
	t.Helper()
	c := New(exselect.Options{PageLength: length}, nil)
	c.Load(dataset(n))
	return c
}

// assertReconciled checks every visible checkbox mirrors the store.
func assertReconciled(t *testing.T, c *Controller) {
	t.Helper()
	snap := c.Snapshot()
	require.Len(t, snap.Checked, len(snap.View.Rows))
	for i, row := range snap.View.Rows {
		assert.Equal(t, c.store.Has(row.Index), snap.Checked[i], "row %d", row.Index)
	}
	assert.Equal(t, TriStateOf(snap.View.Indices(), c.store), snap.SelectAll)
}

func TestToggleRow(t *testing.T) {
	c := mounted(t, 12, 5)

	require.NoError(t, c.ToggleRow(2, true))
	checked, visible := c.Checked(2)
	assert.True(t, checked)
	assert.True(t, visible)
	assert.Equal(t, models.Indeterminate, c.SelectAll())

	require.NoError(t, c.ToggleRow(2, false))
	assert.Equal(t, models.None, c.SelectAll())
	assert.Empty(t, c.Selected())

	assert.ErrorIs(t, c.ToggleRow(7, true), ErrRowNotVisible)
	assert.Empty(t, c.Selected())
}

func TestSelectionSurvivesRedraws(t *testing.T) {
	c := mounted(t, 12, 5)

	require.NoError(t, c.ToggleRow(1, true))
	require.NoError(t, c.Page(1))
	require.NoError(t, c.ToggleRow(6, true))
	assertReconciled(t, c)

	require.NoError(t, c.Order(1, models.Desc))
	assertReconciled(t, c)

	require.NoError(t, c.Search("name-0"))
	assertReconciled(t, c)
	checked, visible := c.Checked(6)
	assert.True(t, visible)
	assert.True(t, checked)

	require.NoError(t, c.Search(""))
	require.NoError(t, c.Length(-1))
	assertReconciled(t, c)
	assert.Equal(t, []int{1, 6}, c.Selected())
}

func TestSelectAllTriState(t *testing.T) {
	c := mounted(t, 6, 3)

	assert.Equal(t, models.None, c.SelectAll())

	require.NoError(t, c.ToggleRow(0, true))
	assert.Equal(t, models.Indeterminate, c.SelectAll())

	require.NoError(t, c.ToggleRow(1, true))
	require.NoError(t, c.ToggleRow(2, true))
	assert.Equal(t, models.All, c.SelectAll())

	require.NoError(t, c.Page(1))
	assert.Equal(t, models.None, c.SelectAll(), "page two has nothing selected")
}

func TestToggleAllAffectsCurrentPageOnly(t *testing.T) {
	c := New(exselect.Options{PageLength: 3}, nil)
	c.Load(dataset(6))
	require.NoError(t, c.ToggleRow(1, true))
	require.NoError(t, c.Page(1)) // rows 3,4,5
	c.store.Add(3)
	c.renderer.Invalidate()

	require.NoError(t, c.ToggleAll(true))
	assert.Equal(t, []int{1, 3, 4, 5}, c.Selected())
	assert.Equal(t, models.All, c.SelectAll())
	assertReconciled(t, c)

	require.NoError(t, c.ToggleAll(false))
	assert.Equal(t, []int{1}, c.Selected())
	assert.Equal(t, models.None, c.SelectAll())
	assertReconciled(t, c)
}

func TestEmptyPage(t *testing.T) {
	c := mounted(t, 6, 3)
	require.NoError(t, c.ToggleRow(0, true))

	require.NoError(t, c.Search("no such row"))
	assert.Equal(t, models.None, c.SelectAll())

	require.NoError(t, c.ToggleAll(true))
	require.NoError(t, c.ToggleAll(false))
	assert.Equal(t, []int{0}, c.Selected())
	assert.Equal(t, models.None, c.SelectAll())
}

func TestTriStateOf(t *testing.T) {
	store := selection.New()
	store.Add(1)
	store.Add(3)

	tests := []struct {
		page     []int
		expected models.TriState
	}{
		{nil, models.None},
		{[]int{0, 2}, models.None},
		{[]int{1, 3}, models.All},
		{[]int{3}, models.All},
		{[]int{1, 2}, models.Indeterminate},
	}

	for _, tt := range tests {
		if result := TriStateOf(tt.page, store); result != tt.expected {
			t.Errorf("TriStateOf(%v) = %s, expected %s", tt.page, result, tt.expected)
		}
	}
}

func TestLoadClearsSelection(t *testing.T) {
	c := mounted(t, 10, 10)
	require.NoError(t, c.ToggleRow(1, true))
	require.NoError(t, c.ToggleRow(2, true))

	// A smaller dataset would keep indices 1 and 2 valid; they must still go.
	c.Load(dataset(4))
	assert.Empty(t, c.Selected())
	assert.Equal(t, models.None, c.SelectAll())
	assertReconciled(t, c)
}

func TestUploadTickets(t *testing.T) {
	c := mounted(t, 3, 10)
	require.NoError(t, c.ToggleRow(0, true))

	first := c.BeginUpload()
	second := c.BeginUpload()

	require.NoError(t, c.CompleteUpload(second, dataset(5)))
	assert.Equal(t, 5, c.Dataset().Len())

	assert.ErrorIs(t, c.CompleteUpload(first, dataset(9)), ErrUploadSuperseded)
	assert.Equal(t, 5, c.Dataset().Len(), "a stale upload never replaces a newer one")

	third := c.BeginUpload()
	require.NoError(t, c.CompleteUpload(third, dataset(6)))
	assert.ErrorIs(t, c.CompleteUpload(third, dataset(7)), ErrUploadSuperseded)
}

func TestFailedNewerUploadDoesNotSupersede(t *testing.T) {
	c := mounted(t, 3, 10)

	older := c.BeginUpload()
	c.BeginUpload() // decode fails, CompleteUpload never runs

	require.NoError(t, c.CompleteUpload(older, dataset(8)))
	assert.Equal(t, 8, c.Dataset().Len())
}

func TestFailedUploadLeavesState(t *testing.T) {
	c := mounted(t, 3, 10)
	require.NoError(t, c.ToggleRow(2, true))
	before := c.Dataset()

	c.BeginUpload() // decode fails, CompleteUpload never runs

	assert.Same(t, before, c.Dataset())
	assert.Equal(t, []int{2}, c.Selected())
}

func TestTeardown(t *testing.T) {
	c := mounted(t, 3, 10)
	require.NoError(t, c.ToggleRow(2, true))

	c.Teardown()
	assert.Nil(t, c.Dataset())
	assert.Empty(t, c.Selected())
	assert.ErrorIs(t, c.Page(1), exselect.ErrNoDataset)
	assert.ErrorIs(t, c.ToggleRow(0, true), exselect.ErrNoDataset)
	assert.ErrorIs(t, c.ToggleAll(true), exselect.ErrNoDataset)

	snap := c.Snapshot()
	assert.False(t, snap.Loaded)
	assert.NotNil(t, snap.View.Rows)
}

func TestExport(t *testing.T) {
	c := mounted(t, 5, 10)

	var buf bytes.Buffer
	_, err := c.Export(&buf, export.Options{})
	assert.ErrorIs(t, err, exselect.ErrNothingSelected)

	require.NoError(t, c.Order(0, models.Desc))
	require.NoError(t, c.ToggleRow(4, true))
	require.NoError(t, c.ToggleRow(1, true))

	res, err := c.Export(&buf, export.Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Rows[0].Index, "export ignores display order")
	assert.Equal(t, 4, res.Rows[1].Index)
	assert.NotZero(t, buf.Len())
}

func TestEditCellAndUndo(t *testing.T) {
	c := mounted(t, 12, 5)

	require.NoError(t, c.EditCell(1, 1, "42"))
	require.NoError(t, c.EditCell(1, 1, "3.5"))
	require.NoError(t, c.EditCell(1, 0, "renamed"))

	assert.Equal(t, 3.5, c.Dataset().Rows[1].Cells[1])
	assert.Equal(t, map[int]map[int]string{1: {0: "renamed", 1: "3.5"}}, c.PendingEdits())
	assert.Equal(t, 3, c.Snapshot().Edits)

	require.NoError(t, c.Undo())
	assert.Equal(t, "name-01", c.Dataset().Rows[1].Cells[0])
	assert.Equal(t, map[int]map[int]string{1: {1: "3.5"}}, c.PendingEdits())

	require.NoError(t, c.Undo())
	assert.Equal(t, int64(42), c.Dataset().Rows[1].Cells[1])

	require.NoError(t, c.Undo())
	assert.Equal(t, int64(1), c.Dataset().Rows[1].Cells[1])
	assert.Empty(t, c.PendingEdits())
	assert.ErrorIs(t, c.Undo(), ErrNothingToUndo)
}

func TestEditCellRejections(t *testing.T) {
	c := New(exselect.Options{PageLength: 5}, nil)
	assert.ErrorIs(t, c.EditCell(0, 0, "x"), exselect.ErrNoDataset)

	c.Load(dataset(12))
	assert.ErrorIs(t, c.EditCell(7, 0, "x"), ErrRowNotVisible)
	assert.ErrorIs(t, c.EditCell(0, 2, "x"), ErrColumnOutOfRange)
	assert.Empty(t, c.PendingEdits())
}

func TestEditsSurviveRedrawAndClearOnCommit(t *testing.T) {
	c := mounted(t, 12, 5)
	require.NoError(t, c.EditCell(0, 0, "zzz"))

	require.NoError(t, c.Search("zzz"))
	assert.Equal(t, []int{0}, c.Snapshot().View.Indices())

	c.MarkCommitted()
	assert.Empty(t, c.PendingEdits())
	assert.ErrorIs(t, c.Undo(), ErrNothingToUndo)
	assert.Equal(t, "zzz", c.Dataset().Rows[0].Cells[0])

	c.Load(dataset(3))
	assert.Zero(t, c.Snapshot().Edits)
}
