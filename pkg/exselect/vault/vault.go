// Package vault saves loaded datasets per owner, optionally encrypting every
// cell, and loads, patches, exports or clears them again.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/ukaji3/exselect-go/pkg/exselect/codec"
	"github.com/ukaji3/exselect-go/pkg/exselect/models"
)

var (
	// ErrUnknownMode indicates a save mode other than plain or encrypted.
	ErrUnknownMode = errors.New("unknown save mode")
	// ErrNoEdits indicates an update with nothing to write.
	ErrNoEdits = errors.New("no modified cells")
	// ErrCellOutOfRange indicates an edit outside the saved table.
	ErrCellOutOfRange = errors.New("edited cell is outside the saved table")
	// ErrRecordMismatch indicates edits made on a different table than the saved one.
	ErrRecordMismatch = errors.New("saved table differs from the loaded one")
)

// Vault combines a Store with a Cipher.
type Vault struct {
	store   Store
	cipher  *Cipher
	workers int
	logger  logrus.FieldLogger
	now     func() time.Time
}

// New returns a Vault. workers bounds concurrent row encryption.
func New(store Store, c *Cipher, workers int, logger logrus.FieldLogger) *Vault {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Vault{store: store, cipher: c, workers: workers, logger: logger, now: time.Now}
}

// Save stores ds for owner, replacing anything saved before.
func (v *Vault) Save(ctx context.Context, owner string, ds *models.Dataset, mode Mode) (*Record, error) {
	if ds == nil {
		return nil, exselect.ErrNoDataset
	}
	if mode != ModePlain && mode != ModeEncrypted {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	start := v.now()

	width := len(ds.Header)
	rows := make([][]string, len(ds.Rows))
	for i, row := range ds.Rows {
		cells := make([]string, width)
		for j := 0; j < width && j < len(row.Cells); j++ {
			cells[j] = codec.CellText(row.Cells[j])
		}
		rows[i] = cells
	}
	if mode == ModeEncrypted {
		sealed, err := v.cipher.SealTable(ctx, rows, v.workers)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt table: %w", err)
		}
		rows = sealed
	}

	rec := &Record{
		Name:        ds.Name,
		SheetName:   ds.SheetName,
		Fingerprint: ds.Fingerprint,
		Mode:        mode,
		Header:      append([]string(nil), ds.Header...),
		Rows:        rows,
		SavedAt:     start,
		UpdatedAt:   start,
	}
	if err := v.store.Put(ctx, owner, rec); err != nil {
		return nil, fmt.Errorf("failed to save table: %w", err)
	}

	v.logger.WithFields(logrus.Fields{
		"owner":   owner,
		"mode":    mode,
		"rows":    len(rows),
		"columns": width,
		"elapsed": v.now().Sub(start).String(),
	}).Info("table saved")
	return rec, nil
}

// Load returns the saved table as a dataset with fresh Original Indices.
// With decrypt false an encrypted table is returned as its ciphertext and
// without a fingerprint, so it can be viewed but never written back.
func (v *Vault) Load(ctx context.Context, owner string, decrypt bool) (*models.Dataset, error) {
	rec, rows, err := v.rows(ctx, owner, decrypt)
	if err != nil {
		return nil, err
	}

	sealed := rec.Mode == ModeEncrypted && !decrypt
	ds := &models.Dataset{
		Name:        rec.Name,
		SheetName:   rec.SheetName,
		Fingerprint: rec.Fingerprint,
		LoadedAt:    v.now(),
		Header:      rec.Header,
		Rows:        make([]models.Row, len(rows)),
	}
	if sealed {
		ds.Fingerprint = ""
	}
	for i, row := range rows {
		cells := make([]interface{}, len(rec.Header))
		for j := range cells {
			text := ""
			if j < len(row) {
				text = row[j]
			}
			if sealed {
				cells[j] = text
			} else {
				cells[j] = codec.ParseCell(text)
			}
		}
		ds.Rows[i] = models.Row{Index: i, Cells: cells}
	}
	return ds, nil
}

// UpdateCells writes edited cells into the saved table, sealing them when
// the table is encrypted. edits maps Original Index to column to text.
// fingerprint must match the saved table. It returns the number of rows touched.
func (v *Vault) UpdateCells(ctx context.Context, owner, fingerprint string, edits map[int]map[int]string) (int, error) {
	if len(edits) == 0 {
		return 0, ErrNoEdits
	}
	rec, err := v.store.Get(ctx, owner)
	if err != nil {
		return 0, err
	}
	if fingerprint == "" || rec.Fingerprint != fingerprint {
		return 0, ErrRecordMismatch
	}

	for index, cols := range edits {
		if index < 0 || index >= len(rec.Rows) {
			return 0, fmt.Errorf("%w: row %d", ErrCellOutOfRange, index)
		}
		for col, text := range cols {
			if col < 0 || col >= len(rec.Header) {
				return 0, fmt.Errorf("%w: column %d", ErrCellOutOfRange, col)
			}
			if rec.Mode == ModeEncrypted {
				if text, err = v.cipher.Seal(text); err != nil {
					return 0, err
				}
			}
			for len(rec.Rows[index]) < len(rec.Header) {
				rec.Rows[index] = append(rec.Rows[index], "")
			}
			rec.Rows[index][col] = text
		}
	}
	rec.UpdatedAt = v.now()

	if err := v.store.Put(ctx, owner, rec); err != nil {
		return 0, fmt.Errorf("failed to save table: %w", err)
	}
	v.logger.WithFields(logrus.Fields{"owner": owner, "rows": len(edits), "mode": rec.Mode}).Info("table updated")
	return len(edits), nil
}

// Export writes the saved table as a workbook. With decrypt false an
// encrypted table is written as ciphertext. It returns the data row count.
func (v *Vault) Export(ctx context.Context, w io.Writer, owner string, decrypt bool, sheet string) (int, error) {
	rec, rows, err := v.rows(ctx, owner, decrypt)
	if err != nil {
		return 0, err
	}

	table := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(rec.Header))
	for i, h := range rec.Header {
		header[i] = h
	}
	table = append(table, header)
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for j, text := range row {
			if rec.Mode == ModeEncrypted && !decrypt {
				cells[j] = text
			} else {
				cells[j] = codec.ParseCell(text)
			}
		}
		table = append(table, cells)
	}

	if err := codec.Encode(w, table, codec.EncodeOptions{SheetName: sheet}); err != nil {
		return 0, fmt.Errorf("encode saved table: %w", err)
	}
	return len(rows), nil
}

// Clear deletes the saved table.
func (v *Vault) Clear(ctx context.Context, owner string) error {
	if err := v.store.Delete(ctx, owner); err != nil {
		return err
	}
	v.logger.WithField("owner", owner).Info("table cleared")
	return nil
}

func (v *Vault) rows(ctx context.Context, owner string, decrypt bool) (*Record, [][]string, error) {
	rec, err := v.store.Get(ctx, owner)
	if err != nil {
		return nil, nil, err
	}
	rows := rec.Rows
	if rec.Mode == ModeEncrypted && decrypt {
		if rows, err = v.cipher.OpenTable(ctx, rec.Rows, v.workers); err != nil {
			return nil, nil, fmt.Errorf("failed to decrypt table: %w", err)
		}
	}
	return rec, rows, nil
}
