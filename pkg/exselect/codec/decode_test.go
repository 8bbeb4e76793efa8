package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ukaji3/exselect-go/pkg/exselect"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx with the given rows on Sheet1.
func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i := range rows {
		row := rows[i]
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("Failed to set row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write test workbook: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"Name", "Amount", "Code"},
		{"Alice", 100, "007"},
		{"Bob", 200.5, "A1"},
		{"Carol"},
	})

	ds, err := Decode(bytes.NewReader(data), DecodeOptions{Name: "people.xlsx"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if ds.Name != "people.xlsx" || ds.SheetName != "Sheet1" {
		t.Errorf("Expected people.xlsx/Sheet1, got %s/%s", ds.Name, ds.SheetName)
	}
	if len(ds.Header) != 3 || ds.Header[0] != "Name" || ds.Header[2] != "Code" {
		t.Errorf("Unexpected header %v", ds.Header)
	}
	if ds.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", ds.Len())
	}

	for i, row := range ds.Rows {
		if row.Index != i {
			t.Errorf("Row %d has Original Index %d", i, row.Index)
		}
		if len(row.Cells) != 3 {
			t.Errorf("Row %d has %d cells, expected 3", i, len(row.Cells))
		}
	}

	if ds.Rows[0].Cells[1] != int64(100) {
		t.Errorf("Expected int64(100), got %v (type: %T)", ds.Rows[0].Cells[1], ds.Rows[0].Cells[1])
	}
	if ds.Rows[1].Cells[1] != 200.5 {
		t.Errorf("Expected 200.5, got %v", ds.Rows[1].Cells[1])
	}
	if ds.Rows[0].Cells[2] != "007" {
		t.Errorf("Expected \"007\" to stay a string, got %v (type: %T)", ds.Rows[0].Cells[2], ds.Rows[0].Cells[2])
	}
	if ds.Rows[2].Cells[2] != "" {
		t.Errorf("Expected padded empty cell, got %v", ds.Rows[2].Cells[2])
	}
	if len(ds.Fingerprint) != 64 {
		t.Errorf("Expected 64 hex chars of fingerprint, got %q", ds.Fingerprint)
	}
}

func TestDecodeSkipsBlankRows(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"ID", "Value"},
		{nil, nil},
		{1, "a"},
		{nil, nil},
		{2, "b"},
	})

	ds, err := Decode(bytes.NewReader(data), DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", ds.Len())
	}
	if ds.Rows[1].Index != 1 || ds.Rows[1].Cells[1] != "b" {
		t.Errorf("Unexpected second row %+v", ds.Rows[1])
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"ID", "Value"},
	})

	ds, err := Decode(bytes.NewReader(data), DecodeOptions{Name: "header.xlsx"})
	if !errors.Is(err, exselect.ErrMalformedInput) {
		t.Fatalf("Expected ErrMalformedInput, got %v", err)
	}
	if ds != nil {
		t.Errorf("Expected no dataset, got %+v", ds)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not a zip archive"), DecodeOptions{Name: "bad.xlsx"})
	if !errors.Is(err, exselect.ErrInvalidFormat) {
		t.Fatalf("Expected ErrInvalidFormat, got %v", err)
	}

	var decodeErr *exselect.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected *DecodeError, got %T", err)
	}
	if decodeErr.Stage != "open" || decodeErr.Name != "bad.xlsx" {
		t.Errorf("Unexpected decode error %+v", decodeErr)
	}
}

func TestDecodeTooLarge(t *testing.T) {
	data := workbook(t, [][]interface{}{{"A"}, {1}})

	_, err := Decode(bytes.NewReader(data), DecodeOptions{MaxBytes: 16})
	if !errors.Is(err, exselect.ErrTooLarge) {
		t.Fatalf("Expected ErrTooLarge, got %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := os.WriteFile(tmpFile, workbook(t, [][]interface{}{{"H"}, {"v"}}), 0644); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	ds, err := DecodeFile(tmpFile, DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if ds.Name != "test.xlsx" {
		t.Errorf("Expected name test.xlsx, got %q", ds.Name)
	}

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.xlsx"), DecodeOptions{})
	if !errors.Is(err, exselect.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"0", int64(0)},
		{"0.5", 0.5},
		{"007", "007"},
		{"-01", "-01"},
		{"NaN", "NaN"},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result != tt.expected {
			t.Errorf("parseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}

func TestNormalizeHeaders(t *testing.T) {
	got := NormalizeHeaders([]string{"name", "", "age", "  ", "city"})
	expected := []string{"name", "Unnamed_A", "age", "Unnamed_B", "city"}

	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("NormalizeHeaders()[%d] = %q, expected %q", i, got[i], expected[i])
		}
	}
}

func TestExcelColumnName(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		if result := excelColumnName(tt.index); result != tt.expected {
			t.Errorf("excelColumnName(%d) = %q, expected %q", tt.index, result, tt.expected)
		}
	}
}
