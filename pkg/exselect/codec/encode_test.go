package codec

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestEncode(t *testing.T) {
	table := [][]interface{}{
		{"ID", "Name"},
		{int64(2), "Bob"},
		{int64(5), "Eve"},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, table, EncodeOptions{}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Failed to reopen encoded workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Selected Data" {
		t.Fatalf("Expected single sheet \"Selected Data\", got %v", sheets)
	}

	rows, err := f.GetRows("Selected Data")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0][1] != "Name" || rows[1][0] != "2" || rows[2][1] != "Eve" {
		t.Errorf("Unexpected rows %v", rows)
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil, EncodeOptions{}); err == nil {
		t.Error("Expected error for empty table")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected nothing written, got %d bytes", buf.Len())
	}
}

func TestRangeRef(t *testing.T) {
	tests := []struct {
		rows, cols int
		expected   string
	}{
		{1, 1, "A1:A1"},
		{3, 4, "A1:D3"},
		{10, 27, "A1:AA10"},
	}

	for _, tt := range tests {
		result, err := rangeRef(tt.rows, tt.cols)
		if err != nil {
			t.Errorf("rangeRef(%d, %d) failed: %v", tt.rows, tt.cols, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("rangeRef(%d, %d) = %q, expected %q", tt.rows, tt.cols, result, tt.expected)
		}
	}

	if _, err := rangeRef(0, 1); err == nil {
		t.Error("Expected error for empty range")
	}
}

func TestFindDataBounds(t *testing.T) {
	rows := [][]string{
		{},
		{"", "a", ""},
		{"", "", "", "b"},
	}
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow != 1 || maxRow != 2 || minCol != 1 || maxCol != 3 {
		t.Errorf("findDataBounds = (%d, %d, %d, %d), expected (1, 2, 1, 3)", minRow, maxRow, minCol, maxCol)
	}

	minRow, _, _, maxCol = findDataBounds([][]string{{""}})
	if minRow != -1 || maxCol != -1 {
		t.Errorf("Expected -1 bounds for empty sheet, got minRow=%d maxCol=%d", minRow, maxCol)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("payload"))
	b := Fingerprint([]byte("payload"))
	c := Fingerprint([]byte("other"))
	if a != b {
		t.Error("Expected identical payloads to share a fingerprint")
	}
	if a == c {
		t.Error("Expected different payloads to differ")
	}
}
