package roster

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	blob := mkXLSX([][]any{
		{" Student ", "Grade", "Directory Withholding-YN", "Home Address1", ""},
		{"Doe,  Ann", "K", "N", "10 Oak St"},
		{"", "", "", ""},
		{"Roe, Ben", 1, "Y"},
	})
	pool, err := Read(blob)
	if err != nil {
		t.Fatal(err)
	}
	if pool.WithholdingKey != "Directory Withholding-YN" {
		t.Fatalf("key=%q", pool.WithholdingKey)
	}
	if len(pool.Headers) != 4 {
		t.Fatalf("headers=%v", pool.Headers)
	}
	if len(pool.Rows) != 2 {
		t.Fatalf("len=%d", len(pool.Rows))
	}
	first := pool.Rows[0]
	if first.LineNo != 2 || first.Get("Student") != "Doe, Ann" || first.Get("Home Address1") != "10 Oak St" {
		t.Fatalf("row=%+v", first)
	}
	second := pool.Rows[1]
	if second.LineNo != 4 || second.Get("Grade") != "1" || second.Get("Home Address1") != "" {
		t.Fatalf("row=%+v", second)
	}
}

func TestReadHTMLTable(t *testing.T) {
	blob := []byte(`<html><body>
<table><tr><td>Report generated 2026-09-01</td></tr></table>
<table>
<tr><th>Student</th><th>Directory Withholding</th><th>Parent/Guardian Email</th></tr>
<tr><td>Doe, Ann</td><td>N</td><td>jane@example.com</td></tr>
<tr><td>Poe, Dee</td><td>Y</td><td></td></tr>
</table></body></html>`)
	pool, err := Read(blob)
	if err != nil {
		t.Fatal(err)
	}
	if pool.WithholdingKey != "Directory Withholding" {
		t.Fatalf("key=%q", pool.WithholdingKey)
	}
	if len(pool.Rows) != 2 || pool.Rows[0].Get("Parent/Guardian Email") != "jane@example.com" {
		t.Fatalf("rows=%+v", pool.Rows)
	}
}

func TestReadMissingWithholdingColumn(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Student", "Grade"},
		{"Doe, Ann", "K"},
	})
	if _, err := Read(blob); !errors.Is(err, ErrMissingWithholdingColumn) {
		t.Fatalf("err=%v", err)
	}
}

func TestReadFirstDuplicateHeaderWins(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Student", "Phone", "Directory Withholding YN", "Phone"},
		{"Doe, Ann", "3015551212", "N", "3015559999"},
	})
	pool, err := Read(blob)
	if err != nil {
		t.Fatal(err)
	}
	if got := pool.Rows[0].Get("Phone"); got != "3015551212" {
		t.Fatalf("phone=%q", got)
	}
}

func TestReadFileSetsSourceAndRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.xlsx")
	if err := os.WriteFile(path, mkXLSX([][]any{{"Student", "Directory Withholding-YN"}, {"Doe, Ann", "N"}}), 0o644); err != nil {
		t.Fatal(err)
	}
	pool, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if pool.Source != path {
		t.Fatalf("source=%q", pool.Source)
	}
	if len(pool.SourceHash) != 64 {
		t.Fatalf("hash=%q", pool.SourceHash)
	}

	csvPath := filepath.Join(dir, "roster.csv")
	if err := os.WriteFile(csvPath, []byte("Student,Grade\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(csvPath); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
