package pipeline

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"famdir/internal"
)

const flagColumn = "Directory Withholding-YN"

func raw(line int, cells map[string]string) internal.RawRow {
	return internal.RawRow{LineNo: line, Cells: cells}
}

// guardianRow is one roster line for "Doe, Ann" in the Smith kindergarten class.
func guardianRow(line int, flag, relation, guardian, address1, phone string) internal.RawRow {
	return raw(line, map[string]string{
		flagColumn:             flag,
		"Student":              "Doe, Ann",
		"Birth Date":           "2015-01-01",
		"Grade":                "K",
		"Homeroom Teacher":     "Smith",
		"Relation":             relation,
		"Parent/Guardian Name": guardian,
		"Home Address1":        address1,
		"Phone":                phone,
	})
}

func redactAll(rows ...internal.RawRow) []internal.RedactedRow {
	out := make([]internal.RedactedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, Redact(r, flagColumn))
	}
	return out
}

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
