package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"famdir/internal"
)

func TestExportReviewXLSXWarningsSheet(t *testing.T) {
	dir := sampleDirectory()
	idx, err := BuildIndexes(dir)
	if err != nil {
		t.Fatal(err)
	}
	res := Result{Directory: dir, Indexes: idx, Report: internal.Report{Warnings: []internal.Warning{
		{LineNo: 4, Student: "Roe, Ben", Message: "no guardian email"},
		{Student: "Doe, Ann", Message: "duplicate email a@x.org"},
	}}}
	path := filepath.Join(t.TempDir(), "nested", ReviewFilename)
	if err := ExportReviewXLSX(res, path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 4 || sheets[0] != "Students" {
		t.Fatalf("sheets=%v", sheets)
	}
	rows, err := f.GetRows("Warnings")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][0] != "4" || rows[2][0] != "" {
		t.Fatalf("rows=%v", rows)
	}
	streets, err := f.GetRows("Streets")
	if err != nil {
		t.Fatal(err)
	}
	if len(streets) != 3 || streets[1][1] != "Doe, Ann" {
		t.Fatalf("streets=%v", streets)
	}
}

func TestExportReviewXLSXMarksWithheldGuardians(t *testing.T) {
	dir := internal.Directory{
		Students: map[string]*internal.StudentRecord{
			"wit": {ID: "wit", Name: "Poe, Wit", Grade: "K", Teacher: "Smith", Guardians: []internal.GuardianRelation{{}}},
		},
		Order: []string{"wit"},
	}
	path := filepath.Join(t.TempDir(), ReviewFilename)
	if err := ExportReviewXLSX(Result{Directory: dir}, path); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	v, err := f.GetCellValue("Students", "K2")
	if err != nil {
		t.Fatal(err)
	}
	if v != internal.WithheldMarker {
		t.Fatalf("details=%q", v)
	}
}
