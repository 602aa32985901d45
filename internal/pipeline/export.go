package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"famdir/internal"
)

const (
	sheetStudents = "Students"
	sheetClasses  = "Classes"
	sheetStreets  = "Streets"
	sheetWarnings = "Warnings"
)

// ExportReviewXLSX writes the operator's pre-distribution check workbook.
func ExportReviewXLSX(res Result, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetStudents); err != nil {
		return err
	}
	for _, name := range []string{sheetClasses, sheetStreets, sheetWarnings} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	writeRows(f, sheetStudents, []string{
		"student_id", "student", "grade", "teacher", "address1", "address2", "phone", "email", "cell",
		"guardians", "guardian_details",
	}, studentRows(res.Directory))
	writeRows(f, sheetClasses, []string{"class_id", "grade", "teacher", "students"}, classRows(res))
	writeRows(f, sheetStreets, []string{"street", "students"}, streetRows(res))
	writeRows(f, sheetWarnings, []string{"line", "student", "warning"}, warningRows(res.Report))

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
}

func studentRows(dir internal.Directory) [][]any {
	out := make([][]any, 0, len(dir.Order))
	for _, id := range dir.Order {
		s := dir.Students[id]
		details := make([]string, 0, len(s.Guardians))
		for _, g := range s.Guardians {
			if g.IsEmpty() {
				details = append(details, internal.WithheldMarker)
				continue
			}
			parts := []string{}
			for _, v := range []string{g.Relation, g.Name, g.Email, g.Cell, g.Phone, g.Address1, g.Address2} {
				if v != "" {
					parts = append(parts, v)
				}
			}
			details = append(details, strings.Join(parts, " / "))
		}
		out = append(out, []any{
			s.ID, s.Name, s.Grade, s.Teacher, s.Address1, s.Address2, s.Phone, s.Email, s.Cell,
			len(s.Guardians), strings.Join(details, "\n"),
		})
	}
	return out
}

func classRows(res Result) [][]any {
	var out [][]any
	for _, g := range res.Indexes.ByClass {
		for _, t := range g.Teachers {
			out = append(out, []any{t.ClassID, g.Grade, t.Teacher, studentNames(res.Directory, t.Students)})
		}
	}
	return out
}

func streetRows(res Result) [][]any {
	out := make([][]any, 0, len(res.Indexes.ByStreet))
	for _, g := range res.Indexes.ByStreet {
		out = append(out, []any{g.Key, studentNames(res.Directory, g.Students)})
	}
	return out
}

func warningRows(report internal.Report) [][]any {
	out := make([][]any, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		line := any("")
		if w.LineNo > 0 {
			line = w.LineNo
		}
		out = append(out, []any{line, w.Student, w.Message})
	}
	return out
}

func studentNames(dir internal.Directory, ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := dir.Students[id]; ok {
			names = append(names, s.Name)
		}
	}
	return strings.Join(names, "; ")
}

// ExportContactsCSV writes the membership platform import file.
func ExportContactsCSV(contacts []internal.Contact, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(ContactColumns); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := w.Write([]string{
			c.FamilyName, c.FamilyRole, c.Address, c.FirstName, c.LastName,
			c.City, c.State, c.Zip, c.Email, c.Phone, c.OrganizationRole, c.Hubs,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
