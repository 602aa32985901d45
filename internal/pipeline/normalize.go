package pipeline

import (
	"errors"
	"fmt"

	"famdir/internal"
	"famdir/internal/util"
)

const (
	NoGradeSet   = "No Grade Set"
	NoTeacherSet = "No Teacher Set"
)

type promotedField struct {
	guardian func(*internal.GuardianRelation) *string
	student  func(*internal.StudentRecord) *string
}

var promotedFields = []promotedField{
	{
		guardian: func(g *internal.GuardianRelation) *string { return &g.Address1 },
		student:  func(s *internal.StudentRecord) *string { return &s.Address1 },
	},
	{
		guardian: func(g *internal.GuardianRelation) *string { return &g.Address2 },
		student:  func(s *internal.StudentRecord) *string { return &s.Address2 },
	},
	{
		guardian: func(g *internal.GuardianRelation) *string { return &g.Phone },
		student:  func(s *internal.StudentRecord) *string { return &s.Phone },
	},
	{
		guardian: func(g *internal.GuardianRelation) *string { return &g.Email },
		student:  func(s *internal.StudentRecord) *string { return &s.Email },
	},
	{
		guardian: func(g *internal.GuardianRelation) *string { return &g.Cell },
		student:  func(s *internal.StudentRecord) *string { return &s.Cell },
	},
}

// Normalize folds redacted rows into one record per student and then promotes the fields all
// guardians of a student agree on. Rows without a usable identity are fatal; every such row
// is reported in the returned error.
func Normalize(rows []internal.RedactedRow, report *internal.Report) (internal.Directory, error) {
	dir := internal.Directory{Students: map[string]*internal.StudentRecord{}}
	var fatal []error

	for _, row := range rows {
		if row.Disclosure == internal.DisclosureSkip {
			continue
		}
		id, err := StudentID(row)
		if err != nil {
			fatal = append(fatal, err)
			continue
		}
		if _, _, ok := util.SplitDisplayName(row.Student); !ok {
			fatal = append(fatal, fmt.Errorf("line %d: %q: %w", row.LineNo, row.Student, ErrMalformedDisplayName))
			continue
		}

		rec, seen := dir.Students[id]
		if !seen {
			rec = newStudentRecord(id, row, report)
			dir.Students[id] = rec
			dir.Order = append(dir.Order, id)
		} else {
			checkAgreement(rec, row, report)
		}

		guardian := guardianFromRow(row)
		if row.Disclosure == internal.DisclosureShare && guardian.Email == "" {
			report.Warn(row.LineNo, row.Student, "no guardian email")
		}
		rec.Guardians = append(rec.Guardians, guardian)
	}

	if len(fatal) > 0 {
		return internal.Directory{}, errors.Join(fatal...)
	}

	for _, id := range dir.Order {
		promote(dir.Students[id])
	}
	return dir, nil
}

func newStudentRecord(id string, row internal.RedactedRow, report *internal.Report) *internal.StudentRecord {
	rec := &internal.StudentRecord{
		ID:        id,
		Name:      row.Student,
		Grade:     row.Grade,
		Teacher:   row.Teacher,
		FirstLine: row.LineNo,
	}
	if rec.Grade == "" {
		rec.Grade = NoGradeSet
		report.Warn(row.LineNo, row.Student, "no grade")
	}
	if rec.Teacher == "" {
		rec.Teacher = NoTeacherSet
		report.Warn(row.LineNo, row.Student, "no homeroom teacher")
	}
	return rec
}

// checkAgreement flags repeated rows of a student that disagree with the first one. The first
// row still wins.
func checkAgreement(rec *internal.StudentRecord, row internal.RedactedRow, report *internal.Report) {
	grade := util.FirstNonEmpty(row.Grade, NoGradeSet)
	teacher := util.FirstNonEmpty(row.Teacher, NoTeacherSet)
	if row.Student != rec.Name {
		report.Warn(row.LineNo, rec.Name, fmt.Sprintf("student name %q differs from line %d", row.Student, rec.FirstLine))
	}
	if grade != rec.Grade {
		report.Warn(row.LineNo, rec.Name, fmt.Sprintf("grade %q differs from %q on line %d", grade, rec.Grade, rec.FirstLine))
	}
	if teacher != rec.Teacher {
		report.Warn(row.LineNo, rec.Name, fmt.Sprintf("teacher %q differs from %q on line %d", teacher, rec.Teacher, rec.FirstLine))
	}
}

// guardianFromRow keeps present values only; withheld and absent fields are both omitted.
func guardianFromRow(row internal.RedactedRow) internal.GuardianRelation {
	value := func(f internal.Field) string {
		v, _ := f.Get()
		return v
	}
	return internal.GuardianRelation{
		Relation: value(row.Relation),
		Name:     value(row.GuardianName),
		Email:    value(row.GuardianEmail),
		Cell:     value(row.GuardianCell),
		Phone:    value(row.Phone),
		Address1: value(row.Address1),
		Address2: value(row.Address2),
	}
}

func promote(rec *internal.StudentRecord) {
	for _, f := range promotedFields {
		distinct := map[string]struct{}{}
		only := ""
		for i := range rec.Guardians {
			if v := *f.guardian(&rec.Guardians[i]); v != "" {
				distinct[v] = struct{}{}
				only = v
			}
		}
		if len(distinct) != 1 {
			continue
		}
		*f.student(rec) = only
		for i := range rec.Guardians {
			*f.guardian(&rec.Guardians[i]) = ""
		}
	}

	if rec.Phone != "" && rec.Phone == rec.Cell {
		rec.Cell = ""
	}
}
