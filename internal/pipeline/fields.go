package pipeline

import (
	"strings"

	"famdir/internal"
)

var (
	studentColumns      = []string{"Student", "Student Name"}
	studentIDColumns    = []string{"Student ID", "Student Number", "Student Id"}
	birthDateColumns    = []string{"Birth Date", "Birthdate", "DOB"}
	gradeColumns        = []string{"Grade"}
	teacherColumns      = []string{"Homeroom Teacher", "Teacher"}
	relationColumns     = []string{"Relation", "Relationship"}
	guardianNameColumns = []string{"Parent/Guardian Name", "Name"}
	guardianCellColumns = []string{"Parent/Guardian Cell Phone", "Cell Phone", "Phone"}
	guardianMailColumns = []string{"Parent/Guardian Email", "Email"}
	phoneColumns        = []string{"Phone", "Home Phone"}

	addressPairs = [][2]string{
		{"Home Address1", "Home Address2"},
		{"Mailing Address1", "Mailing Address2"},
		{"Address1", "Address2"},
	}
)

// pick returns the first non-empty value among the aliased columns.
func pick(row internal.RawRow, columns []string) string {
	for _, col := range columns {
		if v := strings.TrimSpace(row.Get(col)); v != "" {
			return v
		}
	}
	return ""
}

// Address returns the first address pair whose first line is set. Lines are never mixed
// across sources.
func Address(row internal.RawRow) (line1, line2 string, ok bool) {
	for _, pair := range addressPairs {
		first := strings.TrimSpace(row.Get(pair[0]))
		if first == "" {
			continue
		}
		return first, strings.TrimSpace(row.Get(pair[1])), true
	}
	return "", "", false
}

func GuardianName(row internal.RawRow) string  { return pick(row, guardianNameColumns) }
func GuardianPhone(row internal.RawRow) string { return pick(row, guardianCellColumns) }
func GuardianEmail(row internal.RawRow) string { return pick(row, guardianMailColumns) }
