package pipeline

import (
	"strings"

	"famdir/internal"
)

const (
	flagShare    = "N"
	flagWithhold = "Y"
)

// Disclose classifies a withholding flag value.
func Disclose(flag string) internal.Disclosure {
	flag = strings.TrimSpace(flag)
	switch {
	case flag == flagShare:
		return internal.DisclosureShare
	case flag == flagWithhold:
		return internal.DisclosureWithhold
	case strings.Contains(strings.ToLower(flag), "withholding"):
		return internal.DisclosureSkip
	default:
		return internal.DisclosureUnrecognized
	}
}

// Redact picks the canonical fields of a row and, unless the family agreed to share, replaces
// every private field with a withheld marker. The input row is not modified.
func Redact(row internal.RawRow, withholdingKey string) internal.RedactedRow {
	out := internal.RedactedRow{
		LineNo:     row.LineNo,
		Disclosure: Disclose(row.Get(withholdingKey)),
		ExplicitID: pick(row, studentIDColumns),
		Student:    pick(row, studentColumns),
		Grade:      pick(row, gradeColumns),
		Teacher:    pick(row, teacherColumns),
	}
	if out.Disclosure == internal.DisclosureSkip {
		return out
	}

	if out.Disclosure != internal.DisclosureShare {
		w := internal.Withheld()
		out.BirthDate, out.Phone, out.Address1, out.Address2 = w, w, w, w
		out.Relation, out.GuardianName, out.GuardianCell, out.GuardianEmail = w, w, w, w
		return out
	}

	out.BirthDate = internal.PresentOrAbsent(pick(row, birthDateColumns))
	out.Phone = internal.PresentOrAbsent(pick(row, phoneColumns))
	if line1, line2, ok := Address(row); ok {
		out.Address1 = internal.Present(line1)
		out.Address2 = internal.PresentOrAbsent(line2)
	}
	out.Relation = internal.PresentOrAbsent(pick(row, relationColumns))
	out.GuardianName = internal.PresentOrAbsent(GuardianName(row))
	out.GuardianCell = internal.PresentOrAbsent(GuardianPhone(row))
	out.GuardianEmail = internal.PresentOrAbsent(GuardianEmail(row))
	return out
}
