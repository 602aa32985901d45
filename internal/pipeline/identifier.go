package pipeline

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"famdir/internal"
)

var (
	ErrUnresolvableIdentity = errors.New("row has no student name or student id")
	ErrMalformedDisplayName = errors.New("student name is not in \"Last, First\" form")
)

// StudentID hashes the explicit student id when the export carries one, otherwise the student
// name followed by the birth date. A withheld birth date contributes the withheld marker so
// that no hash of a private value ends up in a document anchor.
func StudentID(row internal.RedactedRow) (string, error) {
	if id := strings.TrimSpace(row.ExplicitID); id != "" {
		return digest("id:" + id), nil
	}
	name := strings.TrimSpace(row.Student)
	if name == "" {
		return "", fmt.Errorf("line %d: %w", row.LineNo, ErrUnresolvableIdentity)
	}
	return digest(name + row.BirthDate.String()), nil
}

// ClassID is the anchor for a homeroom.
func ClassID(grade, teacher string) string {
	return digest(grade + "\x1f" + teacher)
}

func digest(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
