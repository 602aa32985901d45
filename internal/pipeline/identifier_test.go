package pipeline

import (
	"errors"
	"testing"

	"famdir/internal"
)

func TestStudentID(t *testing.T) {
	base := internal.RedactedRow{LineNo: 2, Student: "Doe, Ann", BirthDate: internal.Present("2015-01-01")}

	a, err := StudentID(base)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := StudentID(base)
	if a != b || len(a) != 40 {
		t.Fatalf("a=%q b=%q", a, b)
	}

	other := base
	other.BirthDate = internal.Present("2016-01-01")
	if c, _ := StudentID(other); c == a {
		t.Fatal("birth date must be part of the key")
	}

	withID := base
	withID.ExplicitID = "1001"
	renamed := withID
	renamed.Student = "Doe, Annie"
	x, _ := StudentID(withID)
	y, _ := StudentID(renamed)
	if x != y || x == a {
		t.Fatalf("explicit id must win: %q %q", x, y)
	}

	withheld := base
	withheld.BirthDate = internal.Withheld()
	if w, _ := StudentID(withheld); w == a {
		t.Fatal("withheld birth date must not hash the real value")
	}
}

func TestStudentIDWithoutIdentity(t *testing.T) {
	_, err := StudentID(internal.RedactedRow{LineNo: 7, Student: "  "})
	if !errors.Is(err, ErrUnresolvableIdentity) {
		t.Fatalf("err=%v", err)
	}
}

func TestClassID(t *testing.T) {
	if ClassID("K", "Smith") != ClassID("K", "Smith") {
		t.Fatal("class id not stable")
	}
	if ClassID("K", "Smith") == ClassID("1", "Smith") || ClassID("K1", "Smith") == ClassID("K", "1Smith") {
		t.Fatal("class id collision")
	}
}
