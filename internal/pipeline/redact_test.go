package pipeline

import (
	"testing"

	"famdir/internal"
)

func TestDisclose(t *testing.T) {
	cases := []struct {
		flag string
		want internal.Disclosure
	}{
		{"N", internal.DisclosureShare},
		{" N ", internal.DisclosureShare},
		{"Y", internal.DisclosureWithhold},
		{"n", internal.DisclosureUnrecognized},
		{"", internal.DisclosureUnrecognized},
		{"Directory Withholding-YN", internal.DisclosureSkip},
	}
	for _, tc := range cases {
		t.Run(tc.flag, func(t *testing.T) {
			if got := Disclose(tc.flag); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestRedactWithholdsEveryPrivateField(t *testing.T) {
	for _, flag := range []string{"Y", "maybe"} {
		r := guardianRow(2, flag, "Mother", "Doe, Jane", "10 Oak St", "3015551212")
		r.Cells["Home Address2"] = "Springfield, IL 62701"
		r.Cells["Parent/Guardian Email"] = "jane@example.com"

		out := Redact(r, flagColumn)
		private := []internal.Field{
			out.BirthDate, out.Phone, out.Address1, out.Address2,
			out.Relation, out.GuardianName, out.GuardianCell, out.GuardianEmail,
		}
		for i, f := range private {
			if !f.IsWithheld() || f.Value != "" {
				t.Fatalf("flag=%q field %d=%+v", flag, i, f)
			}
		}
		if out.Student != "Doe, Ann" || out.Grade != "K" || out.Teacher != "Smith" {
			t.Fatalf("out=%+v", out)
		}
	}
}

func TestRedactSharedRow(t *testing.T) {
	r := guardianRow(2, "N", "Mother", "Doe, Jane", "10 Oak St", "3015551212")
	out := Redact(r, flagColumn)
	if v, ok := out.Address1.Get(); !ok || v != "10 Oak St" {
		t.Fatalf("address1=%+v", out.Address1)
	}
	if out.Address2.State != internal.FieldAbsent {
		t.Fatalf("address2=%+v", out.Address2)
	}
	if out.BirthDate.String() != "2015-01-01" {
		t.Fatalf("dob=%+v", out.BirthDate)
	}
	if r.Cells["Home Address1"] != "10 Oak St" {
		t.Fatal("input row modified")
	}
}

func TestRedactSkipRowCarriesNoFields(t *testing.T) {
	r := guardianRow(2, "Directory Withholding", "", "", "", "")
	out := Redact(r, flagColumn)
	if out.Disclosure != internal.DisclosureSkip || out.GuardianName.State != internal.FieldAbsent {
		t.Fatalf("out=%+v", out)
	}
}
