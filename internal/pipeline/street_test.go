package pipeline

import "testing"

func deref(v *string) string {
	if v == nil {
		return "<nil>"
	}
	return *v
}

func TestStreetName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4225 Sleaford Rd", "Sleaford Rd"},
		{"123 Main St Apt 4B", "Main St"},
		{"77 Pine Ave Unit 2", "Pine Ave"},
		{"5 Harbor Dr #12", "Harbor Dr"},
		{"900 Lake Shore Blvd Suite 300", "Lake Shore Blvd"},
		{"12 Elm St Fl 3", "Elm St"},
		{"PO Box 5", UnknownStreet},
		{"", UnknownStreet},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			line := tc.in
			got := StreetName(&line)
			if got == nil || *got != tc.want {
				t.Fatalf("got %s", deref(got))
			}
		})
	}

	if StreetName(nil) != nil {
		t.Fatal("nil line must give nil street")
	}
}
