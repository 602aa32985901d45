package pipeline

import (
	"regexp"
	"strings"
)

const UnknownStreet = "Unknown"

var (
	unitSuffixes = []*regexp.Regexp{
		regexp.MustCompile(` Apt\b.*$`),
		regexp.MustCompile(` Unit\b.*$`),
		regexp.MustCompile(` Fl(oor)?\b.*$`),
		regexp.MustCompile(` Suite\b.*$`),
		regexp.MustCompile(` Ste\b.*$`),
		regexp.MustCompile(` ?#.*$`),
	}
	houseNumberStreet = regexp.MustCompile(`^\d+ ([A-Za-z0-9 ]+)`)
)

// StreetName reduces a first address line to its street: "123 Main St Apt 4B" gives
// "Main St". A nil line gives nil and a line without a house number gives UnknownStreet.
func StreetName(line *string) *string {
	if line == nil {
		return nil
	}
	s := strings.TrimSpace(*line)
	for _, re := range unitSuffixes {
		s = re.ReplaceAllString(s, "")
	}
	m := houseNumberStreet.FindStringSubmatch(s)
	street := UnknownStreet
	if len(m) == 2 {
		if v := strings.TrimSpace(m[1]); v != "" {
			street = v
		}
	}
	return &street
}
