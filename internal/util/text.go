package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces  = regexp.MustCompile(`\s+`)
	reHubJunk = regexp.MustCompile(`[^A-Za-z0-9\-.'/]`)
)

// NormalizeCell is applied to every header and cell read from a roster export.
func NormalizeCell(input string) string {
	s := norm.NFC.String(input)
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return NormalizeSpaces(s)
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// SplitDisplayName splits "Last, First Middle" into its two halves.
func SplitDisplayName(name string) (last, first string, ok bool) {
	idx := strings.Index(name, ",")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(name[:idx]), strings.TrimSpace(name[idx+1:]), true
}

// HubSlug turns a label like "teacher-Smith, Jane" into "teacher-Smith-Jane".
func HubSlug(input string) string {
	s := strings.ReplaceAll(input, ", ", "-")
	s = strings.ReplaceAll(s, ",", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return reHubJunk.ReplaceAllString(s, "")
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
