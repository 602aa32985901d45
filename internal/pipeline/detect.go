package pipeline

import "strings"

type DetectResult struct {
	IsRoster    bool
	Score       float64
	Reason      string
	Attachments []string
}

var detectKeywords = []string{"roster", "directory", "student", "export", "enrollment", "homeroom"}

// DetectRosterExport scores a fetched message on its subject and attachment names. Only
// messages carrying a spreadsheet can pass.
func DetectRosterExport(subject string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
	}

	var sheets []string
	for _, name := range attachmentNames {
		if IsSpreadsheetName(name) {
			sheets = append(sheets, name)
			ln := strings.ToLower(name)
			for _, kw := range detectKeywords {
				if strings.Contains(ln, kw) {
					score += 0.15
					break
				}
			}
		}
	}
	if len(sheets) > 0 {
		score += 0.4
	}
	if score > 1 {
		score = 1
	}

	isRoster := len(sheets) > 0 && score >= 0.5
	reason := "rules_negative"
	if isRoster {
		reason = "rules_positive"
	} else if len(sheets) == 0 {
		reason = "no_spreadsheet"
	}

	return DetectResult{IsRoster: isRoster, Score: score, Reason: reason, Attachments: sheets}
}

func IsSpreadsheetName(name string) bool {
	ln := strings.ToLower(strings.TrimSpace(name))
	for _, ext := range []string{".xlsx", ".xls", ".htm", ".html"} {
		if strings.HasSuffix(ln, ext) {
			return true
		}
	}
	return false
}
