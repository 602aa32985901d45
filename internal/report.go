package internal

func (r *Report) Warn(lineNo int, student, message string) {
	r.Warnings = append(r.Warnings, Warning{LineNo: lineNo, Student: student, Message: message})
}

func (r Report) Counts() map[string]int {
	return map[string]int{
		"accepted": r.Accepted,
		"withheld": r.Withheld,
		"skipped":  r.Skipped,
		"students": r.Students,
		"warnings": len(r.Warnings),
	}
}
