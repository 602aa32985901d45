package pipeline

import (
	"fmt"
	"sort"

	"famdir/internal"
	"famdir/internal/util"
)

// seededGrades always lead the class listing, even in a year without them.
var seededGrades = []string{"SE PreK", "K"}

// BuildIndexes derives the class, first name, last name and street views of a directory.
// Students keep their first-seen order inside every group.
func BuildIndexes(dir internal.Directory) (internal.Indexes, error) {
	classes := map[string]map[string][]string{}
	firstNames := map[string][]string{}
	lastNames := map[string][]string{}
	streets := map[string][]string{}
	seen := map[string]struct{}{}

	for _, id := range dir.Order {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rec, ok := dir.Students[id]
		if !ok {
			continue
		}

		if _, ok := classes[rec.Grade]; !ok {
			classes[rec.Grade] = map[string][]string{}
		}
		classes[rec.Grade][rec.Teacher] = append(classes[rec.Grade][rec.Teacher], id)

		last, first, ok := util.SplitDisplayName(rec.Name)
		if !ok {
			return internal.Indexes{}, fmt.Errorf("line %d: %q: %w", rec.FirstLine, rec.Name, ErrMalformedDisplayName)
		}
		firstNames[first] = append(firstNames[first], id)
		lastNames[last] = append(lastNames[last], id)

		if line := primaryAddress(rec); line != "" {
			if street := StreetName(&line); street != nil && *street != UnknownStreet {
				streets[*street] = append(streets[*street], id)
			}
		}
	}

	return internal.Indexes{
		ByClass:     classGroups(classes),
		ByFirstName: keyGroups(firstNames),
		ByLastName:  keyGroups(lastNames),
		ByStreet:    keyGroups(streets),
	}, nil
}

// primaryAddress is the promoted address, or the first guardian address when guardians
// live apart.
func primaryAddress(rec *internal.StudentRecord) string {
	if rec.Address1 != "" {
		return rec.Address1
	}
	for _, g := range rec.Guardians {
		if g.Address1 != "" {
			return g.Address1
		}
	}
	return ""
}

func classGroups(classes map[string]map[string][]string) []internal.GradeGroup {
	grades := make([]string, 0, len(classes)+len(seededGrades))
	seeded := map[string]struct{}{}
	for _, g := range seededGrades {
		grades = append(grades, g)
		seeded[g] = struct{}{}
	}
	rest := make([]string, 0, len(classes))
	for g := range classes {
		if _, ok := seeded[g]; !ok {
			rest = append(rest, g)
		}
	}
	sort.Strings(rest)
	grades = append(grades, rest...)

	out := make([]internal.GradeGroup, 0, len(grades))
	for _, grade := range grades {
		group := internal.GradeGroup{Grade: grade, Teachers: []internal.TeacherGroup{}}
		teachers := make([]string, 0, len(classes[grade]))
		for t := range classes[grade] {
			teachers = append(teachers, t)
		}
		sort.Strings(teachers)
		for _, teacher := range teachers {
			group.Teachers = append(group.Teachers, internal.TeacherGroup{
				Teacher:  teacher,
				ClassID:  ClassID(grade, teacher),
				Students: classes[grade][teacher],
			})
		}
		out = append(out, group)
	}
	return out
}

func keyGroups(groups map[string][]string) []internal.KeyGroup {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]internal.KeyGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, internal.KeyGroup{Key: k, Students: groups[k]})
	}
	return out
}
