package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"famdir/internal"
	"famdir/internal/util"
)

const (
	roleContact  = "Contact"
	roleAdmin    = "Admin"
	roleStudent  = "Student"
	familyParent = "Parent/Guardian"
	familyChild  = "Child"
)

var cityStateZip = regexp.MustCompile(`([\w\s+]+), (\w\w) (\d+)`)

// ContactColumns is the column order of the membership import file.
var ContactColumns = []string{
	"Family Name", "Family Role", "Address", "First Name", "Last Name",
	"City", "State", "Zip", "Email", "Phone Number", "Organization Role", "Hubs",
}

type MembershipOptions struct {
	EndYear     int
	AdminEmails []string
}

// RunContext holds the per-run registries: every hub name produced and the numbering of
// families that share a name.
type RunContext struct {
	hubs     map[string]struct{}
	families map[string]map[string]int
}

func NewRunContext() *RunContext {
	return &RunContext{hubs: map[string]struct{}{}, families: map[string]map[string]int{}}
}

func (c *RunContext) HubName(label string) string {
	name := util.HubSlug(label)
	c.hubs[name] = struct{}{}
	return name
}

// FamilyName numbers repeated family names: the first "Doe" family stays "Doe", the next
// distinct one becomes "Doe#2".
func (c *RunContext) FamilyName(name, familyKey string) string {
	seen, ok := c.families[name]
	if !ok {
		seen = map[string]int{}
		c.families[name] = seen
	}
	idx, ok := seen[familyKey]
	if !ok {
		idx = len(seen) + 1
		seen[familyKey] = idx
	}
	if idx == 1 {
		return name
	}
	return name + "#" + strconv.Itoa(idx)
}

func (c *RunContext) Hubs() []string {
	out := make([]string, 0, len(c.hubs))
	for h := range c.hubs {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

type family struct {
	key      string
	students []*internal.StudentRecord
}

// FamilyKey groups students living at one address; a phone number or the student itself is
// the fallback.
func FamilyKey(rec *internal.StudentRecord) string {
	if line := primaryAddress(rec); line != "" {
		return "addr:" + strings.ToLower(line)
	}
	if rec.Phone != "" {
		return "phone:" + rec.Phone
	}
	return "student:" + rec.ID
}

func families(dir internal.Directory) []*family {
	byKey := map[string]*family{}
	var out []*family
	for _, id := range dir.Order {
		rec := dir.Students[id]
		key := FamilyKey(rec)
		fam, ok := byKey[key]
		if !ok {
			fam = &family{key: key}
			byKey[key] = fam
			out = append(out, fam)
		}
		fam.students = append(fam.students, rec)
	}
	return out
}

// BuildContacts flattens the directory into membership import rows: one per named guardian
// and one per student, grouped into families.
func BuildContacts(dir internal.Directory, opts MembershipOptions, ctx *RunContext, report *internal.Report) []internal.Contact {
	admins := map[string]struct{}{}
	for _, e := range opts.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	year := strconv.Itoa(opts.EndYear)

	var out []internal.Contact
	for _, fam := range families(dir) {
		familyLast, _, _ := util.SplitDisplayName(fam.students[0].Name)
		familyName := ctx.FamilyName(familyLast, fam.key)

		grades, teachers := classLabels(fam.students...)

		seenGuardians := map[guardianKey]struct{}{}
		familyHasEmail := false
		for _, s := range fam.students {
			for _, g := range s.Guardians {
				if g.Name == "" {
					continue
				}
				email := util.FirstNonEmpty(g.Email, s.Email)
				phone := util.FirstNonEmpty(g.Cell, g.Phone, s.Cell, s.Phone)
				key := guardianKey{name: g.Name, email: strings.ToLower(email), phone: phone}
				if _, dup := seenGuardians[key]; dup {
					continue
				}
				seenGuardians[key] = struct{}{}

				last, first, ok := util.SplitDisplayName(g.Name)
				if !ok {
					last = g.Name
				}
				if email != "" {
					familyHasEmail = true
				}
				role := roleContact
				if _, ok := admins[strings.ToLower(email)]; ok {
					role = roleAdmin
				}
				c := internal.Contact{
					FamilyName:       familyName,
					FamilyRole:       familyParent,
					FirstName:        first,
					LastName:         last,
					Email:            email,
					Phone:            phone,
					OrganizationRole: role,
					Hubs:             hubString(ctx, grades, teachers, roleContact, year),
				}
				setAddress(&c, util.FirstNonEmpty(g.Address1, s.Address1), util.FirstNonEmpty(g.Address2, s.Address2))
				out = append(out, c)
			}
		}
		if !familyHasEmail {
			report.Warn(fam.students[0].FirstLine, fam.students[0].Name, "no family email")
		}

		for _, s := range fam.students {
			last, first, _ := util.SplitDisplayName(s.Name)
			sg, st := classLabels(s)
			c := internal.Contact{
				FamilyName:       familyName,
				FamilyRole:       familyChild,
				FirstName:        first,
				LastName:         last,
				OrganizationRole: roleStudent,
				Hubs:             hubString(ctx, sg, st, roleStudent, year),
			}
			setAddress(&c, s.Address1, s.Address2)
			out = append(out, c)
		}
	}

	checkContacts(out, report)
	return out
}

// guardianKey identifies a guardian by the values written to the import. Siblings may carry
// the same guardian with different fields promoted away.
type guardianKey struct {
	name  string
	email string
	phone string
}

// classLabels collects the grade and teacher labels that become hubs. Placeholders for a
// missing grade or teacher are left out.
func classLabels(students ...*internal.StudentRecord) (grades, teachers map[string]struct{}) {
	grades, teachers = map[string]struct{}{}, map[string]struct{}{}
	for _, s := range students {
		if s.Grade != NoGradeSet {
			grades[s.Grade] = struct{}{}
		}
		if s.Teacher != NoTeacherSet {
			teachers[s.Teacher] = struct{}{}
		}
	}
	return grades, teachers
}

func hubString(ctx *RunContext, grades, teachers map[string]struct{}, role, year string) string {
	hubs := make([]string, 0, len(grades)+len(teachers))
	for g := range grades {
		hubs = append(hubs, strings.Join([]string{ctx.HubName("grade-" + g), role, year}, ":"))
	}
	for t := range teachers {
		hubs = append(hubs, strings.Join([]string{ctx.HubName("teacher-" + t), role, year}, ":"))
	}
	sort.Strings(hubs)
	return strings.Join(hubs, "+")
}

func setAddress(c *internal.Contact, line1, line2 string) {
	c.Address = line1
	if m := cityStateZip.FindStringSubmatch(line2); len(m) == 4 {
		c.City = strings.TrimSpace(m[1])
		c.State = m[2]
		c.Zip = m[3]
	}
}

func checkContacts(contacts []internal.Contact, report *internal.Report) {
	validate := validator.New()
	seenEmails := map[string]struct{}{}
	for _, c := range contacts {
		who := strings.TrimSpace(c.LastName + ", " + c.FirstName)
		if err := validate.Struct(c); err != nil {
			report.Warn(0, who, fmt.Sprintf("contact not importable: %v", err))
		}
		if c.OrganizationRole == roleStudent {
			continue
		}
		if c.Email == "" {
			report.Warn(0, who, "guardian has no email, the membership import will reject it")
			continue
		}
		key := strings.ToLower(c.Email)
		if _, dup := seenEmails[key]; dup {
			report.Warn(0, who, "duplicate email "+c.Email)
			continue
		}
		seenEmails[key] = struct{}{}
	}
}
