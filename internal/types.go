package internal

// WithheldMarker is what a withheld field prints as when a renderer needs text for it.
const WithheldMarker = "(withheld)"

type FieldState int

const (
	FieldAbsent FieldState = iota
	FieldWithheld
	FieldPresent
)

// Field is one privacy-aware cell value. The zero value is absent.
type Field struct {
	State FieldState
	Value string
}

func Present(value string) Field { return Field{State: FieldPresent, Value: value} }

func Withheld() Field { return Field{State: FieldWithheld} }

func Absent() Field { return Field{} }

// PresentOrAbsent treats an empty string as a missing cell.
func PresentOrAbsent(value string) Field {
	if value == "" {
		return Absent()
	}
	return Present(value)
}

func (f Field) Get() (string, bool) {
	return f.Value, f.State == FieldPresent
}

func (f Field) IsPresent() bool  { return f.State == FieldPresent }
func (f Field) IsWithheld() bool { return f.State == FieldWithheld }

// String returns the value, the withheld marker, or "".
func (f Field) String() string {
	switch f.State {
	case FieldPresent:
		return f.Value
	case FieldWithheld:
		return WithheldMarker
	default:
		return ""
	}
}

// RawRow is one (student, guardian relation) row of a roster export, keyed by trimmed header.
type RawRow struct {
	LineNo int
	Cells  map[string]string
}

func (r RawRow) Get(column string) string {
	if r.Cells == nil {
		return ""
	}
	return r.Cells[column]
}

// Pool is one roster export. SourceHash is the sha256 hex of the file content.
type Pool struct {
	Source         string
	SourceHash     string
	Headers        []string
	WithholdingKey string
	Rows           []RawRow
}

type Disclosure string

const (
	DisclosureShare        Disclosure = "share"
	DisclosureWithhold     Disclosure = "withhold"
	DisclosureUnrecognized Disclosure = "unrecognized"
	DisclosureSkip         Disclosure = "skip"
)

// RedactedRow is a RawRow after the withholding flag has been applied. Student name, grade and
// teacher are never redacted.
type RedactedRow struct {
	LineNo     int
	Disclosure Disclosure

	ExplicitID string
	Student    string
	Grade      string
	Teacher    string

	BirthDate     Field
	Phone         Field
	Address1      Field
	Address2      Field
	Relation      Field
	GuardianName  Field
	GuardianCell  Field
	GuardianEmail Field
}

// GuardianRelation is one guardian entry of a student. Empty strings mean omitted.
type GuardianRelation struct {
	Relation string
	Name     string
	Email    string
	Cell     string
	Phone    string
	Address1 string
	Address2 string
}

func (g GuardianRelation) IsEmpty() bool {
	return g == GuardianRelation{}
}

type StudentRecord struct {
	ID        string
	Name      string
	Grade     string
	Teacher   string
	FirstLine int

	Address1 string
	Address2 string
	Phone    string
	Email    string
	Cell     string

	Guardians []GuardianRelation
}

// Directory is the deduplicated per-student view of a pool. Order holds student ids in
// first-seen order.
type Directory struct {
	Students map[string]*StudentRecord
	Order    []string
}

type TeacherGroup struct {
	Teacher  string
	ClassID  string
	Students []string
}

type GradeGroup struct {
	Grade    string
	Teachers []TeacherGroup
}

type KeyGroup struct {
	Key      string
	Students []string
}

type Indexes struct {
	ByClass     []GradeGroup
	ByFirstName []KeyGroup
	ByLastName  []KeyGroup
	ByStreet    []KeyGroup
}

type Warning struct {
	LineNo  int
	Student string
	Message string
}

type Report struct {
	Accepted int
	Withheld int
	Skipped  int
	Students int
	Warnings []Warning
}

// Contact is one row of the membership platform import.
type Contact struct {
	FamilyName       string `validate:"required"`
	FamilyRole       string `validate:"oneof=Parent/Guardian Child"`
	Address          string
	FirstName        string `validate:"required"`
	LastName         string `validate:"required"`
	City             string
	State            string `validate:"omitempty,len=2"`
	Zip              string `validate:"omitempty,numeric"`
	Email            string `validate:"omitempty,email"`
	Phone            string
	OrganizationRole string `validate:"oneof=Contact Admin Student"`
	Hubs             string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type RosterExportRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Filename   string
	Hash       string
	Status     string
	Path       string
}

type RunRow struct {
	ID           string
	Source       string
	SourceHash   string
	Counts       map[string]int
	WarningCount int
	CreatedAt    string
}
