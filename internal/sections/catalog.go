// Package sections defines the closed catalogue of dashboard sections, the
// static hub hierarchy they live in, and the alias table that maps free-form
// input onto canonical sections.
//
// The hierarchy is two levels deep: the overview root, four hubs, and leaf
// sections that each belong to exactly one hub. Standalone sections hang off
// the root directly.
package sections

// Section is a canonical dashboard section.
type Section int

// The zero value is Unknown so that a failed lookup never aliases a real
// section.
const (
	Unknown Section = iota

	Overview

	PeopleHub
	CurriculumHub
	AssessmentHub
	ResourcesHub

	// People
	Tutors
	Students
	Cohorts
	Attendance
	Wellbeing

	// Curriculum
	Courses
	LessonPlans
	Timetable
	SchemesOfWork

	// Assessment
	Grading
	EPATracking
	Portfolios
	ProgressTracking
	ILP

	// Resources
	Library
	Documents
	Compliance
	Reports

	EmployerPortal
	CollegeSettings
	AIAssistant

	numSections
)

// Kind classifies a section's position in the hierarchy.
type Kind int

const (
	KindUnknown Kind = iota
	KindRoot
	KindHub
	KindLeaf
	KindStandalone
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindHub:
		return "hub"
	case KindLeaf:
		return "leaf"
	case KindStandalone:
		return "standalone"
	default:
		return "unknown"
	}
}

type entry struct {
	id      string
	title   string
	summary string
	kind    Kind
	parent  Section
}

// catalogue is indexed by Section. The keyed array literal makes a missing
// entry show up as a zero entry, which TestCatalogueComplete rejects.
var catalogue = [numSections]entry{
	Unknown:  {id: "", title: "Unknown", kind: KindUnknown},
	Overview: {id: "overview", title: "Overview", summary: "College at a glance", kind: KindRoot},

	PeopleHub:     {id: "peoplehub", title: "People", summary: "Tutors, learners and cohorts", kind: KindHub},
	CurriculumHub: {id: "curriculumhub", title: "Curriculum", summary: "Courses, planning and timetabling", kind: KindHub},
	AssessmentHub: {id: "assessmenthub", title: "Assessment", summary: "Grading, portfolios and end-point assessment", kind: KindHub},
	ResourcesHub:  {id: "resourceshub", title: "Resources", summary: "Library, documents and reporting", kind: KindHub},

	Tutors:     {id: "tutors", title: "Tutors", summary: "Teaching staff, caseloads and observations", kind: KindLeaf, parent: PeopleHub},
	Students:   {id: "students", title: "Students", summary: "Enrolled learners and apprentices", kind: KindLeaf, parent: PeopleHub},
	Cohorts:    {id: "cohorts", title: "Cohorts", summary: "Class groups and intakes", kind: KindLeaf, parent: PeopleHub},
	Attendance: {id: "attendance", title: "Attendance", summary: "Registers and absence follow-up", kind: KindLeaf, parent: PeopleHub},
	Wellbeing:  {id: "wellbeing", title: "Wellbeing", summary: "Pastoral care and safeguarding", kind: KindLeaf, parent: PeopleHub},

	Courses:       {id: "courses", title: "Courses", summary: "Qualifications and programmes on offer", kind: KindLeaf, parent: CurriculumHub},
	LessonPlans:   {id: "lessonplans", title: "Lesson Plans", summary: "Session plans by unit", kind: KindLeaf, parent: CurriculumHub},
	Timetable:     {id: "timetable", title: "Timetable", summary: "Rooms, groups and teaching slots", kind: KindLeaf, parent: CurriculumHub},
	SchemesOfWork: {id: "schemesofwork", title: "Schemes of Work", summary: "Term-level delivery plans", kind: KindLeaf, parent: CurriculumHub},

	Grading:          {id: "grading", title: "Grading", summary: "Marking queues and grade boundaries", kind: KindLeaf, parent: AssessmentHub},
	EPATracking:      {id: "epatracking", title: "EPA Tracking", summary: "Gateway readiness and end-point assessment bookings", kind: KindLeaf, parent: AssessmentHub},
	Portfolios:       {id: "portfolios", title: "Portfolios", summary: "Evidence submitted against criteria", kind: KindLeaf, parent: AssessmentHub},
	ProgressTracking: {id: "progresstracking", title: "Progress Tracking", summary: "Off-the-job hours and unit completion", kind: KindLeaf, parent: AssessmentHub},
	ILP:              {id: "ilp", title: "Individual Learning Plans", summary: "Targets and reviews per learner", kind: KindLeaf, parent: AssessmentHub},

	Library:    {id: "library", title: "Library", summary: "Books, standards and e-resources", kind: KindLeaf, parent: ResourcesHub},
	Documents:  {id: "documents", title: "Documents", summary: "Policies, forms and templates", kind: KindLeaf, parent: ResourcesHub},
	Compliance: {id: "compliance", title: "Compliance", summary: "Inspection readiness and audits", kind: KindLeaf, parent: ResourcesHub},
	Reports:    {id: "reports", title: "Reports", summary: "Achievement and retention analytics", kind: KindLeaf, parent: ResourcesHub},

	EmployerPortal:  {id: "employerportal", title: "Employer Portal", summary: "Employer partners and placements", kind: KindStandalone},
	CollegeSettings: {id: "collegesettings", title: "College Settings", summary: "Terms, branding and integrations", kind: KindStandalone},
	AIAssistant:     {id: "aiassistant", title: "AI Assistant", summary: "Ask questions about your college data", kind: KindStandalone},
}

var byID = func() map[string]Section {
	m := make(map[string]Section, numSections)
	for s := Overview; s < numSections; s++ {
		m[catalogue[s].id] = s
	}
	return m
}()

func (s Section) valid() bool {
	return s > Unknown && s < numSections
}

// String returns the canonical identifier, or "" for Unknown.
func (s Section) String() string {
	if !s.valid() {
		return ""
	}
	return catalogue[s].id
}

// Title returns the human readable name.
func (s Section) Title() string {
	if !s.valid() {
		return catalogue[Unknown].title
	}
	return catalogue[s].title
}

// Summary returns a one line description of what the section holds.
func (s Section) Summary() string {
	if !s.valid() {
		return ""
	}
	return catalogue[s].summary
}

// Kind returns the section's position in the hierarchy.
func (s Section) Kind() Kind {
	if !s.valid() {
		return KindUnknown
	}
	return catalogue[s].kind
}

// Parent returns the hub a leaf belongs to. Only leaves have a parent.
func (s Section) Parent() (Section, bool) {
	if s.Kind() != KindLeaf {
		return Unknown, false
	}
	return catalogue[s].parent, true
}

// Parse looks up an exact canonical identifier.
func Parse(id string) (Section, bool) {
	s, ok := byID[id]
	return s, ok
}

// All returns every known section in catalogue order, root first.
func All() []Section {
	out := make([]Section, 0, numSections-1)
	for s := Overview; s < numSections; s++ {
		out = append(out, s)
	}
	return out
}

// Hubs returns the four hubs in display order.
func Hubs() []Section {
	return []Section{PeopleHub, CurriculumHub, AssessmentHub, ResourcesHub}
}

// Leaves returns the leaves of hub in catalogue order.
func Leaves(hub Section) []Section {
	var out []Section
	for s := Overview; s < numSections; s++ {
		if catalogue[s].kind == KindLeaf && catalogue[s].parent == hub {
			out = append(out, s)
		}
	}
	return out
}

// Standalone returns the sections that hang directly off the root.
func Standalone() []Section {
	var out []Section
	for s := Overview; s < numSections; s++ {
		if catalogue[s].kind == KindStandalone {
			out = append(out, s)
		}
	}
	return out
}
