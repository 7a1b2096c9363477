package sections

import (
	"sort"
	"strings"
	"sync"
)

// builtinAliases are the synonyms every dashboard understands. Canonical ids
// are added on top of these by NewAliasTable.
var builtinAliases = map[string]Section{
	"dashboard": Overview,
	"home":      Overview,
	"main":      Overview,

	"people":          PeopleHub,
	"people-hub":      PeopleHub,
	"curriculum":      CurriculumHub,
	"curriculum-hub":  CurriculumHub,
	"assessment":      AssessmentHub,
	"assessments":     AssessmentHub,
	"assessment-hub":  AssessmentHub,
	"resources":       ResourcesHub,
	"resources-hub":   ResourcesHub,
	"resource-centre": ResourcesHub,

	"tutor":        Tutors,
	"teachers":     Tutors,
	"teacher":      Tutors,
	"lecturers":    Tutors,
	"staff":        Tutors,
	"student":      Students,
	"learners":     Students,
	"learner":      Students,
	"apprentices":  Students,
	"apprentice":   Students,
	"cohort":       Cohorts,
	"groups":       Cohorts,
	"classes":      Cohorts,
	"register":     Attendance,
	"registers":    Attendance,
	"absence":      Attendance,
	"welfare":      Wellbeing,
	"pastoral":     Wellbeing,
	"safeguarding": Wellbeing,

	"course":          Courses,
	"qualifications":  Courses,
	"programmes":      Courses,
	"lesson-plans":    LessonPlans,
	"lesson plans":    LessonPlans,
	"lessons":         LessonPlans,
	"planning":        LessonPlans,
	"timetables":      Timetable,
	"schedule":        Timetable,
	"calendar":        Timetable,
	"schemes-of-work": SchemesOfWork,
	"schemes of work": SchemesOfWork,
	"sow":             SchemesOfWork,

	"grades":                    Grading,
	"marking":                   Grading,
	"marks":                     Grading,
	"epa":                       EPATracking,
	"epa-tracking":              EPATracking,
	"end-point-assessment":      EPATracking,
	"end point assessment":      EPATracking,
	"gateway":                   EPATracking,
	"portfolio":                 Portfolios,
	"evidence":                  Portfolios,
	"e-portfolio":               Portfolios,
	"progress":                  ProgressTracking,
	"progress-tracking":         ProgressTracking,
	"otj":                       ProgressTracking,
	"off-the-job":               ProgressTracking,
	"ilps":                      ILP,
	"learning-plans":            ILP,
	"individual learning plans": ILP,

	"books":     Library,
	"elibrary":  Library,
	"docs":      Documents,
	"files":     Documents,
	"policies":  Documents,
	"ofsted":    Compliance,
	"audits":    Compliance,
	"audit":     Compliance,
	"analytics": Reports,
	"reporting": Reports,
	"stats":     Reports,

	"employers":        EmployerPortal,
	"employer":         EmployerPortal,
	"employer-portal":  EmployerPortal,
	"settings":         CollegeSettings,
	"preferences":      CollegeSettings,
	"configuration":    CollegeSettings,
	"college-settings": CollegeSettings,
	"ai":               AIAssistant,
	"assistant":        AIAssistant,
	"ai-assistant":     AIAssistant,
}

// AliasTable maps lowercase free-form input to canonical sections. It is safe
// for concurrent use; Apply swaps the whole table in one step.
type AliasTable struct {
	mu      sync.RWMutex
	entries map[string]Section
}

// NewAliasTable returns a table holding every canonical id and the built-in
// synonyms.
func NewAliasTable() *AliasTable {
	return &AliasTable{entries: defaultEntries()}
}

func defaultEntries() map[string]Section {
	entries := make(map[string]Section, len(builtinAliases)+int(numSections))
	for alias, s := range builtinAliases {
		entries[alias] = s
	}
	for s := Overview; s < numSections; s++ {
		entries[catalogue[s].id] = s
	}
	return entries
}

// Lookup returns the section alias maps to. alias must already be lowercase.
func (t *AliasTable) Lookup(alias string) (Section, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.entries[alias]
	return s, ok
}

// Resolve turns a navigation request into the identifier the router should
// store. A hit on the lowercased input yields the canonical id. A miss yields
// requested verbatim, which may still name a section if it happens to be a
// canonical id; otherwise the returned Section is Unknown.
func (t *AliasTable) Resolve(requested string) (string, Section) {
	if s, ok := t.Lookup(strings.ToLower(requested)); ok {
		return s.String(), s
	}
	s, _ := Parse(requested)
	return requested, s
}

// Aliases returns every alias of s, excluding its canonical id, sorted.
func (t *AliasTable) Aliases(s Section) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for alias, target := range t.entries {
		if target == s && alias != s.String() {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries, canonical ids included.
func (t *AliasTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Snapshot returns a copy of the table.
func (t *AliasTable) Snapshot() map[string]Section {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Section, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

func (t *AliasTable) swap(entries map[string]Section) {
	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}
