package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func TestCatalogueComplete(t *testing.T) {
	seen := make(map[string]Section)
	for s := Overview; s < numSections; s++ {
		e := catalogue[s]
		require.NotEmpty(t, e.id, "section %d has no catalogue entry", s)
		assert.Equal(t, strings.ToLower(e.id), e.id, "ids are lowercase")
		assert.NotEmpty(t, e.title, e.id)
		assert.NotEqual(t, KindUnknown, e.kind, e.id)

		prev, dup := seen[e.id]
		assert.False(t, dup, "id %q used by %d and %d", e.id, prev, s)
		seen[e.id] = s

		if e.kind == KindLeaf {
			assert.Equal(t, KindHub, catalogue[e.parent].kind, "parent of %s must be a hub", e.id)
		} else {
			assert.Equal(t, Unknown, e.parent, "only leaves have parents: %s", e.id)
		}
	}
}

func TestHierarchy(t *testing.T) {
	assert.Equal(t, KindRoot, Overview.Kind())
	for _, hub := range Hubs() {
		assert.Equal(t, KindHub, hub.Kind())
		assert.NotEmpty(t, Leaves(hub), "%s has leaves", hub)
	}

	parent, ok := Tutors.Parent()
	require.True(t, ok)
	assert.Equal(t, PeopleHub, parent)

	parent, ok = Grading.Parent()
	require.True(t, ok)
	assert.Equal(t, AssessmentHub, parent)

	_, ok = EmployerPortal.Parent()
	assert.False(t, ok)
	_, ok = PeopleHub.Parent()
	assert.False(t, ok)
	_, ok = Unknown.Parent()
	assert.False(t, ok)

	assert.Equal(t, []Section{EmployerPortal, CollegeSettings, AIAssistant}, Standalone())

	// Every known section is exactly one of root, hub, leaf or standalone.
	total := 1 + len(Hubs()) + len(Standalone())
	for _, hub := range Hubs() {
		total += len(Leaves(hub))
	}
	assert.Equal(t, len(All()), total)
}

func TestSectionAccessors(t *testing.T) {
	assert.Equal(t, "epatracking", EPATracking.String())
	assert.Equal(t, "EPA Tracking", EPATracking.Title())
	assert.NotEmpty(t, EPATracking.Summary())

	assert.Equal(t, "", Unknown.String())
	assert.Equal(t, "Unknown", Section(999).Title())
	assert.Equal(t, KindUnknown, Section(-1).Kind())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, "standalone", KindStandalone.String())
}

func TestParse(t *testing.T) {
	for _, s := range All() {
		got, ok := Parse(s.String())
		require.True(t, ok, s.String())
		assert.Equal(t, s, got)
	}

	_, ok := Parse("Overview")
	assert.False(t, ok, "parse is exact and case-sensitive")
	_, ok = Parse("")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	table := NewAliasTable()

	tests := []struct {
		name      string
		input     string
		wantID    string
		wantValid Section
	}{
		{"alias", "epa", "epatracking", EPATracking},
		{"mixed case alias", "Settings", "collegesettings", CollegeSettings},
		{"canonical id", "grading", "grading", Grading},
		{"upper case canonical", "GRADING", "grading", Grading},
		{"phrase alias", "End Point Assessment", "epatracking", EPATracking},
		{"unknown kept verbatim", "not-a-real-section", "not-a-real-section", Unknown},
		{"unknown case preserved", "Not-A-Real-Section", "Not-A-Real-Section", Unknown},
		{"empty", "", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, s := table.Resolve(tt.input)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantValid, s)
		})
	}
}

func TestSynonymEquivalence(t *testing.T) {
	table := NewAliasTable()
	for _, input := range []string{"students", "learners", "apprentices"} {
		id, s := table.Resolve(input)
		assert.Equal(t, "students", id, input)
		assert.Equal(t, Students, s, input)
	}
}

func TestEveryAliasResolvesRegardlessOfCase(t *testing.T) {
	table := NewAliasTable()
	for alias, want := range table.Snapshot() {
		for _, input := range []string{alias, strings.ToUpper(alias), cases.Title(language.English).String(alias)} {
			id, s := table.Resolve(input)
			assert.Equal(t, want.String(), id, input)
			assert.Equal(t, want, s, input)
		}
	}
}

func TestBuiltinAliasesAreLowercaseAndNotCanonical(t *testing.T) {
	for alias, s := range builtinAliases {
		assert.Equal(t, strings.ToLower(alias), alias)
		_, isID := Parse(alias)
		assert.False(t, isID, "%q shadows a canonical id", alias)
		assert.NotEqual(t, Unknown, s)
	}
}

func TestAliases(t *testing.T) {
	table := NewAliasTable()
	assert.Equal(t, []string{"apprentice", "apprentices", "learner", "learners", "student"}, table.Aliases(Students))
	assert.Equal(t, len(builtinAliases)+len(All()), table.Len())
}

func TestDescribe(t *testing.T) {
	infos := Describe(NewAliasTable())
	require.Len(t, infos, len(All()))
	assert.Equal(t, "overview", infos[0].ID)
	assert.Equal(t, "root", infos[0].Kind)
	assert.Empty(t, infos[0].Parent)

	var epa Info
	for _, info := range infos {
		if info.ID == "epatracking" {
			epa = info
		}
	}
	assert.Equal(t, "leaf", epa.Kind)
	assert.Equal(t, "assessmenthub", epa.Parent)
	assert.Contains(t, epa.Aliases, "epa")

	for _, info := range Describe(nil) {
		assert.Nil(t, info.Aliases)
	}
}
