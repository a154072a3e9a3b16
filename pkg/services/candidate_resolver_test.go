package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

func ids(employees []models.Employee) []string {
	out := make([]string, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.ID)
	}
	return out
}

func TestCandidateResolver_AvailabilityThreshold(t *testing.T) {
	r := NewCandidateResolver(nil)
	employees := []models.Employee{
		employee("low", "Low", "Backend Developer", models.ExperienceMid, 19, "Go"),
		employee("edge", "Edge", "Backend Developer", models.ExperienceMid, 20, "Go"),
	}

	got := r.Resolve("Backend Developer", []string{"Go"}, employees)

	assert.Equal(t, []string{"edge"}, ids(got))
}

func TestCandidateResolver_SkipsOnLeave(t *testing.T) {
	r := NewCandidateResolver(nil)
	away := employee("away", "Away", "Backend Developer", models.ExperienceMid, 100, "Go")
	away.Status = models.EmployeeStatusOnLeave

	got := r.Resolve("Backend Developer", []string{"Go"}, []models.Employee{away})

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCandidateResolver_RoleSynonyms(t *testing.T) {
	r := NewCandidateResolver(nil)
	employees := []models.Employee{
		employee("java", "J", "Java Engineer", models.ExperienceMid, 100),
		employee("fe", "F", "Frontend Developer", models.ExperienceMid, 100),
		employee("rn", "R", "React Native Developer", models.ExperienceMid, 100),
		employee("sdet", "S", "SDET", models.ExperienceMid, 100),
	}

	assert.Equal(t, []string{"java"}, ids(r.Resolve("Backend Developer", nil, employees)))
	assert.Equal(t, []string{"rn"}, ids(r.Resolve("Mobile Engineer", nil, employees)))
	assert.Equal(t, []string{"sdet"}, ids(r.Resolve("QA Engineer", nil, employees)))
}

func TestCandidateResolver_RequiresSharedSkill(t *testing.T) {
	r := NewCandidateResolver(nil)

	got := r.Resolve("Backend Developer", []string{"python", "Rust"}, testRoster())
	assert.Equal(t, []string{"e5"}, ids(got))

	got = r.Resolve("Backend Developer", []string{"Haskell"}, testRoster())
	assert.Empty(t, got)
}

func TestCandidateResolver_DeterministicAndOrderPreserving(t *testing.T) {
	r := NewCandidateResolver(nil)
	roster := testRoster()

	first := r.Resolve("Backend Developer", []string{"Go"}, roster)
	second := r.Resolve("Backend Developer", []string{"Go"}, roster)

	assert.Equal(t, []string{"e1", "e2", "e3", "e4", "e5"}, ids(first))
	assert.Equal(t, first, second)
	assert.Len(t, roster, 8, "input must not be modified")
}

func TestCandidateResolver_EmptyInputs(t *testing.T) {
	r := NewCandidateResolver(nil)

	got := r.Resolve("Backend Developer", nil, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, r.Resolve("", nil, testRoster()))
}

func TestRoleSynonyms_FirstGroupWins(t *testing.T) {
	rs := DefaultRoleSynonyms()

	group, ok := rs.GroupOf("React Native Developer")
	require.True(t, ok)
	assert.Equal(t, "mobile", group)

	group, ok = rs.GroupForSynonym("SRE")
	require.True(t, ok)
	assert.Equal(t, "devops", group)

	_, ok = rs.GroupOf("Astronaut")
	assert.False(t, ok)
}

func TestRoleSynonyms_CustomTable(t *testing.T) {
	rs := NewRoleSynonyms([]RoleSynonymGroup{
		{Name: "data", Synonyms: []string{" Data ", "analytics", ""}},
	})

	assert.True(t, rs.Match("Data Scientist", "Analytics Engineer"))
	assert.False(t, rs.Match("Backend Developer", "Java Engineer"))
}
