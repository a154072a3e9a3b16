package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newTestNormalizer() *demandNormalizer {
	n := NewDemandNormalizer(zap.NewNop()).(*demandNormalizer)
	n.now = func() time.Time { return fixedNow }
	return n
}

func ledgerProject() models.Project {
	return models.Project{
		ID:   "p1",
		Name: "Ledger",
		AssignedEmployees: []models.Assignment{
			{EmployeeID: "e1", RoleName: "Backend Developer", AllocationPercent: 100},
			{EmployeeID: "e2", RoleName: "backend developer", AllocationPercent: 50},
			{EmployeeID: "e3", RoleName: "Backend Developer", AllocationPercent: 80},
			{EmployeeID: "q1", RoleName: "QA Engineer", AllocationPercent: 100},
		},
	}
}

func existingDemand(backendHeadcount int) *models.ProjectDemand {
	d := backendDemand(backendHeadcount)
	d.ProjectType = models.ProjectTypeExisting
	d.ProjectID = "p1"
	d.ProjectName = ""
	return d
}

func TestDemandNormalizer_NilDemand(t *testing.T) {
	_, err := newTestNormalizer().Normalize(nil, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDemand)
}

func TestDemandNormalizer_ExistingProjectFloor(t *testing.T) {
	input := existingDemand(2)

	got, err := newTestNormalizer().Normalize(input, []models.Project{ledgerProject()}, nil)
	require.NoError(t, err)

	assert.True(t, got.IsCanonical)
	assert.Equal(t, "Ledger", got.ProjectName)
	require.Len(t, got.Roles, 2)
	assert.Equal(t, 3, got.Roles[0].Headcount)
	assert.Equal(t, models.RoleDemand{
		RoleName:          "QA Engineer",
		RequiredSkills:    []models.SkillRequirement{},
		ExperienceLevel:   models.ExperienceMid,
		AllocationPercent: 100,
		Headcount:         1,
	}, got.Roles[1])

	require.Len(t, got.ChangeLog, 2)
	for _, c := range got.ChangeLog {
		assert.Equal(t, models.ChangeSourceProjectSync, c.Source)
		assert.Equal(t, fixedNow, c.Timestamp)
	}
	assert.Contains(t, got.ChangeLog[0].Delta, "from 2 to 3")

	assert.Equal(t, 2, input.Roles[0].Headcount, "input must not be mutated")
	assert.False(t, input.IsCanonical)
	assert.Len(t, input.Roles, 1)
}

func TestDemandNormalizer_NeverLowersHeadcount(t *testing.T) {
	got, err := newTestNormalizer().Normalize(existingDemand(5), []models.Project{ledgerProject()}, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, got.Roles[0].Headcount)
	assert.Len(t, got.ChangeLog, 1, "only the synthesized QA role is logged")
}

func TestDemandNormalizer_Idempotent(t *testing.T) {
	n := newTestNormalizer()
	projects := []models.Project{ledgerProject()}

	first, err := n.Normalize(existingDemand(1), projects, nil)
	require.NoError(t, err)
	second, err := n.Normalize(first, projects, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestDemandNormalizer_UnknownProjectLeavesDemand(t *testing.T) {
	d := existingDemand(2)
	d.ProjectID = "missing"

	got, err := newTestNormalizer().Normalize(d, []models.Project{ledgerProject()}, nil)
	require.NoError(t, err)

	assert.True(t, got.IsCanonical)
	assert.Equal(t, 2, got.Roles[0].Headcount)
	assert.Empty(t, got.ChangeLog)
	assert.NotNil(t, got.ChangeLog)
}

func TestDemandNormalizer_NonExistingProjectsIgnoreAssignments(t *testing.T) {
	d := backendDemand(1)
	d.ProjectID = "p1"

	got, err := newTestNormalizer().Normalize(d, []models.Project{ledgerProject()}, nil)
	require.NoError(t, err)

	assert.Len(t, got.Roles, 1)
	assert.Equal(t, 1, got.Roles[0].Headcount)
}

func TestDemandNormalizer_LogsRequestChangesAgainstPrevious(t *testing.T) {
	n := newTestNormalizer()
	previous := backendDemand(2)
	previous.Roles = append(previous.Roles, models.RoleDemand{RoleName: "QA Engineer", Headcount: 1})
	previous.IsCanonical = true
	previous.ChangeLog = []models.DemandChange{{Source: models.ChangeSourceRequest, Delta: "initial"}}

	current := backendDemand(3)
	current.Roles = append(current.Roles, models.RoleDemand{RoleName: "Designer", Headcount: 1})

	got, err := n.Normalize(current, nil, previous)
	require.NoError(t, err)

	deltas := make([]string, 0, len(got.ChangeLog))
	for _, c := range got.ChangeLog {
		assert.Equal(t, models.ChangeSourceRequest, c.Source)
		deltas = append(deltas, c.Delta)
	}
	assert.Equal(t, []string{
		"initial",
		"changed Backend Developer headcount from 2 to 3",
		"added role Designer with headcount 1",
		"removed role QA Engineer",
	}, deltas)
}
