//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/testhelpers"
)

func TestPostgresStores_ImportAndList(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	roster := &Roster{
		Employees: []models.Employee{
			{ID: "e1", Name: "Ada", Role: "Backend Developer", ExperienceLevel: models.ExperienceSenior,
				AvailabilityPercent: 50, Status: models.EmployeeStatusPartial,
				Skills: []models.Skill{{Name: "Go", Proficiency: 5}, {Name: "Postgres", Proficiency: 4}}},
			{ID: "e2", Name: "Grace", Role: "QA Engineer", ExperienceLevel: models.ExperienceMid,
				AvailabilityPercent: 100, Status: models.EmployeeStatusBench},
		},
		Projects: []models.Project{
			{ID: "p1", Name: "Atlas", AssignedEmployees: []models.Assignment{
				{EmployeeID: "e1", AllocationPercent: 50, RoleName: "Backend Developer"},
			}},
		},
	}
	require.NoError(t, ImportRoster(ctx, testDB.DB, roster))

	employees, err := NewEmployeeRepository(testDB.DB).List(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Ada", employees[0].Name)
	assert.ElementsMatch(t, roster.Employees[0].Skills, employees[0].Skills)
	assert.Equal(t, []models.ProjectAssignment{{ProjectID: "p1", AllocationPercent: 50, RoleName: "Backend Developer"}},
		employees[0].CurrentProjects)
	assert.Empty(t, employees[1].Skills)

	projects, err := NewProjectRepository(testDB.DB).List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, roster.Projects[0].AssignedEmployees, projects[0].AssignedEmployees)

	// A second import replaces rather than appends.
	roster.Employees = roster.Employees[1:]
	roster.Projects = nil
	require.NoError(t, ImportRoster(ctx, testDB.DB, roster))

	employees, err = NewEmployeeRepository(testDB.DB).List(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "e2", employees[0].ID)
}
