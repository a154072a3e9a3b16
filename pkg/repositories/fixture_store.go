package repositories

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// FixtureStore serves employees and projects from a YAML roster file. The file
// is re-read on every call so edits are picked up without a restart.
type FixtureStore struct {
	path string
}

// NewFixtureStore creates a store backed by the YAML file at path.
func NewFixtureStore(path string) *FixtureStore {
	return &FixtureStore{path: path}
}

// LoadRoster parses a YAML roster file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read roster %s: %v", apperrors.ErrDataSourceUnavailable, path, err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: parse roster %s: %v", apperrors.ErrDataSourceUnavailable, path, err)
	}

	deriveCurrentProjects(&r)
	return &r, nil
}

// deriveCurrentProjects fills each employee's current_projects from the project
// assignment lists when the file only records one side.
func deriveCurrentProjects(r *Roster) {
	idx := models.IndexEmployees(r.Employees)
	for _, e := range r.Employees {
		if len(e.CurrentProjects) > 0 {
			return
		}
	}
	for _, p := range r.Projects {
		for _, a := range p.AssignedEmployees {
			if e, ok := idx[a.EmployeeID]; ok {
				e.CurrentProjects = append(e.CurrentProjects, models.ProjectAssignment{
					ProjectID:         p.ID,
					AllocationPercent: a.AllocationPercent,
					RoleName:          a.RoleName,
				})
			}
		}
	}
}

// Employees returns an EmployeeStore view of the fixture.
func (s *FixtureStore) Employees() EmployeeStore { return fixtureEmployees{s} }

// Projects returns a ProjectStore view of the fixture.
func (s *FixtureStore) Projects() ProjectStore { return fixtureProjects{s} }

type fixtureEmployees struct{ s *FixtureStore }

func (f fixtureEmployees) List(ctx context.Context) ([]models.Employee, error) {
	r, err := LoadRoster(f.s.path)
	if err != nil {
		return nil, err
	}
	return r.Employees, nil
}

type fixtureProjects struct{ s *FixtureStore }

func (f fixtureProjects) List(ctx context.Context) ([]models.Project, error) {
	r, err := LoadRoster(f.s.path)
	if err != nil {
		return nil, err
	}
	return r.Projects, nil
}
