// Package repositories reads the employee roster and project assignments the
// allocation engine works from.
package repositories

import (
	"context"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// EmployeeStore returns the full roster. Results are a consistent snapshot for
// one request; no pagination.
type EmployeeStore interface {
	List(ctx context.Context) ([]models.Employee, error)
}

// ProjectStore returns every project with its current assignments.
type ProjectStore interface {
	List(ctx context.Context) ([]models.Project, error)
}

// Roster is a complete employee/project snapshot, as stored in fixture files.
type Roster struct {
	Employees []models.Employee `yaml:"employees"`
	Projects  []models.Project  `yaml:"projects"`
}
