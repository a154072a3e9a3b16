package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/database"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// projectRepository implements ProjectStore using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectStore {
	return &projectRepository{db: db}
}

// List loads every project with its assignment list, ordered by ID.
func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %v", apperrors.ErrDataSourceUnavailable, err)
	}

	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Project, error) {
		p := models.Project{AssignedEmployees: []models.Assignment{}}
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan projects: %v", apperrors.ErrDataSourceUnavailable, err)
	}

	idx := make(map[string]int, len(projects))
	for i := range projects {
		idx[projects[i].ID] = i
	}

	arows, err := r.db.Query(ctx, `
		SELECT project_id, employee_id, role_name, allocation_percent
		FROM employee_assignments
		ORDER BY project_id, employee_id, role_name`)
	if err != nil {
		return nil, fmt.Errorf("%w: list project assignments: %v", apperrors.ErrDataSourceUnavailable, err)
	}
	defer arows.Close()

	for arows.Next() {
		var projectID string
		var a models.Assignment
		if err := arows.Scan(&projectID, &a.EmployeeID, &a.RoleName, &a.AllocationPercent); err != nil {
			return nil, fmt.Errorf("%w: scan project assignment: %v", apperrors.ErrDataSourceUnavailable, err)
		}
		if i, ok := idx[projectID]; ok {
			projects[i].AssignedEmployees = append(projects[i].AssignedEmployees, a)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read project assignments: %v", apperrors.ErrDataSourceUnavailable, err)
	}

	return projects, nil
}
