package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/database"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// employeeRepository implements EmployeeStore using PostgreSQL.
type employeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *database.DB) EmployeeStore {
	return &employeeRepository{db: db}
}

// List loads employees with their skills and current assignments, ordered by ID.
func (r *employeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, role, experience_level, availability_percent, status
		FROM employees
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list employees: %v", apperrors.ErrDataSourceUnavailable, err)
	}

	employees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Employee, error) {
		var e models.Employee
		err := row.Scan(&e.ID, &e.Name, &e.Role, &e.ExperienceLevel, &e.AvailabilityPercent, &e.Status)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan employees: %v", apperrors.ErrDataSourceUnavailable, err)
	}

	idx := make(map[string]int, len(employees))
	for i := range employees {
		idx[employees[i].ID] = i
		employees[i].Skills = []models.Skill{}
		employees[i].CurrentProjects = []models.ProjectAssignment{}
	}

	if err := r.attachSkills(ctx, employees, idx); err != nil {
		return nil, err
	}
	if err := r.attachAssignments(ctx, employees, idx); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *employeeRepository) attachSkills(ctx context.Context, employees []models.Employee, idx map[string]int) error {
	rows, err := r.db.Query(ctx, `
		SELECT employee_id, name, proficiency
		FROM employee_skills
		ORDER BY employee_id, name`)
	if err != nil {
		return fmt.Errorf("%w: list employee skills: %v", apperrors.ErrDataSourceUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID string
		var s models.Skill
		if err := rows.Scan(&employeeID, &s.Name, &s.Proficiency); err != nil {
			return fmt.Errorf("%w: scan employee skill: %v", apperrors.ErrDataSourceUnavailable, err)
		}
		if i, ok := idx[employeeID]; ok {
			employees[i].Skills = append(employees[i].Skills, s)
		}
	}
	return rows.Err()
}

func (r *employeeRepository) attachAssignments(ctx context.Context, employees []models.Employee, idx map[string]int) error {
	rows, err := r.db.Query(ctx, `
		SELECT employee_id, project_id, role_name, allocation_percent
		FROM employee_assignments
		ORDER BY employee_id, project_id, role_name`)
	if err != nil {
		return fmt.Errorf("%w: list employee assignments: %v", apperrors.ErrDataSourceUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID string
		var a models.ProjectAssignment
		if err := rows.Scan(&employeeID, &a.ProjectID, &a.RoleName, &a.AllocationPercent); err != nil {
			return fmt.Errorf("%w: scan employee assignment: %v", apperrors.ErrDataSourceUnavailable, err)
		}
		if i, ok := idx[employeeID]; ok {
			employees[i].CurrentProjects = append(employees[i].CurrentProjects, a)
		}
	}
	return rows.Err()
}
