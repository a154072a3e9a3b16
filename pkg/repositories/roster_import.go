package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-staffing/pkg/database"
)

// ImportRoster replaces the stored roster with r in a single transaction.
// Assignments are taken from the projects' assigned_employees lists.
func ImportRoster(ctx context.Context, db *database.DB, r *Roster) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			"DELETE FROM employee_assignments",
			"DELETE FROM employee_skills",
			"DELETE FROM projects",
			"DELETE FROM employees",
		} {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to clear roster: %w", err)
			}
		}

		batch := &pgx.Batch{}
		for _, e := range r.Employees {
			batch.Queue(`
				INSERT INTO employees (id, name, role, experience_level, availability_percent, status)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				e.ID, e.Name, e.Role, string(e.ExperienceLevel), e.AvailabilityPercent, string(e.Status))
			for _, s := range e.Skills {
				batch.Queue(`INSERT INTO employee_skills (employee_id, name, proficiency) VALUES ($1, $2, $3)`,
					e.ID, s.Name, s.Proficiency)
			}
		}
		for _, p := range r.Projects {
			batch.Queue(`INSERT INTO projects (id, name) VALUES ($1, $2)`, p.ID, p.Name)
			for _, a := range p.AssignedEmployees {
				batch.Queue(`
					INSERT INTO employee_assignments (employee_id, project_id, role_name, allocation_percent)
					VALUES ($1, $2, $3, $4)`,
					a.EmployeeID, p.ID, a.RoleName, a.AllocationPercent)
			}
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to import roster: %w", err)
		}
		return nil
	})
}
