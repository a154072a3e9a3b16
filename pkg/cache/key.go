package cache

import (
	"fmt"
	"strings"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// keyRole is the part of a role demand that affects who gets proposed.
type keyRole struct {
	Name              string
	Headcount         int
	AllocationPercent int
	Skills            []string `hash:"set"`
}

// keyShape is hashed with every slice treated as a set, so reordering roles,
// skills, employees or assignments never changes the key.
type keyShape struct {
	ProjectType models.ProjectType
	ProjectID   string
	ProjectName string
	Roles       []keyRole `hash:"set"`
	Employees   []string  `hash:"set"`
	Assignments []string  `hash:"set"`
}

// ComputeKey fingerprints a normalized demand together with the roster and,
// for EXISTING projects, the project's current assignments.
func ComputeKey(demand *models.ProjectDemand, employees []models.Employee, projects []models.Project) (string, error) {
	if demand == nil {
		return "", fmt.Errorf("compute cache key: nil demand")
	}

	shape := keyShape{
		ProjectType: demand.ProjectType,
		ProjectID:   demand.ProjectID,
		ProjectName: demand.ProjectName,
		Roles:       make([]keyRole, 0, len(demand.Roles)),
		Employees:   make([]string, 0, len(employees)),
	}

	for _, r := range demand.Roles {
		skills := make([]string, 0, len(r.RequiredSkills))
		for _, s := range r.RequiredSkills {
			skills = append(skills, normalizeToken(s.Name))
		}
		shape.Roles = append(shape.Roles, keyRole{
			Name:              normalizeToken(r.RoleName),
			Headcount:         r.Headcount,
			AllocationPercent: r.AllocationPercent,
			Skills:            skills,
		})
	}

	for _, e := range employees {
		shape.Employees = append(shape.Employees, fmt.Sprintf("%s:%d:%s", e.ID, e.AvailabilityPercent, e.Status))
	}

	if demand.ProjectType == models.ProjectTypeExisting {
		if p := models.FindProject(projects, demand.ProjectID); p != nil {
			for _, a := range p.AssignedEmployees {
				shape.Assignments = append(shape.Assignments,
					fmt.Sprintf("%s:%d:%s", a.EmployeeID, a.AllocationPercent, normalizeToken(a.RoleName)))
			}
		}
	}

	h, err := hashstructure.Hash(shape, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("compute cache key: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
