// Package models contains domain types for the staffing allocation engine.
package models

import "strings"

// ExperienceLevel is the seniority band of an employee or a role demand.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "JUNIOR"
	ExperienceMid    ExperienceLevel = "MID"
	ExperienceSenior ExperienceLevel = "SENIOR"
)

// EmployeeStatus describes how an employee is currently deployed.
type EmployeeStatus string

const (
	EmployeeStatusAllocated EmployeeStatus = "ALLOCATED"
	EmployeeStatusPartial   EmployeeStatus = "PARTIAL"
	EmployeeStatusBench     EmployeeStatus = "BENCH"
	EmployeeStatusOnLeave   EmployeeStatus = "ON_LEAVE"
)

// Skill is a named competency with a proficiency between 1 and 5.
type Skill struct {
	Name        string `json:"name" yaml:"name"`
	Proficiency int    `json:"proficiency" yaml:"proficiency"`
}

// ProjectAssignment is one project an employee currently works on.
type ProjectAssignment struct {
	ProjectID         string `json:"projectId" yaml:"project_id"`
	AllocationPercent int    `json:"allocationPercent" yaml:"allocation_percent"`
	RoleName          string `json:"roleName" yaml:"role_name"`
}

// Employee is a member of the roster. The engine never mutates employees;
// they are fetched fresh for every request.
type Employee struct {
	ID                  string              `json:"id" yaml:"id"`
	Name                string              `json:"name" yaml:"name"`
	Role                string              `json:"role" yaml:"role"`
	ExperienceLevel     ExperienceLevel     `json:"experienceLevel" yaml:"experience_level"`
	Skills              []Skill             `json:"skills" yaml:"skills"`
	AvailabilityPercent int                 `json:"availabilityPercent" yaml:"availability_percent"`
	Status              EmployeeStatus      `json:"status" yaml:"status"`
	CurrentProjects     []ProjectAssignment `json:"currentProjects" yaml:"current_projects"`
}

// HasSkill reports whether the employee lists a skill with the given name (case-insensitive).
func (e *Employee) HasSkill(name string) bool {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return false
	}
	for _, s := range e.Skills {
		if strings.ToLower(strings.TrimSpace(s.Name)) == target {
			return true
		}
	}
	return false
}

// SkillNames returns the employee's skill names in roster order.
func (e *Employee) SkillNames() []string {
	names := make([]string, 0, len(e.Skills))
	for _, s := range e.Skills {
		names = append(names, s.Name)
	}
	return names
}

// IndexEmployees builds an ID lookup over a roster snapshot.
func IndexEmployees(employees []Employee) map[string]*Employee {
	idx := make(map[string]*Employee, len(employees))
	for i := range employees {
		idx[employees[i].ID] = &employees[i]
	}
	return idx
}
