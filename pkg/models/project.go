package models

// Assignment is a real, current placement of an employee on a project.
type Assignment struct {
	EmployeeID        string `json:"employeeId" yaml:"employee_id"`
	AllocationPercent int    `json:"allocationPercent" yaml:"allocation_percent"`
	RoleName          string `json:"roleName" yaml:"role_name"`
}

// Project is the ground truth of who is staffed on a project today.
type Project struct {
	ID                string       `json:"id" yaml:"id"`
	Name              string       `json:"name" yaml:"name"`
	AssignedEmployees []Assignment `json:"assignedEmployees" yaml:"assigned_employees"`
}

// FindProject returns the project with the given ID, or nil.
func FindProject(projects []Project, id string) *Project {
	if id == "" {
		return nil
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}
