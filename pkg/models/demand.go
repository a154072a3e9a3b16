package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectType classifies what a staffing demand is for.
type ProjectType string

const (
	ProjectTypeNew           ProjectType = "NEW"
	ProjectTypeExisting      ProjectType = "EXISTING"
	ProjectTypeGeneralDemand ProjectType = "GENERAL_DEMAND"
)

// Change-log sources.
const (
	ChangeSourceProjectSync = "project-sync"
	ChangeSourceRequest     = "request"
)

// SkillRequirement is a skill a role needs, with the minimum acceptable proficiency.
type SkillRequirement struct {
	Name               string `json:"name"`
	MinimumProficiency int    `json:"minimumProficiency"`
}

// RoleDemand is the per-role part of a staffing request.
type RoleDemand struct {
	RoleName          string             `json:"roleName"`
	RequiredSkills    []SkillRequirement `json:"requiredSkills"`
	ExperienceLevel   ExperienceLevel    `json:"experienceLevel"`
	AllocationPercent int                `json:"allocationPercent"`
	Headcount         int                `json:"headcount"`
}

// SkillNames returns the names of the role's required skills.
func (r *RoleDemand) SkillNames() []string {
	names := make([]string, 0, len(r.RequiredSkills))
	for _, s := range r.RequiredSkills {
		names = append(names, s.Name)
	}
	return names
}

// DemandChange is one append-only entry in a canonical demand's change log.
type DemandChange struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Delta     string    `json:"delta"`
}

// ProjectDemand is a staffing request. Once normalized it has IsCanonical set
// and carries a change log; for EXISTING projects every role with real
// assignments is present with headcount at least the assigned count.
type ProjectDemand struct {
	ProjectType ProjectType    `json:"projectType"`
	ProjectID   string         `json:"projectId,omitempty"`
	ProjectName string         `json:"projectName,omitempty"`
	Roles       []RoleDemand   `json:"roles"`
	IsCanonical bool           `json:"isCanonical,omitempty"`
	ChangeLog   []DemandChange `json:"changeLog,omitempty"`
}

// Clone returns a deep copy so normalization never mutates caller input.
func (d *ProjectDemand) Clone() *ProjectDemand {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Roles = make([]RoleDemand, len(d.Roles))
	for i, r := range d.Roles {
		rc := r
		rc.RequiredSkills = append([]SkillRequirement(nil), r.RequiredSkills...)
		cp.Roles[i] = rc
	}
	cp.ChangeLog = append([]DemandChange(nil), d.ChangeLog...)
	return &cp
}

// FindRole returns the index of the role whose name matches (case-insensitive), or -1.
func (d *ProjectDemand) FindRole(roleName string) int {
	if d == nil {
		return -1
	}
	for i := range d.Roles {
		if SameRoleName(d.Roles[i].RoleName, roleName) {
			return i
		}
	}
	return -1
}

// PrimarySkills returns the distinct required skill names across all roles, in demand order.
func (d *ProjectDemand) PrimarySkills() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]bool)
	var skills []string
	for _, r := range d.Roles {
		for _, s := range r.RequiredSkills {
			key := strings.ToLower(strings.TrimSpace(s.Name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			skills = append(skills, s.Name)
		}
	}
	return skills
}

// SameRoleName compares role names case-insensitively, ignoring surrounding space.
func SameRoleName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
