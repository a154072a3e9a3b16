package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecommendationStatus distinguishes carried-over members from proposed ones.
type RecommendationStatus string

const (
	// RecommendationExisting is a real, current assignment. Never re-ranked.
	RecommendationExisting RecommendationStatus = "EXISTING"
	// RecommendationNew is a proposed addition.
	RecommendationNew RecommendationStatus = "NEW"
	// RecommendationRemoved is a current member proposed to roll off.
	RecommendationRemoved RecommendationStatus = "REMOVED"
)

// Recommendation is one proposed (or existing) employee-to-role assignment.
type Recommendation struct {
	EmployeeID        string               `json:"employeeId"`
	EmployeeName      string               `json:"employeeName"`
	CurrentRole       string               `json:"currentRole"`
	Confidence        float64              `json:"confidence"`
	Reason            string               `json:"reason"`
	Status            RecommendationStatus `json:"status"`
	AllocationPercent int                  `json:"allocationPercent"`
}

// RoleAllocation is the recommendation list for one role. EXISTING entries
// precede NEW entries and employee IDs are unique within the list.
type RoleAllocation struct {
	RoleName        string           `json:"roleName"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ActiveCount counts recommendations that occupy a seat (everything but REMOVED).
func (r *RoleAllocation) ActiveCount() int {
	n := 0
	for _, rec := range r.Recommendations {
		if rec.Status != RecommendationRemoved {
			n++
		}
	}
	return n
}

// AllocationProposal is the engine's output artifact.
type AllocationProposal struct {
	ProposalID        uuid.UUID        `json:"proposalId"`
	ProjectName       string           `json:"projectName"`
	ProjectID         string           `json:"projectId,omitempty"`
	Type              ProjectType      `json:"type,omitempty"`
	GeneratedAt       time.Time        `json:"generatedAt"`
	DemandFingerprint string           `json:"demandFingerprint,omitempty"`
	RoleAllocations   []RoleAllocation `json:"roleAllocations"`
}

// Clone returns a deep copy. Mutation handlers work on clones so a rejected
// instruction leaves the caller's proposal untouched.
func (p *AllocationProposal) Clone() *AllocationProposal {
	if p == nil {
		return nil
	}
	cp := *p
	cp.RoleAllocations = make([]RoleAllocation, len(p.RoleAllocations))
	for i, ra := range p.RoleAllocations {
		cp.RoleAllocations[i] = RoleAllocation{
			RoleName:        ra.RoleName,
			Recommendations: append([]Recommendation(nil), ra.Recommendations...),
		}
	}
	return &cp
}

// FindRole returns the role allocation whose name matches (case-insensitive), or nil.
func (p *AllocationProposal) FindRole(roleName string) *RoleAllocation {
	if p == nil {
		return nil
	}
	for i := range p.RoleAllocations {
		if SameRoleName(p.RoleAllocations[i].RoleName, roleName) {
			return &p.RoleAllocations[i]
		}
	}
	return nil
}

// EnsureRole returns the allocation for roleName, appending an empty one if missing.
func (p *AllocationProposal) EnsureRole(roleName string) *RoleAllocation {
	if ra := p.FindRole(roleName); ra != nil {
		return ra
	}
	p.RoleAllocations = append(p.RoleAllocations, RoleAllocation{RoleName: roleName})
	return &p.RoleAllocations[len(p.RoleAllocations)-1]
}

// AllocatedEmployeeIDs returns every employee that appears anywhere in the proposal,
// including REMOVED entries.
func (p *AllocationProposal) AllocatedEmployeeIDs() map[string]bool {
	ids := make(map[string]bool)
	if p == nil {
		return ids
	}
	for _, ra := range p.RoleAllocations {
		for _, rec := range ra.Recommendations {
			ids[rec.EmployeeID] = true
		}
	}
	return ids
}

// FindByName locates the first active recommendation whose employee name contains
// the fragment (case-insensitive), scanning roles in order. First match wins.
func (p *AllocationProposal) FindByName(fragment string) (roleIdx, recIdx int, ok bool) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if p == nil || needle == "" {
		return -1, -1, false
	}
	for i, ra := range p.RoleAllocations {
		for j, rec := range ra.Recommendations {
			if rec.Status == RecommendationRemoved {
				continue
			}
			if strings.Contains(strings.ToLower(rec.EmployeeName), needle) {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// TotalActive counts active recommendations across all roles.
func (p *AllocationProposal) TotalActive() int {
	if p == nil {
		return 0
	}
	n := 0
	for i := range p.RoleAllocations {
		n += p.RoleAllocations[i].ActiveCount()
	}
	return n
}
