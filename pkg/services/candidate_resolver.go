package services

import (
	"strings"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// MinAvailabilityPercent is the capacity below which nobody is proposed, even part-time.
const MinAvailabilityPercent = 20

// CandidateResolver filters a roster down to the employees eligible for a role.
type CandidateResolver struct {
	synonyms *RoleSynonyms
}

// NewCandidateResolver creates a resolver. A nil table uses DefaultRoleSynonyms.
func NewCandidateResolver(synonyms *RoleSynonyms) *CandidateResolver {
	if synonyms == nil {
		synonyms = DefaultRoleSynonyms()
	}
	return &CandidateResolver{synonyms: synonyms}
}

// Resolve returns the eligible employees in input order. It is pure and never
// returns nil; an empty result means nobody qualifies.
func (r *CandidateResolver) Resolve(roleName string, requiredSkills []string, employees []models.Employee) []models.Employee {
	out := make([]models.Employee, 0)
	for i := range employees {
		e := &employees[i]
		if e.AvailabilityPercent < MinAvailabilityPercent {
			continue
		}
		if e.Status == models.EmployeeStatusOnLeave {
			continue
		}
		if !r.synonyms.Match(roleName, e.Role) {
			continue
		}
		if !sharesAnySkill(e, requiredSkills) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

func sharesAnySkill(e *models.Employee, required []string) bool {
	hasRequirement := false
	for _, s := range required {
		if strings.TrimSpace(s) == "" {
			continue
		}
		hasRequirement = true
		if e.HasSkill(s) {
			return true
		}
	}
	return !hasRequirement
}

// withoutEmployees returns employees minus the given IDs, preserving order.
func withoutEmployees(employees []models.Employee, exclude map[string]bool) []models.Employee {
	if len(exclude) == 0 {
		return employees
	}
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if !exclude[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
