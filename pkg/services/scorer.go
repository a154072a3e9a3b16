package services

import (
	"math"
	"strings"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// Scoring weights. They sum to 1.0 for a perfect candidate.
const (
	weightAvailability = 0.3
	weightExperience   = 0.2
	weightSkills       = 0.4
	roleAffinityBonus  = 0.1
)

// ScoreBreakdown is the per-factor detail behind a deterministic score.
type ScoreBreakdown struct {
	Score          float64
	MatchedSkills  int
	RequiredSkills int
	RoleAffinity   bool
}

// DeterministicScorer ranks candidates without any external call. It is the
// fallback whenever model-based ranking is unavailable.
type DeterministicScorer struct{}

// Score returns a value in [0,1]. It never fails.
func (s DeterministicScorer) Score(e *models.Employee, roleName string, requiredSkills []string) float64 {
	return s.Breakdown(e, roleName, requiredSkills).Score
}

// Breakdown computes the score along with the factors that produced it.
func (DeterministicScorer) Breakdown(e *models.Employee, roleName string, requiredSkills []string) ScoreBreakdown {
	var b ScoreBreakdown

	avail := math.Max(0, math.Min(100, float64(e.AvailabilityPercent)))
	score := (avail / 100) * weightAvailability
	score += experienceWeight(e.ExperienceLevel) * weightExperience

	for _, s := range requiredSkills {
		if strings.TrimSpace(s) == "" {
			continue
		}
		b.RequiredSkills++
		if e.HasSkill(s) {
			b.MatchedSkills++
		}
	}
	if b.RequiredSkills == 0 {
		score += weightSkills
	} else {
		score += float64(b.MatchedSkills) / float64(b.RequiredSkills) * weightSkills
	}

	role := strings.ToLower(strings.TrimSpace(roleName))
	empRole := strings.ToLower(strings.TrimSpace(e.Role))
	if role != "" && empRole != "" && (strings.Contains(empRole, role) || strings.Contains(role, empRole)) {
		b.RoleAffinity = true
		score += roleAffinityBonus
	}

	b.Score = math.Min(1.0, score)
	return b
}

func experienceWeight(level models.ExperienceLevel) float64 {
	switch level {
	case models.ExperienceSenior:
		return 1.0
	case models.ExperienceMid:
		return 0.7
	case models.ExperienceJunior:
		return 0.4
	default:
		return 0.5
	}
}
