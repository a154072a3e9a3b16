// Package prompts builds the text prompts sent to the completion service.
// Every prompt asks for a single JSON object so responses can go through
// llm.ParseJSONLenient.
package prompts

import (
	"fmt"
	"strings"
)

// RankingCandidate is a shortlisted employee as presented to the model.
type RankingCandidate struct {
	EmployeeID          string
	Name                string
	Role                string
	ExperienceLevel     string
	AvailabilityPercent int
	Skills              []string
	Score               float64
}

// BuildRankingPrompt asks the model to re-order a shortlist for one role.
func BuildRankingPrompt(roleName string, requiredSkills []string, candidates []RankingCandidate) string {
	var prompt strings.Builder

	prompt.WriteString("# Staffing Candidate Ranking\n\n")
	prompt.WriteString(fmt.Sprintf("Rank the following candidates for the role **%s**.\n\n", roleName))

	if len(requiredSkills) > 0 {
		prompt.WriteString(fmt.Sprintf("Required skills: %s\n\n", strings.Join(requiredSkills, ", ")))
	} else {
		prompt.WriteString("No specific skills are required for this role.\n\n")
	}

	prompt.WriteString("## Candidates\n\n")
	for _, c := range candidates {
		prompt.WriteString(fmt.Sprintf("### %s (id: %s)\n", c.Name, c.EmployeeID))
		prompt.WriteString(fmt.Sprintf("- Current role: %s\n", c.Role))
		prompt.WriteString(fmt.Sprintf("- Experience: %s\n", c.ExperienceLevel))
		prompt.WriteString(fmt.Sprintf("- Availability: %d%%\n", c.AvailabilityPercent))
		if len(c.Skills) > 0 {
			prompt.WriteString(fmt.Sprintf("- Skills: %s\n", strings.Join(c.Skills, ", ")))
		}
		prompt.WriteString(fmt.Sprintf("- Baseline score: %.2f\n\n", c.Score))
	}

	prompt.WriteString("## Guidelines\n\n")
	prompt.WriteString("- Prefer candidates whose skills cover the required skills\n")
	prompt.WriteString("- Prefer higher availability when skills are comparable\n")
	prompt.WriteString("- Seniority matters more for lead or architect roles\n")
	prompt.WriteString("- Only use the ids listed above\n\n")

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("Respond in JSON with a `rankings` array ordered best first. Each entry has:\n")
	prompt.WriteString("- `employeeId`: the candidate id (string)\n")
	prompt.WriteString("- `confidence`: 0.0-1.0\n")
	prompt.WriteString("- `reason`: one short sentence\n\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{"rankings": [{"employeeId": "emp-1", "confidence": 0.92, "reason": "Strong Go and Postgres match, fully available."}]}`)
	prompt.WriteString("\n```\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}
