package prompts

import (
	"fmt"
	"strings"
)

// RoleCount is how many people a role currently has in a proposal.
type RoleCount struct {
	RoleName string
	Count    int
}

// BuildHeadcountPrompt asks how many people to add to a role given the current team.
func BuildHeadcountPrompt(roleName string, current []RoleCount, primarySkills []string) string {
	var prompt strings.Builder

	prompt.WriteString("# Headcount Recommendation\n\n")
	prompt.WriteString(fmt.Sprintf("The user wants to add **%s** staff but did not say how many.\n\n", roleName))

	prompt.WriteString("## Current Team\n\n")
	if len(current) == 0 {
		prompt.WriteString("The team is empty.\n")
	}
	for _, rc := range current {
		prompt.WriteString(fmt.Sprintf("- %s: %d\n", rc.RoleName, rc.Count))
	}
	prompt.WriteString("\n")

	if len(primarySkills) > 0 {
		prompt.WriteString(fmt.Sprintf("Primary project skills: %s\n\n", strings.Join(primarySkills, ", ")))
	}

	prompt.WriteString("## Staffing Heuristics\n\n")
	prompt.WriteString("- 1 QA engineer per 3-4 developers\n")
	prompt.WriteString("- 1 DevOps engineer per 5-8 developers\n")
	prompt.WriteString("- 1 designer per 4-6 frontend developers\n")
	prompt.WriteString("- 1 project manager per team of up to 10\n")
	prompt.WriteString("- Never recommend more than 3 additions at once\n\n")

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{"count": 1, "reason": "One QA covers the current three developers."}`)
	prompt.WriteString("\n```\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}
