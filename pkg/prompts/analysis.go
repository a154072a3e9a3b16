package prompts

import (
	"fmt"
	"strings"
)

// TeamMember is one proposed or existing member as shown to the reviewer.
type TeamMember struct {
	Name              string
	RoleName          string
	Status            string
	AllocationPercent int
	Skills            []string
}

// BuildAnalysisPrompt asks for a review of a proposal from three angles:
// quality assurance coverage, capacity and skill gaps.
func BuildAnalysisPrompt(projectName string, primarySkills []string, roles []RoleCount, members []TeamMember) string {
	var prompt strings.Builder

	prompt.WriteString("# Staffing Proposal Review\n\n")
	if projectName != "" {
		prompt.WriteString(fmt.Sprintf("Project: %s\n", projectName))
	}
	if len(primarySkills) > 0 {
		prompt.WriteString(fmt.Sprintf("Primary skills: %s\n", strings.Join(primarySkills, ", ")))
	}
	prompt.WriteString("\n## Requested Roles\n\n")
	for _, rc := range roles {
		prompt.WriteString(fmt.Sprintf("- %s: %d\n", rc.RoleName, rc.Count))
	}

	prompt.WriteString("\n## Proposed Team\n\n")
	for _, m := range members {
		prompt.WriteString(fmt.Sprintf("- %s as %s (%s, %d%%)", m.Name, m.RoleName, m.Status, m.AllocationPercent))
		if len(m.Skills) > 0 {
			prompt.WriteString(fmt.Sprintf(" skills: %s", strings.Join(m.Skills, ", ")))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("\n## Review Angles\n\n")
	prompt.WriteString("- `qa`: is testing adequately staffed for the developer count?\n")
	prompt.WriteString("- `capacity`: are partial allocations likely to slow delivery?\n")
	prompt.WriteString("- `skillGaps`: required skills nobody on the team has\n\n")

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{"summary": "Solid backend coverage, thin on QA.", "qa": "One QA for five developers is below the 1:4 guideline.", "capacity": "Two members are at 50%.", "skillGaps": ["Kubernetes"]}`)
	prompt.WriteString("\n```\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}

// BuildExplanationPrompt asks for a short plain-language explanation of a proposal.
func BuildExplanationPrompt(question string, primarySkills []string, members []TeamMember) string {
	var prompt strings.Builder

	prompt.WriteString("# Explain a Staffing Proposal\n\n")
	if question != "" {
		prompt.WriteString(fmt.Sprintf("The user asked: %s\n\n", question))
	}
	if len(primarySkills) > 0 {
		prompt.WriteString(fmt.Sprintf("The project's primary skills are %s.\n\n", strings.Join(primarySkills, ", ")))
	}

	prompt.WriteString("## Team\n\n")
	for _, m := range members {
		prompt.WriteString(fmt.Sprintf("- %s as %s (%s, %d%%)\n", m.Name, m.RoleName, m.Status, m.AllocationPercent))
	}

	prompt.WriteString("\nAnswer in at most four sentences and refer to the primary skills.\n\n")
	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{"explanation": "..."}`)
	prompt.WriteString("\n```\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}
