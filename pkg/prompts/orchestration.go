package prompts

import (
	"fmt"
	"strings"
)

// Orchestrator actions the classifier may choose.
const (
	ActionParseDemand = "PARSE_DEMAND"
	ActionAllocate    = "ALLOCATE"
	ActionChat        = "CHAT"
	ActionAnalyze     = "ANALYZE"
)

// BuildClassificationPrompt asks which pipeline a free-form message belongs to.
func BuildClassificationPrompt(message string, hasProposal bool) string {
	var prompt strings.Builder

	prompt.WriteString("# Request Routing\n\n")
	prompt.WriteString("Decide how the staffing assistant should handle this message.\n\n")
	if hasProposal {
		prompt.WriteString("A team proposal already exists in this session.\n\n")
	} else {
		prompt.WriteString("No team proposal exists yet.\n\n")
	}

	prompt.WriteString("## Message\n\n")
	prompt.WriteString(message)
	prompt.WriteString("\n\n")

	prompt.WriteString("## Actions\n\n")
	prompt.WriteString(fmt.Sprintf("- `%s`: the message describes a project's staffing needs\n", ActionParseDemand))
	prompt.WriteString(fmt.Sprintf("- `%s`: regenerate the proposal for the current demand as-is\n", ActionAllocate))
	prompt.WriteString(fmt.Sprintf("- `%s`: an edit or question about the existing proposal\n", ActionChat))
	prompt.WriteString(fmt.Sprintf("- `%s`: a request for risk, capacity or skill-gap review\n\n", ActionAnalyze))

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{"action": "CHAT"}`)
	prompt.WriteString("\n```\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}

// BuildDemandParsePrompt asks the model to extract a structured demand from prose.
func BuildDemandParsePrompt(text string) string {
	var prompt strings.Builder

	prompt.WriteString("# Staffing Demand Extraction\n\n")
	prompt.WriteString("Extract the project's staffing needs from the description below.\n\n")
	prompt.WriteString("## Description\n\n")
	prompt.WriteString(text)
	prompt.WriteString("\n\n")

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("Respond in JSON with:\n")
	prompt.WriteString("- `projectName`: short name if one is given\n")
	prompt.WriteString("- `projectType`: `NEW`, `EXISTING` or `GENERAL_DEMAND`\n")
	prompt.WriteString("- `projectId`: only if an existing project id is mentioned\n")
	prompt.WriteString("- `roles`: array of roles, each with `roleName`, `headcount`, `allocationPercent` (default 100), ")
	prompt.WriteString("`experienceLevel` (`JUNIOR`, `MID`, `SENIOR`; default `MID`) and `requiredSkills` ")
	prompt.WriteString("(array of `{name, minimumProficiency}`, proficiency 1-5, default 3)\n\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{"projectName": "Checkout revamp", "projectType": "NEW", "roles": [{"roleName": "Backend Developer", "headcount": 2, "allocationPercent": 100, "experienceLevel": "SENIOR", "requiredSkills": [{"name": "Go", "minimumProficiency": 4}]}]}`)
	prompt.WriteString("\n```\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}
