package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// maxHistoryTurns bounds how much conversation is replayed into the intent prompt.
const maxHistoryTurns = 10

// BuildIntentPrompt asks the model to turn a chat instruction into a structured intent.
func BuildIntentPrompt(message string, history []models.ChatMessage, currentRoles []RoleCount) string {
	var prompt strings.Builder

	prompt.WriteString("# Staffing Instruction Interpretation\n\n")
	prompt.WriteString("Classify the user's latest instruction about a team allocation proposal.\n\n")

	if len(currentRoles) > 0 {
		prompt.WriteString("## Current Proposal\n\n")
		for _, rc := range currentRoles {
			prompt.WriteString(fmt.Sprintf("- %s: %d\n", rc.RoleName, rc.Count))
		}
		prompt.WriteString("\n")
	}

	if len(history) > 0 {
		prompt.WriteString("## Conversation\n\n")
		start := 0
		if len(history) > maxHistoryTurns {
			start = len(history) - maxHistoryTurns
		}
		for _, m := range history[start:] {
			prompt.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("## Latest Instruction\n\n")
	prompt.WriteString(message)
	prompt.WriteString("\n\n")

	prompt.WriteString("## Intent Types\n\n")
	prompt.WriteString("- `CREATE_ALLOCATION`: build a new team from scratch\n")
	prompt.WriteString("- `ADD_EMPLOYEES`: add people to one or more roles\n")
	prompt.WriteString("- `REPLACE_EMPLOYEE`: swap a named person for someone else\n")
	prompt.WriteString("- `ASK_EXPLANATION`: a question about the proposal, no change\n\n")

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("Respond in JSON with:\n")
	prompt.WriteString("- `intentType`: one of the types above\n")
	prompt.WriteString("- `roles`: array of `{roleName, count}` (count 0 when unspecified)\n")
	prompt.WriteString("- `role`: single role name, if only one is mentioned\n")
	prompt.WriteString("- `employeeCount`: number, if a count is given without a role list\n")
	prompt.WriteString("- `skills`: array of skill names mentioned\n")
	prompt.WriteString("- `targetEmployeeName`: for REPLACE_EMPLOYEE, the person to replace\n")
	prompt.WriteString("- `incremental`: true for \"one more\", \"another\", \"add 2 more\"\n")
	prompt.WriteString("- `autoSuggestCount`: true when the user lets you decide how many\n\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{"intentType": "ADD_EMPLOYEES", "roles": [{"roleName": "QA Engineer", "count": 1}], "skills": ["Cypress"], "incremental": true, "autoSuggestCount": false}`)
	prompt.WriteString("\n```\n\n")
	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}
