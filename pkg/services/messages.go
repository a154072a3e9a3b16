package services

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// Fixed user-facing replies.
const (
	msgReplaceNotFound     = "I couldn't find that employee to replace."
	msgReplaceNeedsName    = "Who should I replace? Tell me the person's name, for example \"replace Bob\"."
	msgAddNeedsRole        = "Which role should I add people to? For example: \"add one more backend developer\"."
	msgCreateNeedsRoles    = "Tell me which roles you need, for example \"2 backend developers and a QA engineer\"."
	msgNoProposalToExplain = "There's no allocation yet. Describe the roles you need and I'll propose a team."
	msgAcknowledge         = "Got it. I can add people to a role, replace someone, or explain the current proposal."
)

// pluralRole pluralizes the last word of a role name when n != 1:
// "QA Engineer" becomes "QA Engineers".
func pluralRole(roleName string, n int) string {
	roleName = strings.TrimSpace(roleName)
	if n == 1 || roleName == "" {
		return roleName
	}
	i := strings.LastIndex(roleName, " ")
	return roleName[:i+1] + inflection.Plural(roleName[i+1:])
}

// joinNames renders "A", "A and B", "A, B and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
