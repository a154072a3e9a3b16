package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/prompts"
)

// ProposalExplainer writes a short natural-language summary of a proposal.
type ProposalExplainer interface {
	Explain(ctx context.Context, question string, proposal *models.AllocationProposal, demand *models.ProjectDemand) string
}

type proposalExplainer struct {
	completer llm.TextCompleter
	logger    *zap.Logger
}

// NewProposalExplainer creates an explainer. A nil completer uses the template only.
func NewProposalExplainer(completer llm.TextCompleter, logger *zap.Logger) ProposalExplainer {
	return &proposalExplainer{
		completer: completer,
		logger:    logger.Named("proposal-explainer"),
	}
}

type explanationResponse struct {
	Explanation string `json:"explanation"`
}

func (x *proposalExplainer) Explain(ctx context.Context, question string, proposal *models.AllocationProposal, demand *models.ProjectDemand) string {
	skills := demand.PrimarySkills()

	if x.completer != nil {
		prompt := prompts.BuildExplanationPrompt(question, skills, teamMembers(proposal, nil))
		response, err := x.completer.Complete(ctx, prompt)
		if err == nil {
			parsed, perr := llm.ParseJSONLenient[explanationResponse](response)
			if perr == nil && strings.TrimSpace(parsed.Explanation) != "" {
				return strings.TrimSpace(parsed.Explanation)
			}
			err = perr
		}
		x.logger.Warn("Model explanation unavailable, using template",
			zap.String("error", logging.SanitizeError(err)))
	}

	return templateExplanation(proposal, skills)
}

// templateExplanation lists headcount per role and the demand's primary skills.
func templateExplanation(p *models.AllocationProposal, skills []string) string {
	var parts []string
	for i := range p.RoleAllocations {
		ra := &p.RoleAllocations[i]
		if n := ra.ActiveCount(); n > 0 {
			parts = append(parts, describeCount(n, ra.RoleName))
		}
	}

	var b strings.Builder
	name := p.ProjectName
	if name == "" {
		name = "this project"
	}
	if len(parts) == 0 {
		b.WriteString(fmt.Sprintf("The proposal for %s has no one assigned yet.", name))
	} else {
		b.WriteString(fmt.Sprintf("The proposal for %s staffs %s.", name, joinNames(parts)))
	}
	if len(skills) > 0 {
		b.WriteString(fmt.Sprintf(" Candidates were chosen for their fit with %s, then availability and seniority.", joinNames(skills)))
	} else {
		b.WriteString(" Candidates were chosen by role fit, availability and seniority.")
	}
	return b.String()
}

// teamMembers flattens active recommendations, attaching roster skills when available.
func teamMembers(p *models.AllocationProposal, roster map[string]*models.Employee) []prompts.TeamMember {
	if p == nil {
		return nil
	}
	var out []prompts.TeamMember
	for _, ra := range p.RoleAllocations {
		for _, rec := range ra.Recommendations {
			if rec.Status == models.RecommendationRemoved {
				continue
			}
			m := prompts.TeamMember{
				Name:              rec.EmployeeName,
				RoleName:          ra.RoleName,
				Status:            string(rec.Status),
				AllocationPercent: rec.AllocationPercent,
			}
			if e, ok := roster[rec.EmployeeID]; ok {
				m.Skills = e.SkillNames()
			}
			out = append(out, m)
		}
	}
	return out
}
