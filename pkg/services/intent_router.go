package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// SoftCapSlack is how far above its baseline headcount chat additions may take a role.
const SoftCapSlack = 3

// maxChatAllocationPercent caps allocation for people added through chat.
const maxChatAllocationPercent = 100

// InstructionContext is everything one chat turn is evaluated against. The
// router keeps no state between turns; callers pass the latest proposal and demand.
type InstructionContext struct {
	Employees []models.Employee
	Projects  []models.Project
	Proposal  *models.AllocationProposal
	Demand    *models.ProjectDemand
}

// InstructionResult is the outcome of one chat turn. When nothing changed,
// Proposal is the caller's proposal pointer and Changed is false.
type InstructionResult struct {
	Intent   models.IntentType          `json:"intent"`
	Proposal *models.AllocationProposal `json:"proposal"`
	Demand   *models.ProjectDemand      `json:"demand,omitempty"`
	Message  string                     `json:"message"`
	Changed  bool                       `json:"changed"`
}

// IntentRouter dispatches an extracted intent to its mutation handler.
// Recoverable problems become a Message with the proposal untouched; only a
// replace with no active proposal returns apperrors.ErrNoActiveProposal.
type IntentRouter interface {
	Route(ctx context.Context, intent models.Intent, ic InstructionContext) (*InstructionResult, error)
}

type intentRouter struct {
	engine    AllocationEngine
	resolver  *CandidateResolver
	ranker    CandidateRanker
	headcount HeadcountRecommender
	explainer ProposalExplainer
	logger    *zap.Logger
}

// NewIntentRouter creates a router over the allocation pipeline.
func NewIntentRouter(
	engine AllocationEngine,
	resolver *CandidateResolver,
	ranker CandidateRanker,
	headcount HeadcountRecommender,
	explainer ProposalExplainer,
	logger *zap.Logger,
) IntentRouter {
	return &intentRouter{
		engine:    engine,
		resolver:  resolver,
		ranker:    ranker,
		headcount: headcount,
		explainer: explainer,
		logger:    logger.Named("intent-router"),
	}
}

func (r *intentRouter) Route(ctx context.Context, intent models.Intent, ic InstructionContext) (*InstructionResult, error) {
	if intent == nil {
		intent = models.UnknownIntent{}
	}
	r.logger.Debug("Routing instruction", zap.String("intent", string(intent.Type())))

	switch in := intent.(type) {
	case models.CreateAllocationIntent:
		return r.handleCreate(ctx, in, ic)
	case models.AddEmployeesIntent:
		return r.handleAdd(ctx, in, ic)
	case models.ReplaceEmployeeIntent:
		return r.handleReplace(ctx, in, ic)
	case models.AskExplanationIntent:
		return r.handleExplain(ctx, in, ic), nil
	default:
		return r.handleUnknown(ctx, ic)
	}
}

func unchanged(intent models.IntentType, ic InstructionContext, message string) *InstructionResult {
	return &InstructionResult{
		Intent:   intent,
		Proposal: ic.Proposal,
		Demand:   ic.Demand,
		Message:  message,
	}
}

// handleCreate replaces any prior proposal with a fresh generation.
func (r *intentRouter) handleCreate(ctx context.Context, in models.CreateAllocationIntent, ic InstructionContext) (*InstructionResult, error) {
	demand := demandWithRoles(ic.Demand, in.Roles, in.Skills)
	if demand == nil || len(demand.Roles) == 0 {
		return unchanged(models.IntentCreateAllocation, ic, msgCreateNeedsRoles), nil
	}

	proposal, err := r.engine.Generate(ctx, demand, ic.Employees, ic.Projects)
	if err != nil {
		return nil, err
	}

	return &InstructionResult{
		Intent:   models.IntentCreateAllocation,
		Proposal: proposal,
		Demand:   demand,
		Message:  fmt.Sprintf("Created a new allocation with %s.", summarizeProposal(proposal)),
		Changed:  true,
	}, nil
}

// demandWithRoles overrides base's roles with the requested ones. Roles that
// already exist in base keep their skills and seniority unless skills are given.
func demandWithRoles(base *models.ProjectDemand, roles []models.RoleRequest, skills []string) *models.ProjectDemand {
	requested := nonEmptyRoles(roles)
	if len(requested) == 0 {
		return base.Clone()
	}

	var d *models.ProjectDemand
	if base != nil {
		d = base.Clone()
	} else {
		d = &models.ProjectDemand{ProjectType: models.ProjectTypeGeneralDemand}
	}
	d.IsCanonical = false

	skillReqs := make([]models.SkillRequirement, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			skillReqs = append(skillReqs, models.SkillRequirement{Name: s, MinimumProficiency: 1})
		}
	}

	newRoles := make([]models.RoleDemand, 0, len(requested))
	for _, rr := range requested {
		headcount := rr.Count
		if headcount <= 0 {
			headcount = 1
		}

		role := models.RoleDemand{
			RoleName:          rr.RoleName,
			RequiredSkills:    []models.SkillRequirement{},
			ExperienceLevel:   models.ExperienceMid,
			AllocationPercent: defaultAllocationPercent,
		}
		if idx := base.FindRole(rr.RoleName); idx >= 0 {
			role = base.Roles[idx]
			role.RequiredSkills = append([]models.SkillRequirement(nil), role.RequiredSkills...)
		}
		role.Headcount = headcount
		if len(skillReqs) > 0 {
			role.RequiredSkills = append([]models.SkillRequirement(nil), skillReqs...)
		}
		newRoles = append(newRoles, role)
	}
	d.Roles = newRoles
	return d
}

type addPlan struct {
	roleName string
	current  int
	baseline int
	toAdd    int
}

// handleAdd adds people to one or more roles. The soft cap is checked for every
// role before anything is mutated; one violation rejects the whole instruction.
func (r *intentRouter) handleAdd(ctx context.Context, in models.AddEmployeesIntent, ic InstructionContext) (*InstructionResult, error) {
	if ic.Proposal == nil {
		r.logger.Info("No active proposal, treating add as create")
		return r.handleCreate(ctx, models.CreateAllocationIntent{Roles: in.Roles, Skills: in.Skills}, ic)
	}

	requested := nonEmptyRoles(in.Roles)
	if len(requested) == 0 {
		return unchanged(models.IntentAddEmployees, ic, msgAddNeedsRole), nil
	}

	plans := make([]addPlan, 0, len(requested))
	for _, rr := range requested {
		p := addPlan{roleName: rr.RoleName}
		if ra := ic.Proposal.FindRole(rr.RoleName); ra != nil {
			p.roleName = ra.RoleName
			p.current = ra.ActiveCount()
		}
		p.baseline = softCapBaseline(ic, p.roleName)

		switch {
		case in.AutoSuggestCount:
			p.toAdd = r.headcount.Recommend(ctx, p.roleName, ic.Proposal, ic.Demand)
		case rr.Count <= 0:
			p.toAdd = 1
		case in.Incremental:
			p.toAdd = rr.Count
		default:
			p.toAdd = max(0, rr.Count-p.current)
		}

		limit := p.baseline + SoftCapSlack
		if p.current+p.toAdd > limit {
			r.logger.Info("Add rejected by soft cap",
				zap.String("role", p.roleName),
				zap.Int("current", p.current),
				zap.Int("requested", p.toAdd),
				zap.Int("limit", limit))
			return unchanged(models.IntentAddEmployees, ic, fmt.Sprintf(
				"I can't add %d more %s: that would bring %s to %d, above the limit of %d (baseline %d plus %d). Regenerate the allocation with a higher headcount instead.",
				p.toAdd, pluralRole(p.roleName, p.toAdd), p.roleName, p.current+p.toAdd, limit, p.baseline, SoftCapSlack)), nil
		}
		plans = append(plans, p)
	}

	updated := ic.Proposal.Clone()
	exclude := updated.AllocatedEmployeeIDs()
	var messages []string
	changed := false

	for _, p := range plans {
		if p.toAdd == 0 {
			messages = append(messages, fmt.Sprintf("%s already has %d; nothing to add.", p.roleName, p.current))
			continue
		}

		skills := in.Skills
		if len(skills) == 0 {
			skills = demandSkills(ic.Demand, p.roleName)
		}
		candidates := r.resolver.Resolve(p.roleName, skills, withoutEmployees(ic.Employees, exclude))
		if len(candidates) == 0 {
			messages = append(messages, fmt.Sprintf("No available candidates for %s.", p.roleName))
			continue
		}

		ranked := r.ranker.Rank(ctx, p.roleName, candidates, skills)
		byID := models.IndexEmployees(candidates)
		ra := updated.EnsureRole(p.roleName)

		var names []string
		for _, rc := range ranked {
			if len(names) == p.toAdd {
				break
			}
			emp, ok := byID[rc.EmployeeID]
			if !ok || exclude[emp.ID] {
				continue
			}
			exclude[emp.ID] = true
			ra.Recommendations = append(ra.Recommendations,
				newRecommendation(emp, rc, min(maxChatAllocationPercent, emp.AvailabilityPercent)))
			names = append(names, emp.Name)
		}

		msg := fmt.Sprintf("Added %s as %s.", joinNames(names), pluralRole(p.roleName, len(names)))
		if len(names) < p.toAdd {
			msg += fmt.Sprintf(" Only %d of the %d requested were available.", len(names), p.toAdd)
		}
		messages = append(messages, msg)
		changed = true
	}

	if !changed {
		return unchanged(models.IntentAddEmployees, ic, strings.Join(messages, " ")), nil
	}
	return &InstructionResult{
		Intent:   models.IntentAddEmployees,
		Proposal: updated,
		Demand:   ic.Demand,
		Message:  strings.Join(messages, " "),
		Changed:  true,
	}, nil
}

// handleReplace swaps the first active recommendation whose name contains the
// target. An EXISTING member is marked REMOVED; a NEW one is dropped.
func (r *intentRouter) handleReplace(ctx context.Context, in models.ReplaceEmployeeIntent, ic InstructionContext) (*InstructionResult, error) {
	if ic.Proposal == nil {
		return nil, fmt.Errorf("replace %q: %w", in.TargetEmployeeName, apperrors.ErrNoActiveProposal)
	}
	if strings.TrimSpace(in.TargetEmployeeName) == "" {
		return unchanged(models.IntentReplaceEmployee, ic, msgReplaceNeedsName), nil
	}

	roleIdx, recIdx, ok := ic.Proposal.FindByName(in.TargetEmployeeName)
	if !ok {
		return unchanged(models.IntentReplaceEmployee, ic, msgReplaceNotFound), nil
	}
	removed := ic.Proposal.RoleAllocations[roleIdx].Recommendations[recIdx]

	targetRole := ic.Proposal.RoleAllocations[roleIdx].RoleName
	if alt := strings.TrimSpace(in.Role); alt != "" {
		targetRole = alt
		if ra := ic.Proposal.FindRole(alt); ra != nil {
			targetRole = ra.RoleName
		}
	}

	skills := in.Skills
	if len(skills) == 0 {
		skills = demandSkills(ic.Demand, targetRole)
	}

	exclude := ic.Proposal.AllocatedEmployeeIDs()
	candidates := r.resolver.Resolve(targetRole, skills, withoutEmployees(ic.Employees, exclude))
	ranked := r.ranker.Rank(ctx, targetRole, candidates, skills)
	if len(ranked) == 0 {
		return unchanged(models.IntentReplaceEmployee, ic, fmt.Sprintf(
			"I found %s, but there is no available %s to replace them with, so the proposal is unchanged.",
			removed.EmployeeName, targetRole)), nil
	}
	best := ranked[0]
	replacement := models.IndexEmployees(candidates)[best.EmployeeID]

	updated := ic.Proposal.Clone()
	from := &updated.RoleAllocations[roleIdx]
	if removed.Status == models.RecommendationExisting {
		from.Recommendations[recIdx].Status = models.RecommendationRemoved
		from.Recommendations[recIdx].Reason = fmt.Sprintf("Proposed to roll off, replaced by %s", replacement.Name)
	} else {
		from.Recommendations = append(from.Recommendations[:recIdx], from.Recommendations[recIdx+1:]...)
	}

	to := updated.EnsureRole(targetRole)
	to.Recommendations = append(to.Recommendations,
		newRecommendation(replacement, best, min(removed.AllocationPercent, replacement.AvailabilityPercent)))

	r.logger.Info("Replaced proposal member",
		zap.String("removed", removed.EmployeeID),
		zap.String("replacement", replacement.ID),
		zap.String("role", targetRole))

	return &InstructionResult{
		Intent:   models.IntentReplaceEmployee,
		Proposal: updated,
		Demand:   ic.Demand,
		Message:  fmt.Sprintf("Replaced %s with %s as %s.", removed.EmployeeName, replacement.Name, targetRole),
		Changed:  true,
	}, nil
}

func (r *intentRouter) handleExplain(ctx context.Context, in models.AskExplanationIntent, ic InstructionContext) *InstructionResult {
	if ic.Proposal == nil {
		return unchanged(models.IntentAskExplanation, ic, msgNoProposalToExplain)
	}
	return unchanged(models.IntentAskExplanation, ic, r.explainer.Explain(ctx, in.Question, ic.Proposal, ic.Demand))
}

func (r *intentRouter) handleUnknown(ctx context.Context, ic InstructionContext) (*InstructionResult, error) {
	if ic.Proposal != nil {
		return unchanged(models.IntentUnknown, ic, msgAcknowledge), nil
	}
	if ic.Demand == nil || len(ic.Demand.Roles) == 0 {
		return unchanged(models.IntentUnknown, ic, msgCreateNeedsRoles), nil
	}

	proposal, err := r.engine.Generate(ctx, ic.Demand, ic.Employees, ic.Projects)
	if err != nil {
		return nil, err
	}
	return &InstructionResult{
		Intent:   models.IntentUnknown,
		Proposal: proposal,
		Demand:   ic.Demand,
		Message:  fmt.Sprintf("I generated an allocation from the current demand with %s.", summarizeProposal(proposal)),
		Changed:  true,
	}, nil
}

// softCapBaseline is the role's demanded headcount, raised to the number of
// people currently assigned to it when the demand is for an EXISTING project.
func softCapBaseline(ic InstructionContext, roleName string) int {
	baseline := 0
	if idx := ic.Demand.FindRole(roleName); idx >= 0 {
		baseline = ic.Demand.Roles[idx].Headcount
	}
	if ic.Demand == nil || ic.Demand.ProjectType != models.ProjectTypeExisting {
		return baseline
	}
	project := models.FindProject(ic.Projects, ic.Demand.ProjectID)
	if project == nil {
		return baseline
	}
	assigned := make(map[string]bool)
	for _, a := range project.AssignedEmployees {
		if models.SameRoleName(a.RoleName, roleName) {
			assigned[a.EmployeeID] = true
		}
	}
	return max(baseline, len(assigned))
}

func nonEmptyRoles(roles []models.RoleRequest) []models.RoleRequest {
	out := make([]models.RoleRequest, 0, len(roles))
	for _, rr := range roles {
		if name := strings.TrimSpace(rr.RoleName); name != "" {
			rr.RoleName = name
			out = append(out, rr)
		}
	}
	return out
}

// demandSkills returns the required skill names for roleName in demand, if any.
func demandSkills(d *models.ProjectDemand, roleName string) []string {
	if idx := d.FindRole(roleName); idx >= 0 {
		return d.Roles[idx].SkillNames()
	}
	return nil
}

// summarizeProposal renders "5 people across 3 roles".
func summarizeProposal(p *models.AllocationProposal) string {
	people := p.TotalActive()
	roles := len(p.RoleAllocations)
	return fmt.Sprintf("%d %s across %d %s", people, pluralRole("person", people), roles, pluralRole("role", roles))
}
