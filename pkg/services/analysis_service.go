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

// Analysis is a review of a proposal. SkillGaps always contains the
// deterministic gaps; model output can only add to them.
type Analysis struct {
	Summary   string   `json:"summary"`
	QA        string   `json:"qa"`
	Capacity  string   `json:"capacity"`
	SkillGaps []string `json:"skillGaps"`
	Generated bool     `json:"generated"`
}

// AnalysisService reviews a proposal for QA coverage, capacity and skill gaps.
type AnalysisService interface {
	Analyze(ctx context.Context, demand *models.ProjectDemand, proposal *models.AllocationProposal, employees []models.Employee) *Analysis
}

type analysisService struct {
	completer llm.TextCompleter
	synonyms  *RoleSynonyms
	logger    *zap.Logger
}

// NewAnalysisService creates an analysis service. A nil completer returns the
// deterministic review only.
func NewAnalysisService(completer llm.TextCompleter, logger *zap.Logger) AnalysisService {
	return &analysisService{
		completer: completer,
		synonyms:  DefaultRoleSynonyms(),
		logger:    logger.Named("analysis"),
	}
}

type analysisResponse struct {
	Summary   string   `json:"summary"`
	QA        string   `json:"qa"`
	Capacity  string   `json:"capacity"`
	SkillGaps []string `json:"skillGaps"`
}

func (a *analysisService) Analyze(ctx context.Context, demand *models.ProjectDemand, proposal *models.AllocationProposal, employees []models.Employee) *Analysis {
	if proposal == nil {
		return &Analysis{Summary: "There is no proposal to analyze yet.", SkillGaps: []string{}}
	}

	roster := models.IndexEmployees(employees)
	base := a.deterministic(demand, proposal, roster)
	if a.completer == nil {
		return base
	}

	var requested []prompts.RoleCount
	if demand != nil {
		for _, r := range demand.Roles {
			requested = append(requested, prompts.RoleCount{RoleName: r.RoleName, Count: r.Headcount})
		}
	}
	prompt := prompts.BuildAnalysisPrompt(proposal.ProjectName, demand.PrimarySkills(), requested, teamMembers(proposal, roster))

	response, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("Model analysis failed, returning deterministic review",
			zap.String("error", logging.SanitizeError(err)))
		return base
	}
	parsed, err := llm.ParseJSONLenient[analysisResponse](response)
	if err != nil {
		a.logger.Warn("Unparseable analysis, returning deterministic review", zap.Error(err))
		return base
	}

	out := &Analysis{
		Summary:   firstNonEmpty(parsed.Summary, base.Summary),
		QA:        firstNonEmpty(parsed.QA, base.QA),
		Capacity:  firstNonEmpty(parsed.Capacity, base.Capacity),
		SkillGaps: mergeSkillGaps(base.SkillGaps, parsed.SkillGaps),
		Generated: true,
	}
	return out
}

// deterministic computes the review from counts alone: developer to QA ratio,
// members below full allocation and required skills nobody active has.
func (a *analysisService) deterministic(demand *models.ProjectDemand, proposal *models.AllocationProposal, roster map[string]*models.Employee) *Analysis {
	developers, qa, partial, total := 0, 0, 0, 0
	have := make(map[string]bool)

	for _, ra := range proposal.RoleAllocations {
		group, _ := a.synonyms.GroupOf(ra.RoleName)
		for _, rec := range ra.Recommendations {
			if rec.Status == models.RecommendationRemoved {
				continue
			}
			total++
			switch group {
			case "qa":
				qa++
			case "backend", "frontend", "mobile":
				developers++
			}
			if rec.AllocationPercent < 100 {
				partial++
			}
			if e, ok := roster[rec.EmployeeID]; ok {
				for _, s := range e.Skills {
					have[strings.ToLower(strings.TrimSpace(s.Name))] = true
				}
			}
		}
	}

	gaps := make([]string, 0)
	for _, s := range demand.PrimarySkills() {
		if !have[strings.ToLower(strings.TrimSpace(s))] {
			gaps = append(gaps, s)
		}
	}

	out := &Analysis{SkillGaps: gaps}
	switch {
	case developers == 0:
		out.QA = "No developers are proposed, so QA coverage is not a concern yet."
	case qa == 0:
		out.QA = fmt.Sprintf("%d developers and no QA; plan for at least one QA engineer.", developers)
	case developers > qa*4:
		out.QA = fmt.Sprintf("%d developers for %d QA is thinner than the 1 QA per 3-4 developers guideline.", developers, qa)
	default:
		out.QA = fmt.Sprintf("%d developers for %d QA is within guidelines.", developers, qa)
	}
	if partial == 0 {
		out.Capacity = "Everyone is proposed at full allocation."
	} else {
		out.Capacity = fmt.Sprintf("%d of %d members are below full allocation.", partial, total)
	}
	if len(gaps) == 0 {
		out.Summary = fmt.Sprintf("%d members cover every required skill.", total)
	} else {
		out.Summary = fmt.Sprintf("%d members; missing %s.", total, joinNames(gaps))
	}
	return out
}

func mergeSkillGaps(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	out := append([]string(nil), base...)
	for _, s := range base {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
