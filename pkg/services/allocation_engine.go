package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/cache"
	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// defaultAllocationPercent applies when a role demand leaves allocation unset.
const defaultAllocationPercent = 100

// AllocationEngine builds a full proposal from a demand and a roster snapshot.
type AllocationEngine interface {
	Generate(ctx context.Context, demand *models.ProjectDemand, employees []models.Employee, projects []models.Project) (*models.AllocationProposal, error)
}

type allocationEngine struct {
	normalizer DemandNormalizer
	resolver   *CandidateResolver
	ranker     CandidateRanker
	cache      cache.AllocationCache
	logger     *zap.Logger
	now        func() time.Time
}

// NewAllocationEngine wires the pipeline. A nil cache disables caching.
func NewAllocationEngine(
	normalizer DemandNormalizer,
	resolver *CandidateResolver,
	ranker CandidateRanker,
	proposalCache cache.AllocationCache,
	logger *zap.Logger,
) AllocationEngine {
	return &allocationEngine{
		normalizer: normalizer,
		resolver:   resolver,
		ranker:     ranker,
		cache:      proposalCache,
		logger:     logger.Named("allocation-engine"),
		now:        time.Now,
	}
}

// Generate normalizes demand, checks the cache once for the whole proposal and
// otherwise staffs each role in demand order. EXISTING members come first and
// are never re-ranked; NEW members fill the remaining headcount.
func (e *allocationEngine) Generate(ctx context.Context, demand *models.ProjectDemand, employees []models.Employee, projects []models.Project) (*models.AllocationProposal, error) {
	normalized, err := e.normalizer.Normalize(demand, projects, nil)
	if err != nil {
		return nil, err
	}

	key := e.cacheKey(normalized, employees, projects)
	if cached := e.cacheGet(ctx, key); cached != nil {
		e.logger.Info("Allocation cache hit",
			zap.String("project", normalized.ProjectName),
			zap.String("fingerprint", key))
		return cached, nil
	}

	proposal := &models.AllocationProposal{
		ProposalID:        uuid.New(),
		ProjectName:       normalized.ProjectName,
		ProjectID:         normalized.ProjectID,
		Type:              normalized.ProjectType,
		GeneratedAt:       e.now().UTC(),
		DemandFingerprint: key,
		RoleAllocations:   make([]models.RoleAllocation, 0, len(normalized.Roles)),
	}

	var project *models.Project
	if normalized.ProjectType == models.ProjectTypeExisting {
		project = models.FindProject(projects, normalized.ProjectID)
	}
	roster := models.IndexEmployees(employees)
	taken := currentMembers(project)
	placed := make(map[string]bool)

	for _, role := range normalized.Roles {
		existing := existingRecommendations(role.RoleName, project, roster, placed)

		need := role.Headcount - len(existing)
		if need < 0 {
			need = 0
		}

		var added []models.Recommendation
		if need > 0 {
			added = e.staffRole(ctx, role, need, employees, taken)
			if len(added) < need {
				e.logger.Warn("Not enough candidates to fill role",
					zap.String("role", role.RoleName),
					zap.Int("needed", need),
					zap.Int("found", len(added)))
			}
		}

		recs := make([]models.Recommendation, 0, len(existing)+len(added))
		recs = append(recs, existing...)
		recs = append(recs, added...)
		proposal.RoleAllocations = append(proposal.RoleAllocations, models.RoleAllocation{
			RoleName:        role.RoleName,
			Recommendations: recs,
		})
	}

	e.cacheSet(ctx, key, proposal)

	e.logger.Info("Generated allocation",
		zap.String("project", proposal.ProjectName),
		zap.Int("roles", len(proposal.RoleAllocations)),
		zap.Int("members", proposal.TotalActive()))
	return proposal, nil
}

// staffRole picks up to need NEW recommendations for role, skipping anyone in taken.
// Picked employees are added to taken.
func (e *allocationEngine) staffRole(ctx context.Context, role models.RoleDemand, need int, employees []models.Employee, taken map[string]bool) []models.Recommendation {
	skills := role.SkillNames()
	pool := withoutEmployees(employees, taken)
	candidates := e.resolver.Resolve(role.RoleName, skills, pool)
	ranked := e.ranker.Rank(ctx, role.RoleName, candidates, skills)

	requested := role.AllocationPercent
	if requested <= 0 {
		requested = defaultAllocationPercent
	}

	byID := models.IndexEmployees(candidates)
	out := make([]models.Recommendation, 0, need)
	for _, rc := range ranked {
		if len(out) == need {
			break
		}
		emp, ok := byID[rc.EmployeeID]
		if !ok || taken[emp.ID] {
			continue
		}
		taken[emp.ID] = true
		out = append(out, newRecommendation(emp, rc, min(requested, emp.AvailabilityPercent)))
	}
	return out
}

// currentMembers returns everyone assigned to project, whatever their role.
// They keep their place on the team and are never proposed as NEW elsewhere.
func currentMembers(project *models.Project) map[string]bool {
	taken := make(map[string]bool)
	if project == nil {
		return taken
	}
	for _, a := range project.AssignedEmployees {
		taken[a.EmployeeID] = true
	}
	return taken
}

// existingRecommendations carries the project's current members for roleName
// over verbatim with full confidence. A member already placed under an earlier
// role is skipped.
func existingRecommendations(roleName string, project *models.Project, roster map[string]*models.Employee, placed map[string]bool) []models.Recommendation {
	if project == nil {
		return nil
	}
	var out []models.Recommendation
	for _, a := range project.AssignedEmployees {
		if !models.SameRoleName(a.RoleName, roleName) || placed[a.EmployeeID] {
			continue
		}
		emp, ok := roster[a.EmployeeID]
		if !ok {
			continue
		}
		placed[a.EmployeeID] = true
		out = append(out, models.Recommendation{
			EmployeeID:        emp.ID,
			EmployeeName:      emp.Name,
			CurrentRole:       emp.Role,
			Confidence:        1.0,
			Reason:            "Currently assigned to this project",
			Status:            models.RecommendationExisting,
			AllocationPercent: a.AllocationPercent,
		})
	}
	return out
}

func newRecommendation(emp *models.Employee, rc RankedCandidate, allocation int) models.Recommendation {
	return models.Recommendation{
		EmployeeID:        emp.ID,
		EmployeeName:      emp.Name,
		CurrentRole:       emp.Role,
		Confidence:        rc.Confidence,
		Reason:            rc.Reason,
		Status:            models.RecommendationNew,
		AllocationPercent: allocation,
	}
}

func (e *allocationEngine) cacheKey(d *models.ProjectDemand, employees []models.Employee, projects []models.Project) string {
	if e.cache == nil {
		return ""
	}
	key, err := cache.ComputeKey(d, employees, projects)
	if err != nil {
		e.logger.Warn("Could not fingerprint demand, skipping cache", zap.Error(err))
		return ""
	}
	return key
}

func (e *allocationEngine) cacheGet(ctx context.Context, key string) *models.AllocationProposal {
	if e.cache == nil || key == "" {
		return nil
	}
	p, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("Allocation cache read failed", zap.String("error", logging.SanitizeError(err)))
		return nil
	}
	if !ok {
		return nil
	}
	return p
}

func (e *allocationEngine) cacheSet(ctx context.Context, key string, p *models.AllocationProposal) {
	if e.cache == nil || key == "" {
		return
	}
	if err := e.cache.Set(ctx, key, p); err != nil {
		e.logger.Warn("Allocation cache write failed", zap.String("error", logging.SanitizeError(err)))
	}
}

// describeCount renders "1 Backend Developer" / "3 Backend Developers".
func describeCount(n int, roleName string) string {
	return fmt.Sprintf("%d %s", n, pluralRole(roleName, n))
}
