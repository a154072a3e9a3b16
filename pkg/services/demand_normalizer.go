package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// Defaults for roles synthesized from real project assignments.
const (
	syncedRoleExperience = models.ExperienceMid
	syncedRoleAllocation = 100
)

// DemandNormalizer reconciles a stated demand with the ground truth of a project.
type DemandNormalizer interface {
	// Normalize returns a canonical copy of demand. The input is never mutated.
	// Normalizing an already-canonical demand returns it unchanged.
	Normalize(demand *models.ProjectDemand, projects []models.Project, previous *models.ProjectDemand) (*models.ProjectDemand, error)
}

type demandNormalizer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewDemandNormalizer creates a normalizer.
func NewDemandNormalizer(logger *zap.Logger) DemandNormalizer {
	return &demandNormalizer{
		logger: logger.Named("demand-normalizer"),
		now:    time.Now,
	}
}

type roleTally struct {
	roleName string
	count    int
}

func (n *demandNormalizer) Normalize(demand *models.ProjectDemand, projects []models.Project, previous *models.ProjectDemand) (*models.ProjectDemand, error) {
	if demand == nil {
		return nil, fmt.Errorf("%w: demand is required", apperrors.ErrInvalidDemand)
	}
	if demand.IsCanonical {
		return demand.Clone(), nil
	}

	out := demand.Clone()
	if len(out.ChangeLog) == 0 && previous != nil {
		out.ChangeLog = append([]models.DemandChange(nil), previous.ChangeLog...)
	}
	if out.ChangeLog == nil {
		out.ChangeLog = []models.DemandChange{}
	}

	if previous != nil {
		n.logRequestChanges(out, previous)
	}

	if out.ProjectType == models.ProjectTypeExisting && out.ProjectID != "" {
		if project := models.FindProject(projects, out.ProjectID); project != nil {
			n.applyProjectFloor(out, project)
		} else {
			n.logger.Warn("Existing-project demand references unknown project",
				zap.String("project_id", out.ProjectID))
		}
	}

	out.IsCanonical = true
	return out, nil
}

// applyProjectFloor raises headcounts so the demand never under-counts who is
// actually on the project, and adds roles that only exist in the assignments.
func (n *demandNormalizer) applyProjectFloor(d *models.ProjectDemand, project *models.Project) {
	if d.ProjectName == "" {
		d.ProjectName = project.Name
	}

	for _, t := range tallyAssignments(project) {
		idx := d.FindRole(t.roleName)
		if idx >= 0 {
			role := &d.Roles[idx]
			if role.Headcount < t.count {
				n.appendChange(d, models.ChangeSourceProjectSync,
					fmt.Sprintf("raised %s headcount from %d to %d to match current assignments", role.RoleName, role.Headcount, t.count))
				role.Headcount = t.count
			}
			continue
		}

		d.Roles = append(d.Roles, models.RoleDemand{
			RoleName:          t.roleName,
			RequiredSkills:    []models.SkillRequirement{},
			ExperienceLevel:   syncedRoleExperience,
			AllocationPercent: syncedRoleAllocation,
			Headcount:         t.count,
		})
		n.appendChange(d, models.ChangeSourceProjectSync,
			fmt.Sprintf("added role %s with headcount %d from current assignments", t.roleName, t.count))
	}
}

// tallyAssignments counts assignments per role (case-insensitive), keeping the
// first spelling and first-seen order.
func tallyAssignments(project *models.Project) []roleTally {
	var tallies []roleTally
	index := make(map[string]int)
	for _, a := range project.AssignedEmployees {
		name := strings.TrimSpace(a.RoleName)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			tallies[i].count++
			continue
		}
		index[key] = len(tallies)
		tallies = append(tallies, roleTally{roleName: name, count: 1})
	}
	return tallies
}

func (n *demandNormalizer) logRequestChanges(d, previous *models.ProjectDemand) {
	for _, role := range d.Roles {
		idx := previous.FindRole(role.RoleName)
		if idx < 0 {
			n.appendChange(d, models.ChangeSourceRequest,
				fmt.Sprintf("added role %s with headcount %d", role.RoleName, role.Headcount))
			continue
		}
		if prev := previous.Roles[idx].Headcount; prev != role.Headcount {
			n.appendChange(d, models.ChangeSourceRequest,
				fmt.Sprintf("changed %s headcount from %d to %d", role.RoleName, prev, role.Headcount))
		}
	}
	for _, prev := range previous.Roles {
		if d.FindRole(prev.RoleName) < 0 {
			n.appendChange(d, models.ChangeSourceRequest, fmt.Sprintf("removed role %s", prev.RoleName))
		}
	}
}

func (n *demandNormalizer) appendChange(d *models.ProjectDemand, source, delta string) {
	d.ChangeLog = append(d.ChangeLog, models.DemandChange{
		ID:        uuid.New(),
		Timestamp: n.now().UTC(),
		Source:    source,
		Delta:     delta,
	})
	n.logger.Debug("Demand changed", zap.String("source", source), zap.String("delta", delta))
}
