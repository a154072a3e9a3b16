package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/jsonutil"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/prompts"
)

const defaultMinimumProficiency = 3

// ErrDemandParserUnavailable is returned when no completion service is configured.
var ErrDemandParserUnavailable = errors.New("demand parsing requires a completion service")

// DemandParser turns a free-text project description into a ProjectDemand.
type DemandParser interface {
	Parse(ctx context.Context, text string) (*models.ProjectDemand, error)
}

type demandParser struct {
	completer llm.TextCompleter
	logger    *zap.Logger
}

// NewDemandParser creates a parser.
func NewDemandParser(completer llm.TextCompleter, logger *zap.Logger) DemandParser {
	return &demandParser{
		completer: completer,
		logger:    logger.Named("demand-parser"),
	}
}

type parsedDemand struct {
	ProjectName string          `json:"projectName"`
	ProjectType string          `json:"projectType"`
	ProjectID   json.RawMessage `json:"projectId"`
	Roles       []parsedRole    `json:"roles"`
}

type parsedRole struct {
	RoleName          string          `json:"roleName"`
	Headcount         json.RawMessage `json:"headcount"`
	AllocationPercent json.RawMessage `json:"allocationPercent"`
	ExperienceLevel   string          `json:"experienceLevel"`
	RequiredSkills    []parsedSkill   `json:"requiredSkills"`
}

type parsedSkill struct {
	Name               string          `json:"name"`
	MinimumProficiency json.RawMessage `json:"minimumProficiency"`
}

func (p *demandParser) Parse(ctx context.Context, text string) (*models.ProjectDemand, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty description", apperrors.ErrInvalidDemand)
	}
	if p.completer == nil {
		return nil, ErrDemandParserUnavailable
	}

	response, err := p.completer.Complete(ctx, prompts.BuildDemandParsePrompt(text))
	if err != nil {
		return nil, fmt.Errorf("parse demand: %w", err)
	}

	raw, err := llm.ParseJSONLenient[parsedDemand](response)
	if err != nil {
		return nil, fmt.Errorf("parse demand: %w", err)
	}

	demand := raw.toDemand()
	if len(demand.Roles) == 0 {
		return nil, fmt.Errorf("%w: no roles found in description", apperrors.ErrInvalidDemand)
	}

	p.logger.Info("Parsed demand",
		zap.String("project", demand.ProjectName),
		zap.Int("roles", len(demand.Roles)))
	return demand, nil
}

// toDemand applies defaults: NEW project, MID seniority, 100% allocation,
// headcount 1 and proficiency 3.
func (raw parsedDemand) toDemand() *models.ProjectDemand {
	d := &models.ProjectDemand{
		ProjectType: models.ProjectTypeNew,
		ProjectID:   strings.TrimSpace(jsonutil.FlexibleStringValue(raw.ProjectID)),
		ProjectName: strings.TrimSpace(raw.ProjectName),
		Roles:       make([]models.RoleDemand, 0, len(raw.Roles)),
	}
	switch pt := models.ProjectType(strings.ToUpper(strings.TrimSpace(raw.ProjectType))); pt {
	case models.ProjectTypeExisting, models.ProjectTypeGeneralDemand:
		d.ProjectType = pt
	}

	for _, r := range raw.Roles {
		name := strings.TrimSpace(r.RoleName)
		if name == "" {
			continue
		}
		role := models.RoleDemand{
			RoleName:          name,
			ExperienceLevel:   models.ExperienceMid,
			AllocationPercent: defaultAllocationPercent,
			Headcount:         1,
			RequiredSkills:    make([]models.SkillRequirement, 0, len(r.RequiredSkills)),
		}
		if n, err := jsonutil.FlexibleInt(r.Headcount); err == nil && n > 0 {
			role.Headcount = n
		}
		if n, err := jsonutil.FlexibleInt(r.AllocationPercent); err == nil && n > 0 && n <= 100 {
			role.AllocationPercent = n
		}
		switch lvl := models.ExperienceLevel(strings.ToUpper(strings.TrimSpace(r.ExperienceLevel))); lvl {
		case models.ExperienceJunior, models.ExperienceMid, models.ExperienceSenior:
			role.ExperienceLevel = lvl
		}
		for _, s := range r.RequiredSkills {
			skill := strings.TrimSpace(s.Name)
			if skill == "" {
				continue
			}
			prof := defaultMinimumProficiency
			if n, err := jsonutil.FlexibleInt(s.MinimumProficiency); err == nil && n >= 1 && n <= 5 {
				prof = n
			}
			role.RequiredSkills = append(role.RequiredSkills, models.SkillRequirement{Name: skill, MinimumProficiency: prof})
		}
		d.Roles = append(d.Roles, role)
	}
	return d
}
