package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/jsonutil"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/prompts"
)

// defaultHeadcountSuggestion is used whenever the model cannot give a usable number.
const defaultHeadcountSuggestion = 1

// HeadcountRecommender suggests how many people to add to a role when the user
// leaves the count to the system.
type HeadcountRecommender interface {
	Recommend(ctx context.Context, roleName string, proposal *models.AllocationProposal, demand *models.ProjectDemand) int
}

type headcountRecommender struct {
	completer llm.TextCompleter
	logger    *zap.Logger
}

// NewHeadcountRecommender creates a recommender. A nil completer always suggests 1.
func NewHeadcountRecommender(completer llm.TextCompleter, logger *zap.Logger) HeadcountRecommender {
	return &headcountRecommender{
		completer: completer,
		logger:    logger.Named("headcount-recommender"),
	}
}

type headcountResponse struct {
	Count  json.RawMessage `json:"count"`
	Reason string          `json:"reason"`
}

// Recommend returns a positive count; any failure yields 1.
func (h *headcountRecommender) Recommend(ctx context.Context, roleName string, proposal *models.AllocationProposal, demand *models.ProjectDemand) int {
	if h.completer == nil {
		return defaultHeadcountSuggestion
	}

	prompt := prompts.BuildHeadcountPrompt(roleName, roleCounts(proposal), demand.PrimarySkills())
	response, err := h.completer.Complete(ctx, prompt)
	if err != nil {
		h.logger.Warn("Headcount recommendation failed, defaulting to 1",
			zap.String("role", roleName),
			zap.String("error", logging.SanitizeError(err)))
		return defaultHeadcountSuggestion
	}

	parsed, err := llm.ParseJSONLenient[headcountResponse](response)
	if err != nil {
		h.logger.Warn("Unparseable headcount recommendation, defaulting to 1",
			zap.String("role", roleName), zap.Error(err))
		return defaultHeadcountSuggestion
	}
	count, err := jsonutil.FlexibleInt(parsed.Count)
	if err != nil || count < 1 {
		h.logger.Warn("Invalid headcount recommendation, defaulting to 1",
			zap.String("role", roleName), zap.ByteString("count", parsed.Count))
		return defaultHeadcountSuggestion
	}

	h.logger.Debug("Recommended headcount",
		zap.String("role", roleName),
		zap.Int("count", count),
		zap.String("reason", parsed.Reason))
	return count
}

// roleCounts summarizes active members per role.
func roleCounts(p *models.AllocationProposal) []prompts.RoleCount {
	if p == nil {
		return nil
	}
	out := make([]prompts.RoleCount, 0, len(p.RoleAllocations))
	for i := range p.RoleAllocations {
		out = append(out, prompts.RoleCount{
			RoleName: p.RoleAllocations[i].RoleName,
			Count:    p.RoleAllocations[i].ActiveCount(),
		})
	}
	return out
}
