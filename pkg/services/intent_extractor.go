package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/jsonutil"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/prompts"
)

// IntentExtractor turns a chat message into a structured intent. It never
// fails: anything it cannot interpret becomes an AskExplanationIntent.
type IntentExtractor interface {
	Extract(ctx context.Context, message string, history []models.ChatMessage, proposal *models.AllocationProposal) models.Intent
}

type intentExtractor struct {
	completer llm.TextCompleter
	logger    *zap.Logger
}

// NewIntentExtractor creates an extractor. A nil completer always yields the safe intent.
func NewIntentExtractor(completer llm.TextCompleter, logger *zap.Logger) IntentExtractor {
	return &intentExtractor{
		completer: completer,
		logger:    logger.Named("intent-extractor"),
	}
}

// rawIntent mirrors the model's loosely-typed answer. Scalars are decoded
// leniently since models often quote numbers and booleans.
type rawIntent struct {
	IntentType         string          `json:"intentType"`
	Role               json.RawMessage `json:"role"`
	Roles              []rawRole       `json:"roles"`
	EmployeeCount      json.RawMessage `json:"employeeCount"`
	Skills             []string        `json:"skills"`
	TargetEmployeeName json.RawMessage `json:"targetEmployeeName"`
	Incremental        json.RawMessage `json:"incremental"`
	AutoSuggestCount   json.RawMessage `json:"autoSuggestCount"`
}

// rawRole accepts either {"roleName": ..., "count": ...} or a bare role string.
type rawRole struct {
	RoleName string
	Count    int
}

func (r *rawRole) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.RoleName = name
		return nil
	}
	var obj struct {
		RoleName json.RawMessage `json:"roleName"`
		Count    json.RawMessage `json:"count"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.RoleName = jsonutil.FlexibleStringValue(obj.RoleName)
	if n, err := jsonutil.FlexibleInt(obj.Count); err == nil {
		r.Count = n
	}
	return nil
}

func (x *intentExtractor) Extract(ctx context.Context, message string, history []models.ChatMessage, proposal *models.AllocationProposal) models.Intent {
	fallback := models.AskExplanationIntent{Question: message}
	if x.completer == nil || strings.TrimSpace(message) == "" {
		return fallback
	}

	response, err := x.completer.Complete(ctx, prompts.BuildIntentPrompt(message, history, roleCounts(proposal)))
	if err != nil {
		x.logger.Warn("Intent extraction failed, treating as question",
			zap.String("error", logging.SanitizeError(err)))
		return fallback
	}

	raw, err := llm.ParseJSONLenient[rawIntent](response)
	if err != nil {
		x.logger.Warn("Unparseable intent, treating as question", zap.Error(err))
		return fallback
	}

	intent := raw.toIntent(message)
	x.logger.Debug("Extracted intent", zap.String("intent", string(intent.Type())))
	return intent
}

func (r rawIntent) toIntent(message string) models.Intent {
	roles := make([]models.RoleRequest, 0, len(r.Roles)+1)
	for _, rr := range r.Roles {
		roles = append(roles, models.RoleRequest{RoleName: strings.TrimSpace(rr.RoleName), Count: rr.Count})
	}
	if len(roles) == 0 {
		if role := strings.TrimSpace(jsonutil.FlexibleStringValue(r.Role)); role != "" {
			count, _ := jsonutil.FlexibleInt(r.EmployeeCount)
			roles = append(roles, models.RoleRequest{RoleName: role, Count: count})
		}
	}

	switch models.IntentType(strings.ToUpper(strings.TrimSpace(r.IntentType))) {
	case models.IntentCreateAllocation:
		return models.CreateAllocationIntent{Roles: roles, Skills: r.Skills}
	case models.IntentAddEmployees:
		return models.AddEmployeesIntent{
			Roles:            roles,
			Skills:           r.Skills,
			Incremental:      jsonutil.FlexibleBool(r.Incremental),
			AutoSuggestCount: jsonutil.FlexibleBool(r.AutoSuggestCount),
		}
	case models.IntentReplaceEmployee:
		return models.ReplaceEmployeeIntent{
			TargetEmployeeName: strings.TrimSpace(jsonutil.FlexibleStringValue(r.TargetEmployeeName)),
			Role:               strings.TrimSpace(jsonutil.FlexibleStringValue(r.Role)),
			Skills:             r.Skills,
		}
	case models.IntentAskExplanation:
		return models.AskExplanationIntent{Question: message}
	default:
		return models.UnknownIntent{Raw: message}
	}
}
