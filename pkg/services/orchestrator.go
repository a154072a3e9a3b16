package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/prompts"
)

// OrchestrateRequest is a free-form message plus whatever session state exists.
type OrchestrateRequest struct {
	SessionID string                     `json:"sessionId,omitempty"`
	Message   string                     `json:"message"`
	Demand    *models.ProjectDemand      `json:"demand,omitempty"`
	Proposal  *models.AllocationProposal `json:"proposal,omitempty"`
	History   []models.ChatMessage       `json:"history,omitempty"`
}

// OrchestrateResult carries the chosen action and its outputs.
type OrchestrateResult struct {
	Action   string                     `json:"action"`
	Demand   *models.ProjectDemand      `json:"demand,omitempty"`
	Proposal *models.AllocationProposal `json:"proposal,omitempty"`
	Analysis *Analysis                  `json:"analysis,omitempty"`
	Message  string                     `json:"message"`
}

// Orchestrator makes one classification call and hands the message to the
// demand parser, the allocation engine, the chat router or the analysis service.
type Orchestrator interface {
	Handle(ctx context.Context, req OrchestrateRequest) (*OrchestrateResult, error)
}

type orchestrator struct {
	completer llm.TextCompleter
	parser    DemandParser
	assistant StaffingAssistant
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(completer llm.TextCompleter, parser DemandParser, assistant StaffingAssistant, logger *zap.Logger) Orchestrator {
	return &orchestrator{
		completer: completer,
		parser:    parser,
		assistant: assistant,
		logger:    logger.Named("orchestrator"),
	}
}

type classificationResponse struct {
	Action json.RawMessage `json:"action"`
}

func (o *orchestrator) Handle(ctx context.Context, req OrchestrateRequest) (*OrchestrateResult, error) {
	action := o.classify(ctx, req)

	// Actions that need state the session does not have degrade to ones that can run.
	switch {
	case action == prompts.ActionAllocate && req.Demand == nil:
		action = prompts.ActionParseDemand
	case action == prompts.ActionAnalyze && req.Proposal == nil:
		action = prompts.ActionParseDemand
	case action == prompts.ActionChat && req.Proposal == nil && req.Demand == nil:
		action = prompts.ActionParseDemand
	}
	o.logger.Debug("Orchestrating", zap.String("action", action))

	switch action {
	case prompts.ActionAllocate:
		proposal, err := o.assistant.GenerateAllocation(ctx, req.Demand)
		if err != nil {
			return nil, err
		}
		return &OrchestrateResult{
			Action:   action,
			Demand:   req.Demand,
			Proposal: proposal,
			Message:  "Generated an allocation with " + summarizeProposal(proposal) + ".",
		}, nil

	case prompts.ActionAnalyze:
		analysis, err := o.assistant.Analyze(ctx, req.Demand, req.Proposal)
		if err != nil {
			return nil, err
		}
		return &OrchestrateResult{
			Action:   action,
			Demand:   req.Demand,
			Proposal: req.Proposal,
			Analysis: analysis,
			Message:  analysis.Summary,
		}, nil

	case prompts.ActionChat:
		result, err := o.assistant.ProcessInstruction(ctx, InstructionRequest{
			SessionID: req.SessionID,
			Message:   req.Message,
			Proposal:  req.Proposal,
			Demand:    req.Demand,
			History:   req.History,
		})
		if err != nil {
			return nil, err
		}
		return &OrchestrateResult{
			Action:   action,
			Demand:   result.Demand,
			Proposal: result.Proposal,
			Message:  result.Message,
		}, nil

	default:
		demand, err := o.parser.Parse(ctx, req.Message)
		if err != nil {
			return nil, err
		}
		proposal, err := o.assistant.GenerateAllocation(ctx, demand)
		if err != nil {
			return nil, err
		}
		return &OrchestrateResult{
			Action:   prompts.ActionParseDemand,
			Demand:   demand,
			Proposal: proposal,
			Message:  "Parsed the request and proposed " + summarizeProposal(proposal) + ".",
		}, nil
	}
}

// classify asks for an action. Failure or an unknown answer means CHAT when a
// proposal exists and PARSE_DEMAND otherwise.
func (o *orchestrator) classify(ctx context.Context, req OrchestrateRequest) string {
	fallback := prompts.ActionParseDemand
	if req.Proposal != nil {
		fallback = prompts.ActionChat
	}
	if o.completer == nil {
		return fallback
	}

	response, err := o.completer.Complete(ctx, prompts.BuildClassificationPrompt(req.Message, req.Proposal != nil))
	if err != nil {
		o.logger.Warn("Classification failed, using default action",
			zap.String("fallback", fallback),
			zap.String("error", logging.SanitizeError(err)))
		return fallback
	}
	parsed, err := llm.ParseJSONLenient[classificationResponse](response)
	if err != nil {
		o.logger.Warn("Unparseable classification, using default action",
			zap.String("fallback", fallback), zap.Error(err))
		return fallback
	}

	var action string
	if err := json.Unmarshal(parsed.Action, &action); err != nil {
		return fallback
	}
	switch action = strings.ToUpper(strings.TrimSpace(action)); action {
	case prompts.ActionParseDemand, prompts.ActionAllocate, prompts.ActionChat, prompts.ActionAnalyze:
		return action
	default:
		return fallback
	}
}
