package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/services"
)

// StaffingToolDeps contains dependencies for the staffing tools.
type StaffingToolDeps struct {
	Assistant    services.StaffingAssistant
	Orchestrator services.Orchestrator
	Logger       *zap.Logger
}

// RegisterStaffingTools registers the allocation, chat and analysis tools.
// The orchestrate tool is only registered when an orchestrator is provided.
func RegisterStaffingTools(s *server.MCPServer, deps *StaffingToolDeps) {
	registerGenerateAllocationTool(s, deps)
	registerNormalizeDemandTool(s, deps)
	registerProcessInstructionTool(s, deps)
	registerUndoInstructionTool(s, deps)
	registerAnalyzeProposalTool(s, deps)
	if deps.Orchestrator != nil {
		registerOrchestrateTool(s, deps)
	}
}

const demandDescription = "Staffing demand: {projectType: NEW|EXISTING|GENERAL_DEMAND, projectId, projectName, " +
	"roles: [{roleName, requiredSkills: [{name, minimumProficiency}], experienceLevel, allocationPercent, headcount}]}"

const proposalDescription = "The latest allocation proposal exactly as returned by an earlier tool call"

// handleServiceError turns actionable service errors into tool results and
// returns the rest as Go errors.
func handleServiceError(deps *StaffingToolDeps, tool string, err error) (*mcp.CallToolResult, error) {
	if result := serviceErrorResult(err); result != nil {
		deps.Logger.Debug("Tool input error", zap.String("tool", tool), zap.Error(err))
		return result, nil
	}
	deps.Logger.Error("Tool failed", zap.String("tool", tool), zap.Error(err))
	return nil, fmt.Errorf("%s failed: %w", tool, err)
}

func registerGenerateAllocationTool(s *server.MCPServer, deps *StaffingToolDeps) {
	tool := mcp.NewTool(
		"generate_allocation",
		mcp.WithDescription(
			"Generate a staffing proposal for a demand. Existing project members are kept first; "+
				"remaining headcount is filled from eligible employees ranked by availability, experience and skill match. "+
				"Returns the proposal with per-employee confidence and reason.",
		),
		mcp.WithObject(
			"demand",
			mcp.Required(),
			mcp.Description(demandDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		demand, err := decodeArg[models.ProjectDemand](req, "demand")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if demand == nil {
			return NewErrorResult("invalid_parameters", "parameter 'demand' is required"), nil
		}

		proposal, err := deps.Assistant.GenerateAllocation(ctx, demand)
		if err != nil {
			return handleServiceError(deps, "generate_allocation", err)
		}
		return toolResultJSON(proposal)
	})
}

func registerNormalizeDemandTool(s *server.MCPServer, deps *StaffingToolDeps) {
	tool := mcp.NewTool(
		"normalize_demand",
		mcp.WithDescription(
			"Canonicalize a demand: fill defaults, resolve roles against the project's current team "+
				"and record how it differs from the previous demand.",
		),
		mcp.WithObject(
			"demand",
			mcp.Required(),
			mcp.Description(demandDescription),
		),
		mcp.WithObject(
			"previous",
			mcp.Description("Optional - the previously normalized demand, used to build the change log"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		demand, err := decodeArg[models.ProjectDemand](req, "demand")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if demand == nil {
			return NewErrorResult("invalid_parameters", "parameter 'demand' is required"), nil
		}
		previous, err := decodeArg[models.ProjectDemand](req, "previous")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		normalized, err := deps.Assistant.NormalizeDemand(ctx, demand, previous)
		if err != nil {
			return handleServiceError(deps, "normalize_demand", err)
		}
		return toolResultJSON(normalized)
	})
}

func registerProcessInstructionTool(s *server.MCPServer, deps *StaffingToolDeps) {
	tool := mcp.NewTool(
		"process_instruction",
		mcp.WithDescription(
			"Apply a natural-language change to a proposal: add people to a role, replace a named employee, "+
				"or ask why someone was chosen. Returns the updated proposal and a message. "+
				"Pass session_id to make the change undoable with undo_instruction.",
		),
		mcp.WithString(
			"message",
			mcp.Required(),
			mcp.Description("The instruction (e.g., 'add two more QA engineers', 'replace Bob', 'why Alice?')"),
		),
		mcp.WithObject(
			"proposal",
			mcp.Description(proposalDescription),
		),
		mcp.WithObject(
			"demand",
			mcp.Description("Optional - the demand the proposal was generated from; enables headcount suggestions"),
		),
		mcp.WithString(
			"session_id",
			mcp.Description("Optional - conversation identifier for the undo log"),
		),
		mcp.WithArray(
			"history",
			mcp.Description("Optional - earlier turns as [{role, content}]; only the last 10 are used"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return nil, err
		}
		message = trimString(message)
		if message == "" {
			return NewErrorResult("invalid_parameters", "parameter 'message' cannot be empty"), nil
		}

		instruction := services.InstructionRequest{
			SessionID: trimString(getOptionalString(req, "session_id")),
			Message:   message,
		}
		if instruction.Proposal, err = decodeArg[models.AllocationProposal](req, "proposal"); err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if instruction.Demand, err = decodeArg[models.ProjectDemand](req, "demand"); err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		history, err := decodeArg[[]models.ChatMessage](req, "history")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if history != nil {
			instruction.History = *history
		}

		result, err := deps.Assistant.ProcessInstruction(ctx, instruction)
		if err != nil {
			return handleServiceError(deps, "process_instruction", err)
		}
		return toolResultJSON(result)
	})
}

func registerUndoInstructionTool(s *server.MCPServer, deps *StaffingToolDeps) {
	tool := mcp.NewTool(
		"undo_instruction",
		mcp.WithDescription("Return the proposal as it was before the session's most recent change."),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("The session_id passed to process_instruction"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}
		sessionID = trimString(sessionID)
		if sessionID == "" {
			return NewErrorResult("invalid_parameters", "parameter 'session_id' cannot be empty"), nil
		}

		proposal, ok := deps.Assistant.Undo(sessionID)
		if !ok {
			return NewErrorResult("nothing_to_undo", fmt.Sprintf("no earlier proposal for session %q", sessionID)), nil
		}
		return toolResultJSON(proposal)
	})
}

func registerAnalyzeProposalTool(s *server.MCPServer, deps *StaffingToolDeps) {
	tool := mcp.NewTool(
		"analyze_proposal",
		mcp.WithDescription("Review a proposal for QA coverage, capacity and required skills nobody on the team has."),
		mcp.WithObject(
			"proposal",
			mcp.Required(),
			mcp.Description(proposalDescription),
		),
		mcp.WithObject(
			"demand",
			mcp.Description("Optional - the demand, used to find missing skills"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		proposal, err := decodeArg[models.AllocationProposal](req, "proposal")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if proposal == nil {
			return NewErrorResult("invalid_parameters", "parameter 'proposal' is required"), nil
		}
		demand, err := decodeArg[models.ProjectDemand](req, "demand")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		analysis, err := deps.Assistant.Analyze(ctx, demand, proposal)
		if err != nil {
			return handleServiceError(deps, "analyze_proposal", err)
		}
		return toolResultJSON(analysis)
	})
}

func registerOrchestrateTool(s *server.MCPServer, deps *StaffingToolDeps) {
	tool := mcp.NewTool(
		"orchestrate",
		mcp.WithDescription(
			"Route a free-form message: parse a new demand, generate an allocation, "+
				"change the current proposal or analyze it. Returns the action taken and its output.",
		),
		mcp.WithString(
			"message",
			mcp.Required(),
			mcp.Description("The user's message"),
		),
		mcp.WithObject("demand", mcp.Description("Optional - the current demand")),
		mcp.WithObject("proposal", mcp.Description("Optional - "+proposalDescription)),
		mcp.WithString("session_id", mcp.Description("Optional - conversation identifier for the undo log")),
		mcp.WithArray("history", mcp.Description("Optional - earlier turns as [{role, content}]")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return nil, err
		}
		message = trimString(message)
		if message == "" {
			return NewErrorResult("invalid_parameters", "parameter 'message' cannot be empty"), nil
		}

		orchestrate := services.OrchestrateRequest{
			SessionID: trimString(getOptionalString(req, "session_id")),
			Message:   message,
		}
		if orchestrate.Demand, err = decodeArg[models.ProjectDemand](req, "demand"); err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if orchestrate.Proposal, err = decodeArg[models.AllocationProposal](req, "proposal"); err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		history, err := decodeArg[[]models.ChatMessage](req, "history")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if history != nil {
			orchestrate.History = *history
		}

		result, err := deps.Orchestrator.Handle(ctx, orchestrate)
		if err != nil {
			return handleServiceError(deps, "orchestrate", err)
		}
		return toolResultJSON(result)
	})
}
