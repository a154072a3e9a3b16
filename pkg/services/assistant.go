package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/repositories"
)

// InstructionRequest is one chat turn from a caller.
type InstructionRequest struct {
	SessionID string                     `json:"sessionId,omitempty"`
	Message   string                     `json:"message"`
	Proposal  *models.AllocationProposal `json:"proposal,omitempty"`
	Demand    *models.ProjectDemand      `json:"demand,omitempty"`
	History   []models.ChatMessage       `json:"history,omitempty"`
}

// StaffingAssistant is the entry point for embedding applications. Each call
// reads a fresh roster snapshot from the stores.
type StaffingAssistant interface {
	GenerateAllocation(ctx context.Context, demand *models.ProjectDemand) (*models.AllocationProposal, error)
	NormalizeDemand(ctx context.Context, demand, previous *models.ProjectDemand) (*models.ProjectDemand, error)
	ProcessInstruction(ctx context.Context, req InstructionRequest) (*InstructionResult, error)
	Undo(sessionID string) (*models.AllocationProposal, bool)
	Analyze(ctx context.Context, demand *models.ProjectDemand, proposal *models.AllocationProposal) (*Analysis, error)
}

type staffingAssistant struct {
	employees  repositories.EmployeeStore
	projects   repositories.ProjectStore
	engine     AllocationEngine
	normalizer DemandNormalizer
	extractor  IntentExtractor
	router     IntentRouter
	analysis   AnalysisService
	undo       *UndoLog
	logger     *zap.Logger
}

// StaffingAssistantDeps groups the collaborators of NewStaffingAssistant.
type StaffingAssistantDeps struct {
	Employees  repositories.EmployeeStore
	Projects   repositories.ProjectStore
	Engine     AllocationEngine
	Normalizer DemandNormalizer
	Extractor  IntentExtractor
	Router     IntentRouter
	Analysis   AnalysisService
	Undo       *UndoLog
}

// NewStaffingAssistant creates the facade. A nil UndoLog disables undo.
func NewStaffingAssistant(deps StaffingAssistantDeps, logger *zap.Logger) StaffingAssistant {
	return &staffingAssistant{
		employees:  deps.Employees,
		projects:   deps.Projects,
		engine:     deps.Engine,
		normalizer: deps.Normalizer,
		extractor:  deps.Extractor,
		router:     deps.Router,
		analysis:   deps.Analysis,
		undo:       deps.Undo,
		logger:     logger.Named("assistant"),
	}
}

// snapshot loads employees and projects. Store failures propagate; no cached
// or partial roster is substituted.
func (a *staffingAssistant) snapshot(ctx context.Context) ([]models.Employee, []models.Project, error) {
	employees, err := a.employees.List(ctx)
	if err != nil {
		a.logger.Error("Failed to load employees", zap.Error(err))
		return nil, nil, fmt.Errorf("load employees: %w", err)
	}
	projects, err := a.projects.List(ctx)
	if err != nil {
		a.logger.Error("Failed to load projects", zap.Error(err))
		return nil, nil, fmt.Errorf("load projects: %w", err)
	}
	return employees, projects, nil
}

func (a *staffingAssistant) GenerateAllocation(ctx context.Context, demand *models.ProjectDemand) (*models.AllocationProposal, error) {
	employees, projects, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return a.engine.Generate(ctx, demand, employees, projects)
}

func (a *staffingAssistant) NormalizeDemand(ctx context.Context, demand, previous *models.ProjectDemand) (*models.ProjectDemand, error) {
	projects, err := a.projects.List(ctx)
	if err != nil {
		a.logger.Error("Failed to load projects", zap.Error(err))
		return nil, fmt.Errorf("load projects: %w", err)
	}
	return a.normalizer.Normalize(demand, projects, previous)
}

// ProcessInstruction extracts an intent and routes it. When the proposal
// changes, the previous one is pushed onto the session's undo log.
func (a *staffingAssistant) ProcessInstruction(ctx context.Context, req InstructionRequest) (*InstructionResult, error) {
	employees, projects, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	intent := a.extractor.Extract(ctx, req.Message, req.History, req.Proposal)
	result, err := a.router.Route(ctx, intent, InstructionContext{
		Employees: employees,
		Projects:  projects,
		Proposal:  req.Proposal,
		Demand:    req.Demand,
	})
	if err != nil {
		return nil, err
	}

	if result.Changed && a.undo != nil {
		a.undo.Push(req.SessionID, req.Proposal)
	}

	a.logger.Info("Processed instruction",
		zap.String("intent", string(result.Intent)),
		zap.Bool("changed", result.Changed))
	return result, nil
}

func (a *staffingAssistant) Undo(sessionID string) (*models.AllocationProposal, bool) {
	if a.undo == nil {
		return nil, false
	}
	return a.undo.Pop(sessionID)
}

func (a *staffingAssistant) Analyze(ctx context.Context, demand *models.ProjectDemand, proposal *models.AllocationProposal) (*Analysis, error) {
	employees, err := a.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	return a.analysis.Analyze(ctx, demand, proposal, employees), nil
}
