package tools

import (
	"context"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/services"
)

// mockAssistant implements services.StaffingAssistant and records its inputs.
type mockAssistant struct {
	proposal    *models.AllocationProposal
	demand      *models.ProjectDemand
	result      *services.InstructionResult
	analysis    *services.Analysis
	undone      *models.AllocationProposal
	err         error
	gotDemand   *models.ProjectDemand
	gotPrevious *models.ProjectDemand
	gotRequest  services.InstructionRequest
	gotProposal *models.AllocationProposal
}

func (m *mockAssistant) GenerateAllocation(ctx context.Context, demand *models.ProjectDemand) (*models.AllocationProposal, error) {
	m.gotDemand = demand
	return m.proposal, m.err
}

func (m *mockAssistant) NormalizeDemand(ctx context.Context, demand, previous *models.ProjectDemand) (*models.ProjectDemand, error) {
	m.gotDemand, m.gotPrevious = demand, previous
	return m.demand, m.err
}

func (m *mockAssistant) ProcessInstruction(ctx context.Context, req services.InstructionRequest) (*services.InstructionResult, error) {
	m.gotRequest = req
	return m.result, m.err
}

func (m *mockAssistant) Undo(sessionID string) (*models.AllocationProposal, bool) {
	return m.undone, m.undone != nil
}

func (m *mockAssistant) Analyze(ctx context.Context, demand *models.ProjectDemand, proposal *models.AllocationProposal) (*services.Analysis, error) {
	m.gotDemand, m.gotProposal = demand, proposal
	return m.analysis, m.err
}

// mockOrchestrator implements services.Orchestrator.
type mockOrchestrator struct {
	result *services.OrchestrateResult
	err    error
	got    services.OrchestrateRequest
}

func (m *mockOrchestrator) Handle(ctx context.Context, req services.OrchestrateRequest) (*services.OrchestrateResult, error) {
	m.got = req
	return m.result, m.err
}
