package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

func newTestAssistant(completer llm.TextCompleter, employees stubEmployeeStore, projects stubProjectStore) StaffingAssistant {
	logger := zap.NewNop()
	normalizer := NewDemandNormalizer(logger)
	resolver := NewCandidateResolver(nil)
	ranker := NewCandidateRanker(completer, logger)
	engine := NewAllocationEngine(normalizer, resolver, ranker, nil, logger)
	router := NewIntentRouter(engine, resolver, ranker,
		NewHeadcountRecommender(completer, logger),
		NewProposalExplainer(completer, logger),
		logger)

	return NewStaffingAssistant(StaffingAssistantDeps{
		Employees:  employees,
		Projects:   projects,
		Engine:     engine,
		Normalizer: normalizer,
		Extractor:  NewIntentExtractor(completer, logger),
		Router:     router,
		Analysis:   NewAnalysisService(completer, logger),
		Undo:       NewUndoLog(5),
	}, logger)
}

func TestStaffingAssistant_GenerateAllocation(t *testing.T) {
	a := newTestAssistant(nil, stubEmployeeStore{employees: testRoster()}, stubProjectStore{})

	p, err := a.GenerateAllocation(t.Context(), backendDemand(2))
	require.NoError(t, err)

	assert.Equal(t, []string{"e1", "e2"}, recommendationIDs(&p.RoleAllocations[0]))
}

func TestStaffingAssistant_StoreFailuresPropagate(t *testing.T) {
	down := fmt.Errorf("%w: connection refused", apperrors.ErrDataSourceUnavailable)

	a := newTestAssistant(nil, stubEmployeeStore{err: down}, stubProjectStore{})
	_, err := a.GenerateAllocation(t.Context(), backendDemand(2))
	assert.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)

	_, err = a.ProcessInstruction(t.Context(), InstructionRequest{Message: "add a QA"})
	assert.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)

	a = newTestAssistant(nil, stubEmployeeStore{employees: testRoster()}, stubProjectStore{err: down})
	_, err = a.NormalizeDemand(t.Context(), backendDemand(2), nil)
	assert.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

func TestStaffingAssistant_NormalizeDemandUsesProjects(t *testing.T) {
	a := newTestAssistant(nil, stubEmployeeStore{}, stubProjectStore{projects: []models.Project{ledgerProject()}})

	got, err := a.NormalizeDemand(t.Context(), existingDemand(1), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Roles[0].Headcount)
}

func TestStaffingAssistant_ChangedInstructionIsUndoable(t *testing.T) {
	mock := llm.NewMockTextCompleter(`{"intentType": "ADD_EMPLOYEES", "role": "Backend Developer", "employeeCount": 1, "incremental": true}`)
	a := newTestAssistant(mock, stubEmployeeStore{employees: testRoster()}, stubProjectStore{})
	before := proposalFor(t, backendDemand(2))

	res, err := a.ProcessInstruction(t.Context(), InstructionRequest{
		SessionID: "s1",
		Message:   "one more backend developer",
		Proposal:  before,
		Demand:    backendDemand(2),
	})
	require.NoError(t, err)
	require.True(t, res.Changed)
	assert.Equal(t, 3, res.Proposal.TotalActive())

	restored, ok := a.Undo("s1")
	require.True(t, ok)
	assert.Equal(t, before.ProposalID, restored.ProposalID)
	assert.Equal(t, 2, restored.TotalActive())

	_, ok = a.Undo("s1")
	assert.False(t, ok)
}

func TestStaffingAssistant_UnchangedInstructionIsNotRecorded(t *testing.T) {
	a := newTestAssistant(nil, stubEmployeeStore{employees: testRoster()}, stubProjectStore{})

	res, err := a.ProcessInstruction(t.Context(), InstructionRequest{
		SessionID: "s1",
		Message:   "why these people?",
		Proposal:  proposalFor(t, backendDemand(2)),
		Demand:    backendDemand(2),
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentAskExplanation, res.Intent)
	assert.False(t, res.Changed)
	_, ok := a.Undo("s1")
	assert.False(t, ok)
}

func TestStaffingAssistant_ReplaceWithoutProposal(t *testing.T) {
	mock := llm.NewMockTextCompleter(`{"intentType": "REPLACE_EMPLOYEE", "targetEmployeeName": "Bob"}`)
	a := newTestAssistant(mock, stubEmployeeStore{employees: testRoster()}, stubProjectStore{})

	_, err := a.ProcessInstruction(t.Context(), InstructionRequest{Message: "replace Bob"})

	assert.ErrorIs(t, err, apperrors.ErrNoActiveProposal)
}
