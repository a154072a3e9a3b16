package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

func TestProposalExplainer_UsesModelAnswer(t *testing.T) {
	mock := llm.NewMockTextCompleter(`{"explanation": " Alice and Bob bring the strongest Go experience. "}`)
	proposal := proposalFor(t, backendDemand(2))

	got := NewProposalExplainer(mock, zap.NewNop()).Explain(t.Context(), "why these two?", proposal, backendDemand(2))

	assert.Equal(t, "Alice and Bob bring the strongest Go experience.", got)
	require.Equal(t, 1, mock.Calls())
	assert.Contains(t, mock.Prompts()[0], "why these two?")
	assert.Contains(t, mock.Prompts()[0], "Alice Chen")
}

func TestProposalExplainer_TemplateFallback(t *testing.T) {
	proposal := proposalFor(t, backendDemand(2))
	want := "The proposal for Payments staffs 2 Backend Developers. Candidates were chosen for their fit with Go, then availability and seniority."

	for _, completer := range []llm.TextCompleter{
		llm.NewFailingTextCompleter(errors.New("down")),
		llm.NewMockTextCompleter(`{"explanation": ""}`),
		llm.NewMockTextCompleter(`not json`),
	} {
		got := NewProposalExplainer(completer, zap.NewNop()).Explain(t.Context(), "why?", proposal, backendDemand(2))
		assert.Equal(t, want, got)
	}
}

func TestTemplateExplanation_EmptyProposal(t *testing.T) {
	got := templateExplanation(&models.AllocationProposal{}, nil)
	assert.Equal(t, "The proposal for this project has no one assigned yet. Candidates were chosen by role fit, availability and seniority.", got)
}

func TestPluralRoleAndJoinNames(t *testing.T) {
	assert.Equal(t, "QA Engineers", pluralRole("QA Engineer", 2))
	assert.Equal(t, "QA Engineer", pluralRole("QA Engineer", 1))
	assert.Equal(t, "Designers", pluralRole("Designer", 0))
	assert.Equal(t, "", joinNames(nil))
	assert.Equal(t, "A and B", joinNames([]string{"A", "B"}))
	assert.Equal(t, "A, B and C", joinNames([]string{"A", "B", "C"}))
}
