package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
	"github.com/ekaya-inc/ekaya-staffing/pkg/services"
)

// GenerateAllocationRequest is the body of POST /api/allocations.
type GenerateAllocationRequest struct {
	Demand *models.ProjectDemand `json:"demand"`
}

// NormalizeDemandRequest is the body of POST /api/demands/normalize.
type NormalizeDemandRequest struct {
	Demand   *models.ProjectDemand `json:"demand"`
	Previous *models.ProjectDemand `json:"previous,omitempty"`
}

// UndoRequest is the body of POST /api/chat/undo.
type UndoRequest struct {
	SessionID string `json:"sessionId"`
}

// AnalyzeRequest is the body of POST /api/analysis.
type AnalyzeRequest struct {
	Demand   *models.ProjectDemand      `json:"demand"`
	Proposal *models.AllocationProposal `json:"proposal"`
}

// StaffingHandler exposes the staffing assistant over HTTP.
type StaffingHandler struct {
	assistant    services.StaffingAssistant
	orchestrator services.Orchestrator
	logger       *zap.Logger
}

// NewStaffingHandler creates a StaffingHandler.
func NewStaffingHandler(assistant services.StaffingAssistant, orchestrator services.Orchestrator, logger *zap.Logger) *StaffingHandler {
	return &StaffingHandler{
		assistant:    assistant,
		orchestrator: orchestrator,
		logger:       logger.Named("staffing-handler"),
	}
}

// RegisterRoutes registers the staffing routes on the given mux.
func (h *StaffingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/allocations", h.GenerateAllocation)
	mux.HandleFunc("POST /api/demands/normalize", h.NormalizeDemand)
	mux.HandleFunc("POST /api/chat", h.Chat)
	mux.HandleFunc("POST /api/chat/undo", h.Undo)
	mux.HandleFunc("POST /api/orchestrate", h.Orchestrate)
	mux.HandleFunc("POST /api/analysis", h.Analyze)
}

// GenerateAllocation handles POST /api/allocations
func (h *StaffingHandler) GenerateAllocation(w http.ResponseWriter, r *http.Request) {
	var req GenerateAllocationRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	proposal, err := h.assistant.GenerateAllocation(r.Context(), req.Demand)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	h.respond(w, proposal)
}

// NormalizeDemand handles POST /api/demands/normalize
func (h *StaffingHandler) NormalizeDemand(w http.ResponseWriter, r *http.Request) {
	var req NormalizeDemandRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	demand, err := h.assistant.NormalizeDemand(r.Context(), req.Demand, req.Previous)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	h.respond(w, demand)
}

// Chat handles POST /api/chat
func (h *StaffingHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req services.InstructionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "message is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.assistant.ProcessInstruction(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	h.respond(w, result)
}

// Undo handles POST /api/chat/undo
func (h *StaffingHandler) Undo(w http.ResponseWriter, r *http.Request) {
	var req UndoRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	proposal, ok := h.assistant.Undo(req.SessionID)
	if !ok {
		if err := ErrorResponse(w, http.StatusNotFound, "nothing_to_undo", "No earlier proposal for this session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	h.respond(w, proposal)
}

// Orchestrate handles POST /api/orchestrate
func (h *StaffingHandler) Orchestrate(w http.ResponseWriter, r *http.Request) {
	var req services.OrchestrateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "message is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.orchestrator.Handle(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	h.respond(w, result)
}

// Analyze handles POST /api/analysis
func (h *StaffingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	analysis, err := h.assistant.Analyze(r.Context(), req.Demand, req.Proposal)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	h.respond(w, analysis)
}

func (h *StaffingHandler) respond(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: data}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
