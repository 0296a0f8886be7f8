package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
	"github.com/Alexfrate/turnjob-sub002/pkg/stats"
)

// StatsHandler serves equity analysis over stored assignments.
type StatsHandler struct {
	collaborators CollaboratorStore
	shifts        ShiftStore
}

// NewStatsHandler creates the handler.
func NewStatsHandler(collaborators CollaboratorStore, shifts ShiftStore) *StatsHandler {
	return &StatsHandler{collaborators: collaborators, shifts: shifts}
}

// EquityRequest is the body of the equity analysis endpoint.
type EquityRequest struct {
	TenantID  string `json:"tenant_id"`
	StartDate string `json:"data_inizio"` // YYYY-MM-DD
	EndDate   string `json:"data_fine"`   // YYYY-MM-DD
}

// Equity handles POST /api/v1/stats/equity: workload distribution
// metrics over the tenant's assignments in the range.
func (h *StatsHandler) Equity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "only POST is supported"))
		return
	}

	var req EquityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "failed to decode request body").WithCause(err))
		return
	}

	tenantID, appErr := parseTenantID(req.TenantID)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	dr := model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate}
	if err := dr.Validate(); err != nil {
		respondError(w, apperrors.New(apperrors.CodeInvalidTimeRange, err.Error()))
		return
	}

	ctx := r.Context()
	collaborators, err := h.collaborators.ListActive(ctx, tenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	shifts, err := h.shifts.ListByRange(ctx, tenantID, dr.StartDate, dr.EndDate)
	if err != nil {
		respondError(w, err)
		return
	}
	assignments, err := h.shifts.ListAssignmentsByRange(ctx, tenantID, dr.StartDate, dr.EndDate)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats.NewAnalyzer().Analyze(assignments, shifts, collaborators))
}
