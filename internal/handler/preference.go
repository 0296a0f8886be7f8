package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/internal/metrics"
	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/logger"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
	"github.com/Alexfrate/turnjob-sub002/pkg/validator"
)

// PreferenceHandler serves preference validation and creation.
type PreferenceHandler struct {
	collaborators CollaboratorStore
	preferences   PreferenceStore
	configs       ConfigStore
	criticalities CriticalityStore
}

// NewPreferenceHandler creates the handler.
func NewPreferenceHandler(
	collaborators CollaboratorStore,
	preferences PreferenceStore,
	configs ConfigStore,
	criticalities CriticalityStore,
) *PreferenceHandler {
	return &PreferenceHandler{
		collaborators: collaborators,
		preferences:   preferences,
		configs:       configs,
		criticalities: criticalities,
	}
}

// PreferenceRequest is the body of both the validation and the
// creation endpoint.
type PreferenceRequest struct {
	TenantID       string  `json:"tenant_id"`
	CollaboratorID string  `json:"collaboratore_id"`
	Date           string  `json:"data"`                 // YYYY-MM-DD
	StartTime      *string `json:"ora_inizio,omitempty"` // HH:MM, nil = full day
	EndTime        *string `json:"ora_fine,omitempty"`   // HH:MM, nil = full day
	Type           string  `json:"tipo"`
}

// ValidateResponse is the verdict payload. An HTTP 200 carries any
// verdict, including rejections: a rejection is a successful
// validation.
type ValidateResponse struct {
	Status  model.ValidationStatus `json:"validation_status"`
	IsValid bool                   `json:"is_valid"`
	Reason  string                 `json:"motivo_rifiuto,omitempty"`
	Details []validator.Detail     `json:"details"`
}

// Validate handles POST /api/v1/preferences/validate.
func (h *PreferenceHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "only POST is supported"))
		return
	}

	req, vreq, appErr := h.parse(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx := r.Context()
	tenantID, _ := uuid.Parse(req.TenantID)

	// Existence and tenant scoping before any engine work. A
	// cross-tenant id is indistinguishable from a missing one.
	collab, err := h.collaborators.GetByID(ctx, tenantID, vreq.CollaboratorID)
	if err != nil {
		respondError(w, apperrors.NotFound("collaborator", req.CollaboratorID))
		return
	}
	if !collab.IsActive {
		respondError(w, apperrors.NotFound("collaborator", req.CollaboratorID))
		return
	}

	snap, err := loadSnapshot(ctx, tenantID, h.configs, h.criticalities)
	if err != nil {
		respondError(w, err)
		return
	}
	existing, err := h.preferences.ListApproved(ctx, vreq.CollaboratorID, req.Date)
	if err != nil {
		respondError(w, err)
		return
	}

	res, err := validator.Validate(snap, existing, vreq)
	if err != nil {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "malformed preference window").WithCause(err))
		return
	}

	logger.NewEngineLogger().ValidationOutcome(req.CollaboratorID, req.Date, string(res.Status))
	metrics.RecordValidation(string(res.Status))

	respondJSON(w, http.StatusOK, ValidateResponse{
		Status:  res.Status,
		IsValid: res.IsValid,
		Reason:  res.Reason,
		Details: res.Details,
	})
}

// CreateResponse is the creation payload: the stored preference plus
// its validation verdict.
type CreateResponse struct {
	Preference *model.Preference  `json:"preferenza"`
	IsValid    bool               `json:"is_valid"`
	Details    []validator.Detail `json:"details"`
}

// Create handles POST /api/v1/preferences. The preference is validated
// and persisted with the resulting status; a rejected preference is
// stored too, carrying its rejection reason.
func (h *PreferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "only POST is supported"))
		return
	}

	req, vreq, appErr := h.parse(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx := r.Context()
	tenantID, _ := uuid.Parse(req.TenantID)

	collab, err := h.collaborators.GetByID(ctx, tenantID, vreq.CollaboratorID)
	if err != nil || !collab.IsActive {
		respondError(w, apperrors.NotFound("collaborator", req.CollaboratorID))
		return
	}

	snap, err := loadSnapshot(ctx, tenantID, h.configs, h.criticalities)
	if err != nil {
		respondError(w, err)
		return
	}
	existing, err := h.preferences.ListApproved(ctx, vreq.CollaboratorID, req.Date)
	if err != nil {
		respondError(w, err)
		return
	}

	res, err := validator.Validate(snap, existing, vreq)
	if err != nil {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "malformed preference window").WithCause(err))
		return
	}

	now := time.Now()
	pref := &model.Preference{
		BaseModel:       model.NewBaseModel(),
		TenantID:        tenantID,
		CollaboratorID:  vreq.CollaboratorID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Type:            vreq.Type,
		Status:          res.Status,
		RejectionReason: res.Reason,
		ValidatedAt:     &now,
	}
	if err := h.preferences.Create(ctx, pref); err != nil {
		respondError(w, err)
		return
	}

	metrics.RecordValidation(string(res.Status))

	respondJSON(w, http.StatusCreated, CreateResponse{
		Preference: pref,
		IsValid:    res.IsValid,
		Details:    res.Details,
	})
}

// parse decodes and validates the shared request shape.
func (h *PreferenceHandler) parse(r *http.Request) (*PreferenceRequest, validator.Request, *apperrors.AppError) {
	var req PreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, validator.Request{}, apperrors.New(apperrors.CodeInvalidInput, "failed to decode request body").WithCause(err)
	}

	ve := &apperrors.ValidationErrors{}
	if _, appErr := parseTenantID(req.TenantID); appErr != nil {
		ve.Add("tenant_id", appErr.Message)
	}
	collabID, err := uuid.Parse(req.CollaboratorID)
	if err != nil {
		ve.Add("collaboratore_id", "invalid or missing id")
	}
	if _, err := time.Parse(model.DateFormat, req.Date); err != nil {
		ve.Add("data", "expected YYYY-MM-DD")
	}
	ptype := model.PreferenceType(req.Type)
	if !ptype.Valid() {
		ve.Add("tipo", "must be AVAILABLE, PREFERRED or UNAVAILABLE")
	}

	// A half-specified window is malformed; so is an inverted one.
	if (req.StartTime == nil) != (req.EndTime == nil) {
		ve.Add("ora_inizio", "start and end must both be set or both be empty")
	}
	if req.StartTime != nil && req.EndTime != nil {
		day := time.Now()
		start, err1 := model.ParseClock(day, *req.StartTime)
		end, err2 := model.ParseClock(day, *req.EndTime)
		switch {
		case err1 != nil || err2 != nil:
			ve.Add("ora_inizio", "expected HH:MM clock values")
		case !start.Before(end):
			ve.Add("ora_fine", "end must be after start")
		}
	}

	if ve.HasErrors() {
		return nil, validator.Request{}, ve.ToAppError()
	}

	return &req, validator.Request{
		CollaboratorID: collabID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Type:           ptype,
	}, nil
}
