package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// ConfigHandler serves the per-tenant scheduling configuration.
type ConfigHandler struct {
	configs ConfigStore
}

// NewConfigHandler creates the handler.
func NewConfigHandler(configs ConfigStore) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// ConfigResponse wraps the configuration with a marker telling whether
// the tenant has a stored row or is running on defaults.
type ConfigResponse struct {
	Config  model.SchedulingConfig `json:"configurazione"`
	Default bool                   `json:"default"`
}

// ServeHTTP dispatches GET and PUT on /api/v1/scheduling-config.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "only GET and PUT are supported"))
	}
}

// get returns the stored configuration, or the explicit defaults when
// the tenant never saved one.
func (h *ConfigHandler) get(w http.ResponseWriter, r *http.Request) {
	tenantID, appErr := parseTenantID(r.URL.Query().Get("tenant_id"))
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	cfg, err := h.configs.Get(r.Context(), tenantID)
	if err != nil {
		respondError(w, err)
		return
	}
	if cfg == nil {
		respondJSON(w, http.StatusOK, ConfigResponse{
			Config:  model.DefaultSchedulingConfig(tenantID),
			Default: true,
		})
		return
	}
	respondJSON(w, http.StatusOK, ConfigResponse{Config: *cfg})
}

// ConfigUpdateRequest is the PUT body.
type ConfigUpdateRequest struct {
	TenantID            string               `json:"tenant_id"`
	Mode                model.SchedulingMode `json:"modalita"`
	ConfidenceThreshold float64              `json:"soglia_confidenza"`
	RespectPreferences  bool                 `json:"considera_preferenze"`
	EnforceHard         bool                 `json:"rispetta_vincoli_hard"`
	NotifyConflicts     bool                 `json:"notifica_conflitti"`
	GenerateReport      bool                 `json:"genera_report"`
	MaxWeeklyHours      float64              `json:"max_ore_settimanali"`
	MinRestHours        float64              `json:"min_ore_riposo"`
}

func (h *ConfigHandler) put(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "failed to decode request body").WithCause(err))
		return
	}

	tenantID, appErr := parseTenantID(req.TenantID)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ve := &apperrors.ValidationErrors{}
	if !req.Mode.Valid() {
		ve.Add("modalita", "must be DISABLED, SUGGESTION, SEMI_AUTO or AUTONOMOUS")
	}
	if req.ConfidenceThreshold < 0 || req.ConfidenceThreshold > 1 {
		ve.Add("soglia_confidenza", "must be between 0 and 1")
	}
	if req.MaxWeeklyHours < 0 {
		ve.Add("max_ore_settimanali", "must not be negative")
	}
	if req.MinRestHours < 0 {
		ve.Add("min_ore_riposo", "must not be negative")
	}
	if ve.HasErrors() {
		respondError(w, ve.ToAppError())
		return
	}

	cfg := &model.SchedulingConfig{
		TenantID:            tenantID,
		Mode:                req.Mode,
		ConfidenceThreshold: req.ConfidenceThreshold,
		RespectPreferences:  req.RespectPreferences,
		EnforceHard:         req.EnforceHard,
		NotifyConflicts:     req.NotifyConflicts,
		GenerateReport:      req.GenerateReport,
		MaxWeeklyHours:      req.MaxWeeklyHours,
		MinRestHours:        req.MinRestHours,
	}
	if err := h.configs.Upsert(r.Context(), cfg); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ConfigResponse{Config: *cfg})
}
