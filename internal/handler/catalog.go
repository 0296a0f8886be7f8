package handler

import (
	"net/http"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// CatalogHandler serves a read-only summary of the tenant's active
// constraint catalog.
type CatalogHandler struct {
	configs       ConfigStore
	criticalities CriticalityStore
}

// NewCatalogHandler creates the handler.
func NewCatalogHandler(configs ConfigStore, criticalities CriticalityStore) *CatalogHandler {
	return &CatalogHandler{configs: configs, criticalities: criticalities}
}

// CatalogResponse is the catalog summary payload.
type CatalogResponse struct {
	TenantID               string                        `json:"tenant_id"`
	Config                 model.SchedulingConfig        `json:"configurazione"`
	ConfigIsDefault        bool                          `json:"configurazione_default"`
	OpeningHours           *model.OpeningHours           `json:"orari_apertura,omitempty"`
	CriticalPeriods        []*model.CriticalPeriod       `json:"periodi_critici"`
	RecurringCriticalities []*model.RecurringCriticality `json:"criticita_ricorrenti"`
}

// Get handles GET /api/v1/catalog.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "only GET is supported"))
		return
	}

	tenantID, appErr := parseTenantID(r.URL.Query().Get("tenant_id"))
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx := r.Context()
	snap, err := loadSnapshot(ctx, tenantID, h.configs, h.criticalities)
	if err != nil {
		respondError(w, err)
		return
	}

	stored, err := h.configs.Get(ctx, tenantID)
	if err != nil {
		respondError(w, err)
		return
	}

	periods := snap.CriticalPeriods
	if periods == nil {
		periods = []*model.CriticalPeriod{}
	}
	recurring := snap.RecurringCriticalities
	if recurring == nil {
		recurring = []*model.RecurringCriticality{}
	}

	respondJSON(w, http.StatusOK, CatalogResponse{
		TenantID:               tenantID.String(),
		Config:                 snap.Config,
		ConfigIsDefault:        stored == nil,
		OpeningHours:           snap.OpeningHours,
		CriticalPeriods:        periods,
		RecurringCriticalities: recurring,
	})
}
