// Package handler provides the HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/pkg/catalog"
	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// CollaboratorStore is the collaborator persistence the handlers need.
type CollaboratorStore interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Collaborator, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*model.Collaborator, error)
}

// PreferenceStore is the preference persistence the handlers need.
type PreferenceStore interface {
	Create(ctx context.Context, p *model.Preference) error
	ListApproved(ctx context.Context, collaboratorID uuid.UUID, date string) ([]*model.Preference, error)
	ListApprovedForTenant(ctx context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Preference, error)
}

// NucleoStore is the nucleo persistence the handlers need.
type NucleoStore interface {
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*model.Nucleo, error)
}

// ShiftStore is the shift and assignment persistence the handlers need.
// CreateBatch is atomic: the whole proposal lands, published when
// requested, or none of it does.
type ShiftStore interface {
	CreateBatch(ctx context.Context, shifts []*model.Shift, assignments []*model.Assignment, publish bool) error
	ListByRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Shift, error)
	ListAssignmentsByRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Assignment, error)
}

// CriticalityStore is the criticality persistence the handlers need.
type CriticalityStore interface {
	ListActivePeriods(ctx context.Context, tenantID uuid.UUID) ([]*model.CriticalPeriod, error)
	ListActiveRecurring(ctx context.Context, tenantID uuid.UUID) ([]*model.RecurringCriticality, error)
}

// ConfigStore is the configuration persistence the handlers need.
type ConfigStore interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*model.SchedulingConfig, error)
	Upsert(ctx context.Context, c *model.SchedulingConfig) error
	GetOpeningHours(ctx context.Context, tenantID uuid.UUID) (*model.OpeningHours, error)
}

// loadSnapshot assembles the per-request read-only constraint snapshot.
// Nothing holds a lock while the engine computes.
func loadSnapshot(ctx context.Context, tenantID uuid.UUID, configs ConfigStore, crits CriticalityStore) (*catalog.Snapshot, error) {
	cfg, err := configs.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	hours, err := configs.GetOpeningHours(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	periods, err := crits.ListActivePeriods(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	recurring, err := crits.ListActiveRecurring(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return catalog.New(tenantID, hours, periods, recurring, cfg), nil
}

// parseTenantID extracts and validates the tenant id field common to
// every request body.
func parseTenantID(raw string) (uuid.UUID, *apperrors.AppError) {
	if raw == "" {
		return uuid.Nil, apperrors.InvalidInput("tenant_id", "required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.CodeInvalidInput, "invalid tenant id format").WithCause(err)
	}
	return id, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.CodeInternal, "internal error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
		"fields":  appErr.Fields,
	})
}
