package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// ConfigRepository persists per-tenant scheduling configuration and
// opening hours.
type ConfigRepository struct {
	db DB
}

// NewConfigRepository creates the repository.
func NewConfigRepository(db DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get returns the tenant's configuration row, or nil when none exists.
// Callers fall back to model.DefaultSchedulingConfig on nil.
func (r *ConfigRepository) Get(ctx context.Context, tenantID uuid.UUID) (*model.SchedulingConfig, error) {
	query := `
		SELECT id, tenant_id, modalita, soglia_confidenza, considera_preferenze,
			rispetta_vincoli_hard, notifica_conflitti, genera_report,
			max_ore_settimanali, min_ore_riposo, created_at, updated_at
		FROM configurazioni_scheduling
		WHERE tenant_id = $1 AND deleted_at IS NULL
	`

	var c model.SchedulingConfig
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&c.ID, &c.TenantID, &c.Mode, &c.ConfidenceThreshold, &c.RespectPreferences,
		&c.EnforceHard, &c.NotifyConflicts, &c.GenerateReport,
		&c.MaxWeeklyHours, &c.MinRestHours, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "get scheduling config")
	}
	return &c, nil
}

// Upsert writes the tenant's configuration, creating the row on first
// write.
func (r *ConfigRepository) Upsert(ctx context.Context, c *model.SchedulingConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := `
		INSERT INTO configurazioni_scheduling (
			id, tenant_id, modalita, soglia_confidenza, considera_preferenze,
			rispetta_vincoli_hard, notifica_conflitti, genera_report,
			max_ore_settimanali, min_ore_riposo, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id) DO UPDATE SET
			modalita = EXCLUDED.modalita,
			soglia_confidenza = EXCLUDED.soglia_confidenza,
			considera_preferenze = EXCLUDED.considera_preferenze,
			rispetta_vincoli_hard = EXCLUDED.rispetta_vincoli_hard,
			notifica_conflitti = EXCLUDED.notifica_conflitti,
			genera_report = EXCLUDED.genera_report,
			max_ore_settimanali = EXCLUDED.max_ore_settimanali,
			min_ore_riposo = EXCLUDED.min_ore_riposo,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.Mode, c.ConfidenceThreshold, c.RespectPreferences,
		c.EnforceHard, c.NotifyConflicts, c.GenerateReport,
		c.MaxWeeklyHours, c.MinRestHours, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "upsert scheduling config")
	}
	return nil
}

// GetOpeningHours returns the tenant's opening configuration, or nil
// when none is stored. The per-day windows are kept as a JSONB column.
func (r *ConfigRepository) GetOpeningHours(ctx context.Context, tenantID uuid.UUID) (*model.OpeningHours, error) {
	query := `
		SELECT tenant_id, tipo_orario, orari
		FROM orari_apertura
		WHERE tenant_id = $1
	`

	var o model.OpeningHours
	var perDay []byte
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&o.TenantID, &o.Type, &perDay)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "get opening hours")
	}
	if len(perDay) > 0 {
		if err := json.Unmarshal(perDay, &o.PerDay); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "decode opening hours")
		}
	}
	return &o, nil
}

// UpsertOpeningHours writes the tenant's opening configuration.
func (r *ConfigRepository) UpsertOpeningHours(ctx context.Context, o *model.OpeningHours) error {
	perDay, err := json.Marshal(o.PerDay)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "encode opening hours")
	}

	query := `
		INSERT INTO orari_apertura (tenant_id, tipo_orario, orari)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE SET
			tipo_orario = EXCLUDED.tipo_orario,
			orari = EXCLUDED.orari
	`

	if _, err := r.db.ExecContext(ctx, query, o.TenantID, o.Type, perDay); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "upsert opening hours")
	}
	return nil
}
