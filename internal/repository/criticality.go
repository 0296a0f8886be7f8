package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// CriticalityRepository persists critical periods and recurring
// criticalities.
type CriticalityRepository struct {
	db DB
}

// NewCriticalityRepository creates the repository.
func NewCriticalityRepository(db DB) *CriticalityRepository {
	return &CriticalityRepository{db: db}
}

// CreatePeriod inserts a critical period.
func (r *CriticalityRepository) CreatePeriod(ctx context.Context, p *model.CriticalPeriod) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO periodi_critici (
			id, tenant_id, nome, data_inizio, data_fine,
			moltiplicatore_personale, personale_minimo, blocca_preferenze,
			ricorrenza_annuale, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.TenantID, p.Name, p.StartDate, p.EndDate,
		p.Multiplier, p.MinStaff, p.BlocksPreferences,
		p.RecursYearly, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create critical period")
	}
	return nil
}

// ListActivePeriods returns the tenant's active critical periods.
func (r *CriticalityRepository) ListActivePeriods(ctx context.Context, tenantID uuid.UUID) ([]*model.CriticalPeriod, error) {
	query := `
		SELECT id, tenant_id, nome, data_inizio, data_fine,
			moltiplicatore_personale, personale_minimo, blocca_preferenze,
			ricorrenza_annuale, is_active, created_at, updated_at
		FROM periodi_critici
		WHERE tenant_id = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY data_inizio, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list critical periods")
	}
	defer rows.Close()

	var out []*model.CriticalPeriod
	for rows.Next() {
		var p model.CriticalPeriod
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.Name, &p.StartDate, &p.EndDate,
			&p.Multiplier, &p.MinStaff, &p.BlocksPreferences,
			&p.RecursYearly, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "scan critical period")
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// CreateRecurring inserts a recurring criticality.
func (r *CriticalityRepository) CreateRecurring(ctx context.Context, rc *model.RecurringCriticality) error {
	if rc.ID == uuid.Nil {
		rc.ID = uuid.New()
	}
	now := time.Now()
	rc.CreatedAt = now
	rc.UpdatedAt = now

	query := `
		INSERT INTO criticita_ricorrenti (
			id, tenant_id, nome, giorno_settimana, ora_inizio, ora_fine,
			personale_extra, moltiplicatore_personale, blocca_preferenze,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		rc.ID, rc.TenantID, rc.Name, int(rc.DayOfWeek), rc.StartTime, rc.EndTime,
		rc.ExtraStaff, rc.Multiplier, rc.BlocksPreferences,
		rc.IsActive, rc.CreatedAt, rc.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create recurring criticality")
	}
	return nil
}

// ListActiveRecurring returns the tenant's active recurring
// criticalities.
func (r *CriticalityRepository) ListActiveRecurring(ctx context.Context, tenantID uuid.UUID) ([]*model.RecurringCriticality, error) {
	query := `
		SELECT id, tenant_id, nome, giorno_settimana, ora_inizio, ora_fine,
			personale_extra, moltiplicatore_personale, blocca_preferenze,
			is_active, created_at, updated_at
		FROM criticita_ricorrenti
		WHERE tenant_id = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY giorno_settimana, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list recurring criticalities")
	}
	defer rows.Close()

	var out []*model.RecurringCriticality
	for rows.Next() {
		var rc model.RecurringCriticality
		var dow int
		if err := rows.Scan(
			&rc.ID, &rc.TenantID, &rc.Name, &dow, &rc.StartTime, &rc.EndTime,
			&rc.ExtraStaff, &rc.Multiplier, &rc.BlocksPreferences,
			&rc.IsActive, &rc.CreatedAt, &rc.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "scan recurring criticality")
		}
		rc.DayOfWeek = time.Weekday(dow)
		out = append(out, &rc)
	}
	return out, rows.Err()
}
