package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// breach.
const uniqueViolation = "23505"

// PreferenceRepository persists preferences.
type PreferenceRepository struct {
	db DB
}

// NewPreferenceRepository creates the repository.
func NewPreferenceRepository(db DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Create inserts a preference. The unique index on (collaboratore_id,
// data, ora_inizio) maps to a duplicate-preference conflict.
func (r *PreferenceRepository) Create(ctx context.Context, p *model.Preference) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO preferenze (
			id, tenant_id, collaboratore_id, data, ora_inizio, ora_fine,
			tipo, validation_status, motivo_rifiuto, validated_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.TenantID, p.CollaboratorID, p.Date, p.StartTime, p.EndTime,
		p.Type, p.Status, p.RejectionReason, p.ValidatedAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return apperrors.DuplicatePreference(p.CollaboratorID.String(), p.Date).WithCause(err)
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create preference")
	}
	return nil
}

// GetByID fetches one preference scoped to its tenant.
func (r *PreferenceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Preference, error) {
	query := selectPreference + `WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	p, err := scanPreference(r.db.QueryRowContext(ctx, query, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("preference", id.String())
	}
	return p, err
}

// UpdateStatus records a validation verdict.
func (r *PreferenceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ValidationStatus, reason string) error {
	now := time.Now()
	query := `
		UPDATE preferenze SET
			validation_status = $2, motivo_rifiuto = $3, validated_at = $4, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, status, reason, now)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "update preference status")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NotFound("preference", id.String())
	}
	return nil
}

// ListApproved returns the collaborator's APPROVED preferences on one
// date.
func (r *PreferenceRepository) ListApproved(ctx context.Context, collaboratorID uuid.UUID, date string) ([]*model.Preference, error) {
	query := selectPreference + `
		WHERE collaboratore_id = $1 AND data = $2
			AND validation_status = $3 AND deleted_at IS NULL
		ORDER BY ora_inizio NULLS FIRST, id
	`
	return r.queryPreferences(ctx, query, collaboratorID, date, model.StatusApproved)
}

// ListApprovedForTenant returns every APPROVED preference of the tenant
// inside the date range.
func (r *PreferenceRepository) ListApprovedForTenant(ctx context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Preference, error) {
	query := selectPreference + `
		WHERE tenant_id = $1 AND data >= $2 AND data <= $3
			AND validation_status = $4 AND deleted_at IS NULL
		ORDER BY data, collaboratore_id, id
	`
	return r.queryPreferences(ctx, query, tenantID, startDate, endDate, model.StatusApproved)
}

func (r *PreferenceRepository) queryPreferences(ctx context.Context, query string, args ...interface{}) ([]*model.Preference, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list preferences")
	}
	defer rows.Close()

	var out []*model.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const selectPreference = `
	SELECT id, tenant_id, collaboratore_id, data, ora_inizio, ora_fine,
		tipo, validation_status, motivo_rifiuto, validated_at,
		created_at, updated_at
	FROM preferenze
`

func scanPreference(row rowScanner) (*model.Preference, error) {
	var p model.Preference
	var reason sql.NullString

	err := row.Scan(
		&p.ID, &p.TenantID, &p.CollaboratorID, &p.Date, &p.StartTime, &p.EndTime,
		&p.Type, &p.Status, &reason, &p.ValidatedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "scan preference")
	}
	p.RejectionReason = reason.String
	return &p, nil
}
