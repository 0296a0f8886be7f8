package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// NucleoRepository persists nuclei.
type NucleoRepository struct {
	db DB
}

// NewNucleoRepository creates the repository.
func NewNucleoRepository(db DB) *NucleoRepository {
	return &NucleoRepository{db: db}
}

// Create inserts a nucleo.
func (r *NucleoRepository) Create(ctx context.Context, n *model.Nucleo) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	query := `
		INSERT INTO nuclei (
			id, tenant_id, nome, descrizione, numero_minimo_membri,
			numero_massimo_membri, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.TenantID, n.Name, n.Description, n.MinMembers,
		n.MaxMembers, n.IsActive, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create nucleo")
	}
	return nil
}

// GetByID fetches one nucleo scoped to its tenant.
func (r *NucleoRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Nucleo, error) {
	query := `
		SELECT id, tenant_id, nome, descrizione, numero_minimo_membri,
			numero_massimo_membri, is_active, created_at, updated_at
		FROM nuclei
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	var n model.Nucleo
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&n.ID, &n.TenantID, &n.Name, &desc, &n.MinMembers,
		&n.MaxMembers, &n.IsActive, &n.CreatedAt, &n.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("nucleo", id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "get nucleo")
	}
	n.Description = desc.String
	return &n, nil
}

// ListActive returns the tenant's active nuclei ordered by name then
// id.
func (r *NucleoRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*model.Nucleo, error) {
	query := `
		SELECT id, tenant_id, nome, descrizione, numero_minimo_membri,
			numero_massimo_membri, is_active, created_at, updated_at
		FROM nuclei
		WHERE tenant_id = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY nome, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list nuclei")
	}
	defer rows.Close()

	var out []*model.Nucleo
	for rows.Next() {
		var n model.Nucleo
		var desc sql.NullString
		if err := rows.Scan(
			&n.ID, &n.TenantID, &n.Name, &desc, &n.MinMembers,
			&n.MaxMembers, &n.IsActive, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "scan nucleo")
		}
		n.Description = desc.String
		out = append(out, &n)
	}
	return out, rows.Err()
}

// Delete soft-deletes the nucleo. Deletion is refused while future
// shifts still reference it.
func (r *NucleoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	var future int
	countQuery := `
		SELECT COUNT(*) FROM turni
		WHERE nucleo_id = $1 AND tenant_id = $2 AND data >= $3 AND deleted_at IS NULL
	`
	today := time.Now().Format(model.DateFormat)
	if err := r.db.QueryRowContext(ctx, countQuery, id, tenantID, today).Scan(&future); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "count future shifts")
	}
	if future > 0 {
		return apperrors.NucleoInUse(id.String(), future)
	}

	query := `
		UPDATE nuclei SET deleted_at = $3, is_active = FALSE
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, tenantID, time.Now())
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "delete nucleo")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NotFound("nucleo", id.String())
	}
	return nil
}
