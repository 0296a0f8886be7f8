package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Alexfrate/turnjob-sub002/pkg/errors"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// CollaboratorRepository persists collaborators and their nucleo
// memberships.
type CollaboratorRepository struct {
	db DB
}

// NewCollaboratorRepository creates the repository.
func NewCollaboratorRepository(db DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

// Create inserts a collaborator together with its memberships.
func (r *CollaboratorRepository) Create(ctx context.Context, c *model.Collaborator) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO collaboratori (
			id, tenant_id, nome, cognome, tipo_contratto, tipologia_ore,
			ore_settimanali, ore_mensili, ore_min, ore_max, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.FirstName, c.LastName, c.ContractType, c.HoursPolicy,
		c.WeeklyHours, c.MonthlyHours, c.MinHours, c.MaxHours, c.IsActive,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create collaborator")
	}

	return r.replaceMemberships(ctx, c.ID, c.NucleoIDs)
}

// GetByID fetches one collaborator scoped to its tenant. A match in a
// different tenant is indistinguishable from no match.
func (r *CollaboratorRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Collaborator, error) {
	query := `
		SELECT id, tenant_id, nome, cognome, tipo_contratto, tipologia_ore,
			ore_settimanali, ore_mensili, ore_min, ore_max, is_active,
			created_at, updated_at
		FROM collaboratori
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	c, err := r.scanCollaborator(r.db.QueryRowContext(ctx, query, id, tenantID))
	if err != nil {
		return nil, err
	}
	if err := r.loadMemberships(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update rewrites the collaborator row and its memberships.
func (r *CollaboratorRepository) Update(ctx context.Context, c *model.Collaborator) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE collaboratori SET
			nome = $3, cognome = $4, tipo_contratto = $5, tipologia_ore = $6,
			ore_settimanali = $7, ore_mensili = $8, ore_min = $9, ore_max = $10,
			is_active = $11, updated_at = $12
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.FirstName, c.LastName, c.ContractType, c.HoursPolicy,
		c.WeeklyHours, c.MonthlyHours, c.MinHours, c.MaxHours,
		c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "update collaborator")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NotFound("collaborator", c.ID.String())
	}

	return r.replaceMemberships(ctx, c.ID, c.NucleoIDs)
}

// Delete soft-deletes the collaborator. Historical assignments keep
// referencing the row.
func (r *CollaboratorRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE collaboratori SET deleted_at = $3, is_active = FALSE
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, tenantID, time.Now())
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "delete collaborator")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NotFound("collaborator", id.String())
	}
	return nil
}

// ListActive returns every active collaborator of the tenant with
// memberships loaded, ordered by id for deterministic consumption.
func (r *CollaboratorRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*model.Collaborator, error) {
	query := `
		SELECT id, tenant_id, nome, cognome, tipo_contratto, tipologia_ore,
			ore_settimanali, ore_mensili, ore_min, ore_max, is_active,
			created_at, updated_at
		FROM collaboratori
		WHERE tenant_id = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list collaborators")
	}
	defer rows.Close()

	var out []*model.Collaborator
	for rows.Next() {
		c, err := r.scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list collaborators")
	}

	for _, c := range out {
		if err := r.loadMemberships(ctx, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *CollaboratorRepository) replaceMemberships(ctx context.Context, collaboratorID uuid.UUID, nucleoIDs []uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM nucleo_membri WHERE collaboratore_id = $1`, collaboratorID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "replace memberships")
	}
	for _, nid := range nucleoIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO nucleo_membri (nucleo_id, collaboratore_id) VALUES ($1, $2)`,
			nid, collaboratorID); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "replace memberships")
		}
	}
	return nil
}

func (r *CollaboratorRepository) loadMemberships(ctx context.Context, c *model.Collaborator) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT nucleo_id FROM nucleo_membri WHERE collaboratore_id = $1 ORDER BY nucleo_id`, c.ID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "load memberships")
	}
	defer rows.Close()

	c.NucleoIDs = c.NucleoIDs[:0]
	for rows.Next() {
		var nid uuid.UUID
		if err := rows.Scan(&nid); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "load memberships")
		}
		c.NucleoIDs = append(c.NucleoIDs, nid)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CollaboratorRepository) scanCollaborator(row rowScanner) (*model.Collaborator, error) {
	var c model.Collaborator
	var contract sql.NullString

	err := row.Scan(
		&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &contract, &c.HoursPolicy,
		&c.WeeklyHours, &c.MonthlyHours, &c.MinHours, &c.MaxHours, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, fmt.Sprintf("scan collaborator: %v", err))
	}
	c.ContractType = contract.String
	return &c, nil
}
