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

// ShiftRepository persists shifts and their assignments.
type ShiftRepository struct {
	db DB
}

// NewShiftRepository creates the repository.
func NewShiftRepository(db DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// Create inserts one shift.
func (r *ShiftRepository) Create(ctx context.Context, s *model.Shift) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO turni (
			id, tenant_id, nucleo_id, data, ora_inizio, ora_fine,
			num_collaboratori_richiesti, pubblicato, completato, note,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TenantID, s.NucleoID, s.Date, s.StartTime, s.EndTime,
		s.Required, s.IsPublished, s.IsCompleted, s.Notes,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create shift")
	}
	return nil
}

// CreateBatch persists a generation result atomically: all shifts and
// assignments land, published when requested, or none do. When bound to
// a pool that can open transactions the whole batch runs inside one;
// when already bound to a *sql.Tx the caller owns the boundary.
func (r *ShiftRepository) CreateBatch(ctx context.Context, shifts []*model.Shift, assignments []*model.Assignment, publish bool) error {
	if runner, ok := r.db.(TxRunner); ok {
		return runner.Transaction(ctx, func(tx *sql.Tx) error {
			return (&ShiftRepository{db: tx}).createBatch(ctx, shifts, assignments, publish)
		})
	}
	return r.createBatch(ctx, shifts, assignments, publish)
}

func (r *ShiftRepository) createBatch(ctx context.Context, shifts []*model.Shift, assignments []*model.Assignment, publish bool) error {
	for _, s := range shifts {
		if err := r.Create(ctx, s); err != nil {
			return err
		}
	}
	for _, a := range assignments {
		if err := r.CreateAssignment(ctx, a); err != nil {
			return err
		}
	}
	if !publish || len(shifts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
	}
	return r.PublishByIDs(ctx, shifts[0].TenantID, ids)
}

// CreateAssignment inserts one assignment.
func (r *ShiftRepository) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO assegnazioni (
			id, tenant_id, turno_id, collaboratore_id, confermato,
			confidenza, preferenza_rispettata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.TenantID, a.ShiftID, a.CollaboratorID, a.IsConfirmed,
		a.Confidence, a.MatchedPreferred, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "create assignment")
	}
	return nil
}

// ListByRange returns the tenant's shifts whose date falls inside the
// inclusive range.
func (r *ShiftRepository) ListByRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Shift, error) {
	query := `
		SELECT id, tenant_id, nucleo_id, data, ora_inizio, ora_fine,
			num_collaboratori_richiesti, pubblicato, completato, note,
			created_at, updated_at
		FROM turni
		WHERE tenant_id = $1 AND data >= $2 AND data <= $3 AND deleted_at IS NULL
		ORDER BY data, nucleo_id, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, startDate, endDate)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list shifts")
	}
	defer rows.Close()

	var out []*model.Shift
	for rows.Next() {
		var s model.Shift
		var notes sql.NullString
		if err := rows.Scan(
			&s.ID, &s.TenantID, &s.NucleoID, &s.Date, &s.StartTime, &s.EndTime,
			&s.Required, &s.IsPublished, &s.IsCompleted, &notes,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "scan shift")
		}
		s.Notes = notes.String
		out = append(out, &s)
	}
	return out, rows.Err()
}

// ListAssignmentsByRange returns assignments whose shift date falls
// inside the inclusive range.
func (r *ShiftRepository) ListAssignmentsByRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate string) ([]*model.Assignment, error) {
	query := `
		SELECT a.id, a.tenant_id, a.turno_id, a.collaboratore_id, a.confermato,
			a.confidenza, a.preferenza_rispettata, a.created_at, a.updated_at
		FROM assegnazioni a
		JOIN turni t ON t.id = a.turno_id
		WHERE a.tenant_id = $1 AND t.data >= $2 AND t.data <= $3
			AND a.deleted_at IS NULL AND t.deleted_at IS NULL
		ORDER BY t.data, a.turno_id, a.id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, startDate, endDate)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list assignments")
	}
	defer rows.Close()

	var out []*model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.ShiftID, &a.CollaboratorID, &a.IsConfirmed,
			&a.Confidence, &a.MatchedPreferred, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "scan assignment")
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// PublishByIDs marks the given shifts as published.
func (r *ShiftRepository) PublishByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE turni SET pubblicato = TRUE, updated_at = $3
		WHERE tenant_id = $1 AND id = ANY($2) AND deleted_at IS NULL
	`
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	if _, err := r.db.ExecContext(ctx, query, tenantID, pq.Array(strIDs), time.Now()); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "publish shifts")
	}
	return nil
}
