package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blood-link/internal/domain"
)

const bloodRequestTable = "blood_requests"

type BloodRequestRepository interface {
	Create(ctx context.Context, req *domain.BloodRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error)
	List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.BloodRequest, int64, error)
	// Decide moves a PENDING request to status. It reports false, with no
	// error, when the request exists but is no longer PENDING.
	Decide(ctx context.Context, id uuid.UUID, status domain.BloodRequestStatus, moderatorID uuid.UUID) (*domain.BloodRequest, bool, error)
	// Approve moves a PENDING request to APPROVED and creates the donor
	// notifications in the same transaction. Nothing is written unless both
	// succeed. It reports false when the request is no longer PENDING.
	Approve(ctx context.Context, id, moderatorID uuid.UUID, donorIDs []uuid.UUID) (*domain.BloodRequest, []domain.DonorNotification, bool, error)
	// ListByIDs skips ids that do not exist.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.BloodRequest, error)
}

type bloodRequestRepository struct {
	db *sqlx.DB
}

func NewBloodRequestRepository(db *sqlx.DB) BloodRequestRepository {
	return &bloodRequestRepository{db: db}
}

func (r *bloodRequestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	query := `
		INSERT INTO blood_requests (id, requester_id, requester_email, contact_name, contact_phone, contact_email,
			blood_group, urgency, location, hospital, patient_name, units_needed, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.RequesterID, req.RequesterEmail, req.ContactName, req.ContactPhone, req.ContactEmail,
		req.BloodGroup, req.Urgency, req.Location, req.Hospital, req.PatientName, req.UnitsNeeded, req.Notes, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *bloodRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error) {
	var req domain.BloodRequest
	query := `SELECT * FROM blood_requests WHERE id = $1`

	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("blood request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get blood request: %w", err)
	}
	return &req, nil
}

func (r *bloodRequestRepository) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.BloodRequest, int64, error) {
	params.Validate()

	where := sq.And{}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": *filter.Status})
	}
	if filter.RequesterID != nil {
		where = append(where, sq.Eq{"requester_id": *filter.RequesterID})
	}

	countQuery, countArgs, err := psql().Select("COUNT(*)").From(bloodRequestTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build blood request count query: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count blood requests: %w", err)
	}

	query, args, err := psql().Select("*").From(bloodRequestTable).Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build blood request list query: %w", err)
	}

	requests := []domain.BloodRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list blood requests: %w", err)
	}
	return requests, total, nil
}

func (r *bloodRequestRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.BloodRequest, error) {
	requests := []domain.BloodRequest{}
	if len(ids) == 0 {
		return requests, nil
	}

	query, args, err := psql().Select("*").From(bloodRequestTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build blood request lookup: %w", err)
	}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list blood requests by id: %w", err)
	}
	return requests, nil
}

const decideQuery = `
	UPDATE blood_requests
	SET status = $2, moderator_id = $3,
		approved_at = CASE WHEN $2 = 'APPROVED' THEN NOW() ELSE approved_at END,
		updated_at = NOW()
	WHERE id = $1 AND status = 'PENDING'
	RETURNING *`

func (r *bloodRequestRepository) Decide(ctx context.Context, id uuid.UUID, status domain.BloodRequestStatus, moderatorID uuid.UUID) (*domain.BloodRequest, bool, error) {
	var req domain.BloodRequest
	err := r.db.GetContext(ctx, &req, decideQuery, id, status, moderatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, r.notPendingOrMissing(ctx, id)
	}
	if err != nil {
		return nil, false, fmt.Errorf("decide blood request: %w", err)
	}
	return &req, true, nil
}

func (r *bloodRequestRepository) Approve(ctx context.Context, id, moderatorID uuid.UUID, donorIDs []uuid.UUID) (*domain.BloodRequest, []domain.DonorNotification, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, false, fmt.Errorf("begin approval transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var req domain.BloodRequest
	err = tx.GetContext(ctx, &req, decideQuery, id, domain.RequestApproved, moderatorID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return nil, nil, false, r.notPendingOrMissing(ctx, id)
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("approve blood request: %w", err)
	}

	created, err := insertDonorNotifications(ctx, tx, id, donorIDs)
	if err != nil {
		return nil, nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, false, fmt.Errorf("commit approval: %w", err)
	}
	return &req, created, true, nil
}

// notPendingOrMissing returns NotFound for an unknown id and nil when the
// request exists in some other state.
func (r *bloodRequestRepository) notPendingOrMissing(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return nil
}
