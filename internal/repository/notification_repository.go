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

type DonorNotificationRepository interface {
	// CreateForRequest inserts one UNREAD notification per donor and skips
	// donors that already have one for the request. It returns the rows it
	// actually inserted.
	CreateForRequest(ctx context.Context, requestID uuid.UUID, donorIDs []uuid.UUID) ([]domain.DonorNotification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorNotification, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, status *domain.DonorNotificationStatus, params domain.PaginationParams) ([]domain.DonorNotification, int64, error)
	// MarkAsRead moves UNREAD to READ. READ and CLOSED rows are left alone.
	MarkAsRead(ctx context.Context, id, donorID uuid.UUID) error
	CloseOpenByRequest(ctx context.Context, requestID uuid.UUID) (int64, error)
}

type donorNotificationRepository struct {
	db *sqlx.DB
}

func NewDonorNotificationRepository(db *sqlx.DB) DonorNotificationRepository {
	return &donorNotificationRepository{db: db}
}

func (r *donorNotificationRepository) CreateForRequest(ctx context.Context, requestID uuid.UUID, donorIDs []uuid.UUID) ([]domain.DonorNotification, error) {
	return insertDonorNotifications(ctx, r.db, requestID, donorIDs)
}

// insertDonorNotifications runs on the pool or inside a caller's transaction.
func insertDonorNotifications(ctx context.Context, q sqlx.QueryerContext, requestID uuid.UUID, donorIDs []uuid.UUID) ([]domain.DonorNotification, error) {
	if len(donorIDs) == 0 {
		return []domain.DonorNotification{}, nil
	}

	builder := psql().Insert("donor_notifications").Columns("id", "donor_id", "blood_request_id", "status")
	for _, donorID := range donorIDs {
		builder = builder.Values(uuid.New(), donorID, requestID, domain.NotifUnread)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (donor_id, blood_request_id) DO NOTHING RETURNING *").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build donor notification insert: %w", err)
	}

	created := []domain.DonorNotification{}
	if err := sqlx.SelectContext(ctx, q, &created, query, args...); err != nil {
		return nil, fmt.Errorf("create donor notifications: %w", err)
	}
	return created, nil
}

func (r *donorNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorNotification, error) {
	var n domain.DonorNotification
	query := `SELECT * FROM donor_notifications WHERE id = $1`

	err := r.db.GetContext(ctx, &n, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("notification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get donor notification: %w", err)
	}
	return &n, nil
}

func (r *donorNotificationRepository) ListByDonor(ctx context.Context, donorID uuid.UUID, status *domain.DonorNotificationStatus, params domain.PaginationParams) ([]domain.DonorNotification, int64, error) {
	params.Validate()

	where := sq.Eq{"donor_id": donorID}
	if status != nil {
		where["status"] = *status
	}

	countQuery, countArgs, err := psql().Select("COUNT(*)").From("donor_notifications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build donor notification count: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count donor notifications: %w", err)
	}

	query, args, err := psql().Select("*").From("donor_notifications").Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build donor notification list: %w", err)
	}

	notifications := []domain.DonorNotification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list donor notifications: %w", err)
	}
	return notifications, total, nil
}

func (r *donorNotificationRepository) MarkAsRead(ctx context.Context, id, donorID uuid.UUID) error {
	query := `
		UPDATE donor_notifications SET status = 'READ', read_at = NOW()
		WHERE id = $1 AND donor_id = $2 AND status = 'UNREAD'`
	_, err := r.db.ExecContext(ctx, query, id, donorID)
	if err != nil {
		return fmt.Errorf("mark donor notification read: %w", err)
	}
	return nil
}

func (r *donorNotificationRepository) CloseOpenByRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	query := `UPDATE donor_notifications SET status = 'CLOSED' WHERE blood_request_id = $1 AND status <> 'CLOSED'`
	res, err := r.db.ExecContext(ctx, query, requestID)
	if err != nil {
		return 0, fmt.Errorf("close request notifications: %w", err)
	}
	return res.RowsAffected()
}

type RequesterNotificationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RequesterNotification, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.RequesterNotification, int64, error)
	MarkAsRead(ctx context.Context, id, requesterID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, requesterID uuid.UUID) error
	CountUnread(ctx context.Context, requesterID uuid.UUID) (int64, error)
}

type requesterNotificationRepository struct {
	db *sqlx.DB
}

func NewRequesterNotificationRepository(db *sqlx.DB) RequesterNotificationRepository {
	return &requesterNotificationRepository{db: db}
}

func (r *requesterNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RequesterNotification, error) {
	var n domain.RequesterNotification
	query := `SELECT * FROM requester_notifications WHERE id = $1`

	err := r.db.GetContext(ctx, &n, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("notification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get requester notification: %w", err)
	}
	return &n, nil
}

func (r *requesterNotificationRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.RequesterNotification, int64, error) {
	params.Validate()

	var total int64
	notifications := []domain.RequesterNotification{}

	if unreadOnly {
		countQuery := `SELECT COUNT(*) FROM requester_notifications WHERE requester_id = $1 AND is_read = false`
		if err := r.db.GetContext(ctx, &total, countQuery, requesterID); err != nil {
			return nil, 0, err
		}

		query := `
			SELECT * FROM requester_notifications
			WHERE requester_id = $1 AND is_read = false
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		err := r.db.SelectContext(ctx, &notifications, query, requesterID, params.PageSize, params.Offset())
		return notifications, total, err
	}

	countQuery := `SELECT COUNT(*) FROM requester_notifications WHERE requester_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, requesterID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM requester_notifications
		WHERE requester_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &notifications, query, requesterID, params.PageSize, params.Offset())
	return notifications, total, err
}

func (r *requesterNotificationRepository) MarkAsRead(ctx context.Context, id, requesterID uuid.UUID) error {
	query := `UPDATE requester_notifications SET is_read = true, read_at = NOW() WHERE id = $1 AND requester_id = $2 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, id, requesterID)
	return err
}

func (r *requesterNotificationRepository) MarkAllAsRead(ctx context.Context, requesterID uuid.UUID) error {
	query := `UPDATE requester_notifications SET is_read = true, read_at = NOW() WHERE requester_id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, requesterID)
	return err
}

func (r *requesterNotificationRepository) CountUnread(ctx context.Context, requesterID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM requester_notifications WHERE requester_id = $1 AND is_read = false`
	err := r.db.GetContext(ctx, &count, query, requesterID)
	return count, err
}
