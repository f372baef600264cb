package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blood-link/internal/domain"
)

type AcceptanceRepository interface {
	// Accept records a.DonorID as the donor of a.RequestID if, and only if,
	// nobody has been recorded yet. The losing side of a race gets
	// domain.ErrAlreadyAccepted and nothing is written.
	Accept(ctx context.Context, a domain.Acceptance) (*domain.BloodRequest, *domain.RequesterNotification, error)
}

type acceptanceRepository struct {
	db *sqlx.DB
}

func NewAcceptanceRepository(db *sqlx.DB) AcceptanceRepository {
	return &acceptanceRepository{db: db}
}

func (r *acceptanceRepository) Accept(ctx context.Context, a domain.Acceptance) (*domain.BloodRequest, *domain.RequesterNotification, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin acceptance transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Concurrent callers block on the row lock; once the winner commits the
	// predicate is re-checked and the rest match zero rows.
	claim := `
		UPDATE blood_requests
		SET accepted_donor_id = $2, status = 'FULFILLED', accepted_at = $3, updated_at = $3
		WHERE id = $1 AND accepted_donor_id IS NULL AND status = 'APPROVED'
		RETURNING *`

	var req domain.BloodRequest
	if err := tx.GetContext(ctx, &req, claim, a.RequestID, a.DonorID, a.AcceptedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrAlreadyAccepted
		}
		return nil, nil, fmt.Errorf("claim blood request: %w", err)
	}

	closeWinner := `
		UPDATE donor_notifications SET status = 'CLOSED', accepted_at = $2
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, closeWinner, a.NotificationID, a.AcceptedAt); err != nil {
		return nil, nil, fmt.Errorf("close accepted notification: %w", err)
	}

	closeSiblings := `
		UPDATE donor_notifications SET status = 'CLOSED'
		WHERE blood_request_id = $1 AND id <> $2 AND status <> 'CLOSED'`
	if _, err := tx.ExecContext(ctx, closeSiblings, a.RequestID, a.NotificationID); err != nil {
		return nil, nil, fmt.Errorf("close sibling notifications: %w", err)
	}

	markDonor := `
		UPDATE donor_profiles
		SET is_available = false, availability_overridden = false, last_donation_date = $2::date, updated_at = $3
		WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, markDonor, a.DonorID, a.AcceptedAt.Format("2006-01-02"), a.AcceptedAt); err != nil {
		return nil, nil, fmt.Errorf("mark donor unavailable: %w", err)
	}

	notif := &domain.RequesterNotification{
		ID:             uuid.New(),
		RequesterID:    a.RequesterID,
		BloodRequestID: a.RequestID,
		DonorID:        a.DonorID,
		Message:        a.Message,
	}
	insertNotif := `
		INSERT INTO requester_notifications (id, requester_id, blood_request_id, donor_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	if err := tx.QueryRowxContext(ctx, insertNotif,
		notif.ID, notif.RequesterID, notif.BloodRequestID, notif.DonorID, notif.Message, a.AcceptedAt,
	).Scan(&notif.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("create requester notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit acceptance: %w", err)
	}

	return &req, notif, nil
}
