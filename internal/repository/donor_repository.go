package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blood-link/internal/domain"
)

// ErrStaleDonorProfile is returned by Update when the row changed since it
// was read.
var ErrStaleDonorProfile = domain.NewConflictError("donor profile was changed concurrently, please retry")

type DonorRepository interface {
	Create(ctx context.Context, profile *domain.DonorProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error)
	Update(ctx context.Context, profile *domain.DonorProfile) error
	SetPhotoURL(ctx context.Context, userID uuid.UUID, url string) error
	// RefreshEligibility flips unavailable, non-overridden donors whose last
	// donation is on or before cutoff back to available. regions, when not
	// empty, limits the sweep to those districts (lower-cased).
	RefreshEligibility(ctx context.Context, cutoff time.Time, regions []string) (int64, error)
	FindCandidates(ctx context.Context, group domain.BloodGroup) ([]domain.DonorCandidate, error)
}

type donorRepository struct {
	db *sqlx.DB
}

func NewDonorRepository(db *sqlx.DB) DonorRepository {
	return &donorRepository{db: db}
}

func (r *donorRepository) Create(ctx context.Context, p *domain.DonorProfile) error {
	query := `
		INSERT INTO donor_profiles (id, user_id, blood_group, is_available, availability_overridden,
			last_donation_date, district, location, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.BloodGroup, p.IsAvailable, p.AvailabilityOverridden,
		p.LastDonationDate, p.District, p.Location, p.Phone,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.NewConflictError("donor profile already exists for this user")
	}
	if err != nil {
		return fmt.Errorf("create donor profile: %w", err)
	}
	return nil
}

func (r *donorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error) {
	var p domain.DonorProfile
	query := `SELECT * FROM donor_profiles WHERE user_id = $1`

	err := r.db.GetContext(ctx, &p, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("donor profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get donor profile: %w", err)
	}
	return &p, nil
}

func (r *donorRepository) Update(ctx context.Context, p *domain.DonorProfile) error {
	query := `
		UPDATE donor_profiles
		SET blood_group = $3, is_available = $4, availability_overridden = $5, last_donation_date = $6,
			district = $7, location = $8, phone = $9, updated_at = NOW()
		WHERE user_id = $1 AND updated_at = $2
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.UserID, p.UpdatedAt, p.BloodGroup, p.IsAvailable, p.AvailabilityOverridden, p.LastDonationDate,
		p.District, p.Location, p.Phone,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByUserID(ctx, p.UserID); getErr != nil {
			return getErr
		}
		return ErrStaleDonorProfile
	}
	if err != nil {
		return fmt.Errorf("update donor profile: %w", err)
	}
	return nil
}

func (r *donorRepository) SetPhotoURL(ctx context.Context, userID uuid.UUID, url string) error {
	query := `UPDATE donor_profiles SET photo_url = $2, updated_at = NOW() WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, url)
	if err != nil {
		return fmt.Errorf("set donor photo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("donor profile not found")
	}
	return nil
}

func (r *donorRepository) RefreshEligibility(ctx context.Context, cutoff time.Time, regions []string) (int64, error) {
	where := sq.And{
		sq.Eq{"is_available": false},
		sq.Eq{"availability_overridden": false},
		sq.NotEq{"last_donation_date": nil},
		sq.LtOrEq{"last_donation_date": cutoff},
	}
	if len(regions) > 0 {
		where = append(where, sq.Expr("LOWER(district) = ANY(?)", pq.Array(regions)))
	}

	query, args, err := psql().Update("donor_profiles").
		Set("is_available", true).
		Set("updated_at", sq.Expr("NOW()")).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build eligibility sweep: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("refresh donor eligibility: %w", err)
	}
	return res.RowsAffected()
}

func (r *donorRepository) FindCandidates(ctx context.Context, group domain.BloodGroup) ([]domain.DonorCandidate, error) {
	query, args, err := psql().
		Select("d.*", "u.email", "u.full_name").
		From("donor_profiles d").
		Join("users u ON u.id = d.user_id").
		Where(sq.Eq{"d.blood_group": group, "d.is_available": true, "u.is_verified": true}).
		OrderBy("d.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	candidates := []domain.DonorCandidate{}
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("find donor candidates: %w", err)
	}
	return candidates, nil
}
