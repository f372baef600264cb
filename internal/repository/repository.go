package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type Repositories struct {
	User                  UserRepository
	BloodRequest          BloodRequestRepository
	Donor                 DonorRepository
	DonorNotification     DonorNotificationRepository
	RequesterNotification RequesterNotificationRepository
	Acceptance            AcceptanceRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:                  NewUserRepository(db),
		BloodRequest:          NewBloodRequestRepository(db),
		Donor:                 NewDonorRepository(db),
		DonorNotification:     NewDonorNotificationRepository(db),
		RequesterNotification: NewRequesterNotificationRepository(db),
		Acceptance:            NewAcceptanceRepository(db),
	}
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Migrate applies every embedded migration in file name order. Statements
// are idempotent so re-running is safe.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	applied := make([]string, 0, len(names))
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return applied, fmt.Errorf("apply %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}
