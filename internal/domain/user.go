package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity provider's view of an account. Rows are
// refreshed from token claims on each authenticated call.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"full_name" db:"full_name"`
	Role       string    `json:"role" db:"role"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Identity is the authenticated caller as supplied by the identity provider.
type Identity struct {
	UserID     uuid.UUID
	Email      string
	FullName   string
	Role       UserRole
	IsVerified bool
}

func (i *Identity) HasRole(required UserRole) bool {
	switch required {
	case RoleAdmin:
		return i.Role == RoleAdmin
	case RoleModerator:
		return i.Role == RoleModerator || i.Role == RoleAdmin
	case RoleUser:
		return i.Role.IsValid()
	default:
		return false
	}
}

// CanModerate reports whether the caller may decide on and list every request.
func (i *Identity) CanModerate() bool {
	return i.HasRole(RoleModerator)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// RequireIdentity is IdentityFromContext for service entry points.
func RequireIdentity(ctx context.Context) (*Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, NewUnauthorizedError("authentication required")
	}
	return id, nil
}
