package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blood-link/internal/config"
	"blood-link/internal/domain"
	"blood-link/internal/repository"
)

var ErrInvalidToken = domain.NewUnauthorizedError("invalid or expired token")

// Claims are issued by the campus identity provider. sub carries the user id.
type Claims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

type Service interface {
	ValidateAccessToken(tokenString string) (*Claims, error)
	// Authenticate validates the token and mirrors the caller into users so
	// matching can join on verification status.
	Authenticate(ctx context.Context, tokenString string) (*domain.Identity, error)
	IssueAccessToken(identity domain.Identity, ttl time.Duration) (string, error)
}

type service struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewService(userRepo repository.UserRepository, cfg *config.Config) Service {
	return &service{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.JWTIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) Authenticate(ctx context.Context, tokenString string) (*domain.Identity, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	identity, err := identityFromClaims(claims)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:         identity.UserID,
		Email:      identity.Email,
		FullName:   identity.FullName,
		Role:       string(identity.Role),
		IsVerified: identity.IsVerified,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("sync user %s: %w", identity.UserID, err)
	}
	return identity, nil
}

func (s *service) IssueAccessToken(identity domain.Identity, ttl time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	now := time.Now()
	claims := &Claims{
		Email:         identity.Email,
		Name:          identity.FullName,
		Role:          string(identity.Role),
		EmailVerified: identity.IsVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func identityFromClaims(claims *Claims) (*domain.Identity, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, ErrInvalidToken
	}

	role := domain.UserRole(strings.ToLower(claims.Role))
	if !role.IsValid() {
		role = domain.RoleUser
	}

	return &domain.Identity{
		UserID:     userID,
		Email:      claims.Email,
		FullName:   claims.Name,
		Role:       role,
		IsVerified: claims.EmailVerified,
	}, nil
}
