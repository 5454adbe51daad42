// Package services – AccountService
//
// This file implements registration and login. Passwords are stored only as
// bcrypt hashes; email uniqueness is enforced by the database unique index,
// with the resulting constraint violation mapped to ErrEmailTaken (no
// check-then-insert race). On successful login the service issues a signed
// HS256 session token carrying the account id and a configurable expiry.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/melo-app/go-music-backend/internal/domain"
	"github.com/melo-app/go-music-backend/internal/repo"
)

// AccountService implements the use-cases around user accounts.
type AccountService struct {
	// DB is the database handle used for all account operations.
	DB *gorm.DB
	// JWTSecret signs session tokens (HS256).
	JWTSecret []byte
	// TokenTTL is the session token lifetime (typically 24h).
	TokenTTL time.Duration
}

// Register creates a new account with a bcrypt-hashed password.
//
// A duplicate email is detected from the storage-level unique constraint and
// returned as ErrEmailTaken; any other DB error is propagated raw.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a, err := repo.CreateAccount(ctx, s.DB, name, strings.ToLower(strings.TrimSpace(email)), string(hash))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return a, nil
}

// Login verifies the credentials and returns a signed session token plus the
// account summary. Unknown email and wrong password are both reported as
// ErrInvalidCredentials; no token is issued in either case.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	a, err := repo.GetAccountByEmail(ctx, s.DB, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(a.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

// ParseToken validates a session token and returns the account id it
// carries. Expired or tampered tokens fail with ErrInvalidCredentials.
func (s *AccountService) ParseToken(token string) (uint, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.JWTSecret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidCredentials
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrInvalidCredentials
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidCredentials
	}
	return uint(id), nil
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
