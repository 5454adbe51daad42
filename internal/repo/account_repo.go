// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Account
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an account is not found, functions return gorm.ErrRecordNotFound
//     (also exported in this package as ErrNotFound).
//   - The email uniqueness invariant lives in the database as a unique
//     index; a violated constraint surfaces as gorm.ErrDuplicatedKey (or a
//     driver-specific duplicate error) from CreateAccount. Callers map that
//     to their own Conflict signal.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/melo-app/go-music-backend/internal/domain"
)

// CreateAccount inserts a new Account row with the given display name,
// email, and password hash. CreatedAt is set to UTC. A duplicate email
// surfaces as the driver's unique-constraint error.
func CreateAccount(ctx context.Context, db *gorm.DB, name, email, passwordHash string) (*domain.Account, error) {
	a := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAccountByEmail fetches a single account by email. If no account has
// that email, it returns ErrNotFound.
func GetAccountByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount fetches a single account by primary key, or ErrNotFound.
func GetAccount(ctx context.Context, db *gorm.DB, id uint) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}
