// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the History
// model.
//
// Functions:
//
//   - CreateHistory(ctx, db, userID, title, lyrics) -> *domain.History, error
//     Inserts a new History row with a UTC timestamp.
//
//   - ListHistory(ctx, db, userID) -> []domain.History, error
//     Returns all history rows for a user, newest first.
//
//   - DeleteHistory(ctx, db, id) -> error
//     Removes exactly one row; ErrNotFound if the id does not exist.
//
//   - CountHistory(ctx, db, userID) -> (int64, error)
//     Returns the number of history rows owned by the user.
//
//   - HistoryStats(ctx, db, userID) -> (count, max created_at, error)
//     Cheap aggregate used for ETag generation on list responses.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/melo-app/go-music-backend/internal/domain"
)

// CreateHistory inserts a new History row owned by userID. The row records
// the composite song title and the lyrics text (or its fallback sentinel);
// CreatedAt is set to UTC at write time.
func CreateHistory(ctx context.Context, db *gorm.DB, userID uint, title, lyrics string) (*domain.History, error) {
	h := &domain.History{
		Title:     title,
		Lyrics:    lyrics,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// ListHistory returns all history rows belonging to userID, ordered by
// creation time descending (most recent first). It returns an empty slice
// if the user has no history. On DB error, it returns the error.
func ListHistory(ctx context.Context, db *gorm.DB, userID uint) ([]domain.History, error) {
	var out []domain.History
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// DeleteHistory removes the history row with the given id. Deletion is
// permanent. If no row is affected, it returns ErrNotFound.
func DeleteHistory(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.History{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountHistory returns the total number of history rows owned by userID.
func CountHistory(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.History{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// HistoryStats returns the row count and the newest creation timestamp for a
// user's history in a single aggregate query. maxCreatedAt is nil when the
// user has no rows.
func HistoryStats(ctx context.Context, db *gorm.DB, userID uint) (int64, *time.Time, error) {
	var row struct {
		N   int64
		Max *time.Time
	}
	err := db.WithContext(ctx).
		Model(&domain.History{}).
		Select("COUNT(*) AS n, MAX(created_at) AS max").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return row.N, row.Max, nil
}
