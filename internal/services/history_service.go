// Package services – HistoryService
//
// This file implements the search-history use-cases: append a record, list a
// user's records newest first, and delete one record permanently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/melo-app/go-music-backend/internal/domain"
	"github.com/melo-app/go-music-backend/internal/repo"
)

// HistoryEntry is the list-view shape of one history record. Date is
// RFC3339 UTC; Paroles keeps the wire name the shipped client binds to.
type HistoryEntry struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Paroles string `json:"paroles"`
	Date    string `json:"date"`
}

// HistoryService provides history-record operations on top of the repo.
type HistoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Add appends one history record owned by userID. The title and lyrics are
// stored verbatim (the orchestrator has already composed and defaulted
// them); blank titles are rejected by the handler before reaching here.
func (s *HistoryService) Add(ctx context.Context, userID uint, title, lyrics string) (*domain.History, error) {
	title = strings.TrimSpace(title)
	if lyrics == "" {
		lyrics = LyricsUnavailable
	}
	return repo.CreateHistory(ctx, s.DB, userID, title, lyrics)
}

// List returns all of a user's records ordered by creation time descending.
// A user with no history gets an empty slice, not null.
func (s *HistoryService) List(ctx context.Context, userID uint) ([]HistoryEntry, error) {
	rows, err := repo.ListHistory(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, h := range rows {
		out = append(out, HistoryEntry{
			ID:      h.ID,
			Title:   h.Title,
			Paroles: h.Lyrics,
			Date:    h.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// Delete removes exactly one record by id. Deleting an id that does not
// exist returns ErrHistoryNotFound and leaves the store unchanged.
func (s *HistoryService) Delete(ctx context.Context, id uint) error {
	if err := repo.DeleteHistory(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHistoryNotFound
		}
		return err
	}
	return nil
}

// Stats exposes the repo aggregate used for ETag generation on list
// responses.
func (s *HistoryService) Stats(ctx context.Context, userID uint) (int64, *time.Time, error) {
	return repo.HistoryStats(ctx, s.DB, userID)
}
