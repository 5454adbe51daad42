package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/melo-app/go-music-backend/internal/domain"
)

func newHistoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("history_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Account{}, &domain.History{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()
	a, err := CreateAccount(context.Background(), db, "Test", email, "h")
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a.ID
}

func TestCreateHistory_Success(t *testing.T) {
	db := newHistoryDB(t)
	ctx := context.Background()
	uid := seedAccount(t, db, "u@example.com")

	start := time.Now().UTC().Add(-time.Minute)
	h, err := CreateHistory(ctx, db, uid, "Queen - Bohemian Rhapsody", "Is this the real life?")
	if err != nil {
		t.Fatalf("CreateHistory: %v", err)
	}
	if h.ID == 0 || h.UserID != uid || h.Title != "Queen - Bohemian Rhapsody" {
		t.Fatalf("unexpected History fields: %+v", h)
	}
	if h.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset: %v", h.CreatedAt)
	}
}

func TestListHistory_OrderDescendingAndFilter(t *testing.T) {
	db := newHistoryDB(t)
	ctx := context.Background()
	u1 := seedAccount(t, db, "u1@example.com")
	u2 := seedAccount(t, db, "u2@example.com")

	// Seed with known CreatedAt so order is deterministic.
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) // oldest
	t2 := t1.Add(1 * time.Hour)
	t3 := t2.Add(1 * time.Hour) // newest for u1
	rows := []domain.History{
		{Title: "A", Lyrics: "la", UserID: u1, CreatedAt: t1},
		{Title: "B", Lyrics: "lb", UserID: u1, CreatedAt: t2},
		{Title: "C", Lyrics: "lc", UserID: u1, CreatedAt: t3},
		{Title: "Other", Lyrics: "lx", UserID: u2, CreatedAt: t2},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed %q: %v", rows[i].Title, err)
		}
	}

	list, err := ListHistory(ctx, db, u1)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 rows for u1, got %d", len(list))
	}
	if list[0].Title != "C" || list[1].Title != "B" || list[2].Title != "A" {
		t.Fatalf("wrong order: %q, %q, %q", list[0].Title, list[1].Title, list[2].Title)
	}

	empty, err := ListHistory(ctx, db, u2+1000)
	if err != nil {
		t.Fatalf("ListHistory unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no rows for unknown user, got %d", len(empty))
	}
}

func TestDeleteHistory(t *testing.T) {
	db := newHistoryDB(t)
	ctx := context.Background()
	uid := seedAccount(t, db, "u@example.com")

	h, err := CreateHistory(ctx, db, uid, "T", "L")
	if err != nil {
		t.Fatalf("CreateHistory: %v", err)
	}

	if err := DeleteHistory(ctx, db, h.ID); err != nil {
		t.Fatalf("DeleteHistory: %v", err)
	}

	// Second delete of the same id must report not-found and change nothing.
	if err := DeleteHistory(ctx, db, h.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat delete: got %v, want ErrNotFound", err)
	}

	n, err := CountHistory(ctx, db, uid)
	if err != nil {
		t.Fatalf("CountHistory: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty history after delete, got %d rows", n)
	}
}

func TestHistoryStats(t *testing.T) {
	db := newHistoryDB(t)
	ctx := context.Background()
	uid := seedAccount(t, db, "u@example.com")

	// No rows: zero count, nil max.
	n, maxTS, err := HistoryStats(ctx, db, uid)
	if err != nil {
		t.Fatalf("HistoryStats empty: %v", err)
	}
	if n != 0 || maxTS != nil {
		t.Fatalf("empty stats = (%d, %v); want (0, nil)", n, maxTS)
	}

	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)
	for _, ts := range []time.Time{t1, t2} {
		h := domain.History{Title: "T", Lyrics: "L", UserID: uid, CreatedAt: ts}
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, maxTS, err = HistoryStats(ctx, db, uid)
	if err != nil {
		t.Fatalf("HistoryStats: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d; want 2", n)
	}
	if maxTS == nil || !maxTS.Equal(t2) {
		t.Fatalf("max created_at = %v; want %v", maxTS, t2)
	}
}
