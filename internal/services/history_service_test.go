package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/melo-app/go-music-backend/internal/domain"
)

func seedServiceAccount(t *testing.T, svc *HistoryService, email string) uint {
	t.Helper()
	a := domain.Account{Name: "Test", Email: email, PasswordHash: "h", CreatedAt: time.Now().UTC()}
	if err := svc.DB.Create(&a).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a.ID
}

func TestHistoryAdd_DefaultsBlankLyrics(t *testing.T) {
	svc := &HistoryService{DB: newServiceDB(t)}
	uid := seedServiceAccount(t, svc, "u@example.com")

	h, err := svc.Add(context.Background(), uid, "  Queen - Bohemian Rhapsody  ", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if h.Title != "Queen - Bohemian Rhapsody" {
		t.Fatalf("title not trimmed: %q", h.Title)
	}
	if h.Lyrics != LyricsUnavailable {
		t.Fatalf("blank lyrics should default to %q, got %q", LyricsUnavailable, h.Lyrics)
	}
}

func TestHistoryList_NewestFirstAndWireShape(t *testing.T) {
	svc := &HistoryService{DB: newServiceDB(t)}
	ctx := context.Background()
	uid := seedServiceAccount(t, svc, "u@example.com")

	t1 := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	for i, row := range []domain.History{
		{Title: "Old", Lyrics: "a", UserID: uid, CreatedAt: t1},
		{Title: "New", Lyrics: "b", UserID: uid, CreatedAt: t2},
	} {
		if err := svc.DB.Create(&row).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	entries, err := svc.List(ctx, uid)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "New" || entries[1].Title != "Old" {
		t.Fatalf("wrong order: %q then %q", entries[0].Title, entries[1].Title)
	}
	if entries[0].Paroles != "b" {
		t.Fatalf("lyrics mapped wrong: %q", entries[0].Paroles)
	}
	if entries[0].Date != t2.Format(time.RFC3339) {
		t.Fatalf("date = %q; want %q", entries[0].Date, t2.Format(time.RFC3339))
	}
}

func TestHistoryList_EmptyIsSliceNotNil(t *testing.T) {
	svc := &HistoryService{DB: newServiceDB(t)}
	uid := seedServiceAccount(t, svc, "u@example.com")

	entries, err := svc.List(context.Background(), uid)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries == nil {
		t.Fatalf("empty history must serialize as [], not null")
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestHistoryDelete(t *testing.T) {
	svc := &HistoryService{DB: newServiceDB(t)}
	ctx := context.Background()
	uid := seedServiceAccount(t, svc, "u@example.com")

	h, err := svc.Add(ctx, uid, "T", "L")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := svc.Delete(ctx, h.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, h.ID); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("repeat delete: got %v, want ErrHistoryNotFound", err)
	}
}

func TestHistoryStats_TracksCountAndNewest(t *testing.T) {
	svc := &HistoryService{DB: newServiceDB(t)}
	ctx := context.Background()
	uid := seedServiceAccount(t, svc, "u@example.com")

	n, maxTS, err := svc.Stats(ctx, uid)
	if err != nil || n != 0 || maxTS != nil {
		t.Fatalf("empty stats = (%d, %v, %v); want (0, nil, nil)", n, maxTS, err)
	}

	if _, err := svc.Add(ctx, uid, "T", "L"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	n, maxTS, err = svc.Stats(ctx, uid)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if n != 1 || maxTS == nil {
		t.Fatalf("stats after add = (%d, %v)", n, maxTS)
	}
}
