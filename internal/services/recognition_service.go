// Package services – RecognitionService
//
// This file implements the recognition pipeline orchestrator. One call takes
// an uploaded audio clip through fingerprint matching, lyrics retrieval, and
// local sound classification, then optionally records the outcome in the
// caller's search history.
//
// The three adapters fail independently and each failure has a documented
// fallback: no fingerprint match (or a degraded fingerprint service) ends
// the pipeline with ErrSongNotRecognized; missing lyrics become the
// LyricsUnavailable sentinel; a classifier failure becomes an empty
// prediction list. Only the fingerprint branch can fail the request.
package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/melo-app/go-music-backend/internal/classifier"
	"github.com/melo-app/go-music-backend/internal/lyrics"
	"github.com/melo-app/go-music-backend/internal/recognizer"
	"github.com/melo-app/go-music-backend/internal/repo"
)

// LyricsUnavailable is the response text used whenever no lyrics could be
// produced, whether the service was down or the song genuinely has none.
const LyricsUnavailable = "Paroles non disponibles"

// Recognizer matches raw audio bytes against a reference database.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte) (*recognizer.SongMatch, error)
}

// LyricsFetcher retrieves lyrics text for an (artist, title) pair.
type LyricsFetcher interface {
	Fetch(ctx context.Context, artist, title string) (string, error)
}

// AudioClassifier scores a local audio file against a fixed label
// vocabulary. Implementations never return an error; degraded
// classification is an empty slice.
type AudioClassifier interface {
	Classify(ctx context.Context, path string) []classifier.Prediction
}

// RecognitionResult is the merged outcome of one pipeline run.
type RecognitionResult struct {
	Title       string
	Artist      string
	Lyrics      string
	YouTubeURL  string
	Predictions []classifier.Prediction
}

// RecognitionService composes the fingerprint client, the lyrics client, and
// the classifier into one request/response cycle. Construct once and share;
// all fields are read-only after construction.
type RecognitionService struct {
	// DB is the GORM handle used for history writes.
	DB *gorm.DB
	// Recognizer is the fingerprint matching client.
	Recognizer Recognizer
	// Lyrics is the lyrics retrieval client.
	Lyrics LyricsFetcher
	// Classifier is optional; nil disables classification (predictions are
	// then always empty, never null).
	Classifier AudioClassifier
	// UploadDir is the scratch directory for uploaded clips.
	UploadDir string
}

// Search runs the pipeline without touching history. The response is
// identical to Recognize for the same input.
func (s *RecognitionService) Search(ctx context.Context, filename string, audio []byte) (*RecognitionResult, error) {
	return s.run(ctx, filename, audio, 0, false)
}

// Recognize runs the pipeline and, on success, appends one history record
// owned by userID with the composite "artist - title" as its title.
func (s *RecognitionService) Recognize(ctx context.Context, filename string, audio []byte, userID uint) (*RecognitionResult, error) {
	return s.run(ctx, filename, audio, userID, true)
}

func (s *RecognitionService) run(ctx context.Context, filename string, audio []byte, userID uint, persist bool) (*RecognitionResult, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	// The clip is staged under a per-request unique key so concurrent
	// uploads with the same client filename cannot collide, and removed on
	// every exit path.
	path, cleanup, err := s.stage(filename, audio)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	match, err := s.Recognizer.Recognize(ctx, audio)
	if err != nil {
		switch {
		case errors.Is(err, recognizer.ErrNoMatch):
			// normal miss
		case errors.Is(err, recognizer.ErrDegraded):
			log.Warn().Err(err).Msg("fingerprint service degraded, treating as no match")
		default:
			return nil, err
		}
		return nil, ErrSongNotRecognized
	}

	text, err := s.Lyrics.Fetch(ctx, match.Artist, match.Title)
	if err != nil {
		if !errors.Is(err, lyrics.ErrUnavailable) {
			return nil, err
		}
		text = LyricsUnavailable
	}

	preds := []classifier.Prediction{}
	if s.Classifier != nil {
		preds = s.Classifier.Classify(ctx, path)
	}

	if persist {
		title := match.Artist + " - " + match.Title
		if _, err := repo.CreateHistory(ctx, s.DB, userID, title, text); err != nil {
			return nil, err
		}
	}

	return &RecognitionResult{
		Title:       match.Title,
		Artist:      match.Artist,
		Lyrics:      text,
		YouTubeURL:  match.Link,
		Predictions: preds,
	}, nil
}

// stage writes the upload to the scratch directory under a UUID-prefixed
// name and returns its path plus a cleanup func.
func (s *RecognitionService) stage(filename string, audio []byte) (string, func(), error) {
	if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
		return "", nil, err
	}
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "clip"
	}
	path := filepath.Join(s.UploadDir, uuid.NewString()+"_"+base)
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}
