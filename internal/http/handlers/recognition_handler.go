// Recognition HTTP handlers.
//
// This file exposes the audio recognition endpoints:
//   - POST /recognize  (identify a clip and record it in the caller's history)
//   - POST /search     (identify a clip without touching history)
//
// Both accept a multipart form with an `audio` file part; /recognize
// additionally requires a `user_id` form field. Handlers are transport-thin:
// they validate input, call application services, and translate results into
// HTTP responses.
package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/melo-app/go-music-backend/internal/classifier"
	"github.com/melo-app/go-music-backend/internal/domain"
	"github.com/melo-app/go-music-backend/internal/services"
	"github.com/melo-app/go-music-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// RecognitionService defines the recognition pipeline operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RecognitionService interface {
	// Search identifies a clip without persisting anything.
	Search(ctx context.Context, filename string, audio []byte) (*services.RecognitionResult, error)
	// Recognize identifies a clip and appends a history record for userID.
	Recognize(ctx context.Context, filename string, audio []byte, userID uint) (*services.RecognitionResult, error)
}

// AccountService defines registration and login operations.
type AccountService interface {
	// Register creates an account with a hashed password.
	Register(ctx context.Context, name, email, password string) (*domain.Account, error)
	// Login verifies credentials and mints a session token.
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
}

// HistoryService defines search-history operations.
type HistoryService interface {
	// Add appends one history record owned by userID.
	Add(ctx context.Context, userID uint, title, lyrics string) (*domain.History, error)
	// List returns all history records for userID, newest first.
	List(ctx context.Context, userID uint) ([]services.HistoryEntry, error)
	// Delete removes one history record by id.
	Delete(ctx context.Context, id uint) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for recognition, accounts, and history.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	recSvc  RecognitionService
	acctSvc AccountService
	histSvc HistoryService
}

// New constructs a Handlers instance bound to the given services.
func New(recSvc RecognitionService, acctSvc AccountService, histSvc HistoryService) *Handlers {
	return &Handlers{recSvc: recSvc, acctSvc: acctSvc, histSvc: histSvc}
}

//
// DTOs
//

// RecognizeResponse is the success payload for /recognize and /search.
// Field names match what the shipped frontend binds to.
type RecognizeResponse struct {
	Title       string                  `json:"title" example:"Bohemian Rhapsody"`
	Artist      string                  `json:"artist" example:"Queen"`
	Lyrics      string                  `json:"lyrics"`
	YouTubeURL  string                  `json:"youtube_url" example:"https://www.youtube.com/watch?v=fJ9rUzIMcZQ"`
	Predictions []classifier.Prediction `json:"yamnet_prediction"`
}

//
// Helpers
//

// readAudioPart opens and fully reads a multipart file header. The request
// body is already capped by the body-limit middleware, so reading to EOF is
// bounded.
func readAudioPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// respondRecognition maps a pipeline outcome to an HTTP response shared by
// both recognition endpoints.
func respondRecognition(c *gin.Context, res *services.RecognitionResult, err error) {
	switch {
	case err == nil:
		ok(c, http.StatusOK, RecognizeResponse{
			Title:       res.Title,
			Artist:      res.Artist,
			Lyrics:      res.Lyrics,
			YouTubeURL:  res.YouTubeURL,
			Predictions: res.Predictions,
		})
	case errors.Is(err, services.ErrSongNotRecognized):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Chanson non reconnue.")
	case errors.Is(err, services.ErrEmptyAudio):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "empty audio payload")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeRecognizeFailed, err.Error())
	}
}

//
// Handlers
//

// Recognize godoc
// @ID          recognize
// @Summary     Identify a song and record it
// @Description Fingerprints the uploaded clip, fetches lyrics, classifies the audio, and appends the match to the user's history.
// @Tags        Recognition
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       audio    formData  file    true  "Audio clip (wav/mp3/ogg)"
// @Param       user_id  formData  int     true  "Owning account id"  example(7)
//
// @Success     200  {object}  handlers.RecognizeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing file or user"
// @Failure     404  {object}  handlers.ErrorResponse  "No match"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recognize [post]
func (h *Handlers) Recognize(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Fichier audio ou utilisateur manquant")
		return
	}
	uid, okID := utils.ParseID(c.PostForm("user_id"))
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Fichier audio ou utilisateur manquant")
		return
	}

	audio, err := readAudioPart(fh)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable audio upload")
		return
	}

	res, err := h.recSvc.Recognize(c.Request.Context(), fh.Filename, audio, uid)
	respondRecognition(c, res, err)
}

// SearchSong godoc
// @ID          searchSong
// @Summary     Identify a song without recording it
// @Description Runs the same pipeline as /recognize but never writes history. Useful for anonymous lookups.
// @Tags        Recognition
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       audio  formData  file  true  "Audio clip (wav/mp3/ogg)"
//
// @Success     200  {object}  handlers.RecognizeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing file"
// @Failure     404  {object}  handlers.ErrorResponse  "No match"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /search [post]
func (h *Handlers) SearchSong(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Fichier audio ou utilisateur manquant")
		return
	}

	audio, err := readAudioPart(fh)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable audio upload")
		return
	}

	res, err := h.recSvc.Search(c.Request.Context(), fh.Filename, audio)
	respondRecognition(c, res, err)
}
