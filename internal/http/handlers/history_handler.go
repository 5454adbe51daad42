// History HTTP handlers.
//
// This file exposes the search-history endpoints:
//   - POST   /history           (append a record)
//   - GET    /history/{user_id} (list, newest first, weak ETag support)
//   - DELETE /history/{id}      (remove a record)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/melo-app/go-music-backend/internal/services"
	"github.com/melo-app/go-music-backend/internal/utils"
)

//
// DTOs
//

// AddHistoryRequest is the JSON payload for appending a history record.
// `paroles` keeps the wire name the shipped frontend sends.
type AddHistoryRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200" example:"Queen - Bohemian Rhapsody"`
	Paroles string `json:"paroles"`
	UserID  uint   `json:"user_id" binding:"required" example:"7"`
}

// AddHistoryResponse is the success payload for POST /history.
type AddHistoryResponse struct {
	Message string `json:"message" example:"Ajout réussi"`
	ID      uint   `json:"id" example:"12"`
}

// DeleteHistoryResponse is the success payload for DELETE /history/{id}.
type DeleteHistoryResponse struct {
	Message string `json:"message" example:"Historique supprimé avec succès"`
}

//
// Handlers
//

// AddHistory godoc
// @ID          addHistory
// @Summary     Append a history record
// @Description Stores a recognized title and its lyrics for a user. The recognition pipeline writes history itself; this route serves clients that recognize elsewhere.
// @Tags        History
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.AddHistoryRequest  true  "History payload"
//
// @Success     201  {object}  handlers.AddHistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /history [post]
func (h *Handlers) AddHistory(c *gin.Context) {
	var req AddHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title and user_id are required")
		return
	}

	rec, err := h.histSvc.Add(c.Request.Context(), req.UserID, strings.TrimSpace(req.Title), req.Paroles)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, AddHistoryResponse{Message: "Ajout réussi", ID: rec.ID})
}

// ListHistory godoc
// @ID          listHistory
// @Summary     List a user's history
// @Description Returns all history records for a user, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        History
// @Produce     json
//
// @Param       user_id        path    int     true  "Owning account id"           example(7)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"history:7:3:1700000000\")
//
// @Success     200  {array}   services.HistoryEntry
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /history/{user_id} [get]
func (h *Handlers) ListHistory(c *gin.Context) {
	uid, okID := utils.ParseID(c.Param("user_id"))
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be a positive integer")
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if svc, isConcrete := h.histSvc.(*services.HistoryService); isConcrete {
		count, maxTS, err := svc.Stats(ctx, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"history:%d:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	entries, err := h.histSvc.List(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, entries)
}

// DeleteHistory godoc
// @ID          deleteHistory
// @Summary     Delete a history record
// @Description Removes one history record by id.
// @Tags        History
// @Produce     json
//
// @Param       id  path  int  true  "History record id"  example(12)
//
// @Success     200  {object}  handlers.DeleteHistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Record not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /history/{id} [delete]
func (h *Handlers) DeleteHistory(c *gin.Context) {
	id, okID := utils.ParseID(c.Param("id"))
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return
	}

	err := h.histSvc.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
		ok(c, http.StatusOK, DeleteHistoryResponse{Message: "Historique supprimé avec succès"})
	case errors.Is(err, services.ErrHistoryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Historique non trouvé")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
