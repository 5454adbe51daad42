// Account HTTP handlers.
//
// This file exposes the authentication endpoints:
//   - POST /register  (create an account)
//   - POST /login     (verify credentials, mint a session token)
//
// Success and error messages on these routes are French because the shipped
// frontend displays them verbatim.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/melo-app/go-music-backend/internal/services"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=50" example:"Nina"`
	Email    string `json:"email" binding:"required,email" example:"nina@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"s3cretpass"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"nina@example.com"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// UserSummary is the public projection of an account returned by auth routes.
type UserSummary struct {
	ID    uint   `json:"id" example:"7"`
	Email string `json:"email" example:"nina@example.com"`
	Name  string `json:"name" example:"Nina"`
}

// RegisterResponse is the success payload for /register.
type RegisterResponse struct {
	Message string      `json:"message" example:"Inscription réussie"`
	User    UserSummary `json:"user"`
}

// LoginResponse is the success payload for /login.
type LoginResponse struct {
	Message string      `json:"message" example:"Connexion réussie"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new account. Emails are unique; a duplicate yields 400 with code `conflict`.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.RegisterResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or email taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email and password are required")
		return
	}

	acc, err := h.acctSvc.Register(c.Request.Context(), strings.TrimSpace(req.Name), req.Email, req.Password)
	switch {
	case err == nil:
		ok(c, http.StatusCreated, RegisterResponse{
			Message: "Inscription réussie",
			User:    UserSummary{ID: acc.ID, Email: acc.Email, Name: acc.Name},
		})
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "Email déjà utilisé")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a signed session token plus an account summary.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	token, acc, err := h.acctSvc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		ok(c, http.StatusOK, LoginResponse{
			Message: "Connexion réussie",
			Token:   token,
			User:    UserSummary{ID: acc.ID, Email: acc.Email, Name: acc.Name},
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Email ou mot de passe invalide")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
