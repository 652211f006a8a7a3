// Staff authentication handlers: signup, login, and the "who am I" lookup.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/http/middleware"
	"github.com/likerotech-cyber/Check-Lariviere/internal/services"
)

// AuthService defines the credential operations consumed by HTTP handlers.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// SignupBody is the JSON payload for creating a staff account.
type SignupBody struct {
	Email    string `json:"email" binding:"required" example:"marie@lescycleslariviere.com"`
	Password string `json:"password" binding:"required" example:"correct-horse-battery"`
	Name     string `json:"name" example:"Marie"`
}

// LoginBody is the JSON payload for logging in.
type LoginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a signed session token and the account it belongs to.
type TokenResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Signup godoc
// @ID          signup
// @Summary     Create a staff account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SignupBody  true  "Account payload"
// @Success     201  {object} handlers.TokenResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     409  {object} handlers.ErrorResponse "Email already registered"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var body SignupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, token, err := h.authSvc.Signup(c.Request.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		case errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, TokenResponse{Token: token, User: *u})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginBody  true  "Credentials"
// @Success     200  {object} handlers.TokenResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid credentials"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var body LoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	u, token, err := h.authSvc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, TokenResponse{Token: token, User: *u})
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} domain.User
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Account not found"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.authSvc.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}
