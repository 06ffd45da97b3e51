package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/interfaces/http/response"
	"scholarship-fund.backend/internal/usecases"
	"scholarship-fund.backend/pkg/redis"
	"scholarship-fund.backend/pkg/utils"
)

// SessionWriter stores a token pair under a session id
type SessionWriter interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
}

// AuthHandler handles wallet sign-in endpoints
type AuthHandler struct {
	authUsecase *usecases.AuthUsecase
	sessions    SessionWriter
	sessionTTL  time.Duration
}

// NewAuthHandler creates a new auth handler. sessions may be nil, in which
// case clients authenticate with Bearer tokens only.
func NewAuthHandler(authUsecase *usecases.AuthUsecase, sessions SessionWriter, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
	}
}

// Challenge issues the message a wallet must sign
// GET /api/v1/auth/challenge?address=
func (h *AuthHandler) Challenge(c *gin.Context) {
	challenge, err := h.authUsecase.IssueChallenge(c.Request.Context(), c.Query("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, challenge)
}

// Verify checks the signed challenge and returns a token pair
// POST /api/v1/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var input entities.VerifyChallengeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	authResponse, err := h.authUsecase.VerifyChallenge(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachSession(c, authResponse)
	response.Success(c, http.StatusOK, authResponse)
}

// Refresh exchanges a refresh token from the body or cookie
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var refreshToken string
	if c.Request.ContentLength > 0 {
		var input entities.RefreshTokenInput
		if err := c.ShouldBindJSON(&input); err == nil {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			refreshToken = cookie
		}
	}
	if refreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	authResponse, err := h.authUsecase.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachSession(c, authResponse)
	response.Success(c, http.StatusOK, authResponse)
}

// GetMe returns the caller's address, role and student record
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	profile, err := h.authUsecase.Me(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

func (h *AuthHandler) attachSession(c *gin.Context, resp *entities.AuthResponse) {
	c.SetCookie("refresh_token", resp.RefreshToken, int(h.sessionTTL.Seconds()), "/", "", false, true)
	if h.sessions == nil {
		return
	}
	sessionID := utils.GenerateUUIDv7().String()
	err := h.sessions.CreateSession(c.Request.Context(), sessionID, &redis.SessionData{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Address:      resp.Address,
	}, h.sessionTTL)
	if err != nil {
		// tokens are still usable as Bearer
		log.Printf("[AuthHandler] failed to store session for %s: %v", resp.Address, err)
		return
	}
	resp.SessionID = sessionID
}
