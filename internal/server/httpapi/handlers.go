// Package httpapi exposes the session lifecycle over REST: register, login,
// refresh, logout and the authenticated /auth/me endpoint. The refresh token
// travels exclusively in an http-only cookie; the access token travels in
// response bodies and Bearer headers.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/seedvest/internal/common"
	"github.com/dmitrijs2005/seedvest/internal/logging"
	"github.com/dmitrijs2005/seedvest/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

const (
	refreshCookieName = "refreshToken"

	// Scoped to /auth rather than /auth/refresh alone so the cookie also
	// reaches /auth/logout, letting logout revoke the session server-side.
	refreshCookiePath = "/auth"

	refreshCookieMaxAge = 7 * 24 * 60 * 60
)

type AuthHandler struct {
	sessions     *sessions.Service
	logger       logging.Logger
	cookieSecure bool
}

func NewAuthHandler(svc *sessions.Service, logger logging.Logger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		sessions:     svc,
		logger:       logger.With("module", "httpapi"),
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	FullName string `json:"fullName" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.Register(c.Request.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{
		"accessToken": session.AccessToken,
		"user":        session.Account,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": session.AccessToken,
		"user":        session.Account,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token cookie"})
		return
	}

	session, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": session.AccessToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// cookie may legitimately be absent; logout succeeds regardless
	token, _ := c.Cookie(refreshCookieName)
	if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error(c.Request.Context(), "logout revocation failed", "error", err)
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, principal)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, token, refreshCookieMaxAge, refreshCookiePath, "", h.cookieSecure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.cookieSecure, true)
}

func (h *AuthHandler) sameSite() http.SameSite {
	// SameSite=None requires Secure; cross-site SPA deployments set both
	if h.cookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, common.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		h.logger.Error(c.Request.Context(), "internal error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
