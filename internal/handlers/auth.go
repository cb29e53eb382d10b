package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
	cookieName  string
	secure      bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, queue services.TaskQueue) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT, queue, cfg.Server.PublicURL),
		cookieName:  cfg.JWT.CookieName,
		secure:      strings.HasPrefix(cfg.Server.PublicURL, "https://"),
	}
}

// Register creates an account and signs the caller in
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token, resp.ExpireAt)
	response.Created(c, resp)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token, resp.ExpireAt)
	response.Success(c, resp)
}

// Logout clears the session cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.cookieName != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)
	}
	response.Success(c, gin.H{"message": "logged out successfully"})
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{"user": user})
}

// ChangePassword updates the caller's password
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password changed successfully"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expireAt time.Time) {
	if h.cookieName == "" {
		return
	}
	maxAge := int(time.Until(expireAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.secure, true)
}
