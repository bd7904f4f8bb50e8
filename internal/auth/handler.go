package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/forumkit/auth-service/internal/account"
	"github.com/forumkit/auth-service/internal/audit"
	"github.com/forumkit/auth-service/internal/token"
)

// CookieConfig describes how the refresh secret travels. The cookie is always
// HttpOnly; Secure is off only for local development.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

type Handler struct {
	sessions   *SessionService
	accounts   account.Store
	cookie     CookieConfig
	refreshTTL time.Duration
}

func NewHandler(sessions *SessionService, accounts account.Store, cookie CookieConfig, refreshTTL time.Duration) *Handler {
	return &Handler{sessions: sessions, accounts: accounts, cookie: cookie, refreshTTL: refreshTTL}
}

// Register mounts the auth routes. The authenticating middleware is expected
// to already be installed on the router group.
func (h *Handler) Register(r gin.IRouter) {
	grp := r.Group("/api/auth")
	grp.POST("/signup", h.Signup)
	grp.POST("/login", h.Login)
	grp.POST("/refresh", h.Refresh)
	grp.POST("/logout", h.Logout)
	grp.POST("/password", RequireAuth(), h.ChangePassword)
	grp.GET("/me", RequireAuth(), h.Me)
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Nickname string `json:"nickname" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signup request"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}
	if _, err := h.accounts.Create(c.Request.Context(), req.Email, string(hash), req.Nickname); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account created"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login request"})
		return
	}

	ctx := c.Request.Context()
	acc, err := h.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if acc == nil || !acc.Active ||
		bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials.Error()})
		return
	}

	pair, err := h.sessions.Issue(ctx, acc.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.setRefreshCookie(c, pair.RefreshSecret)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"accessToken": pair.AccessToken})
}

func (h *Handler) Refresh(c *gin.Context) {
	rawRefresh, err := c.Cookie(h.cookie.Name)
	if err != nil || rawRefresh == "" {
		h.clearRefreshCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token missing"})
		return
	}

	meta := audit.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	pair, err := h.sessions.Refresh(c.Request.Context(), rawRefresh, meta)
	switch {
	case errors.Is(err, token.ErrReuseDetected):
		h.clearRefreshCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "security threat detected, please log in again"})
		return
	case err != nil:
		h.clearRefreshCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	h.setRefreshCookie(c, pair.RefreshSecret)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"accessToken": pair.AccessToken})
}

func (h *Handler) Logout(c *gin.Context) {
	rawRefresh, _ := c.Cookie(h.cookie.Name)

	var accountID int64
	if identity, ok := CurrentIdentity(c); ok {
		accountID = identity.AccountID
	}
	if err := h.sessions.End(c.Request.Context(), rawRefresh, accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}

	h.clearRefreshCookie(c)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	identity, _ := CurrentIdentity(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password change request"})
		return
	}

	ctx := c.Request.Context()
	acc, err := h.accounts.FindByID(ctx, identity.AccountID)
	if err != nil || acc == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.CurrentPassword)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}
	if err := h.accounts.UpdatePasswordHash(ctx, acc.ID, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}
	// Every outstanding token dies with the old password.
	if err := h.sessions.InvalidateAll(ctx, acc.ID, "password_change"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "password changed, please log in again"})
}

func (h *Handler) Me(c *gin.Context) {
	identity, _ := CurrentIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       identity.AccountID,
		"role":     identity.Role,
		"nickname": identity.Nickname,
	})
}

func (h *Handler) setRefreshCookie(c *gin.Context, value string) {
	c.SetCookie(h.cookie.Name, value, int(h.refreshTTL/time.Second), h.cookie.Path, "", h.cookie.Secure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(h.cookie.Name, "", -1, h.cookie.Path, "", h.cookie.Secure, true)
}
