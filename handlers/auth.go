package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/sessions"
	"github.com/profilekit/profilekit/internal/tokens"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/metrics"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// LoginRequest is the password-login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	users  *users.Service
	tokens *tokens.Service
}

func NewAuthHandler(u *users.Service, ts *tokens.Service) *AuthHandler {
	return &AuthHandler{users: u, tokens: ts}
}

// Register routes under /api
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	api := rg.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/register", h.RegisterUser)
	api.GET("/logout", h.Logout)
	api.GET("/dashboard", h.Dashboard)
}

// Login verifies credentials and returns a 14-day bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Missing value e-mail or password"})
		return
	}
	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		switch {
		case errors.Is(err, users.ErrMissingField):
			c.JSON(http.StatusForbidden, gin.H{"message": "Missing value e-mail or password"})
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusForbidden, gin.H{"message": "No user with email exist"})
		case errors.Is(err, users.ErrInvalidCredentials):
			c.JSON(http.StatusForbidden, gin.H{"message": "Password is incorrect"})
		default:
			logger.Errorf("login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
		}
		return
	}
	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RegisterUser creates a new user. The response never carries the
// password hash.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Missing value e-mail or password"})
		return
	}
	created, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		switch {
		case errors.Is(err, users.ErrMissingField):
			c.JSON(http.StatusForbidden, gin.H{"message": "Missing value e-mail or password"})
		case errors.Is(err, users.ErrConflict):
			// the conflict detail is surfaced for diagnostics
			c.JSON(http.StatusForbidden, gin.H{"message": "User already exists", "details": err.Error()})
		default:
			logger.Errorf("register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
		}
		return
	}
	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	c.JSON(http.StatusCreated, created)
}

// Logout is stateless for the client; when Redis is configured the
// presented token is blacklisted for its remaining lifetime so the
// auth middleware rejects it from now on.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := middleware.ExtractToken(c.GetHeader("Authorization"))
	if raw != "" {
		if claims, err := h.tokens.Verify(raw); err == nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > 0 {
				if err := sessions.BlacklistToken(c.Request.Context(), raw, ttl); err != nil {
					logger.Warnf("failed to blacklist token on logout: %v", err)
				}
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Dashboard is a protected sample endpoint that takes its token from
// the query string (the OAuth callback redirects here).
func (h *AuthHandler) Dashboard(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized!"})
		return
	}
	if _, err := h.tokens.Verify(raw); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized!"})
		return
	}
	c.String(http.StatusOK, "Welcome to the dashboard!")
}
