package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/profilekit/profilekit/internal/oauth"
	"github.com/profilekit/profilekit/internal/tokens"
	"github.com/profilekit/profilekit/pkg/logger"
)

const stateCookie = "oauth_state"

// Exchanger is the OAuth collaborator interface the handler depends on.
type Exchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// OAuthHandler implements the Google login flow: consent redirect and
// callback. Successful callbacks get a short-lived token and land on
// the dashboard.
type OAuthHandler struct {
	google Exchanger
	tokens *tokens.Service
}

func NewOAuthHandler(g Exchanger, ts *tokens.Service) *OAuthHandler {
	return &OAuthHandler{google: g, tokens: ts}
}

func (h *OAuthHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/api/auth")
	g.GET("/google", h.Redirect)
	g.GET("/google/callback", h.Callback)
}

// Redirect sends the client to the Google consent page with a random
// state bound to a short-lived cookie.
func (h *OAuthHandler) Redirect(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Google OAuth not configured"})
		return
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
		return
	}
	state := hex.EncodeToString(buf)
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// Callback validates the state, exchanges the code and issues a
// one-hour token from the verified Google profile.
func (h *OAuthHandler) Callback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Google OAuth not configured"})
		return
	}
	state := c.Query("state")
	saved, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != saved {
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid OAuth state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusForbidden, gin.H{"message": "Missing authorization code"})
		return
	}
	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Errorf("google code exchange failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
		return
	}
	claims := &tokens.Claims{
		Email:            profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: profile.Subject},
	}
	token, err := h.tokens.IssueClaims(claims, tokens.OAuthTTL)
	if err != nil {
		logger.Errorf("failed to issue oauth token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong!"})
		return
	}
	c.Redirect(http.StatusFound, "/api/dashboard?token="+token)
}
