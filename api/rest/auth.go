package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kasuganosora/tilepathd/cache"
	"github.com/kasuganosora/tilepathd/config"
	mw "github.com/kasuganosora/tilepathd/middleware"
)

// AuthHandler issues and revokes API tokens. Clients are configured
// statically with bcrypt key hashes; there is no self-registration.
type AuthHandler struct {
	cache cache.Cache
	sec   config.SecurityConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(c cache.Cache, sec config.SecurityConfig) *AuthHandler {
	return &AuthHandler{cache: c, sec: sec}
}

type tokenRequest struct {
	ClientID string `json:"client_id" binding:"required,min=2,max=64"`
	APIKey   string `json:"api_key" binding:"required,min=8,max=128"`
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client *config.APIClient
	for i := range h.sec.Clients {
		if h.sec.Clients[i].ID == req.ClientID {
			client = &h.sec.Clients[i]
			break
		}
	}
	if client == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.KeyHash), []byte(req.APIKey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := mw.GenerateToken(client.ID, h.sec.JWTSecret, h.sec.JWTTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	// Store session as a KV entry so Exists() works uniformly.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Set(ctx, "session:"+token, client.ID, h.sec.JWTTTL)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(h.sec.JWTTTL.Seconds()),
	})
}

// Revoke handles POST /api/auth/revoke. The presented token stops working
// immediately even though its signature stays valid until expiry.
func (h *AuthHandler) Revoke(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Del(ctx, "session:"+tokenStr)
	c.JSON(http.StatusOK, gin.H{"message": "revoked"})
}
