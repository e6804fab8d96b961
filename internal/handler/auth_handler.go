package handler

import (
	"errors"
	"net/http"
	"time"

	"putping/config"
	"putping/internal/auth"
	"putping/internal/models"
	"putping/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler issues anonymous identities. There are no accounts: an
// identity plus a one-time reclaim secret is all a client ever holds.
type AuthHandler struct {
	cfg         *config.Config
	profileRepo *repository.ProfileRepository
}

func NewAuthHandler(cfg *config.Config, profileRepo *repository.ProfileRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, profileRepo: profileRepo}
}

// Anonymous mints a fresh identity, stores an empty profile with the
// reclaim hash, and returns the access token plus the reclaim secret.
func (h *AuthHandler) Anonymous(c *gin.Context) {
	identity := auth.NewIdentity()
	secret, hash, err := auth.NewReclaimSecret()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue identity"})
		return
	}
	profile := &models.Profile{
		Identity:     identity,
		ReclaimHash:  hash,
		LastActiveAt: time.Now(),
	}
	if err := h.profileRepo.Create(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue identity"})
		return
	}
	token, err := auth.GenerateAccessToken(&h.cfg.JWT, identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"identity":       identity,
		"access_token":   token,
		"reclaim_secret": secret,
	})
}

// Reclaim re-issues a token for an existing identity given its secret.
func (h *AuthHandler) Reclaim(c *gin.Context) {
	var req struct {
		Identity string `json:"identity" binding:"required"`
		Secret   string `json:"secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := h.profileRepo.GetByIdentity(req.Identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown identity"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !auth.CheckReclaimSecret(profile.ReclaimHash, req.Secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}
	token, err := auth.GenerateAccessToken(&h.cfg.JWT, req.Identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"identity": req.Identity, "access_token": token})
}
