package handler

import (
	"errors"
	"net/http"
	"time"

	"putping/internal/middleware"
	"putping/internal/models"
	"putping/internal/repository"
	"putping/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	profileRepo *repository.ProfileRepository
	sessions    *session.Manager
}

func NewProfileHandler(profileRepo *repository.ProfileRepository, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, sessions: sessions}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	profile, err := h.profileRepo.GetByIdentity(identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"identity": identity, "name": "", "gender": ""})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile replaces the profile fields wholesale (last writer wins at
// this field group). Name is required; the inline error is recoverable.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var req struct {
		Name    string `json:"name"`
		Gender  string `json:"gender"`
		Consent bool   `json:"consent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required", "field": "name"})
		return
	}
	profile, err := h.profileRepo.GetByIdentity(identity)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		profile = &models.Profile{Identity: identity}
	}
	profile.Name = req.Name
	profile.Gender = req.Gender
	if req.Consent && profile.ConsentAt == nil {
		now := time.Now()
		profile.ConsentAt = &now
	}
	profile.LastActiveAt = time.Now()
	if err := h.profileRepo.Upsert(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	// The next heartbeat carries the new fields to all peers.
	if s, ok := h.sessions.Get(identity); ok {
		s.UpdateProfile(profile.Name, profile.Gender, profile.PhotoURL)
	}
	c.JSON(http.StatusOK, profile)
}
