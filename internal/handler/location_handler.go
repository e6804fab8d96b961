package handler

import (
	"errors"
	"net/http"
	"time"

	"putping/internal/middleware"
	"putping/internal/presence"
	"putping/internal/repository"
	"putping/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LocationHandler accepts geolocation fixes from the client. Each fix is
// the heartbeat write: it fully replaces the identity's presence record in
// the shared store.
type LocationHandler struct {
	profileRepo *repository.ProfileRepository
	presenceSvc *presence.Service
	sessions    *session.Manager
}

func NewLocationHandler(profileRepo *repository.ProfileRepository, presenceSvc *presence.Service, sessions *session.Manager) *LocationHandler {
	return &LocationHandler{
		profileRepo: profileRepo,
		presenceSvc: presenceSvc,
		sessions:    sessions,
	}
}

func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// A live session feeds the fix into its own heartbeat; without one the
	// record is published directly from the stored profile.
	if s, ok := h.sessions.Get(identity); ok {
		s.UpdateLocation(*req.Latitude, *req.Longitude)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	rec := presence.Record{
		Identity:     identity,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LastActiveAt: time.Now().UnixMilli(),
	}
	profile, err := h.profileRepo.GetByIdentity(identity)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if profile != nil {
		rec.Name = profile.Name
		rec.Gender = profile.Gender
		rec.PhotoURL = profile.PhotoURL
	}
	h.presenceSvc.Publish(rec)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
