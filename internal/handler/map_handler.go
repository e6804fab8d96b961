package handler

import (
	"net/http"
	"time"

	"putping/config"
	"putping/internal/middleware"
	"putping/internal/presence"
	"putping/pkg/proximity"

	"github.com/gin-gonic/gin"
)

// MapHandler serves the classified visible set over plain HTTP, for the
// initial map load before the WebSocket stream is up.
type MapHandler struct {
	cfg         *config.Config
	presenceSvc *presence.Service
}

func NewMapHandler(cfg *config.Config, presenceSvc *presence.Service) *MapHandler {
	return &MapHandler{cfg: cfg, presenceSvc: presenceSvc}
}

func (h *MapHandler) GetMarkers(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	set := presence.Classify(h.presenceSvc.Snapshot(), identity, time.Now(), presence.ClassifyConfig{
		VisibilityRadiusMeters: h.cfg.Map.VisibilityRadiusMeters,
		NearThresholdMeters:    h.cfg.Map.NearThresholdMeters,
		OnlineThreshold:        h.cfg.Presence.OnlineThreshold,
	})
	markers := make([]gin.H, 0, len(set))
	for _, m := range set {
		markers = append(markers, gin.H{
			"identity":  m.Identity,
			"lat":       m.Latitude,
			"lng":       m.Longitude,
			"tier":      m.Tier.String(),
			"color":     m.Tier.Color(),
			"online":    m.Online,
			"name":      m.Record.Name,
			"photo_url": m.Record.PhotoURL,
			"proximity": proximity.Label(proximity.Progress(m.DistanceMeters, h.cfg.Map.VisibilityRadiusMeters)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"markers": markers})
}
