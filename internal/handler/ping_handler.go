package handler

import (
	"net/http"

	"putping/internal/middleware"
	"putping/internal/ping"

	"github.com/gin-gonic/gin"
)

// PingHandler sends pings over HTTP; delivery happens on the recipient's
// map stream. Fire-and-forget: success only means the ping was queued.
type PingHandler struct {
	pings *ping.Channel
}

func NewPingHandler(pings *ping.Channel) *PingHandler {
	return &PingHandler{pings: pings}
}

func (h *PingHandler) Send(c *gin.Context) {
	sender := middleware.GetIdentity(c)
	recipient := c.Param("identity")
	if recipient == "" || recipient == sender {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient"})
		return
	}
	h.pings.Send(recipient, sender)
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}
