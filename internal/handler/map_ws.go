package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"putping/config"
	"putping/internal/auth"
	"putping/internal/ping"
	"putping/internal/presence"
	"putping/internal/repository"
	"putping/internal/session"
	"putping/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	mapWriteWait  = 10 * time.Second
	mapPongWait   = 60 * time.Second
	mapPingPeriod = (mapPongWait * 9) / 10
)

var mapUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeMapWS upgrades to WebSocket for the live map. The connection owns
// a session: marker add/move/remove events, zoom transitions, pings, and
// banners flow out; clicks and location fixes flow in.
func UpgradeMapWS(
	cfg *config.Config,
	hub *ws.Hub,
	profileRepo *repository.ProfileRepository,
	presenceSvc *presence.Service,
	pings *ping.Channel,
	sessions *session.Manager,
	log zerolog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		claims, err := auth.ParseAccessToken(&cfg.JWT, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		identity := claims.Identity

		base := presence.Record{Identity: identity}
		profile, err := profileRepo.GetByIdentity(identity)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		if profile != nil {
			base.Name = profile.Name
			base.Gender = profile.Gender
			base.PhotoURL = profile.PhotoURL
		}

		conn, err := mapUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := ws.NewClient(identity)
		hub.Register(client)
		stream := ws.NewMapStream(client, cfg.Map.VisibilityRadiusMeters)
		sess := session.New(identity, base, cfg, presenceSvc, pings, stream, stream, stream, stream.ZoomChanged, log)
		sessions.Attach(context.Background(), sess)
		defer func() {
			sessions.Detach(sess)
			client.Close()
		}()

		conn.SetReadDeadline(time.Now().Add(mapPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(mapPongWait))
			return nil
		})
		go mapWritePump(client, conn)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg struct {
				Type     string  `json:"type"`
				Identity string  `json:"identity"`
				Lat      float64 `json:"lat"`
				Lng      float64 `json:"lng"`
			}
			if json.Unmarshal(raw, &msg) != nil {
				continue
			}
			switch msg.Type {
			case "marker_click":
				stream.Click(msg.Identity)
			case "background_click":
				sess.ClickBackground()
			case "escape":
				sess.CancelZoom()
			case "location":
				sess.UpdateLocation(msg.Lat, msg.Lng)
			}
		}
	}
}

func mapWritePump(c *ws.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(mapPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(mapWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(mapWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
