package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"putping/config"
	"putping/internal/auth"
	"putping/internal/repository"
	"putping/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeChatWS upgrades to WebSocket for chat; query: token, peer. Both
// participants land in one room keyed by the identity pair. Messages are
// persisted into each participant's own conversation view (name and
// preview included), broadcast to the room, and surfaced as a notification
// on every other connection the peer holds.
func UpgradeChatWS(cfg *config.JWTConfig, hub *ws.Hub, chatHub *ws.ChatHub, chatRepo *repository.ChatRepository, profileRepo *repository.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		peer := c.Query("peer")
		if token == "" || peer == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and peer required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		identity := claims.Identity
		if peer == identity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
			return
		}
		conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := ws.NewClient(identity)
		room := chatHub.GetOrCreateRoom(identity, peer)
		room.Join(client)
		defer func() {
			room.Leave(client)
			client.Close()
			chatHub.RemoveRoomIfEmpty(room)
		}()

		conn.SetReadDeadline(time.Now().Add(chatPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(chatPongWait))
			return nil
		})
		go chatWritePump(client, conn)

		senderName := displayName(profileRepo, identity)
		peerName := displayName(profileRepo, peer)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg struct {
				Type string `json:"type"`
				Body string `json:"body"`
			}
			if json.Unmarshal(raw, &msg) != nil || msg.Type != "message" || msg.Body == "" {
				continue
			}
			// Persist into both views; each side keeps its own list.
			mine, err := chatRepo.GetOrCreateConversation(identity, peer, peerName)
			if err != nil {
				continue
			}
			stored, err := chatRepo.AppendMessage(mine, identity, msg.Body)
			if err != nil {
				continue
			}
			if theirs, err := chatRepo.GetOrCreateConversation(peer, identity, senderName); err == nil {
				_, _ = chatRepo.AppendMessage(theirs, identity, msg.Body)
			}
			room.Broadcast(client, map[string]interface{}{
				"type":       "message",
				"sender_id":  identity,
				"sender":     senderName,
				"body":       msg.Body,
				"created_at": stored.CreatedAt,
			})
			// Reach the peer even when their chat screen is closed.
			hub.BroadcastToIdentity(peer, map[string]interface{}{
				"type":      "chat_notify",
				"sender_id": identity,
				"sender":    senderName,
				"body":      msg.Body,
			})
		}
	}
}

func displayName(profileRepo *repository.ProfileRepository, identity string) string {
	profile, err := profileRepo.GetByIdentity(identity)
	if err != nil || profile == nil || profile.Name == "" {
		return "Anonymous"
	}
	return profile.Name
}

func chatWritePump(c *ws.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(chatPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
