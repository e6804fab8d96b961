package handler

import (
	"net/http"

	"putping/internal/middleware"
	"putping/internal/repository"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatRepo *repository.ChatRepository
}

func NewChatHandler(chatRepo *repository.ChatRepository) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo}
}

// ListConversations returns the chat list with last-line previews.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	convs, err := h.chatRepo.ListConversations(identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	peer := c.Param("identity")
	if peer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "peer identity required"})
		return
	}
	conv, err := h.chatRepo.GetOrCreateConversation(identity, peer, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	msgs, err := h.chatRepo.ListMessages(conv.ID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv, "messages": msgs})
}
