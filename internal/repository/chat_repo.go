package repository

import (
	"errors"

	"putping/internal/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// ListConversations returns the identity's chat list, most recent first.
func (r *ChatRepository) ListConversations(identity string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Where("identity = ?", identity).Order("updated_at desc").Find(&convs).Error
	return convs, err
}

func (r *ChatRepository) GetOrCreateConversation(identity, peerID, peerName string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Where("identity = ? AND peer_id = ?", identity, peerID).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	conv = models.Conversation{Identity: identity, PeerID: peerID, PeerName: peerName}
	if err := r.db.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// AppendMessage stores a message and refreshes the conversation preview.
func (r *ChatRepository) AppendMessage(conv *models.Conversation, senderID, body string) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Update("last_line", preview(body)).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *ChatRepository) ListMessages(conversationID uint, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	q := r.db.Where("conversation_id = ?", conversationID).Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&msgs).Error
	return msgs, err
}

func preview(body string) string {
	const max = 120
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max])
}
