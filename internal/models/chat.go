package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is one identity's view of a chat with a peer: display name
// and last-line preview for the chat list, messages attached beneath.
type Conversation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Identity  string         `gorm:"size:64;not null;uniqueIndex:idx_conv_identity_peer" json:"identity"`
	PeerID    string         `gorm:"size:64;not null;uniqueIndex:idx_conv_identity_peer" json:"peer_id"`
	PeerName  string         `gorm:"size:100" json:"peer_name"`
	LastLine  string         `gorm:"size:255" json:"last_line"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ChatMessage struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	SenderID       string         `gorm:"size:64;not null" json:"sender_id"`
	Body           string         `gorm:"type:text" json:"body"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
