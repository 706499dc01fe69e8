package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation status constants
const (
	ConversationActive    = "active"
	ConversationPending   = "pending"
	ConversationResolved  = "resolved"
	ConversationEscalated = "escalated"
)

// Message direction constants
const (
	DirectionInbound  = "inbound"  // from customer
	DirectionOutbound = "outbound" // to customer
)

// Conversation is the thread between one chatbot and one customer phone number
type Conversation struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatbotID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_chatbot_phone" json:"chatbot_id"`
	CustomerPhone      string    `gorm:"type:text;not null;uniqueIndex:idx_conversation_chatbot_phone" json:"customer_phone"`
	CustomerName       string    `gorm:"type:text" json:"customer_name"`
	Status             string    `gorm:"type:text;not null;default:'active';index" json:"status"`
	LastMessageAt      time.Time `gorm:"index" json:"last_message_at"`
	SatisfactionRating *int      `json:"satisfaction_rating,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	Chatbot Chatbot `gorm:"foreignKey:ChatbotID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (Conversation) TableName() string {
	return "saas_conversations"
}

// BeforeCreate sets UUID before creating
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ConversationActive
	}
	return nil
}

// Message is one immutable turn in a conversation
type Message struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Content           string         `gorm:"type:text;not null" json:"content"`
	Direction         string         `gorm:"type:text;not null" json:"direction"`
	IsAIGenerated     bool           `gorm:"column:is_ai_generated" json:"is_ai_generated"`
	TokensUsed        *int           `json:"tokens_used,omitempty"`
	Cost              *float64       `gorm:"type:decimal(12,6)" json:"cost,omitempty"`
	AIProvider        string         `gorm:"column:ai_provider;type:text" json:"ai_provider,omitempty"`
	ProviderMessageID string         `gorm:"type:text;index" json:"provider_message_id,omitempty"`
	Metadata          datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty" swaggertype:"object"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`

	// Relationship
	Conversation Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "saas_messages"
}

// BeforeCreate sets UUID before creating
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
