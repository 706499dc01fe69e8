package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/businesshours"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/handover"
)

// Chatbot is one business-owned WhatsApp number with its AI configuration
type Chatbot struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"type:text;not null" json:"name"`

	// Transport identities: Twilio "To" number and Meta phone_number_id
	WhatsAppNumber    string `gorm:"column:whatsapp_number;type:text;uniqueIndex" json:"whatsapp_number"`
	MetaPhoneNumberID string `gorm:"type:text;index" json:"meta_phone_number_id,omitempty"`

	BusinessDescription string `gorm:"type:text" json:"business_description"`
	Personality         string `gorm:"type:text" json:"personality"`
	Tone                string `gorm:"type:text" json:"tone"` // formal, casual, friendly

	BusinessHours    datatypes.JSON `gorm:"type:jsonb" json:"business_hours" swaggertype:"object"`
	HandoverKeywords datatypes.JSON `gorm:"type:jsonb" json:"handover_keywords" swaggertype:"array,string"`

	AutoReplyEnabled bool `json:"auto_reply_enabled"`
	UseKnowledgeBase bool `json:"use_knowledge_base"`
	IsActive         bool `gorm:"index" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Chatbot) TableName() string {
	return "saas_chatbots"
}

// BeforeCreate sets UUID before creating
func (c *Chatbot) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Schedule parses the business_hours column. A malformed schedule is logged
// and treated as absent so a bad dashboard edit never silences the bot.
func (c *Chatbot) Schedule(fallback *time.Location) *businesshours.Schedule {
	s, err := businesshours.Parse(c.BusinessHours, fallback)
	if err != nil {
		log.Warn().Err(err).Str("chatbot_id", c.ID.String()).Msg("⚠️ Ignoring malformed business hours")
		return nil
	}
	return s
}

// HandoverPhrases parses the handover_keywords column
func (c *Chatbot) HandoverPhrases() []string {
	return handover.ParsePhrases(c.HandoverKeywords)
}

// All lists every model in migration order, for AutoMigrate on SQLite
func All() []interface{} {
	return []interface{}{&Chatbot{}, &KnowledgeItem{}, &Conversation{}, &Message{}}
}
