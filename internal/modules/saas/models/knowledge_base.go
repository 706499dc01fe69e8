package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KnowledgeItem is a question/answer/keyword record used by the knowledge matcher
type KnowledgeItem struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ChatbotID  uuid.UUID                   `gorm:"type:uuid;not null;index:idx_kb_chatbot_active" json:"chatbot_id"`
	Question   string                      `gorm:"type:text;not null" json:"question"`
	Answer     string                      `gorm:"type:text;not null" json:"answer"`
	Category   string                      `gorm:"type:text" json:"category,omitempty"`
	Keywords   datatypes.JSONSlice[string] `json:"keywords" swaggertype:"array,string"`
	IsActive   bool                        `gorm:"index:idx_kb_chatbot_active" json:"is_active"`
	UsageCount int                         `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	Chatbot Chatbot `gorm:"foreignKey:ChatbotID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (KnowledgeItem) TableName() string {
	return "saas_knowledge_items"
}

// BeforeCreate sets UUID before creating
func (k *KnowledgeItem) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// CreateKnowledgeRequest represents knowledge item creation request
type CreateKnowledgeRequest struct {
	Question string   `json:"question" example:"Jam buka toko?"`
	Answer   string   `json:"answer" example:"Kami buka Senin-Jumat pukul 08.00-17.00 WIB."`
	Category string   `json:"category,omitempty" example:"operasional"`
	Keywords []string `json:"keywords,omitempty" example:"jam,buka,operasional"`
	IsActive *bool    `json:"is_active,omitempty"` // Pointer to allow explicit false
}

// UpdateKnowledgeRequest represents knowledge item update request
type UpdateKnowledgeRequest struct {
	Question *string  `json:"question,omitempty"`
	Answer   *string  `json:"answer,omitempty"`
	Category *string  `json:"category,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}
