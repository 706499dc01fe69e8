package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
)

type ChatbotRepo interface {
	// GetByWhatsAppNumber resolves the Twilio "To" number (+E.164)
	GetByWhatsAppNumber(ctx context.Context, number string) (*models.Chatbot, error)
	// GetByMetaPhoneNumberID resolves the Cloud API phone_number_id
	GetByMetaPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Chatbot, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Chatbot, error)
	Create(ctx context.Context, chatbot *models.Chatbot) error
}

type chatbotRepo struct {
	db *gorm.DB
}

func NewChatbotRepo(db *gorm.DB) ChatbotRepo {
	return &chatbotRepo{db: db}
}

func (r *chatbotRepo) GetByWhatsAppNumber(ctx context.Context, number string) (*models.Chatbot, error) {
	var chatbot models.Chatbot
	if err := r.db.WithContext(ctx).Where("whatsapp_number = ?", number).First(&chatbot).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &chatbot, nil
}

func (r *chatbotRepo) GetByMetaPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Chatbot, error) {
	var chatbot models.Chatbot
	if err := r.db.WithContext(ctx).Where("meta_phone_number_id = ?", phoneNumberID).First(&chatbot).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &chatbot, nil
}

func (r *chatbotRepo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Chatbot, error) {
	var chatbot models.Chatbot
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&chatbot).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &chatbot, nil
}

func (r *chatbotRepo) Create(ctx context.Context, chatbot *models.Chatbot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(chatbot).Error
}
