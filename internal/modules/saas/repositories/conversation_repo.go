package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
)

type ConversationRepo interface {
	// GetOrCreate returns the single conversation for (chatbot, phone)
	GetOrCreate(ctx context.Context, chatbotID uuid.UUID, phone, customerName string) (*models.Conversation, error)
	// AppendMessage writes msg and bumps the conversation's last_message_at
	AppendMessage(ctx context.Context, conversationID uuid.UUID, msg *models.Message) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	HasProviderMessage(ctx context.Context, providerMessageID string) (bool, error)

	GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error)
	ListByChatbot(ctx context.Context, chatbotID uuid.UUID, status string, limit, offset int) ([]models.Conversation, int64, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error)

	// ResolveIdle closes active/pending conversations quiet since before
	ResolveIdle(ctx context.Context, before time.Time) (int64, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) GetOrCreate(ctx context.Context, chatbotID uuid.UUID, phone, customerName string) (*models.Conversation, error) {
	db := r.db.WithContext(ctx)

	conv := models.Conversation{
		ChatbotID:     chatbotID,
		CustomerPhone: phone,
		CustomerName:  customerName,
		Status:        models.ConversationActive,
		LastMessageAt: time.Now(),
	}
	// Unique (chatbot_id, customer_phone) makes concurrent first messages safe
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chatbot_id"}, {Name: "customer_phone"}},
		DoNothing: true,
	}).Create(&conv).Error; err != nil {
		return nil, err
	}

	var existing models.Conversation
	if err := db.Where("chatbot_id = ? AND customer_phone = ?", chatbotID, phone).First(&existing).Error; err != nil {
		return nil, mapNotFound(err)
	}

	if customerName != "" && existing.CustomerName != customerName {
		if err := db.Model(&existing).Update("customer_name", customerName).Error; err != nil {
			return nil, err
		}
		existing.CustomerName = customerName
	}
	return &existing, nil
}

func (r *conversationRepo) AppendMessage(ctx context.Context, conversationID uuid.UUID, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg.ConversationID = conversationID
		if err := tx.Omit(clause.Associations).Create(msg).Error; err != nil {
			return err
		}

		at := msg.CreatedAt
		if at.IsZero() {
			at = time.Now()
		}
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("last_message_at", at).Error; err != nil {
			return err
		}

		// A customer writing again reopens a resolved thread
		if msg.Direction == models.DirectionInbound {
			return tx.Model(&models.Conversation{}).
				Where("id = ? AND status = ?", conversationID, models.ConversationResolved).
				Update("status", models.ConversationActive).Error
		}
		return nil
	})
}

func (r *conversationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *conversationRepo) HasProviderMessage(ctx context.Context, providerMessageID string) (bool, error) {
	if providerMessageID == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("provider_message_id = ? AND direction = ?", providerMessageID, models.DirectionInbound).
		Count(&count).Error
	return count > 0, err
}

func (r *conversationRepo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN saas_chatbots ON saas_chatbots.id = saas_conversations.chatbot_id").
		Where("saas_conversations.id = ? AND saas_chatbots.user_id = ?", id, userID).
		First(&conv).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &conv, nil
}

func (r *conversationRepo) ListByChatbot(ctx context.Context, chatbotID uuid.UUID, status string, limit, offset int) ([]models.Conversation, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Conversation{}).Where("chatbot_id = ?", chatbotID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conversations []models.Conversation
	err := q.Order("last_message_at DESC").Limit(limit).Offset(offset).Find(&conversations).Error
	return conversations, total, err
}

func (r *conversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *conversationRepo) ResolveIdle(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("status IN ? AND last_message_at < ?", []string{models.ConversationActive, models.ConversationPending}, before).
		Update("status", models.ConversationResolved)
	return res.RowsAffected, res.Error
}
