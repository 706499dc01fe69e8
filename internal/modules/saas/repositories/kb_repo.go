package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
)

type KBRepo interface {
	// ListActive and IncrementUsage back the knowledge matcher
	ListActive(ctx context.Context, chatbotID uuid.UUID) ([]models.KnowledgeItem, error)
	IncrementUsage(ctx context.Context, ids []uuid.UUID) error

	List(ctx context.Context, chatbotID uuid.UUID, category string) ([]models.KnowledgeItem, error)
	Get(ctx context.Context, chatbotID, id uuid.UUID) (*models.KnowledgeItem, error)
	Create(ctx context.Context, item *models.KnowledgeItem) error
	Update(ctx context.Context, item *models.KnowledgeItem) error
	Delete(ctx context.Context, chatbotID, id uuid.UUID) error
}

type kbRepo struct {
	db *gorm.DB
}

func NewKBRepo(db *gorm.DB) KBRepo {
	return &kbRepo{db: db}
}

func (r *kbRepo) ListActive(ctx context.Context, chatbotID uuid.UUID) ([]models.KnowledgeItem, error) {
	var items []models.KnowledgeItem
	err := r.db.WithContext(ctx).
		Where("chatbot_id = ? AND is_active = ?", chatbotID, true).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *kbRepo) IncrementUsage(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	// UpdateColumn skips updated_at, usage is not an edit
	return r.db.WithContext(ctx).
		Model(&models.KnowledgeItem{}).
		Where("id IN ?", ids).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
}

func (r *kbRepo) List(ctx context.Context, chatbotID uuid.UUID, category string) ([]models.KnowledgeItem, error) {
	q := r.db.WithContext(ctx).Where("chatbot_id = ?", chatbotID)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var items []models.KnowledgeItem
	err := q.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *kbRepo) Get(ctx context.Context, chatbotID, id uuid.UUID) (*models.KnowledgeItem, error) {
	var item models.KnowledgeItem
	if err := r.db.WithContext(ctx).Where("id = ? AND chatbot_id = ?", id, chatbotID).First(&item).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &item, nil
}

func (r *kbRepo) Create(ctx context.Context, item *models.KnowledgeItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *kbRepo) Update(ctx context.Context, item *models.KnowledgeItem) error {
	// usage_count belongs to the matcher
	res := r.db.WithContext(ctx).
		Model(&models.KnowledgeItem{}).
		Where("id = ? AND chatbot_id = ?", item.ID, item.ChatbotID).
		Select("question", "answer", "category", "keywords", "is_active", "updated_at").
		Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *kbRepo) Delete(ctx context.Context, chatbotID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND chatbot_id = ?", id, chatbotID).Delete(&models.KnowledgeItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
