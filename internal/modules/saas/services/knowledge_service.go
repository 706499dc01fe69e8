package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/repositories"
)

// KnowledgeService is the dashboard CRUD over a chatbot's knowledge base.
// Every call checks that the chatbot belongs to userID.
type KnowledgeService struct {
	chatbotRepo repositories.ChatbotRepo
	kbRepo      repositories.KBRepo
	matcher     *kb.Matcher
}

func NewKnowledgeService(chatbotRepo repositories.ChatbotRepo, kbRepo repositories.KBRepo, matcher *kb.Matcher) *KnowledgeService {
	return &KnowledgeService{chatbotRepo: chatbotRepo, kbRepo: kbRepo, matcher: matcher}
}

func (s *KnowledgeService) List(ctx context.Context, userID, chatbotID uuid.UUID, category string) ([]models.KnowledgeItem, error) {
	if _, err := s.chatbotRepo.GetOwned(ctx, chatbotID, userID); err != nil {
		return nil, err
	}
	return s.kbRepo.List(ctx, chatbotID, category)
}

func (s *KnowledgeService) Create(ctx context.Context, userID, chatbotID uuid.UUID, req models.CreateKnowledgeRequest) (*models.KnowledgeItem, error) {
	if _, err := s.chatbotRepo.GetOwned(ctx, chatbotID, userID); err != nil {
		return nil, err
	}

	question, answer := strings.TrimSpace(req.Question), strings.TrimSpace(req.Answer)
	if question == "" {
		return nil, invalid("question", "is required")
	}
	if answer == "" {
		return nil, invalid("answer", "is required")
	}

	item := &models.KnowledgeItem{
		ChatbotID: chatbotID,
		Question:  question,
		Answer:    answer,
		Category:  strings.TrimSpace(req.Category),
		Keywords:  cleanKeywords(req.Keywords),
		IsActive:  true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.kbRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *KnowledgeService) Update(ctx context.Context, userID, chatbotID, id uuid.UUID, req models.UpdateKnowledgeRequest) (*models.KnowledgeItem, error) {
	if _, err := s.chatbotRepo.GetOwned(ctx, chatbotID, userID); err != nil {
		return nil, err
	}
	item, err := s.kbRepo.Get(ctx, chatbotID, id)
	if err != nil {
		return nil, err
	}

	if req.Question != nil {
		if strings.TrimSpace(*req.Question) == "" {
			return nil, invalid("question", "cannot be empty")
		}
		item.Question = strings.TrimSpace(*req.Question)
	}
	if req.Answer != nil {
		if strings.TrimSpace(*req.Answer) == "" {
			return nil, invalid("answer", "cannot be empty")
		}
		item.Answer = strings.TrimSpace(*req.Answer)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Keywords != nil {
		item.Keywords = cleanKeywords(req.Keywords)
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.kbRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *KnowledgeService) Delete(ctx context.Context, userID, chatbotID, id uuid.UUID) error {
	if _, err := s.chatbotRepo.GetOwned(ctx, chatbotID, userID); err != nil {
		return err
	}
	return s.kbRepo.Delete(ctx, chatbotID, id)
}

// Search previews what the matcher would return, without touching usage counts
func (s *KnowledgeService) Search(ctx context.Context, userID, chatbotID uuid.UUID, query string) ([]kb.Match, error) {
	if _, err := s.chatbotRepo.GetOwned(ctx, chatbotID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, invalid("q", "is required")
	}
	return s.matcher.Search(ctx, chatbotID, query)
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
