package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/repositories"
)

// ConversationService exposes conversation history to the dashboard
type ConversationService struct {
	chatbotRepo      repositories.ChatbotRepo
	conversationRepo repositories.ConversationRepo
}

func NewConversationService(chatbotRepo repositories.ChatbotRepo, conversationRepo repositories.ConversationRepo) *ConversationService {
	return &ConversationService{chatbotRepo: chatbotRepo, conversationRepo: conversationRepo}
}

var validStatuses = map[string]bool{
	models.ConversationActive:    true,
	models.ConversationPending:   true,
	models.ConversationResolved:  true,
	models.ConversationEscalated: true,
}

func (s *ConversationService) List(ctx context.Context, userID, chatbotID uuid.UUID, status string, limit, offset int) ([]models.Conversation, int64, error) {
	if _, err := s.chatbotRepo.GetOwned(ctx, chatbotID, userID); err != nil {
		return nil, 0, err
	}
	if status != "" && !validStatuses[status] {
		return nil, 0, invalid("status", "must be one of active, pending, resolved, escalated")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.conversationRepo.ListByChatbot(ctx, chatbotID, status, limit, offset)
}

func (s *ConversationService) Messages(ctx context.Context, userID, conversationID uuid.UUID, limit int) ([]models.Message, error) {
	if _, err := s.conversationRepo.GetOwned(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.conversationRepo.ListMessages(ctx, conversationID, limit)
}

// UpdateStatus lets an agent resolve or release a conversation. Setting it
// back to active resumes AI replies.
func (s *ConversationService) UpdateStatus(ctx context.Context, userID, conversationID uuid.UUID, status string) error {
	if !validStatuses[status] {
		return invalid("status", "must be one of active, pending, resolved, escalated")
	}
	if _, err := s.conversationRepo.GetOwned(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.conversationRepo.UpdateStatus(ctx, conversationID, status)
}
