package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/services"
)

type ConversationHandler struct {
	service *services.ConversationService
}

func NewConversationHandler(service *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

func (h *ConversationHandler) Register(router fiber.Router) {
	router.Get("/chatbots/:id/conversations", h.ListConversations)
	router.Get("/conversations/:id/messages", h.ListMessages)
	router.Patch("/conversations/:id/status", h.UpdateStatus)
}

// ListConversations godoc
// @Summary List conversations of a chatbot
// @Description Most recent first. Optional status filter: active, pending, resolved, escalated
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chatbot ID"
// @Param status query string false "Status filter"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/chatbots/{id}/conversations [get]
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	chatbotID, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chatbot id"})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	convs, total, err := h.service.List(c.UserContext(), userID, chatbotID, c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"conversations": convs,
		"total":         total,
		"limit":         limit,
		"offset":        offset,
	})
}

// ListMessages godoc
// @Summary Conversation history
// @Description Messages in chronological order
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param limit query int false "Max messages (default 100, max 500)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	msgs, err := h.service.Messages(c.UserContext(), userID, convID, c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs, "count": len(msgs)})
}

// UpdateStatusRequest changes a conversation's status
type UpdateStatusRequest struct {
	Status string `json:"status" example:"resolved"`
}

// UpdateStatus godoc
// @Summary Change conversation status
// @Description Agents resolve handed-over conversations or set them back to active to resume AI replies
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param data body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/conversations/{id}/status [patch]
func (h *ConversationHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.service.UpdateStatus(c.UserContext(), userID, convID, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": req.Status})
}
