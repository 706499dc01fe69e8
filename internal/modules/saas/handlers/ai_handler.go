package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/services"
)

type AIHandler struct {
	service *services.AIService
}

func NewAIHandler(service *services.AIService) *AIHandler {
	return &AIHandler{service: service}
}

func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/ai/test", h.TestAI)
	router.Post("/chatbots/:id/test-send", h.TestSend)
}

// TestAI godoc
// @Summary Try the AI responder
// @Description Generates a reply with primary/secondary fallback. Pass chatbot_id to answer as that chatbot. Nothing is stored.
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body services.TestRequest true "Prompt and options"
// @Success 200 {object} services.TestResponse
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/ai/test [post]
func (h *AIHandler) TestAI(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req services.TestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	resp, err := h.service.Test(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// TestSend godoc
// @Summary Send a test WhatsApp message
// @Description Sends one message from the chatbot's number. Transport failures return 500 with details.
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chatbot ID"
// @Param data body services.TestSendRequest true "Recipient and text"
// @Success 200 {object} services.TestSendResponse
// @Failure 500 {object} map[string]string
// @Router /api/chatbots/{id}/test-send [post]
func (h *AIHandler) TestSend(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	chatbotID, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chatbot id"})
	}

	var req services.TestSendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	resp, err := h.service.TestSend(c.UserContext(), userID, chatbotID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
