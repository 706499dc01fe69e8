package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/services"
)

type KBHandler struct {
	service *services.KnowledgeService
}

func NewKBHandler(service *services.KnowledgeService) *KBHandler {
	return &KBHandler{service: service}
}

func (h *KBHandler) Register(router fiber.Router) {
	router.Get("/chatbots/:id/knowledge", h.ListKnowledge)
	router.Post("/chatbots/:id/knowledge", h.CreateKnowledge)
	router.Post("/chatbots/:id/knowledge/search", h.SearchKnowledge)
	router.Put("/chatbots/:id/knowledge/:itemId", h.UpdateKnowledge)
	router.Delete("/chatbots/:id/knowledge/:itemId", h.DeleteKnowledge)
}

// ListKnowledge godoc
// @Summary List knowledge base items
// @Description Returns every knowledge item of a chatbot, optionally filtered by category
// @Tags KnowledgeBase
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chatbot ID"
// @Param category query string false "Category filter"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/chatbots/{id}/knowledge [get]
func (h *KBHandler) ListKnowledge(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	chatbotID, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chatbot id"})
	}

	items, err := h.service.List(c.UserContext(), userID, chatbotID, c.Query("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// CreateKnowledge godoc
// @Summary Add knowledge base item
// @Tags KnowledgeBase
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chatbot ID"
// @Param data body models.CreateKnowledgeRequest true "Question and answer"
// @Success 201 {object} models.KnowledgeItem
// @Failure 400 {object} map[string]string
// @Router /api/chatbots/{id}/knowledge [post]
func (h *KBHandler) CreateKnowledge(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	chatbotID, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chatbot id"})
	}

	var req models.CreateKnowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	item, err := h.service.Create(c.UserContext(), userID, chatbotID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateKnowledge godoc
// @Summary Update knowledge base item
// @Description Partial update, omitted fields keep their value
// @Tags KnowledgeBase
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chatbot ID"
// @Param itemId path string true "Knowledge item ID"
// @Param data body models.UpdateKnowledgeRequest true "Fields to change"
// @Success 200 {object} models.KnowledgeItem
// @Failure 404 {object} map[string]string
// @Router /api/chatbots/{id}/knowledge/{itemId} [put]
func (h *KBHandler) UpdateKnowledge(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	chatbotID, ok1 := paramUUID(c, "id")
	itemID, ok2 := paramUUID(c, "itemId")
	if !ok1 || !ok2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var req models.UpdateKnowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	item, err := h.service.Update(c.UserContext(), userID, chatbotID, itemID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// DeleteKnowledge godoc
// @Summary Delete knowledge base item
// @Tags KnowledgeBase
// @Security BearerAuth
// @Param id path string true "Chatbot ID"
// @Param itemId path string true "Knowledge item ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/chatbots/{id}/knowledge/{itemId} [delete]
func (h *KBHandler) DeleteKnowledge(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	chatbotID, ok1 := paramUUID(c, "id")
	itemID, ok2 := paramUUID(c, "itemId")
	if !ok1 || !ok2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	if err := h.service.Delete(c.UserContext(), userID, chatbotID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchKnowledgeRequest is the matcher preview input
type SearchKnowledgeRequest struct {
	Query string `json:"query" example:"jam buka toko"`
}

// SearchKnowledge godoc
// @Summary Preview knowledge matches
// @Description Runs the knowledge matcher against a question without counting usage
// @Tags KnowledgeBase
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chatbot ID"
// @Param data body SearchKnowledgeRequest true "Question"
// @Success 200 {object} map[string]interface{}
// @Router /api/chatbots/{id}/knowledge/search [post]
func (h *KBHandler) SearchKnowledge(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	chatbotID, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chatbot id"})
	}

	var req SearchKnowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	matches, err := h.service.Search(c.UserContext(), userID, chatbotID, req.Query)
	if err != nil {
		return respondError(c, err)
	}

	results := make([]fiber.Map, 0, len(matches))
	for _, m := range matches {
		results = append(results, fiber.Map{"item": m.Item, "score": m.Score})
	}
	return c.JSON(fiber.Map{"query": req.Query, "matches": results})
}
