package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/repositories"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/services"
)

// respondError maps service errors onto dashboard status codes
func respondError(c *fiber.Ctx, err error) error {
	var (
		verr *services.ValidationError
		perr *llm.ProviderError
		serr *whatsapp.SendError
	)

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.As(err, &perr):
		status := fiber.StatusInternalServerError
		if perr.IsQuota() {
			status = fiber.StatusTooManyRequests
		}
		log.Warn().Err(err).Msg("⚠️ AI providers unavailable")
		return c.Status(status).JSON(fiber.Map{"error": "AI service unavailable", "details": perr.Error()})
	case errors.As(err, &serr):
		log.Warn().Err(err).Msg("⚠️ WhatsApp send failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send message", "details": serr.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("❌ Request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
