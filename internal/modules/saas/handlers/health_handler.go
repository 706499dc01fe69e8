package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/whatsapp"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db        Pinger
	providers []string
	senders   *whatsapp.Registry
}

func NewHealthHandler(db Pinger, providers []string, senders *whatsapp.Registry) *HealthHandler {
	return &HealthHandler{db: db, providers: providers, senders: senders}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API and database are alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status, code, dbStatus := "ok", fiber.StatusOK, "ok"
	if err := h.db.PingContext(ctx); err != nil {
		status, code, dbStatus = "degraded", fiber.StatusServiceUnavailable, err.Error()
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"service":      "saas-api",
		"database":     dbStatus,
		"ai_providers": h.providers,
		"transports":   h.senders.Configured(),
	})
}
