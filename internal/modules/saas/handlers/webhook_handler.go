package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/services"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/utils"
)

// InboundProcessor runs the inbound pipeline for one message
type InboundProcessor interface {
	HandleInbound(ctx context.Context, msg whatsapp.InboundMessage) services.Outcome
}

// WebhookConfig holds transport secrets. Empty secrets disable the matching check.
type WebhookConfig struct {
	TwilioValidator  *whatsapp.TwilioValidator
	TwilioWebhookURL string
	MetaVerifyToken  string
	MetaAppSecret    string
	Timeout          time.Duration
}

type WebhookHandler struct {
	processor InboundProcessor
	cfg       WebhookConfig
}

func NewWebhookHandler(processor InboundProcessor, cfg WebhookConfig) *WebhookHandler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	return &WebhookHandler{processor: processor, cfg: cfg}
}

// Register mounts the transport callbacks (no auth, transports sign instead)
func (h *WebhookHandler) Register(router fiber.Router) {
	router.Post("/webhooks/twilio", h.ReceiveTwilio)
	router.Get("/webhooks/meta", h.VerifyMeta)
	router.Post("/webhooks/meta", h.ReceiveMeta)
}

// ReceiveTwilio godoc
// @Summary Twilio WhatsApp webhook
// @Description Receives form-encoded inbound messages from Twilio. Always answers 200 with an empty body.
// @Tags Webhook
// @Accept x-www-form-urlencoded
// @Param Body formData string true "Message text"
// @Param From formData string true "Sender, whatsapp:+E.164"
// @Param To formData string true "Business number, whatsapp:+E.164"
// @Param MessageSid formData string false "Twilio message id"
// @Param ProfileName formData string false "Customer WhatsApp name"
// @Success 200
// @Router /webhooks/twilio [post]
func (h *WebhookHandler) ReceiveTwilio(c *fiber.Ctx) error {
	if h.cfg.TwilioValidator != nil && !h.validTwilioSignature(c) {
		log.Warn().Str("ip", c.IP()).Msg("⚠️ Invalid Twilio signature, ignoring")
		return ackTwilio(c)
	}

	msg := whatsapp.ParseTwilioForm(func(key string) string { return c.FormValue(key) })
	log.Debug().
		Str("from", utils.MaskPhone(msg.From)).
		Str("to", msg.To).
		Str("sid", msg.ProviderMessageID).
		Msg("📨 Twilio webhook received")

	ctx, cancel := context.WithTimeout(c.UserContext(), h.cfg.Timeout)
	defer cancel()
	h.processor.HandleInbound(ctx, msg)

	return ackTwilio(c)
}

// ackTwilio answers 200 with no body; Twilio relays any text body to the customer
func ackTwilio(c *fiber.Ctx) error {
	c.Status(fiber.StatusOK)
	return nil
}

func (h *WebhookHandler) validTwilioSignature(c *fiber.Ctx) bool {
	params := make(map[string]string)
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		params[string(k)] = string(v)
	})

	url := h.cfg.TwilioWebhookURL
	if url == "" {
		url = c.BaseURL() + c.OriginalURL()
	}
	return h.cfg.TwilioValidator.Validate(url, params, c.Get("X-Twilio-Signature"))
}

// VerifyMeta godoc
// @Summary Meta webhook verification
// @Description Echoes hub.challenge when hub.verify_token matches the configured token
// @Tags Webhook
// @Produce plain
// @Param hub.mode query string true "subscribe"
// @Param hub.verify_token query string true "Verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string
// @Failure 403 {string} string
// @Router /webhooks/meta [get]
func (h *WebhookHandler) VerifyMeta(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.cfg.MetaVerifyToken != "" && token == h.cfg.MetaVerifyToken {
		log.Info().Msg("✅ Meta webhook verified")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	log.Warn().Str("mode", mode).Msg("⚠️ Meta webhook verification failed")
	return c.Status(fiber.StatusForbidden).SendString("Forbidden")
}

// ReceiveMeta godoc
// @Summary Meta Cloud API webhook
// @Description Receives WhatsApp Cloud API message notifications. Always answers 200.
// @Tags Webhook
// @Accept json
// @Produce json
// @Param payload body whatsapp.CloudAPIWebhook true "Webhook envelope"
// @Success 200 {object} map[string]interface{}
// @Router /webhooks/meta [post]
func (h *WebhookHandler) ReceiveMeta(c *fiber.Ctx) error {
	body := c.Body()

	if h.cfg.MetaAppSecret != "" {
		if err := whatsapp.VerifyMetaSignature(h.cfg.MetaAppSecret, body, c.Get("X-Hub-Signature-256")); err != nil {
			log.Warn().Err(err).Str("ip", c.IP()).Msg("⚠️ Invalid Meta signature, ignoring")
			return c.JSON(fiber.Map{"status": "ignored"})
		}
	}

	messages, err := whatsapp.ParseCloudAPIPayload(body)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to parse Meta webhook")
		return c.JSON(fiber.Map{"status": "ignored"})
	}
	if len(messages) == 0 {
		// status updates, reactions, media
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.cfg.Timeout)
	defer cancel()

	outcomes := make([]services.Outcome, 0, len(messages))
	for _, msg := range messages {
		outcomes = append(outcomes, h.processor.HandleInbound(ctx, msg))
	}

	return c.JSON(fiber.Map{"status": "received", "outcomes": outcomes})
}
