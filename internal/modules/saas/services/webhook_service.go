package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/businesshours"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/guard"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/handover"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/repositories"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/utils"
)

// Outcome is how one inbound message ended
type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeLogged     Outcome = "logged"
	OutcomeEscalated  Outcome = "escalated"
	OutcomeOutOfHours Outcome = "out_of_hours"
	OutcomeHandedOver Outcome = "handed_over"
	OutcomeReplied    Outcome = "replied"
	OutcomeFailed     Outcome = "failed"
)

// AIResponder generates replies with provider fallback
type AIResponder interface {
	Generate(ctx context.Context, prompt string, bc llm.BusinessContext, opts llm.Options) (*llm.Response, error)
}

// KnowledgeMatcher finds knowledge items relevant to a question
type KnowledgeMatcher interface {
	Match(ctx context.Context, chatbotID uuid.UUID, query string) ([]kb.Match, error)
}

// WebhookConfig holds the pipeline knobs from config
type WebhookConfig struct {
	Location  *time.Location
	MaxTokens int
	Now       func() time.Time
}

// WebhookService handles business logic for incoming WhatsApp webhooks
type WebhookService struct {
	chatbotRepo      repositories.ChatbotRepo
	conversationRepo repositories.ConversationRepo
	matcher          KnowledgeMatcher
	responder        AIResponder
	senders          *whatsapp.Registry
	dedup            guard.Deduplicator
	locks            *guard.KeyedMutex
	notifier         notification.Notifier
	cfg              WebhookConfig
}

// NewWebhookService creates a new webhook service. dedup and notifier may be
// nil; an in-memory deduplicator and the log notifier are used instead.
func NewWebhookService(
	chatbotRepo repositories.ChatbotRepo,
	conversationRepo repositories.ConversationRepo,
	matcher KnowledgeMatcher,
	responder AIResponder,
	senders *whatsapp.Registry,
	dedup guard.Deduplicator,
	notifier notification.Notifier,
	cfg WebhookConfig,
) *WebhookService {
	if dedup == nil {
		dedup = guard.NewMemoryDeduplicator(guard.DefaultDedupTTL)
	}
	if notifier == nil {
		notifier = notification.LogNotifier{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &WebhookService{
		chatbotRepo:      chatbotRepo,
		conversationRepo: conversationRepo,
		matcher:          matcher,
		responder:        responder,
		senders:          senders,
		dedup:            dedup,
		locks:            guard.NewKeyedMutex(),
		notifier:         notifier,
		cfg:              cfg,
	}
}

// HandleInbound is the always-acknowledge boundary used by the webhook
// handlers: every error from Process is logged here and never returned, so
// the transport gets its 200 and does not redeliver.
func (s *WebhookService) HandleInbound(ctx context.Context, msg whatsapp.InboundMessage) Outcome {
	outcome, err := s.Process(ctx, msg)
	if err == nil {
		log.Info().
			Str("transport", string(msg.Transport)).
			Str("from", utils.MaskPhone(msg.From)).
			Str("outcome", string(outcome)).
			Msg("📨 Inbound message handled")
		return outcome
	}

	evt := log.Error()
	switch {
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrChatbotNotFound), errors.Is(err, ErrChatbotInactive):
		evt = log.Warn()
	}
	evt.Err(err).
		Str("transport", string(msg.Transport)).
		Str("from", utils.MaskPhone(msg.From)).
		Str("to", msg.To).
		Str("provider_message_id", msg.ProviderMessageID).
		Str("outcome", string(outcome)).
		Msg("⚠️ Inbound message not fully processed")
	return outcome
}

// Process runs the inbound pipeline and returns typed errors:
// ErrInvalidPayload, ErrChatbotNotFound, ErrChatbotInactive, *PersistenceError,
// *llm.ProviderError or *whatsapp.SendError. Once the inbound message is stored,
// later failures leave it as the only durable effect.
func (s *WebhookService) Process(ctx context.Context, msg whatsapp.InboundMessage) (Outcome, error) {
	// 1. Validate
	if !msg.Valid() {
		return OutcomeIgnored, ErrInvalidPayload
	}

	// 2. Resolve chatbot
	chatbot, err := s.resolveChatbot(ctx, msg)
	if err != nil {
		return OutcomeIgnored, err
	}

	// One message per conversation at a time
	unlock := s.locks.Lock(chatbot.ID.String() + ":" + msg.From)
	defer unlock()

	if dup, err := s.isDuplicate(ctx, msg); err != nil {
		log.Warn().Err(err).Msg("⚠️ Dedup check failed, processing anyway")
	} else if dup {
		return OutcomeDuplicate, nil
	}

	// 3. Persist inbound
	conv, err := s.conversationRepo.GetOrCreate(ctx, chatbot.ID, msg.From, msg.ProfileName)
	if err != nil {
		return OutcomeFailed, &PersistenceError{Op: "conversation", Err: err}
	}
	inbound := &models.Message{
		Content:           msg.Body,
		Direction:         models.DirectionInbound,
		ProviderMessageID: msg.ProviderMessageID,
		Metadata:          metadata(map[string]interface{}{"transport": msg.Transport, "profile_name": msg.ProfileName}),
	}
	if err := s.conversationRepo.AppendMessage(ctx, conv.ID, inbound); err != nil {
		return OutcomeFailed, &PersistenceError{Op: "inbound message", Err: err}
	}

	// 4. Auto-reply check
	if !chatbot.AutoReplyEnabled {
		return OutcomeLogged, nil
	}
	if conv.Status == models.ConversationEscalated {
		// a human agent owns this thread now
		return OutcomeEscalated, nil
	}

	// 5. Business hours
	schedule := chatbot.Schedule(s.cfg.Location)
	if !businesshours.IsOpen(schedule, s.cfg.Now()) {
		if err := s.reply(ctx, msg, conv, schedule.Message(), nil, "out_of_hours"); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeOutOfHours, nil
	}

	// 6. Handover
	if phrase, ok := handover.MatchedPhrase(msg.Body, chatbot.HandoverPhrases()); ok {
		return s.handover(ctx, msg, chatbot, conv, phrase)
	}

	// 7. Knowledge lookup
	bc := llm.BusinessContext{
		BusinessName: chatbot.Name,
		Description:  chatbot.BusinessDescription,
		Personality:  chatbot.Personality,
		Tone:         chatbot.Tone,
		Hours:        schedule.Summary(),
	}
	useKnowledge := false
	var matchedIDs []string
	if chatbot.UseKnowledgeBase && s.matcher != nil {
		matches, err := s.matcher.Match(ctx, chatbot.ID, msg.Body)
		if err != nil {
			log.Warn().Err(err).Str("chatbot_id", chatbot.ID.String()).Msg("⚠️ Knowledge lookup failed, answering without it")
		} else if len(matches) > 0 {
			bc.Knowledge = kb.BuildContext(matches)
			useKnowledge = true
			for _, m := range matches {
				matchedIDs = append(matchedIDs, m.Item.ID.String())
			}
		}
	}

	// 8. AI generate
	resp, err := s.responder.Generate(ctx, msg.Body, bc, llm.Options{
		Tone:         chatbot.Tone,
		MaxTokens:    s.cfg.MaxTokens,
		UseKnowledge: useKnowledge,
	})
	if err != nil {
		return OutcomeFailed, err
	}

	// 9. Send + log outbound
	if err := s.reply(ctx, msg, conv, resp.Content, resp, "ai", matchedIDs...); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeReplied, nil
}

func (s *WebhookService) resolveChatbot(ctx context.Context, msg whatsapp.InboundMessage) (*models.Chatbot, error) {
	var (
		chatbot *models.Chatbot
		err     error
	)
	switch msg.Transport {
	case whatsapp.TransportMeta:
		chatbot, err = s.chatbotRepo.GetByMetaPhoneNumberID(ctx, msg.To)
	default:
		chatbot, err = s.chatbotRepo.GetByWhatsAppNumber(ctx, msg.To)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrChatbotNotFound, msg.To)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "chatbot lookup", Err: err}
	}
	if !chatbot.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrChatbotInactive, chatbot.ID)
	}
	return chatbot, nil
}

// isDuplicate claims the provider id in the fast store, then double checks
// the message log so redeliveries after a restart are caught too
func (s *WebhookService) isDuplicate(ctx context.Context, msg whatsapp.InboundMessage) (bool, error) {
	if msg.ProviderMessageID == "" {
		return false, nil
	}
	claimed, err := s.dedup.Claim(ctx, string(msg.Transport)+":"+msg.ProviderMessageID)
	if err != nil {
		return false, err
	}
	if !claimed {
		return true, nil
	}
	return s.conversationRepo.HasProviderMessage(ctx, msg.ProviderMessageID)
}

func (s *WebhookService) handover(ctx context.Context, msg whatsapp.InboundMessage, chatbot *models.Chatbot, conv *models.Conversation, phrase string) (Outcome, error) {
	if err := s.conversationRepo.UpdateStatus(ctx, conv.ID, models.ConversationEscalated); err != nil {
		log.Error().Err(err).Str("conversation_id", conv.ID.String()).Msg("❌ Failed to mark conversation escalated")
	}

	evt := notification.HandoverEvent{
		ChatbotID:      chatbot.ID.String(),
		ConversationID: conv.ID.String(),
		CustomerPhone:  msg.From,
		CustomerName:   msg.ProfileName,
		Message:        msg.Body,
		MatchedPhrase:  phrase,
		Transport:      string(msg.Transport),
		OccurredAt:     s.cfg.Now(),
	}
	if err := s.notifier.NotifyHandover(ctx, evt); err != nil {
		log.Error().Err(err).Str("conversation_id", conv.ID.String()).Msg("❌ Failed to publish handover event")
	}

	if err := s.reply(ctx, msg, conv, handover.Acknowledgement, nil, "handover"); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeHandedOver, nil
}

// reply sends body back over the inbound transport and logs the outbound
// message once the transport accepted it
func (s *WebhookService) reply(ctx context.Context, msg whatsapp.InboundMessage, conv *models.Conversation, body string, ai *llm.Response, kind string, knowledgeIDs ...string) error {
	sender, err := s.senders.Get(msg.Transport)
	if err != nil {
		return &whatsapp.SendError{Transport: msg.Transport, Err: err}
	}

	providerID, err := sender.Send(ctx, whatsapp.OutboundMessage{From: msg.To, To: msg.From, Body: body})
	if err != nil {
		return err
	}

	meta := map[string]interface{}{"transport": msg.Transport, "kind": kind, "in_reply_to": msg.ProviderMessageID}
	out := &models.Message{
		Content:           body,
		Direction:         models.DirectionOutbound,
		ProviderMessageID: providerID,
	}
	if ai != nil {
		tokens, cost := ai.TokensUsed, ai.Cost
		out.IsAIGenerated = true
		out.TokensUsed = &tokens
		out.Cost = &cost
		out.AIProvider = ai.ProviderUsed
		meta["model"] = ai.Model
		meta["fell_back"] = ai.FellBack
		meta["tokens_estimated"] = ai.Estimated
		if len(knowledgeIDs) > 0 {
			meta["knowledge_ids"] = knowledgeIDs
		}
	}
	out.Metadata = metadata(meta)

	if err := s.conversationRepo.AppendMessage(ctx, conv.ID, out); err != nil {
		// already delivered, only the log entry is lost
		log.Error().Err(err).Str("conversation_id", conv.ID.String()).Str("provider_message_id", providerID).Msg("❌ Failed to log outbound message")
	}
	return nil
}

func metadata(m map[string]interface{}) datatypes.JSON {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
