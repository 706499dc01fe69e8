package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/repositories"
)

// AIService backs the dashboard's manual test tools; nothing it does is
// written to conversation history
type AIService struct {
	chatbotRepo repositories.ChatbotRepo
	matcher     *kb.Matcher
	responder   AIResponder
	senders     *whatsapp.Registry
	cfg         WebhookConfig
}

func NewAIService(chatbotRepo repositories.ChatbotRepo, matcher *kb.Matcher, responder AIResponder, senders *whatsapp.Registry, cfg WebhookConfig) *AIService {
	return &AIService{chatbotRepo: chatbotRepo, matcher: matcher, responder: responder, senders: senders, cfg: cfg}
}

// TestRequest asks the responder a question, optionally as a given chatbot
type TestRequest struct {
	Prompt       string     `json:"prompt" example:"Jam buka toko berapa?"`
	ChatbotID    *uuid.UUID `json:"chatbot_id,omitempty"`
	Tone         string     `json:"tone,omitempty" example:"friendly"`
	MaxTokens    int        `json:"max_tokens,omitempty"`
	Temperature  *float32   `json:"temperature,omitempty"`
	UseKnowledge bool       `json:"use_knowledge,omitempty"`
}

// TestResponse mirrors llm.Response for the API
type TestResponse struct {
	Content      string  `json:"content"`
	ProviderUsed string  `json:"provider_used"`
	Model        string  `json:"model"`
	TokensUsed   int     `json:"tokens_used"`
	Cost         float64 `json:"cost"`
	FellBack     bool    `json:"fell_back"`
}

func (s *AIService) Test(ctx context.Context, userID uuid.UUID, req TestRequest) (*TestResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, invalid("prompt", "is required")
	}
	if req.Tone != "" && req.Tone != llm.ToneFormal && req.Tone != llm.ToneCasual && req.Tone != llm.ToneFriendly {
		return nil, invalid("tone", "must be formal, casual or friendly")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return nil, invalid("temperature", "must be within [0, 2]")
	}
	if req.MaxTokens < 0 {
		return nil, invalid("max_tokens", "must not be negative")
	}

	bc := llm.BusinessContext{}
	opts := llm.Options{Tone: req.Tone, MaxTokens: req.MaxTokens, Temperature: req.Temperature}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = s.cfg.MaxTokens
	}

	if req.ChatbotID != nil {
		chatbot, err := s.chatbotRepo.GetOwned(ctx, *req.ChatbotID, userID)
		if err != nil {
			return nil, err
		}
		bc = llm.BusinessContext{
			BusinessName: chatbot.Name,
			Description:  chatbot.BusinessDescription,
			Personality:  chatbot.Personality,
			Tone:         chatbot.Tone,
			Hours:        chatbot.Schedule(s.cfg.Location).Summary(),
		}
		if req.UseKnowledge && s.matcher != nil {
			matches, err := s.matcher.Search(ctx, chatbot.ID, prompt)
			if err != nil {
				return nil, err
			}
			bc.Knowledge = kb.BuildContext(matches)
			opts.UseKnowledge = bc.Knowledge != ""
		}
	}

	resp, err := s.responder.Generate(ctx, prompt, bc, opts)
	if err != nil {
		return nil, err
	}
	return &TestResponse{
		Content:      resp.Content,
		ProviderUsed: resp.ProviderUsed,
		Model:        resp.Model,
		TokensUsed:   resp.TokensUsed,
		Cost:         resp.Cost,
		FellBack:     resp.FellBack,
	}, nil
}

// TestSendRequest sends a one-off message from a chatbot's number
type TestSendRequest struct {
	To   string `json:"to" example:"+6281234567890"`
	Body string `json:"body" example:"Halo, ini pesan uji coba."`
}

// TestSendResponse carries the provider's message id
type TestSendResponse struct {
	Transport         string `json:"transport"`
	ProviderMessageID string `json:"provider_message_id"`
}

// TestSend surfaces transport errors to the caller, unlike the webhook path
func (s *AIService) TestSend(ctx context.Context, userID, chatbotID uuid.UUID, req TestSendRequest) (*TestSendResponse, error) {
	to := whatsapp.NormalizePhone(req.To)
	if to == "" {
		return nil, invalid("to", "must be a phone number")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, invalid("body", "is required")
	}

	chatbot, err := s.chatbotRepo.GetOwned(ctx, chatbotID, userID)
	if err != nil {
		return nil, err
	}

	transport, from := s.outboundRoute(chatbot)
	if from == "" {
		return nil, invalid("chatbot", "has no WhatsApp number configured")
	}

	sender, err := s.senders.Get(transport)
	if err != nil {
		return nil, &whatsapp.SendError{Transport: transport, Err: err}
	}
	id, err := sender.Send(ctx, whatsapp.OutboundMessage{From: from, To: to, Body: req.Body})
	if err != nil {
		return nil, err
	}
	return &TestSendResponse{Transport: string(transport), ProviderMessageID: id}, nil
}

// outboundRoute prefers the Cloud API when the chatbot has a phone_number_id
// and the Meta transport is configured
func (s *AIService) outboundRoute(chatbot *models.Chatbot) (whatsapp.Transport, string) {
	if chatbot.MetaPhoneNumberID != "" {
		if _, err := s.senders.Get(whatsapp.TransportMeta); err == nil {
			return whatsapp.TransportMeta, chatbot.MetaPhoneNumberID
		}
	}
	return whatsapp.TransportTwilio, chatbot.WhatsAppNumber
}
