package notification

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/utils"
)

// HandoverEvent is published when a conversation is escalated to a human agent
type HandoverEvent struct {
	ChatbotID      string    `json:"chatbot_id"`
	ConversationID string    `json:"conversation_id"`
	CustomerPhone  string    `json:"customer_phone"`
	CustomerName   string    `json:"customer_name,omitempty"`
	Message        string    `json:"message"`
	MatchedPhrase  string    `json:"matched_phrase"`
	Transport      string    `json:"transport"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier delivers handover events to whoever staffs the human queue
type Notifier interface {
	NotifyHandover(ctx context.Context, evt HandoverEvent) error
}

// LogNotifier only writes the event to the log, used when no broker is configured
type LogNotifier struct{}

func (LogNotifier) NotifyHandover(ctx context.Context, evt HandoverEvent) error {
	log.Info().
		Str("chatbot_id", evt.ChatbotID).
		Str("conversation_id", evt.ConversationID).
		Str("customer", utils.MaskPhone(evt.CustomerPhone)).
		Str("phrase", evt.MatchedPhrase).
		Msg("🙋 Handover requested")
	return nil
}

// Multi fans an event out to several notifiers and joins their errors
type Multi []Notifier

func (m Multi) NotifyHandover(ctx context.Context, evt HandoverEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyHandover(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
