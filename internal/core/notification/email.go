package notification

import (
	"context"
	"fmt"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/email"
)

// EmailNotifier mails the CS inbox when a customer asks for a human
type EmailNotifier struct {
	provider email.Provider
	to       string
}

func NewEmailNotifier(provider email.Provider, to string) *EmailNotifier {
	return &EmailNotifier{provider: provider, to: to}
}

func (n *EmailNotifier) NotifyHandover(ctx context.Context, evt HandoverEvent) error {
	customer := evt.CustomerPhone
	if evt.CustomerName != "" {
		customer = fmt.Sprintf("%s (%s)", evt.CustomerName, evt.CustomerPhone)
	}

	msg := email.Message{
		To:      n.to,
		Subject: "Permintaan CS dari " + customer,
		HTML: email.Notice("Customer meminta bantuan CS",
			"Customer: "+customer,
			"Pesan: "+evt.Message,
			"Kata kunci: "+evt.MatchedPhrase,
			"Waktu: "+evt.OccurredAt.Format("02 Jan 2006 15:04 MST"),
			"Conversation ID: "+evt.ConversationID,
		),
	}
	if err := n.provider.Send(ctx, msg); err != nil {
		return fmt.Errorf("handover email via %s: %w", n.provider.GetProviderName(), err)
	}
	return nil
}
