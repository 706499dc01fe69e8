package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/email"
)

type recordingNotifier struct {
	events []HandoverEvent
	err    error
}

func (r *recordingNotifier) NotifyHandover(ctx context.Context, evt HandoverEvent) error {
	r.events = append(r.events, evt)
	return r.err
}

func TestMultiFansOutAndJoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("broker down")}
	evt := HandoverEvent{ChatbotID: "bot", CustomerPhone: "+6281111111111", OccurredAt: time.Now()}

	err := Multi{LogNotifier{}, ok, nil, failing}.NotifyHandover(context.Background(), evt)
	if err == nil || err.Error() != "broker down" {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.events) != 1 || len(failing.events) != 1 {
		t.Fatal("every notifier should receive the event")
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	if err := (LogNotifier{}).NotifyHandover(context.Background(), HandoverEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type capturingMailer struct {
	sent []email.Message
	err  error
}

func (m *capturingMailer) Send(ctx context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *capturingMailer) GetProviderName() string { return "capture" }

func TestEmailNotifier(t *testing.T) {
	mailer := &capturingMailer{}
	n := NewEmailNotifier(mailer, "cs@toko.id")
	evt := HandoverEvent{
		ConversationID: "conv-1",
		CustomerPhone:  "+6281111111111",
		CustomerName:   "Budi",
		Message:        "tolong hubungkan ke CS",
		MatchedPhrase:  "cs",
		OccurredAt:     time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC),
	}

	if err := n.NotifyHandover(context.Background(), evt); err != nil {
		t.Fatalf("NotifyHandover err: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent = %d", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To != "cs@toko.id" || !strings.Contains(msg.Subject, "Budi (+6281111111111)") || !strings.Contains(msg.HTML, "tolong hubungkan ke CS") {
		t.Fatalf("unexpected email: %+v", msg)
	}

	mailer.err = errors.New("quota")
	if err := n.NotifyHandover(context.Background(), evt); err == nil || !strings.Contains(err.Error(), "capture") {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
