package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/businesshours"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/handover"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/repositories"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/database"
)

var wib = time.FixedZone("WIB", 7*60*60)

// Monday 12 October 2026
var (
	mondayMorning = time.Date(2026, 10, 12, 10, 0, 0, 0, wib)
	mondayNight   = time.Date(2026, 10, 12, 20, 0, 0, 0, wib)
)

const businessNumber = "+6282222222222"
const customerNumber = "+6281111111111"

type fakeSender struct {
	mu        sync.Mutex
	transport whatsapp.Transport
	sent      []whatsapp.OutboundMessage
	err       error
}

func (f *fakeSender) Transport() whatsapp.Transport { return f.transport }

func (f *fakeSender) Send(ctx context.Context, msg whatsapp.OutboundMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("OUT%d", len(f.sent)), nil
}

type fakeProvider struct {
	name   string
	reply  string
	tokens int
	err    error
	calls  int
	system string
}

func (f *fakeProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string, opts llm.GenerateOptions) (*llm.Completion, error) {
	f.calls++
	f.system = systemPrompt
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.reply, Model: f.name + "-test", TokensUsed: f.tokens}, nil
}

func (f *fakeProvider) GetProviderName() string { return f.name }

type recordingNotifier struct {
	events []notification.HandoverEvent
}

func (r *recordingNotifier) NotifyHandover(ctx context.Context, evt notification.HandoverEvent) error {
	r.events = append(r.events, evt)
	return nil
}

type testEnv struct {
	db        *gorm.DB
	svc       *WebhookService
	matcher   *kb.Matcher
	twilio    *fakeSender
	meta      *fakeSender
	primary   *fakeProvider
	secondary *fakeProvider
	notifier  *recordingNotifier
	chatbot   *models.Chatbot
	now       time.Time
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T, mutate func(*models.Chatbot)) *testEnv {
	t.Helper()
	db := openTestDB(t)

	bot := &models.Chatbot{
		UserID:              uuid.New(),
		Name:                "Toko Maju",
		WhatsAppNumber:      businessNumber,
		MetaPhoneNumberID:   "1098765",
		BusinessDescription: "Toko sembako di Bandung",
		Tone:                llm.ToneFriendly,
		BusinessHours:       datatypes.JSON(`{"enabled":true,"message":"Maaf, kami sedang tutup.","days":{"monday":{"open":true,"start":"08:00","end":"17:00"}}}`),
		HandoverKeywords:    datatypes.JSON(`["cs","agent"]`),
		AutoReplyEnabled:    true,
		UseKnowledgeBase:    true,
		IsActive:            true,
	}
	if mutate != nil {
		mutate(bot)
	}

	chatbotRepo := repositories.NewChatbotRepo(db)
	if err := chatbotRepo.Create(context.Background(), bot); err != nil {
		t.Fatalf("create chatbot: %v", err)
	}

	kbRepo := repositories.NewKBRepo(db)
	if err := kbRepo.Create(context.Background(), &models.KnowledgeItem{
		ChatbotID: bot.ID,
		Question:  "Jam buka toko berapa?",
		Answer:    "Kami buka Senin pukul 08.00-17.00 WIB.",
		Keywords:  []string{"jam buka"},
		IsActive:  true,
	}); err != nil {
		t.Fatalf("create knowledge: %v", err)
	}

	env := &testEnv{
		db:        db,
		twilio:    &fakeSender{transport: whatsapp.TransportTwilio},
		meta:      &fakeSender{transport: whatsapp.TransportMeta},
		primary:   &fakeProvider{name: "openai", reply: "Halo kak, kami buka jam 08.00.", tokens: 87},
		secondary: &fakeProvider{name: "gemini", reply: "Halo dari cadangan."},
		notifier:  &recordingNotifier{},
		chatbot:   bot,
		now:       mondayMorning,
	}
	env.matcher = kb.NewMatcher(kbRepo, kb.DefaultThreshold, kb.DefaultLimit)
	env.svc = NewWebhookService(
		chatbotRepo,
		repositories.NewConversationRepo(db),
		env.matcher,
		llm.NewResponder(env.primary, env.secondary),
		whatsapp.NewRegistry(env.twilio, env.meta),
		nil,
		env.notifier,
		WebhookConfig{Location: wib, MaxTokens: 300, Now: func() time.Time { return env.now }},
	)
	t.Cleanup(env.matcher.Flush)
	return env
}

func twilioMessage(body, sid string) whatsapp.InboundMessage {
	return whatsapp.InboundMessage{
		Transport:         whatsapp.TransportTwilio,
		From:              customerNumber,
		To:                businessNumber,
		Body:              body,
		ProviderMessageID: sid,
		ProfileName:       "Budi",
	}
}

func (e *testEnv) messages(t *testing.T, direction string) []models.Message {
	t.Helper()
	var msgs []models.Message
	if err := e.db.Where("direction = ?", direction).Order("created_at ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("query messages: %v", err)
	}
	return msgs
}

func (e *testEnv) conversation(t *testing.T) models.Conversation {
	t.Helper()
	var conv models.Conversation
	if err := e.db.Where("chatbot_id = ? AND customer_phone = ?", e.chatbot.ID, customerNumber).First(&conv).Error; err != nil {
		t.Fatalf("load conversation: %v", err)
	}
	return conv
}

func TestProcessOutOfHoursSendsClosedMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.now = mondayNight

	outcome, err := env.svc.Process(context.Background(), twilioMessage("Halo, jam buka berapa?", "SM1"))
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	if outcome != OutcomeOutOfHours {
		t.Fatalf("outcome = %s", outcome)
	}

	in, out := env.messages(t, models.DirectionInbound), env.messages(t, models.DirectionOutbound)
	if len(in) != 1 || len(out) != 1 {
		t.Fatalf("expected 1 inbound + 1 outbound, got %d + %d", len(in), len(out))
	}
	if out[0].Content != "Maaf, kami sedang tutup." || out[0].IsAIGenerated {
		t.Fatalf("unexpected outbound: %+v", out[0])
	}
	if env.primary.calls+env.secondary.calls != 0 {
		t.Fatal("AI must not be called out of hours")
	}
	if len(env.twilio.sent) != 1 || env.twilio.sent[0].To != customerNumber || env.twilio.sent[0].From != businessNumber {
		t.Fatalf("unexpected send: %+v", env.twilio.sent)
	}
}

func TestProcessHandoverEscalates(t *testing.T) {
	env := newTestEnv(t, nil)

	outcome, err := env.svc.Process(context.Background(), twilioMessage("tolong hubungkan ke CS", "SM1"))
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	if outcome != OutcomeHandedOver {
		t.Fatalf("outcome = %s", outcome)
	}

	in, out := env.messages(t, models.DirectionInbound), env.messages(t, models.DirectionOutbound)
	if len(in) != 1 || len(out) != 1 || out[0].Content != handover.Acknowledgement {
		t.Fatalf("expected inbound + acknowledgement, got %d + %d", len(in), len(out))
	}
	if env.primary.calls != 0 {
		t.Fatal("AI must not be called on handover")
	}
	if conv := env.conversation(t); conv.Status != models.ConversationEscalated {
		t.Fatalf("status = %s, want escalated", conv.Status)
	}
	if len(env.notifier.events) != 1 || env.notifier.events[0].MatchedPhrase != "cs" {
		t.Fatalf("expected one handover event, got %+v", env.notifier.events)
	}

	// Follow-ups stay with the human agent
	outcome, err = env.svc.Process(context.Background(), twilioMessage("halo?", "SM2"))
	if err != nil || outcome != OutcomeEscalated {
		t.Fatalf("follow-up = %s, %v", outcome, err)
	}
	if len(env.messages(t, models.DirectionOutbound)) != 1 {
		t.Fatal("no reply expected while escalated")
	}
}

func TestProcessAIReply(t *testing.T) {
	env := newTestEnv(t, nil)

	outcome, err := env.svc.Process(context.Background(), twilioMessage("Halo, jam buka berapa?", "SM1"))
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	if outcome != OutcomeReplied {
		t.Fatalf("outcome = %s", outcome)
	}

	in, out := env.messages(t, models.DirectionInbound), env.messages(t, models.DirectionOutbound)
	if len(in) != 1 || len(out) != 1 {
		t.Fatalf("expected 1 inbound + 1 outbound, got %d + %d", len(in), len(out))
	}
	if in[0].ConversationID != out[0].ConversationID {
		t.Fatal("both turns must belong to the same conversation")
	}
	reply := out[0]
	if !reply.IsAIGenerated || reply.TokensUsed == nil || reply.Cost == nil {
		t.Fatalf("AI metadata missing: %+v", reply)
	}
	if *reply.TokensUsed != 87 || reply.AIProvider != "openai" || reply.ProviderMessageID != "OUT1" {
		t.Fatalf("unexpected outbound: %+v", reply)
	}
	if in[0].ProviderMessageID != "SM1" {
		t.Fatalf("inbound provider id = %q", in[0].ProviderMessageID)
	}

	if !strings.Contains(env.primary.system, "Kami buka Senin pukul 08.00-17.00 WIB.") {
		t.Fatal("knowledge context should be folded into the prompt")
	}
	if !strings.Contains(string(reply.Metadata), "knowledge_ids") {
		t.Fatalf("matched knowledge ids missing from metadata: %s", reply.Metadata)
	}

	env.matcher.Flush()
	var item models.KnowledgeItem
	env.db.First(&item, "chatbot_id = ?", env.chatbot.ID)
	if item.UsageCount != 1 {
		t.Fatalf("usage = %d, want 1", item.UsageCount)
	}

	if conv := env.conversation(t); conv.CustomerName != "Budi" {
		t.Fatalf("customer name = %q", conv.CustomerName)
	}
}

func TestProcessFallsBackToSecondary(t *testing.T) {
	env := newTestEnv(t, nil)
	env.primary.err = errors.New("openai down")

	outcome, err := env.svc.Process(context.Background(), twilioMessage("Ada promo?", "SM1"))
	if err != nil || outcome != OutcomeReplied {
		t.Fatalf("Process = %s, %v", outcome, err)
	}

	out := env.messages(t, models.DirectionOutbound)
	if len(out) != 1 || out[0].AIProvider != "gemini" || out[0].Content != "Halo dari cadangan." {
		t.Fatalf("unexpected outbound: %+v", out)
	}
	// gemini reported no usage, tokens are estimated
	if out[0].TokensUsed == nil || *out[0].TokensUsed != llm.EstimateTokens("Halo dari cadangan.") {
		t.Fatalf("expected estimated tokens, got %v", out[0].TokensUsed)
	}
}

func TestProcessBothProvidersFail(t *testing.T) {
	env := newTestEnv(t, nil)
	env.primary.err = errors.New("openai down")
	env.secondary.err = errors.New("gemini down")

	outcome, err := env.svc.Process(context.Background(), twilioMessage("Ada promo?", "SM1"))
	var perr *llm.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if outcome != OutcomeFailed {
		t.Fatalf("outcome = %s", outcome)
	}
	if len(env.messages(t, models.DirectionInbound)) != 1 {
		t.Fatal("inbound must still be logged")
	}
	if len(env.messages(t, models.DirectionOutbound)) != 0 || len(env.twilio.sent) != 0 {
		t.Fatal("no outbound message may be written or sent")
	}
}

func TestProcessDuplicateDelivery(t *testing.T) {
	env := newTestEnv(t, nil)
	msg := twilioMessage("Ada promo?", "SM-DUP")

	if outcome, err := env.svc.Process(context.Background(), msg); err != nil || outcome != OutcomeReplied {
		t.Fatalf("first delivery = %s, %v", outcome, err)
	}
	outcome, err := env.svc.Process(context.Background(), msg)
	if err != nil || outcome != OutcomeDuplicate {
		t.Fatalf("second delivery = %s, %v", outcome, err)
	}
	if n := len(env.messages(t, models.DirectionInbound)); n != 1 {
		t.Fatalf("inbound rows = %d, want 1", n)
	}
	if env.primary.calls != 1 {
		t.Fatalf("AI calls = %d, want 1", env.primary.calls)
	}
}

func TestProcessDuplicateAfterRestartUsesMessageLog(t *testing.T) {
	env := newTestEnv(t, nil)
	msg := twilioMessage("Ada promo?", "SM-OLD")
	if _, err := env.svc.Process(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	// fresh service, empty in-memory dedup
	restarted := NewWebhookService(env.svc.chatbotRepo, env.svc.conversationRepo, env.matcher, env.svc.responder, env.svc.senders, nil, nil, env.svc.cfg)
	outcome, err := restarted.Process(context.Background(), msg)
	if err != nil || outcome != OutcomeDuplicate {
		t.Fatalf("redelivery after restart = %s, %v", outcome, err)
	}
}

func TestProcessAutoReplyDisabled(t *testing.T) {
	env := newTestEnv(t, func(c *models.Chatbot) { c.AutoReplyEnabled = false })

	outcome, err := env.svc.Process(context.Background(), twilioMessage("tolong hubungkan ke CS", "SM1"))
	if err != nil || outcome != OutcomeLogged {
		t.Fatalf("Process = %s, %v", outcome, err)
	}
	if len(env.messages(t, models.DirectionInbound)) != 1 || len(env.messages(t, models.DirectionOutbound)) != 0 {
		t.Fatal("only the inbound message should be stored")
	}
	if len(env.twilio.sent) != 0 {
		t.Fatal("nothing should be sent")
	}
}

func TestProcessRejectsUnknownInactiveAndInvalid(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	unknown := twilioMessage("halo", "SM1")
	unknown.To = "+6200000000"
	if _, err := env.svc.Process(ctx, unknown); !errors.Is(err, ErrChatbotNotFound) {
		t.Fatalf("expected ErrChatbotNotFound, got %v", err)
	}

	if _, err := env.svc.Process(ctx, twilioMessage("   ", "SM2")); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}

	env.db.Model(&models.Chatbot{}).Where("id = ?", env.chatbot.ID).Update("is_active", false)
	if _, err := env.svc.Process(ctx, twilioMessage("halo", "SM3")); !errors.Is(err, ErrChatbotInactive) {
		t.Fatalf("expected ErrChatbotInactive, got %v", err)
	}

	var count int64
	env.db.Model(&models.Message{}).Count(&count)
	if count != 0 {
		t.Fatalf("no messages should be stored, got %d", count)
	}
}

func TestProcessSendFailureKeepsInboundOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	env.twilio.err = &whatsapp.SendError{Transport: whatsapp.TransportTwilio, StatusCode: 400, Err: errors.New("bad number")}

	outcome, err := env.svc.Process(context.Background(), twilioMessage("Ada promo?", "SM1"))
	var se *whatsapp.SendError
	if !errors.As(err, &se) || outcome != OutcomeFailed {
		t.Fatalf("expected SendError, got %s, %v", outcome, err)
	}
	if len(env.messages(t, models.DirectionInbound)) != 1 || len(env.messages(t, models.DirectionOutbound)) != 0 {
		t.Fatal("only the inbound message should be stored")
	}

	// the boundary swallows it
	if got := env.svc.HandleInbound(context.Background(), twilioMessage("Ada promo lagi?", "SM2")); got != OutcomeFailed {
		t.Fatalf("HandleInbound = %s", got)
	}
}

func TestProcessMetaTransport(t *testing.T) {
	env := newTestEnv(t, nil)
	msg := whatsapp.InboundMessage{
		Transport:         whatsapp.TransportMeta,
		From:              customerNumber,
		To:                "1098765",
		Body:              "Ada promo?",
		ProviderMessageID: "wamid.1",
	}

	outcome, err := env.svc.Process(context.Background(), msg)
	if err != nil || outcome != OutcomeReplied {
		t.Fatalf("Process = %s, %v", outcome, err)
	}
	if len(env.meta.sent) != 1 || env.meta.sent[0].From != "1098765" || len(env.twilio.sent) != 0 {
		t.Fatalf("reply should go out over the Cloud API: meta=%+v twilio=%+v", env.meta.sent, env.twilio.sent)
	}
}

func TestProcessMalformedScheduleDoesNotGate(t *testing.T) {
	env := newTestEnv(t, func(c *models.Chatbot) {
		c.BusinessHours = datatypes.JSON(`{"enabled":true,"days":{"monday":{"open":true,"start":"late","end":"17:00"}}}`)
	})
	env.now = mondayNight

	outcome, err := env.svc.Process(context.Background(), twilioMessage("Ada promo?", "SM1"))
	if err != nil || outcome != OutcomeReplied {
		t.Fatalf("Process = %s, %v", outcome, err)
	}
	if _, perr := businesshours.Parse(env.chatbot.BusinessHours, wib); perr == nil {
		t.Fatal("fixture should be malformed")
	}
}
