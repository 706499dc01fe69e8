package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/database"
)

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

func seedChatbot(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Chatbot {
	t.Helper()
	bot := &models.Chatbot{
		UserID:            userID,
		Name:              "Toko Maju",
		WhatsAppNumber:    "+62822" + uuid.NewString()[:8],
		MetaPhoneNumberID: uuid.NewString()[:10],
		IsActive:          true,
	}
	if err := NewChatbotRepo(db).Create(context.Background(), bot); err != nil {
		t.Fatalf("create chatbot: %v", err)
	}
	return bot
}

func TestChatbotLookups(t *testing.T) {
	db := openTestDB(t)
	repo := NewChatbotRepo(db)
	owner := uuid.New()
	bot := seedChatbot(t, db, owner)
	ctx := context.Background()

	got, err := repo.GetByWhatsAppNumber(ctx, bot.WhatsAppNumber)
	if err != nil || got.ID != bot.ID {
		t.Fatalf("GetByWhatsAppNumber = %v, %v", got, err)
	}
	got, err = repo.GetByMetaPhoneNumberID(ctx, bot.MetaPhoneNumberID)
	if err != nil || got.ID != bot.ID {
		t.Fatalf("GetByMetaPhoneNumberID = %v, %v", got, err)
	}
	if _, err := repo.GetByWhatsAppNumber(ctx, "+6200000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetOwned(ctx, bot.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user must not see the chatbot, got %v", err)
	}
	if _, err := repo.GetOwned(ctx, bot.ID, owner); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
}

func TestKBRepoCRUDAndUsage(t *testing.T) {
	db := openTestDB(t)
	bot := seedChatbot(t, db, uuid.New())
	repo := NewKBRepo(db)
	ctx := context.Background()

	active := &models.KnowledgeItem{ChatbotID: bot.ID, Question: "Jam buka?", Answer: "08.00", Keywords: []string{"jam"}, IsActive: true}
	inactive := &models.KnowledgeItem{ChatbotID: bot.ID, Question: "Lama", Answer: "x", IsActive: false}
	for _, it := range []*models.KnowledgeItem{active, inactive} {
		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, err := repo.ListActive(ctx, bot.ID)
	if err != nil || len(items) != 1 || items[0].ID != active.ID {
		t.Fatalf("ListActive = %v, %v", items, err)
	}
	if len(items[0].Keywords) != 1 || items[0].Keywords[0] != "jam" {
		t.Fatalf("keywords not round-tripped: %v", items[0].Keywords)
	}

	if err := repo.IncrementUsage(ctx, []uuid.UUID{active.ID}); err != nil {
		t.Fatal(err)
	}
	if err := repo.IncrementUsage(ctx, []uuid.UUID{active.ID}); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.Get(ctx, bot.ID, active.ID)
	if got.UsageCount != 2 {
		t.Fatalf("usage = %d, want 2", got.UsageCount)
	}

	got.Answer = "09.00"
	got.UsageCount = 0
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.Get(ctx, bot.ID, active.ID)
	if got.Answer != "09.00" || got.UsageCount != 2 {
		t.Fatalf("update should change answer but keep usage: %+v", got)
	}

	if err := repo.Delete(ctx, uuid.New(), active.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete scoped to another chatbot should be not found, got %v", err)
	}
	if err := repo.Delete(ctx, bot.ID, active.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, bot.ID, active.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestConversationGetOrCreateIsUnique(t *testing.T) {
	db := openTestDB(t)
	bot := seedChatbot(t, db, uuid.New())
	repo := NewConversationRepo(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := repo.GetOrCreate(ctx, bot.ID, "+6281111111111", "")
			errs[i] = err
			if conv != nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("GetOrCreate err: %v", errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatal("expected one conversation per (chatbot, phone)")
		}
	}

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	if count != 1 {
		t.Fatalf("conversation rows = %d, want 1", count)
	}

	conv, err := repo.GetOrCreate(ctx, bot.ID, "+6281111111111", "Budi")
	if err != nil || conv.CustomerName != "Budi" {
		t.Fatalf("expected name update, got %+v %v", conv, err)
	}
}

func TestAppendMessageAndDedupLookup(t *testing.T) {
	db := openTestDB(t)
	bot := seedChatbot(t, db, uuid.New())
	repo := NewConversationRepo(db)
	ctx := context.Background()

	conv, err := repo.GetOrCreate(ctx, bot.ID, "+6281111111111", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateStatus(ctx, conv.ID, models.ConversationResolved); err != nil {
		t.Fatal(err)
	}

	in := &models.Message{Content: "Halo", Direction: models.DirectionInbound, ProviderMessageID: "SM1"}
	if err := repo.AppendMessage(ctx, conv.ID, in); err != nil {
		t.Fatalf("append: %v", err)
	}

	var reloaded models.Conversation
	db.First(&reloaded, "id = ?", conv.ID)
	if reloaded.Status != models.ConversationActive {
		t.Fatalf("inbound message should reopen resolved conversation, got %s", reloaded.Status)
	}

	seen, err := repo.HasProviderMessage(ctx, "SM1")
	if err != nil || !seen {
		t.Fatalf("HasProviderMessage(SM1) = %v, %v", seen, err)
	}
	if seen, _ := repo.HasProviderMessage(ctx, "SM2"); seen {
		t.Fatal("unknown id reported as seen")
	}
	if seen, _ := repo.HasProviderMessage(ctx, ""); seen {
		t.Fatal("empty id must never be seen")
	}

	msgs, err := repo.ListMessages(ctx, conv.ID, 50)
	if err != nil || len(msgs) != 1 || msgs[0].ConversationID != conv.ID {
		t.Fatalf("ListMessages = %v, %v", msgs, err)
	}
}

func TestConversationOwnershipAndListing(t *testing.T) {
	db := openTestDB(t)
	owner := uuid.New()
	bot := seedChatbot(t, db, owner)
	repo := NewConversationRepo(db)
	ctx := context.Background()

	a, _ := repo.GetOrCreate(ctx, bot.ID, "+6281", "")
	b, _ := repo.GetOrCreate(ctx, bot.ID, "+6282", "")
	repo.UpdateStatus(ctx, b.ID, models.ConversationEscalated)

	if _, err := repo.GetOwned(ctx, a.ID, owner); err != nil {
		t.Fatalf("owner should see conversation: %v", err)
	}
	if _, err := repo.GetOwned(ctx, a.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger should get not found, got %v", err)
	}

	all, total, err := repo.ListByChatbot(ctx, bot.ID, "", 10, 0)
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("ListByChatbot = %d/%d, %v", len(all), total, err)
	}
	escalated, total, _ := repo.ListByChatbot(ctx, bot.ID, models.ConversationEscalated, 10, 0)
	if total != 1 || escalated[0].ID != b.ID {
		t.Fatalf("status filter failed: %+v", escalated)
	}
}

func TestResolveIdle(t *testing.T) {
	db := openTestDB(t)
	bot := seedChatbot(t, db, uuid.New())
	repo := NewConversationRepo(db)
	ctx := context.Background()

	active, _ := repo.GetOrCreate(ctx, bot.ID, "+6281", "")
	escalated, _ := repo.GetOrCreate(ctx, bot.ID, "+6282", "")
	repo.UpdateStatus(ctx, escalated.ID, models.ConversationEscalated)

	n, err := repo.ResolveIdle(ctx, time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("recent conversations must stay open: %d, %v", n, err)
	}

	n, err = repo.ResolveIdle(ctx, time.Now().Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("ResolveIdle = %d, %v; want 1", n, err)
	}

	var gotActive models.Conversation
	if err := db.First(&gotActive, "id = ?", active.ID).Error; err != nil {
		t.Fatalf("load active: %v", err)
	}
	if gotActive.Status != models.ConversationResolved {
		t.Fatalf("status = %s", gotActive.Status)
	}
	var gotEscalated models.Conversation
	if err := db.First(&gotEscalated, "id = ?", escalated.ID).Error; err != nil {
		t.Fatalf("load escalated: %v", err)
	}
	if gotEscalated.Status != models.ConversationEscalated {
		t.Fatal("escalated conversations are left for the human agent")
	}
}
