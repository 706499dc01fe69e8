package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/guard"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/maintenance"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/handlers"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/repositories"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/services"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/docs"
)

// @title WhatsApp CS Chatbot API
// @version 1.0
// @description Inbound WhatsApp pipeline (Twilio and Meta Cloud API) with knowledge base, AI replies, business hours and human handover
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting saas-api")

	// Init database
	db, err := database.NewDB(cfg.DatabaseURL, cfg.Env == "development")
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Database connection failed")
	}
	defer db.Close()

	if database.IsSQLite(cfg.DatabaseURL) {
		// Postgres schema comes from cmd/migrate
		if err := db.GORM.AutoMigrate(models.All()...); err != nil {
			log.Fatal().Err(err).Msg("❌ SQLite auto-migrate failed")
		}
	}

	// Init repositories
	chatbotRepo := repositories.NewChatbotRepo(db.GORM)
	kbRepo := repositories.NewKBRepo(db.GORM)
	conversationRepo := repositories.NewConversationRepo(db.GORM)

	// Init AI providers (primary + fallback)
	responder, err := buildResponder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to init AI providers")
	}
	log.Info().Strs("providers", responder.Providers()).Msg("🤖 AI responder ready")

	matcher := kb.NewMatcher(kbRepo, cfg.MatchThreshold, cfg.MatchLimit)

	// Init WhatsApp transports
	senders := buildSenders(cfg)
	if len(senders.Configured()) == 0 {
		log.Warn().Msg("⚠️ No WhatsApp transport configured, replies will fail")
	}

	// Dedup store
	ctx := context.Background()
	var dedup guard.Deduplicator
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = guard.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Redis unavailable, using in-memory dedup")
		} else {
			dedup = guard.NewRedisDeduplicator(redisClient, guard.DefaultDedupTTL)
			log.Info().Str("addr", cfg.RedisAddr).Msg("✅ Redis dedup enabled")
		}
	}

	// Handover notifications
	notifiers := notification.Multi{notification.LogNotifier{}}
	var rabbit *notification.RabbitPublisher
	if cfg.RabbitURL != "" {
		rabbit, err = notification.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ RabbitMQ unavailable, handover events are only logged")
		} else {
			notifiers = append(notifiers, rabbit)
			log.Info().Str("queue", cfg.RabbitQueue).Msg("🐰 Handover events published to RabbitMQ")
		}
	}
	if name, key := cfg.EmailAPIKey(); key != "" && cfg.HandoverEmailTo != "" {
		mailer, err := email.NewProvider(email.Config{Provider: name, APIKey: key, FromEmail: cfg.EmailFrom, FromName: cfg.EmailFromName})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Email provider misconfigured, handover emails disabled")
		} else {
			notifiers = append(notifiers, notification.NewEmailNotifier(mailer, cfg.HandoverEmailTo))
			log.Info().Str("provider", mailer.GetProviderName()).Msg("📧 Handover emails enabled")
		}
	}

	// Init services
	pipelineCfg := services.WebhookConfig{
		Location:  cfg.Location(),
		MaxTokens: cfg.AIMaxTokens,
	}
	webhookService := services.NewWebhookService(chatbotRepo, conversationRepo, matcher, responder, senders, dedup, notifiers, pipelineCfg)
	knowledgeService := services.NewKnowledgeService(chatbotRepo, kbRepo, matcher)
	conversationService := services.NewConversationService(chatbotRepo, conversationRepo)
	aiService := services.NewAIService(chatbotRepo, matcher, responder, senders, pipelineCfg)

	// Maintenance jobs
	scheduler := maintenance.NewScheduler()
	sweeper := &maintenance.ConversationSweeper{Repo: conversationRepo, After: cfg.IdleResolveAfter}
	if err := scheduler.AddJob("resolve-idle-conversations", cfg.SweepSchedule, sweeper.Job()); err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid CONVERSATION_SWEEP_SCHEDULE")
	}
	scheduler.Start()

	// Init handlers
	webhookCfg := handlers.WebhookConfig{
		TwilioWebhookURL: cfg.TwilioWebhookURL,
		MetaVerifyToken:  cfg.MetaVerifyToken,
		MetaAppSecret:    cfg.MetaAppSecret,
		Timeout:          cfg.WebhookTimeout,
	}
	if cfg.TwilioValidateSig && cfg.TwilioAuthToken != "" {
		webhookCfg.TwilioValidator = whatsapp.NewTwilioValidator(cfg.TwilioAuthToken)
	}
	healthHandler := handlers.NewHealthHandler(db.DB, responder.Providers(), senders)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "WhatsApp CS Chatbot API",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Format: "${time} ${status} ${method} ${path} ${latency}\n"}))
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	app.Get("/health", healthHandler.GetHealth)

	// Transport webhooks
	handlers.NewWebhookHandler(webhookService, webhookCfg).Register(app)

	// Dashboard API
	if cfg.SupabaseJWTSecret == "" {
		log.Warn().Msg("⚠️ SUPABASE_JWT_SECRET is empty, dashboard API disabled")
	} else {
		api := app.Group("/api", auth.AuthMiddleware(auth.NewJWTService(cfg.SupabaseJWTSecret)))
		handlers.NewKBHandler(knowledgeService).Register(api)
		handlers.NewConversationHandler(conversationService).Register(api)
		handlers.NewAIHandler(aiService).Register(api)
	}

	go func() {
		log.Info().Msgf("✅ saas-api running at :%s", cfg.Port)
		log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("❌ Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Error().Err(err).Msg("❌ Server shutdown failed")
	}
	scheduler.Stop()
	matcher.Flush()
	if rabbit != nil {
		_ = rabbit.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	log.Info().Msg("👋 Bye")
}

func buildResponder(cfg *config.Config) (*llm.Responder, error) {
	primary, err := llm.NewProvider(providerConfig(cfg, cfg.PrimaryProvider, cfg.PrimaryModel))
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}

	var secondary llm.LLMProvider
	if cfg.SecondaryProvider != "none" && cfg.SecondaryProvider != cfg.PrimaryProvider {
		secondary, err = llm.NewProvider(providerConfig(cfg, cfg.SecondaryProvider, cfg.SecondaryModel))
		if err != nil {
			log.Warn().Err(err).Str("provider", cfg.SecondaryProvider).Msg("⚠️ Fallback provider disabled")
			secondary = nil
		}
	}

	return llm.NewResponder(primary, secondary), nil
}

func providerConfig(cfg *config.Config, name, model string) *llm.ProviderConfig {
	keys := map[string]string{
		"openai":   cfg.OpenAIKey,
		"gemini":   cfg.GeminiKey,
		"groq":     cfg.GroqKey,
		"deepseek": cfg.DeepSeekKey,
		"claude":   cfg.ClaudeKey,
	}
	return &llm.ProviderConfig{
		Type:        llm.ProviderType(name),
		APIKey:      keys[name],
		Model:       model,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
	}
}

func buildSenders(cfg *config.Config) *whatsapp.Registry {
	var senders []whatsapp.Sender

	if cfg.TwilioAccountSID != "" {
		s, err := whatsapp.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Twilio transport disabled")
		} else {
			senders = append(senders, s)
			log.Info().Msg("📱 Twilio transport enabled")
		}
	}

	if cfg.MetaAccessToken != "" {
		s, err := whatsapp.NewCloudAPISender(whatsapp.CloudAPIConfig{
			AccessToken: cfg.MetaAccessToken,
			APIVersion:  cfg.MetaAPIVersion,
		})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Meta Cloud API transport disabled")
		} else {
			senders = append(senders, s)
			log.Info().Msg("📱 Meta Cloud API transport enabled")
		}
	}

	return whatsapp.NewRegistry(senders...)
}
