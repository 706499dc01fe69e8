package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string
	LogLevel    string

	// AI providers (primary + fallback)
	PrimaryProvider   string
	SecondaryProvider string
	OpenAIKey         string
	GeminiKey         string
	GroqKey           string
	DeepSeekKey       string
	ClaudeKey         string
	PrimaryModel      string
	SecondaryModel    string
	AIMaxTokens       int
	AITemperature     float32

	// Knowledge matcher
	MatchThreshold float64
	MatchLimit     int

	// Twilio (transport A)
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioValidateSig bool
	TwilioWebhookURL  string

	// Meta Cloud API (transport B)
	MetaAccessToken string
	MetaAPIVersion  string
	MetaVerifyToken string
	MetaAppSecret   string

	// Dashboard auth (Supabase-issued JWT)
	SupabaseJWTSecret string

	// Optional infrastructure
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string
	RabbitQueue   string

	// Handover email (Brevo or Resend)
	EmailProvider   string
	BrevoAPIKey     string
	ResendAPIKey    string
	EmailFrom       string
	EmailFromName   string
	HandoverEmailTo string

	Timezone         string
	WebhookTimeout   time.Duration
	IdleResolveAfter time.Duration
	SweepSchedule    string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        os.Getenv("PORT"),
		Env:         os.Getenv("ENV"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		PrimaryProvider:   strings.ToLower(os.Getenv("AI_PRIMARY_PROVIDER")),
		SecondaryProvider: strings.ToLower(os.Getenv("AI_SECONDARY_PROVIDER")),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		GeminiKey:         os.Getenv("GEMINI_API_KEY"),
		GroqKey:           os.Getenv("GROQ_API_KEY"),
		DeepSeekKey:       os.Getenv("DEEPSEEK_API_KEY"),
		ClaudeKey:         os.Getenv("CLAUDE_API_KEY"),
		PrimaryModel:      os.Getenv("AI_PRIMARY_MODEL"),
		SecondaryModel:    os.Getenv("AI_SECONDARY_MODEL"),
		AIMaxTokens:       getInt("AI_MAX_TOKENS", 500),
		AITemperature:     float32(getFloat("AI_TEMPERATURE", 0.7)),

		MatchThreshold: getFloat("KB_MATCH_THRESHOLD", 0.1),
		MatchLimit:     getInt("KB_MATCH_LIMIT", 5),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioValidateSig: getBool("TWILIO_VALIDATE_SIGNATURE", false),
		TwilioWebhookURL:  os.Getenv("TWILIO_WEBHOOK_URL"),

		MetaAccessToken: os.Getenv("META_ACCESS_TOKEN"),
		MetaAPIVersion:  os.Getenv("META_API_VERSION"),
		MetaVerifyToken: os.Getenv("META_VERIFY_TOKEN"),
		MetaAppSecret:   os.Getenv("META_APP_SECRET"),

		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		RabbitQueue:   os.Getenv("RABBITMQ_HANDOVER_QUEUE"),

		EmailProvider:   strings.ToLower(os.Getenv("EMAIL_PROVIDER")),
		BrevoAPIKey:     os.Getenv("BREVO_API_KEY"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		EmailFrom:       os.Getenv("EMAIL_FROM"),
		EmailFromName:   os.Getenv("EMAIL_FROM_NAME"),
		HandoverEmailTo: os.Getenv("HANDOVER_EMAIL_TO"),

		Timezone:         os.Getenv("BUSINESS_TIMEZONE"),
		WebhookTimeout:   getDuration("WEBHOOK_TIMEOUT", 25*time.Second),
		IdleResolveAfter: getDuration("CONVERSATION_IDLE_RESOLVE_AFTER", 24*time.Hour),
		SweepSchedule:    os.Getenv("CONVERSATION_SWEEP_SCHEDULE"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.PrimaryProvider == "" {
		cfg.PrimaryProvider = "openai"
	}
	if cfg.SecondaryProvider == "" {
		cfg.SecondaryProvider = "gemini"
	}
	if cfg.MetaAPIVersion == "" {
		cfg.MetaAPIVersion = "v18.0"
	}
	if cfg.RabbitQueue == "" {
		cfg.RabbitQueue = "handover.events"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Jakarta"
	}
	if cfg.SweepSchedule == "" {
		// Every day at 03:00 (with seconds field)
		cfg.SweepSchedule = "0 0 3 * * *"
	}

	return cfg
}

var knownProviders = map[string]bool{
	"openai":   true,
	"gemini":   true,
	"groq":     true,
	"deepseek": true,
	"claude":   true,
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	if !knownProviders[c.PrimaryProvider] {
		return fmt.Errorf("unknown AI_PRIMARY_PROVIDER: %s", c.PrimaryProvider)
	}
	if c.SecondaryProvider != "none" && !knownProviders[c.SecondaryProvider] {
		return fmt.Errorf("unknown AI_SECONDARY_PROVIDER: %s", c.SecondaryProvider)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("KB_MATCH_THRESHOLD must be within [0,1], got %v", c.MatchThreshold)
	}
	if c.MatchLimit <= 0 {
		return fmt.Errorf("KB_MATCH_LIMIT must be positive, got %d", c.MatchLimit)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// EmailAPIKey picks the key matching EmailProvider; without an explicit
// provider Brevo wins over Resend
func (c *Config) EmailAPIKey() (provider, key string) {
	switch c.EmailProvider {
	case "resend":
		return "resend", c.ResendAPIKey
	case "brevo":
		return "brevo", c.BrevoAPIKey
	}
	if c.BrevoAPIKey != "" {
		return "brevo", c.BrevoAPIKey
	}
	if c.ResendAPIKey != "" {
		return "resend", c.ResendAPIKey
	}
	return "", ""
}

// Location returns the default timezone for business-hours checks
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid number, using default")
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
	}
	return def
}
