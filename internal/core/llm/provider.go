package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// LLMProvider interface untuk multiple AI providers
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string, opts GenerateOptions) (*Completion, error)
	GetProviderName() string
}

// GenerateOptions overrides the provider defaults for a single call.
// Zero MaxTokens and nil Temperature keep the provider's configured defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature *float32
}

// Completion is the raw output of one provider call
type Completion struct {
	Content string
	Model   string
	// TokensUsed is zero when the provider did not report usage
	TokensUsed int
}

// ProviderType untuk factory
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGemini   ProviderType = "gemini"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
	ProviderClaude   ProviderType = "claude"
)

// Default base URLs; overridable per provider (tests point them at httptest servers)
const (
	groqBaseURL     = "https://api.groq.com/openai/v1"
	deepSeekBaseURL = "https://api.deepseek.com/v1"
	geminiBaseURL   = "https://generativelanguage.googleapis.com/v1"
	claudeBaseURL   = "https://api.anthropic.com/v1"
)

// ProviderConfig untuk create provider
type ProviderConfig struct {
	Type    ProviderType
	APIKey  string
	BaseURL string

	// Model configs
	Model       string
	Temperature float32
	MaxTokens   int

	HTTPClient *http.Client
}

// NewProvider factory untuk create LLM provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config is nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key for %s is required", cfg.Type)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(cfg.Type)
	}

	switch cfg.Type {
	case ProviderOpenAI, ProviderGroq, ProviderDeepSeek:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			switch cfg.Type {
			case ProviderGroq:
				baseURL = groqBaseURL
			case ProviderDeepSeek:
				baseURL = deepSeekBaseURL
			}
		}
		return NewOpenAIProvider(cfg.Type, cfg.APIKey, baseURL, model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderGemini:
		p := NewGeminiProvider(cfg.APIKey, model, cfg.Temperature, cfg.MaxTokens)
		if cfg.BaseURL != "" {
			p.baseURL = cfg.BaseURL
		}
		if cfg.HTTPClient != nil {
			p.client = cfg.HTTPClient
		}
		return p, nil

	case ProviderClaude:
		p := NewClaudeProvider(cfg.APIKey, model, cfg.Temperature, cfg.MaxTokens)
		if cfg.BaseURL != "" {
			p.baseURL = cfg.BaseURL
		}
		if cfg.HTTPClient != nil {
			p.client = cfg.HTTPClient
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(t ProviderType) string {
	switch t {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderGroq:
		return "llama-3.1-8b-instant"
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderClaude:
		return "claude-3-5-haiku-20241022"
	}
	return ""
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

func pick(override, def int) int {
	if override > 0 {
		return override
	}
	return def
}

func pickTemp(override *float32, def float32) float32 {
	if override != nil {
		return *override
	}
	return def
}
