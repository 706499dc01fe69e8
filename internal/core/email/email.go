package email

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message is one outgoing email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Provider sends transactional email
type Provider interface {
	Send(ctx context.Context, msg Message) error
	GetProviderName() string
}

// Config selects and configures a provider
type Config struct {
	Provider  string // brevo | resend
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string
}

// NewProvider returns nil, nil when no API key is configured
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("email sender address is empty")
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "brevo":
		return NewBrevoProvider(cfg.APIKey, cfg.FromEmail, cfg.FromName, cfg.BaseURL), nil
	case "resend":
		return NewResendProvider(cfg.APIKey, cfg.FromEmail, cfg.FromName, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

// Notice renders a minimal HTML notice. Values are escaped.
func Notice(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"></head>`)
	b.WriteString(`<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px;">`)
	b.WriteString(`<h2 style="background: #25D366; color: white; padding: 16px;">` + html.EscapeString(title) + `</h2>`)
	for _, l := range lines {
		b.WriteString("<p>" + html.EscapeString(l) + "</p>")
	}
	b.WriteString(`<p style="font-size: 12px; color: #666;">Dikirim otomatis oleh WhatsApp CS Chatbot</p>`)
	b.WriteString("</div></body></html>")
	return b.String()
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusAccepted {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, string(body))
}
