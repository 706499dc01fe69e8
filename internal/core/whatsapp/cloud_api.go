// internal/core/whatsapp/cloud_api.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/shared/utils"
)

const graphBaseURL = "https://graph.facebook.com"

// CloudAPISender implements WhatsApp Cloud API (Official Business API)
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api
type CloudAPISender struct {
	baseURL     string
	accessToken string // Meta Business Access Token
	apiVersion  string // API version (e.g., "v18.0")
	client      *http.Client
}

// CloudAPIConfig holds configuration for WhatsApp Cloud API
type CloudAPIConfig struct {
	AccessToken string
	APIVersion  string // default: v18.0
	BaseURL     string // default: https://graph.facebook.com
}

// NewCloudAPISender creates a new WhatsApp Cloud API sender. The phone number
// id is per chatbot and comes with each OutboundMessage.
func NewCloudAPISender(config CloudAPIConfig) (*CloudAPISender, error) {
	if config.AccessToken == "" {
		return nil, fmt.Errorf("access_token is required")
	}
	if config.APIVersion == "" {
		config.APIVersion = "v18.0"
	}
	if config.BaseURL == "" {
		config.BaseURL = graphBaseURL
	}

	return &CloudAPISender{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		accessToken: config.AccessToken,
		apiVersion:  config.APIVersion,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *CloudAPISender) Transport() Transport { return TransportMeta }

type cloudAPISendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Send sends a text message via Cloud API. msg.From is the phone_number_id.
func (p *CloudAPISender) Send(ctx context.Context, msg OutboundMessage) (string, error) {
	if msg.From == "" {
		return "", &SendError{Transport: TransportMeta, Err: fmt.Errorf("phone_number_id is required")}
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                CloudAPIAddress(msg.To),
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": false,
			"body":        msg.Body,
		},
	}

	var out cloudAPISendResponse
	if err := p.sendRequest(ctx, http.MethodPost, "/"+msg.From+"/messages", payload, &out); err != nil {
		return "", err
	}

	id := ""
	if len(out.Messages) > 0 {
		id = out.Messages[0].ID
	}

	log.Info().Str("to", utils.MaskPhone(msg.To)).Str("wamid", id).Msg("✅ Cloud API message sent")
	return id, nil
}

// MarkMessageAsRead marks an inbound message as read
func (p *CloudAPISender) MarkMessageAsRead(ctx context.Context, phoneNumberID, messageID string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	return p.sendRequest(ctx, http.MethodPost, "/"+phoneNumberID+"/messages", payload, nil)
}

// sendRequest is a helper to make API requests
func (p *CloudAPISender) sendRequest(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	url := fmt.Sprintf("%s/%s%s", p.baseURL, p.apiVersion, endpoint)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &SendError{Transport: TransportMeta, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{Transport: TransportMeta, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", string(respBody))}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CloudAPIAddress returns the digits-only form Cloud API expects
func CloudAPIAddress(phone string) string {
	return strings.TrimPrefix(NormalizePhone(phone), "+")
}
