// internal/core/whatsapp/inbound.go
package whatsapp

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// InboundMessage is a text message received from a customer, transport-neutral
type InboundMessage struct {
	Transport         Transport
	From              string // customer, +E.164
	To                string // business number (Twilio) or phone_number_id (Meta)
	Body              string
	ProviderMessageID string
	ProfileName       string
}

// Valid reports whether the message carries everything the pipeline needs
func (m InboundMessage) Valid() bool {
	return strings.TrimSpace(m.Body) != "" && m.From != "" && m.To != ""
}

// NormalizePhone strips the whatsapp: channel prefix, JID suffixes and
// separators, returning +E.164. Empty input stays empty.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "whatsapp:")
	if i := strings.Index(p, "@"); i >= 0 {
		p = p[:i]
	}

	var sb strings.Builder
	for _, r := range p {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()
	if digits == "" {
		return ""
	}
	// local Indonesian format 08xx
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return "+" + digits
}

// ParseTwilioForm builds an InboundMessage from Twilio's webhook form fields
func ParseTwilioForm(get func(key string) string) InboundMessage {
	return InboundMessage{
		Transport:         TransportTwilio,
		From:              NormalizePhone(get("From")),
		To:                NormalizePhone(get("To")),
		Body:              strings.TrimSpace(get("Body")),
		ProviderMessageID: strings.TrimSpace(get("MessageSid")),
		ProfileName:       strings.TrimSpace(get("ProfileName")),
	}
}

// CloudAPIWebhook is the envelope Meta posts to the webhook
type CloudAPIWebhook struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string        `json:"field"`
			Value CloudAPIValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// CloudAPIValue is the "value" of one webhook change
type CloudAPIValue struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Contacts []struct {
		WaID    string `json:"wa_id"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	} `json:"contacts"`
	Messages []CloudAPIMessage `json:"messages"`
	Statuses []json.RawMessage `json:"statuses,omitempty"`
}

// CloudAPIMessage represents incoming message from webhook
type CloudAPIMessage struct {
	From      string               `json:"from"`
	ID        string               `json:"id"`
	Timestamp string               `json:"timestamp"`
	Type      string               `json:"type"` // text, image, document, etc.
	Text      *CloudAPITextMessage `json:"text,omitempty"`
}

type CloudAPITextMessage struct {
	Body string `json:"body"`
}

// ParseCloudAPIPayload extracts every text message from a Meta webhook body.
// Status callbacks and non-text messages are skipped; a payload without
// messages yields an empty slice.
func ParseCloudAPIPayload(body []byte) ([]InboundMessage, error) {
	var hook CloudAPIWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, fmt.Errorf("invalid cloud api payload: %w", err)
	}

	out := []InboundMessage{}
	for _, entry := range hook.Entry {
		for _, change := range entry.Changes {
			v := change.Value
			names := make(map[string]string, len(v.Contacts))
			for _, c := range v.Contacts {
				names[c.WaID] = c.Profile.Name
			}

			for _, m := range v.Messages {
				if m.Text == nil {
					continue
				}
				out = append(out, InboundMessage{
					Transport:         TransportMeta,
					From:              NormalizePhone(m.From),
					To:                strings.TrimSpace(v.Metadata.PhoneNumberID),
					Body:              strings.TrimSpace(m.Text.Body),
					ProviderMessageID: m.ID,
					ProfileName:       names[m.From],
				})
			}
		}
	}
	return out, nil
}
