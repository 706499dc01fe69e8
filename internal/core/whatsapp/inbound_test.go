package whatsapp

import (
	"net/url"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"whatsapp:+6281234567890": "+6281234567890",
		"+62 812-3456-7890":       "+6281234567890",
		"6281234567890":           "+6281234567890",
		"081234567890":            "+6281234567890",
		"6281234567890@c.us":      "+6281234567890",
		"":                        "",
		"whatsapp:":               "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTwilioForm(t *testing.T) {
	form := url.Values{}
	form.Set("Body", "  Halo, jam buka berapa? ")
	form.Set("From", "whatsapp:+6281111111111")
	form.Set("To", "whatsapp:+6282222222222")
	form.Set("MessageSid", "SM123")
	form.Set("ProfileName", "Budi")

	msg := ParseTwilioForm(form.Get)
	if msg.Transport != TransportTwilio || msg.From != "+6281111111111" || msg.To != "+6282222222222" {
		t.Fatalf("unexpected addresses: %+v", msg)
	}
	if msg.Body != "Halo, jam buka berapa?" || msg.ProviderMessageID != "SM123" || msg.ProfileName != "Budi" {
		t.Fatalf("unexpected fields: %+v", msg)
	}
	if !msg.Valid() {
		t.Fatal("expected valid message")
	}

	form.Set("Body", "   ")
	if ParseTwilioForm(form.Get).Valid() {
		t.Fatal("blank body must be invalid")
	}
}

const cloudPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "6282222222222", "phone_number_id": "1098765"},
        "contacts": [{"wa_id": "6281111111111", "profile": {"name": "Siti"}}],
        "messages": [
          {"from": "6281111111111", "id": "wamid.1", "timestamp": "1700000000", "type": "text", "text": {"body": "Ada promo?"}},
          {"from": "6281111111111", "id": "wamid.2", "timestamp": "1700000001", "type": "image"}
        ]
      }
    }]
  }]
}`

func TestParseCloudAPIPayload(t *testing.T) {
	msgs, err := ParseCloudAPIPayload([]byte(cloudPayload))
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected only the text message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Transport != TransportMeta || m.From != "+6281111111111" || m.To != "1098765" {
		t.Fatalf("unexpected addresses: %+v", m)
	}
	if m.Body != "Ada promo?" || m.ProviderMessageID != "wamid.1" || m.ProfileName != "Siti" {
		t.Fatalf("unexpected fields: %+v", m)
	}
}

func TestParseCloudAPIPayloadStatusOnly(t *testing.T) {
	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"metadata":{"phone_number_id":"1"},"statuses":[{"id":"wamid.9","status":"delivered"}]}}]}]}`
	msgs, err := ParseCloudAPIPayload([]byte(body))
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}
}

func TestParseCloudAPIPayloadInvalidJSON(t *testing.T) {
	if _, err := ParseCloudAPIPayload([]byte(`{"entry":`)); err == nil {
		t.Fatal("expected error")
	}
}
