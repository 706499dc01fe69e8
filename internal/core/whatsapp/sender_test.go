package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestCloudAPISenderSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v18.0/1098765/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer meta-token" {
			t.Errorf("missing bearer token")
		}
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["to"] != "6281111111111" {
			t.Errorf("unexpected recipient %v", payload["to"])
		}
		io.WriteString(w, `{"messaging_product":"whatsapp","messages":[{"id":"wamid.OUT"}]}`)
	}))
	defer srv.Close()

	s, err := NewCloudAPISender(CloudAPIConfig{AccessToken: "meta-token", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	id, err := s.Send(context.Background(), OutboundMessage{From: "1098765", To: "+6281111111111", Body: "Halo"})
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if id != "wamid.OUT" {
		t.Fatalf("id = %q", id)
	}
}

func TestCloudAPISenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Invalid OAuth access token"}}`)
	}))
	defer srv.Close()

	s, _ := NewCloudAPISender(CloudAPIConfig{AccessToken: "bad", BaseURL: srv.URL})
	_, err := s.Send(context.Background(), OutboundMessage{From: "1", To: "+62811", Body: "x"})

	var se *SendError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized || se.Transport != TransportMeta {
		t.Fatalf("expected SendError 401, got %v", err)
	}
}

type fakeCreator struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SMOUT"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSenderSend(t *testing.T) {
	fc := &fakeCreator{}
	s := &TwilioSender{api: fc}

	sid, err := s.Send(context.Background(), OutboundMessage{From: "+6282222222222", To: "6281111111111", Body: "Halo kak"})
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if sid != "SMOUT" {
		t.Fatalf("sid = %q", sid)
	}
	if *fc.params.From != "whatsapp:+6282222222222" || *fc.params.To != "whatsapp:+6281111111111" || *fc.params.Body != "Halo kak" {
		t.Fatalf("unexpected params: from=%s to=%s", *fc.params.From, *fc.params.To)
	}
}

func TestTwilioSenderRestError(t *testing.T) {
	s := &TwilioSender{api: &fakeCreator{err: &client.TwilioRestError{Status: 400, Code: 21211, Message: "Invalid 'To' Phone Number"}}}

	_, err := s.Send(context.Background(), OutboundMessage{From: "+1", To: "+2", Body: "x"})
	var se *SendError
	if !errors.As(err, &se) || se.StatusCode != 400 || se.Transport != TransportTwilio {
		t.Fatalf("expected SendError 400, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&TwilioSender{api: &fakeCreator{}}, nil)

	if _, err := r.Get(TransportTwilio); err != nil {
		t.Fatalf("twilio should be registered: %v", err)
	}
	if _, err := r.Get(TransportMeta); !errors.Is(err, ErrTransportNotConfigured) {
		t.Fatalf("expected ErrTransportNotConfigured, got %v", err)
	}
	if got := r.Configured(); len(got) != 1 || got[0] != TransportTwilio {
		t.Fatalf("unexpected configured list %v", got)
	}
}

func TestVerifyMetaSignature(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	header := SignMetaPayload("app-secret", body)

	if err := VerifyMetaSignature("app-secret", body, header); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := VerifyMetaSignature("other", body, header); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
	if err := VerifyMetaSignature("app-secret", body, ""); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected missing signature, got %v", err)
	}
	if err := VerifyMetaSignature("app-secret", body, "sha1=abc"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}
