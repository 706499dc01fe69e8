package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBrevoSend(t *testing.T) {
	var got brevoEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/smtp/email" || r.Header.Get("api-key") != "key" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("api-key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := NewBrevoProvider("key", "bot@toko.id", "Toko Bot", srv.URL)
	if err := p.Send(context.Background(), Message{To: "cs@toko.id", Subject: "Handover", HTML: "<p>x</p>"}); err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if got.Sender.Email != "bot@toko.id" || len(got.To) != 1 || got.To[0].Email != "cs@toko.id" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestResendSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	p := NewResendProvider("key", "bot@toko.id", "", srv.URL)
	err := p.Send(context.Background(), Message{To: "cs@toko.id", Subject: "x", HTML: "y"})
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("expected 422 error, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	if p != nil || err != nil {
		t.Fatal("no api key should mean no provider")
	}
	if _, err := NewProvider(Config{APIKey: "k"}); err == nil {
		t.Fatal("missing sender should fail")
	}
	if _, err := NewProvider(Config{APIKey: "k", FromEmail: "a@b.c", Provider: "mailgun"}); err == nil {
		t.Fatal("unknown provider should fail")
	}
	p, err = NewProvider(Config{APIKey: "k", FromEmail: "a@b.c", Provider: "resend"})
	if err != nil || p.GetProviderName() != "resend" {
		t.Fatalf("resend: %v %v", p, err)
	}
}

func TestNoticeEscapes(t *testing.T) {
	out := Notice("Permintaan CS", "Pesan: <script>alert(1)</script>")
	if strings.Contains(out, "<script>") || !strings.Contains(out, "&lt;script&gt;") {
		t.Fatal("notice lines must be escaped")
	}
}
