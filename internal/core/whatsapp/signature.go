// internal/core/whatsapp/signature.go
package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrMissingSignature = errors.New("missing X-Hub-Signature-256")
	ErrInvalidSignature = errors.New("invalid X-Hub-Signature-256")
)

// VerifyMetaSignature checks the X-Hub-Signature-256 header ("sha256=<hex>")
// against an HMAC of the raw request body
func VerifyMetaSignature(appSecret string, rawBody []byte, header string) error {
	sig := strings.TrimSpace(header)
	if sig == "" {
		return ErrMissingSignature
	}
	if !strings.HasPrefix(sig, "sha256=") {
		return ErrInvalidSignature
	}

	provided, err := hex.DecodeString(strings.TrimPrefix(sig, "sha256="))
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(rawBody)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// SignMetaPayload returns the header value Meta would send for body
func SignMetaPayload(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
