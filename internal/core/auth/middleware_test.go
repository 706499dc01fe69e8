package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestApp(svc *JWTService) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(svc), func(c *fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(id.String())
	})
	return app
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	svc := NewJWTService("super-secret")
	user := uuid.New()
	token, err := svc.GenerateAccessToken(user, "owner@toko.id", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newTestApp(svc).Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != user.String() {
		t.Fatalf("body = %s, want %s", body, user)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	svc := NewJWTService("super-secret")
	other := NewJWTService("other-secret")

	expired, _ := svc.GenerateAccessToken(uuid.New(), "", -time.Minute)
	wrongKey, _ := other.GenerateAccessToken(uuid.New(), "", time.Hour)
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("super-secret"))

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token abc",
		"garbage":        "Bearer abc.def.ghi",
		"expired":        "Bearer " + expired,
		"wrong key":      "Bearer " + wrongKey,
		"bad subject":    "Bearer " + badSubject,
	}

	app := newTestApp(svc)
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
}
