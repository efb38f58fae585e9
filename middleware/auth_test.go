package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestUserContextMiddlewareRejectsMissingEmail(t *testing.T) {
	app := fiber.New()
	app.Get("/secured", UserContextMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/secured", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", resp.StatusCode)
	}
}

func TestUserContextMiddlewarePassesEmail(t *testing.T) {
	app := fiber.New()
	app.Get("/secured", UserContextMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(CallerEmail(c))
	})

	req := httptest.NewRequest("GET", "/secured", nil)
	req.Header.Set("X-User-Email", "player@example.com")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	if got := string(buf[:n]); got != "player@example.com" {
		t.Fatalf("caller email not propagated: got %q", got)
	}
}

func TestRedisLimiterNilFailsOpen(t *testing.T) {
	limiter := NewRedisLimiter(nil)
	if limiter != nil {
		t.Fatal("nil client should yield nil limiter")
	}
	if !limiter.Allow("key", 1, 0) {
		t.Fatal("nil limiter must fail open")
	}
}
