package http_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	handler "github.com/samirrijal/akureroute/internal/adapters/http"
)

func TestRequestIDLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(handler.RequestIDLogMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		if handler.LoggerFromCtx(c.UserContext()) == nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(handler.RequestIDFromCtx(c.UserContext()))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)

	rid := resp.Header.Get(fiber.HeaderXRequestID)
	if rid == "" || string(body) != rid {
		t.Errorf("context request id %q does not match header %q", body, rid)
	}
}

func TestLoggerFromCtx_Default(t *testing.T) {
	if handler.LoggerFromCtx(context.Background()) == nil {
		t.Error("expected the default logger")
	}
	if rid := handler.RequestIDFromCtx(context.Background()); rid != "" {
		t.Errorf("expected no request id, got %q", rid)
	}
}
