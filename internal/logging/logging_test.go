package logging

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("warn", "json", &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("level filter not applied: %s", out)
	}
	if !strings.Contains(out, `"service":"shop-checkout"`) {
		t.Fatalf("service field missing: %s", out)
	}
}

func TestNewWithWriter_UnknownLevelIsInfo(t *testing.T) {
	log := newWithWriter("loud", "json", &bytes.Buffer{})
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("info", "json", &buf)

	app := fiber.New()
	app.Use(Middleware(log, nil))
	app.Get("/health", func(c *fiber.Ctx) error {
		zerolog.Ctx(c.UserContext()).Debug().Msg("inside")
		return c.SendString("ok")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "nope")
	})

	res, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil || res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %v %v", res, err)
	}
	if !strings.Contains(buf.String(), `"path":"/health"`) || !strings.Contains(buf.String(), `"status":200`) {
		t.Fatalf("request line missing: %s", buf.String())
	}

	buf.Reset()
	res2, _ := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if res2.StatusCode != fiber.StatusTeapot {
		t.Fatalf("expected handler error status to survive, got %d", res2.StatusCode)
	}
	if !strings.Contains(buf.String(), `"status":418`) {
		t.Fatalf("expected logged status 418: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var reqBuf, svcBuf bytes.Buffer
	svc := newWithWriter("info", "json", &svcBuf)
	req := newWithWriter("info", "json", &reqBuf).With().Str("path", "/api/v1/cart").Logger()

	FromContext(context.Background(), &svc).Info().Msg("outside")
	FromContext(req.WithContext(context.Background()), &svc).Info().Msg("inside")

	if !strings.Contains(svcBuf.String(), "outside") || strings.Contains(svcBuf.String(), "inside") {
		t.Fatalf("fallback logger got %s", svcBuf.String())
	}
	if !strings.Contains(reqBuf.String(), `"path":"/api/v1/cart"`) || !strings.Contains(reqBuf.String(), "inside") {
		t.Fatalf("request logger got %s", reqBuf.String())
	}
}
