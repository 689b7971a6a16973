package main

import (
	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/wichananm65/shop-checkout/internal/cart"
	"github.com/wichananm65/shop-checkout/internal/catalog"
	"github.com/wichananm65/shop-checkout/internal/config"
	"github.com/wichananm65/shop-checkout/internal/customer"
	"github.com/wichananm65/shop-checkout/internal/logging"
	"github.com/wichananm65/shop-checkout/internal/metrics"
	"github.com/wichananm65/shop-checkout/internal/order"
	"github.com/wichananm65/shop-checkout/internal/payment"
	"github.com/wichananm65/shop-checkout/internal/respond"
)

func newApp(cfg config.Config, log zerolog.Logger, m *metrics.Metrics, g prometheus.Gatherer, st storage) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return respond.Fail(c, fe.Code, fe.Message)
			}
			return respond.Error(c, err)
		},
	})
	setupCORS(app)
	app.Use(logging.Middleware(log, m))

	carts := cart.NewService(st.carts, st.catalog, st.coupons).
		WithLogger(log.With().Str("component", "cart").Logger()).
		WithMetrics(m)

	var payments order.PaymentConfirmer = payment.Disabled{}
	if cfg.PaymentBaseURL != "" {
		payments = payment.NewHTTPConfirmer(cfg.PaymentBaseURL, cfg.PaymentTimeout)
	}
	orders := order.NewService(st.orders, carts, payments).
		WithPolicy(cfg.Pricing).
		WithLogger(log.With().Str("component", "order").Logger()).
		WithMetrics(m)

	app.Get("/health", func(c *fiber.Ctx) error {
		return respond.OK(c, "ok", fiber.Map{"storage": st.kind})
	})
	app.Get("/metrics", metrics.Handler(g))
	catalog.NewHandler(catalog.NewService(st.catalog, nil)).RegisterPublicRoutes(app)

	app.Use(customer.Middleware(cfg.JWTSecret))
	cart.NewHandler(carts).RegisterProtectedRoutes(app)
	order.NewHandler(orders).RegisterProtectedRoutes(app)
	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + customer.SessionHeader,
	}))
}
