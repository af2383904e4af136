package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SystemHandler struct {
	gatherer prometheus.Gatherer
}

func NewSystemHandler(gatherer prometheus.Gatherer) *SystemHandler {
	return &SystemHandler{gatherer: gatherer}
}

func (h *SystemHandler) Register(app *fiber.App) {
	app.Get("/healthz", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	// Serves whatever spec the docs package registered.
	app.Get("/swagger/*", swagger.HandlerDefault)
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.SendString("ok")
}
