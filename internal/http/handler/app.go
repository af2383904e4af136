package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"github.com/rahmatrdn/go-query-insight/internal/usecase"
	"go.uber.org/zap"
)

// NewApp builds the fiber app with panic recovery, request logging and JSON
// error responses.
func NewApp(log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "query-insight",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestLogger(log))

	return app
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("took", time.Since(start)),
		)
		return err
	}
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			verr    *helper.ValidationError
			invalid *usecase.InvalidRecordsError
			ferr    *fiber.Error
		)

		switch {
		case errwrap.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "validation failed", Details: verr.Messages})
		case errwrap.As(err, &invalid):
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: invalid.Error(), Details: invalid.Problems})
		case errwrap.Is(err, usecase.ErrConnectionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: err.Error()})
		case errwrap.Is(err, usecase.ErrConnectionUnreachable):
			return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: err.Error()})
		case errwrap.As(err, &ferr):
			return c.Status(ferr.Code).JSON(errorResponse{Error: ferr.Message})
		}

		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal server error"})
	}
}
