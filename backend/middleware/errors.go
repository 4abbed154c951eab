package middleware

import (
	"errors"
	"log/slog"

	"github.com/disgoorg/loyalty-engine/backend/utils"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/quests"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/rewards"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/tiers"
	"github.com/gofiber/fiber/v2"
)

// CustomErrorHandler maps engine errors to JSON error responses.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.SendError(c, fe.Code, errorCode(fe.Code), fe.Message, nil)
	}

	switch {
	case repositories.IsNotFound(err):
		return utils.SendNotFound(c, err.Error())
	case errors.Is(err, quests.ErrInvalidEvent),
		errors.Is(err, quests.ErrInvalidConfig),
		errors.Is(err, rewards.ErrInvalidAmount),
		errors.Is(err, rewards.ErrUnknownRewardType),
		errors.Is(err, rewards.ErrInvalidGrant),
		errors.Is(err, tiers.ErrUnknownTier):
		return utils.SendBadRequest(c, err.Error(), nil)
	case errors.Is(err, tiers.ErrStyleLocked):
		return utils.SendForbidden(c, err.Error())
	case repositories.IsConflict(err), errors.Is(err, repositories.ErrInsufficientTokens):
		return utils.SendConflict(c, err.Error(), nil)
	case errors.Is(err, repositories.ErrConflict):
		return utils.SendServiceUnavailable(c, "Too much contention on this user, try again")
	}

	slog.Error("Unhandled request error",
		slog.String("type", "error"),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err))
	return utils.SendInternalServerError(c, "Internal Server Error")
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	}
	if status >= 500 {
		return "INTERNAL_SERVER_ERROR"
	}
	return "ERROR"
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	}
}
