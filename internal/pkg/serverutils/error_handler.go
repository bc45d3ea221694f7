package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rag-chatbot-be/internal/pkg/logger"
)

// ErrorHandler renders every error returned by a handler as a BaseResponse.
// Use it as fiber.Config.ErrorHandler.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("Server", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err,
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
