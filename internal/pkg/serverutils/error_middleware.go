package serverutils

import (
	"errors"
	"log"

	"rich-text-bridge/pkg/richtext"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := classify(err)
		if code >= fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest, validationMessage(validationErrs)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, ErrBadRequest), errors.Is(err, richtext.ErrInvalidDocument), errors.Is(err, richtext.ErrNilDocument):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, richtext.ErrMaxDepthExceeded), errors.Is(err, ErrUnprocessable):
		return fiber.StatusUnprocessableEntity, err.Error()
	}

	return fiber.StatusInternalServerError, "Internal server error"
}
