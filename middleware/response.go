package middleware

import (
	"errors"

	"regdesk/database"
	"regdesk/logger"
	"regdesk/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	body := fiber.Map{
		"success": success,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(statusCode).JSON(body)
}

// ValidationErrorResponse sends a field keyed error map with status 400.
func ValidationErrorResponse(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed!",
		"errors":  errs,
	})
}

// InternalErrorResponse sends a 500 with the underlying error detail.
func InternalErrorResponse(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}

// ClassifyError maps an error to a status code and, for client errors, the
// field keyed messages to return.
func ClassifyError(err error) (int, map[string]string) {
	var dupErr *database.DuplicateKeyError
	if errors.As(err, &dupErr) {
		return fiber.StatusBadRequest, map[string]string{
			dupErr.Field: dupErr.Field + " already exists!",
		}
	}

	var fileErr *utils.FileError
	if errors.As(err, &fileErr) {
		return fiber.StatusBadRequest, map[string]string{"file": fileErr.Error()}
	}

	if errors.Is(err, database.ErrNotFound) {
		return fiber.StatusNotFound, nil
	}

	return fiber.StatusInternalServerError, nil
}

// ErrorResponse renders err according to ClassifyError. notFound is the
// message used for 404s, failure the one used for 500s.
func ErrorResponse(c *fiber.Ctx, err error, notFound, failure string) error {
	status, errs := ClassifyError(err)
	switch status {
	case fiber.StatusBadRequest:
		return ValidationErrorResponse(c, errs)
	case fiber.StatusNotFound:
		return JsonResponse(c, fiber.StatusNotFound, false, notFound, nil)
	}

	logger.FromContext(c).Error(failure, zap.Error(err))
	return InternalErrorResponse(c, failure, err)
}
