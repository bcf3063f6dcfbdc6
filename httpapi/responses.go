package httpapi

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/skillhub/identity"
)

// genericFault is the body for anything outside the domain taxonomy; it
// must not leak internal detail.
var genericFault = identity.MessageResponse{Message: "An unexpected error occurred. Please try again later."}

// respondError is the single translation step from the domain error
// taxonomy to response shapes.
func (ctrl *Controller) respondError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		ctrl.logger.Error("unclassified fault", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(genericFault)
	}

	status := statusForCategory(richErr.Category)
	if status == fiber.StatusInternalServerError {
		ctrl.logger.Error("server fault", "path", c.Path(), "error", err)
		return c.Status(status).JSON(genericFault)
	}

	return c.Status(status).JSON(identity.MessageResponse{Message: richErr.Message})
}

// respondRefreshError collapses every refresh-path domain error into an
// unauthenticated response, like a failed token validation.
func (ctrl *Controller) respondRefreshError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		ctrl.logger.Error("unclassified fault", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(genericFault)
	}

	if richErr.Category == goerrors.CategoryInternal {
		ctrl.logger.Error("server fault", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(genericFault)
	}

	return c.Status(fiber.StatusUnauthorized).JSON(identity.MessageResponse{Message: richErr.Message})
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
