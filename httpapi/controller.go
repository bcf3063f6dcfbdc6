// Package httpapi is the HTTP boundary of the identity service: request
// parsing and validation, engine dispatch, and the single translation step
// from the domain error taxonomy to response shapes.
package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/skillhub/identity"
	"github.com/skillhub/identity/middleware/gateware"
)

// Controller serves the /api/auth endpoints.
type Controller struct {
	engine *identity.Engine
	logger identity.Logger
}

func NewController(engine *identity.Engine, logger identity.Logger) *Controller {
	if logger == nil {
		logger = identity.DefaultLogger()
	}
	return &Controller{engine: engine, logger: logger}
}

// Register mounts the auth routes and the health check.
func Register(app *fiber.App, controller *Controller) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/auth")
	api.Post("/register", controller.RegisterAccount)
	api.Post("/login", controller.Login)
	api.Post("/verify-email", controller.VerifyEmail)
	api.Post("/forgot-password", controller.ForgotPassword)
	api.Post("/reset-password", controller.ResetPassword)
	api.Post("/refresh-token", controller.RefreshToken)
	api.Post("/logout", controller.Logout)
	api.Get("/validate-token", controller.ValidateToken)
}

func (ctrl *Controller) RegisterAccount(c *fiber.Ctx) error {
	var req identity.RegisterRequest
	if handled, err := parse(c, &req); handled {
		return err
	}

	resp, err := ctrl.engine.Register(c.UserContext(), req.Email, req.Password, req.Role)
	if err != nil {
		return ctrl.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (ctrl *Controller) Login(c *fiber.Ctx) error {
	var req identity.LoginRequest
	if handled, err := parse(c, &req); handled {
		return err
	}

	result, err := ctrl.engine.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return ctrl.respondError(c, err)
	}
	return c.JSON(result)
}

func (ctrl *Controller) VerifyEmail(c *fiber.Ctx) error {
	var req identity.VerifyEmailRequest
	if handled, err := parse(c, &req); handled {
		return err
	}

	resp, err := ctrl.engine.VerifyEmail(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return ctrl.respondError(c, err)
	}
	return c.JSON(resp)
}

func (ctrl *Controller) ForgotPassword(c *fiber.Ctx) error {
	var req identity.ForgotPasswordRequest
	if handled, err := parse(c, &req); handled {
		return err
	}

	resp, err := ctrl.engine.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return ctrl.respondError(c, err)
	}
	return c.JSON(resp)
}

func (ctrl *Controller) ResetPassword(c *fiber.Ctx) error {
	var req identity.ResetPasswordRequest
	if handled, err := parse(c, &req); handled {
		return err
	}

	resp, err := ctrl.engine.ResetPassword(c.UserContext(), req.Token, req.NewPassword)
	if err != nil {
		return ctrl.respondError(c, err)
	}
	return c.JSON(resp)
}

func (ctrl *Controller) RefreshToken(c *fiber.Ctx) error {
	var req identity.RefreshTokenRequest
	if handled, err := parse(c, &req); handled {
		return err
	}

	result, err := ctrl.engine.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		// all refresh failures surface as unauthenticated, matching the
		// token-validation failure surface
		return ctrl.respondRefreshError(c, err)
	}
	return c.JSON(result)
}

// Logout reads the verified subject from the gate-injected header; the
// gate guarantees it is present on this protected path.
func (ctrl *Controller) Logout(c *fiber.Ctx) error {
	subject := c.Get(gateware.HeaderUserID)
	accountID, err := uuid.Parse(subject)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(identity.MessageResponse{Message: "unauthorized"})
	}

	resp, err := ctrl.engine.Logout(c.UserContext(), accountID)
	if err != nil {
		return ctrl.respondError(c, err)
	}
	return c.JSON(resp)
}

func (ctrl *Controller) ValidateToken(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return c.Status(fiber.StatusUnauthorized).JSON(identity.MessageResponse{Message: "Invalid token"})
	}

	resp, err := ctrl.engine.ValidateToken(c.UserContext(), header[len(prefix):])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(identity.MessageResponse{Message: "Invalid token"})
	}
	return c.JSON(resp)
}

// parse decodes the body and runs payload validation, responding with the
// per-field error map on validation failure. handled reports that a
// response has already been written and the handler must stop.
func parse(c *fiber.Ctx, req interface{ Validate() error }) (handled bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return true, c.Status(fiber.StatusBadRequest).JSON(identity.MessageResponse{Message: "malformed request body"})
	}
	if err := req.Validate(); err != nil {
		if fields := identity.FieldErrors(err); fields != nil {
			return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fields})
		}
		return true, c.Status(fiber.StatusBadRequest).JSON(identity.MessageResponse{Message: err.Error()})
	}
	return false, nil
}
