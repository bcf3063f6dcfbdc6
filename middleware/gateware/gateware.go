// Package gateware is the edge authentication gate: the first filter in the
// request pipeline. It decides whether a request needs identity, verifies
// its bearer token, and injects the verified claims as headers downstream
// services trust implicitly. It never touches the credential store.
package gateware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderUserID carries the verified subject id downstream.
	HeaderUserID = "X-User-Id"
	// HeaderUserRole carries the verified role downstream.
	HeaderUserRole = "X-User-Role"

	defaultAuthScheme = "Bearer"
)

// AuthClaims is the view of verified token claims the gate needs. It
// mirrors the identity package claims without importing it.
type AuthClaims interface {
	UserID() string
	PrimaryRole() string
}

// TokenVerifier verifies a raw bearer token.
type TokenVerifier interface {
	Verify(token string) (AuthClaims, error)
}

// VerifierFunc adapts a plain verify function, typically a closure over the
// identity TokenService.
type VerifierFunc func(token string) (AuthClaims, error)

func (f VerifierFunc) Verify(token string) (AuthClaims, error) {
	return f(token)
}

// Logger mirrors the identity logger interface.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

type Config struct {
	// Verifier is required.
	Verifier TokenVerifier
	// PublicPaths are exact-match paths that skip authentication.
	PublicPaths []string
	// PublicReadPrefixes are path prefixes that skip authentication for
	// GET requests only.
	PublicReadPrefixes []string
	// AuthScheme defaults to "Bearer".
	AuthScheme string
	// ErrorHandler terminates rejected requests. Defaults to a 401 JSON body.
	ErrorHandler fiber.ErrorHandler
	Logger       Logger
}

// New returns the gate middleware. Mount it before every other filter:
// nothing may examine the request ahead of it.
func New(cfg Config) fiber.Handler {
	if cfg.Verifier == nil {
		panic("gateware: Config.Verifier is required")
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	public := make(map[string]struct{}, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		// Inbound copies of the identity headers are never trusted; only
		// the gate may set them.
		c.Request().Header.Del(HeaderUserID)
		c.Request().Header.Del(HeaderUserRole)

		if isPublic(c, public, cfg.PublicReadPrefixes) {
			return c.Next()
		}

		raw, err := extractBearer(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if err != nil {
			return reject(c, cfg, "missing or invalid Authorization header")
		}

		claims, err := cfg.Verifier.Verify(raw)
		if err != nil {
			return reject(c, cfg, "invalid or expired token")
		}

		c.Request().Header.Set(HeaderUserID, claims.UserID())
		c.Request().Header.Set(HeaderUserRole, claims.PrimaryRole())

		return c.Next()
	}
}

func isPublic(c *fiber.Ctx, public map[string]struct{}, readPrefixes []string) bool {
	path := c.Path()
	if _, ok := public[path]; ok {
		return true
	}

	if c.Method() != fiber.MethodGet {
		return false
	}
	for _, prefix := range readPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func extractBearer(header, scheme string) (string, error) {
	if header == "" {
		return "", fiber.ErrUnauthorized
	}
	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", fiber.ErrUnauthorized
	}
	return header[len(prefix):], nil
}

// reject logs the reason and path for diagnostics; the reason never drives
// a different response.
func reject(c *fiber.Ctx, cfg Config, reason string) error {
	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication rejected", "reason", reason, "path", c.Path())
	}
	return cfg.ErrorHandler(c, fiber.ErrUnauthorized)
}

func defaultErrorHandler(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "unauthorized",
	})
}
