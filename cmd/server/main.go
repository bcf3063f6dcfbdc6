package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/skillhub/identity"
	"github.com/skillhub/identity/config"
	"github.com/skillhub/identity/httpapi"
	"github.com/skillhub/identity/middleware/gateware"
	"github.com/skillhub/identity/notify"
	"github.com/skillhub/identity/repository"
)

// publicPaths are reachable without a bearer token.
var publicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/api/auth/verify-email",
	"/api/auth/forgot-password",
	"/api/auth/reset-password",
	"/api/auth/refresh-token",
	"/healthz",
}

// publicReadPrefixes are open for GET requests only.
var publicReadPrefixes = []string{
	"/api/courses",
	"/api/jobs",
}

func main() {
	ctx := context.Background()
	cfg := config.Load()

	var logger identity.Logger = serviceLogger{}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := repository.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	store := repository.NewManager(db)
	codec := identity.NewTokenService([]byte(cfg.SigningKey), cfg.AccessTokenTTL, cfg.Issuer, logger)

	var notifier identity.Notifier = notify.Console{}
	if cfg.SMTPAddr != "" {
		notifier = notify.NewMailer(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost, cfg.ResetURL, logger)
	}

	engine := identity.NewEngine(store, codec, notifier,
		identity.WithLogger(logger),
		identity.WithRefreshExpiry(cfg.RefreshTokenTTL),
	)

	app := fiber.New()

	// the gate runs first; nothing examines the request before it
	app.Use(gateware.New(gateware.Config{
		Verifier: gateware.VerifierFunc(func(token string) (gateware.AuthClaims, error) {
			return codec.Verify(token)
		}),
		PublicPaths:        publicPaths,
		PublicReadPrefixes: publicReadPrefixes,
		Logger:             logger,
	}))
	app.Use(gateware.RequestLogger(logger))

	httpapi.Register(app, httpapi.NewController(engine, logger))

	logger.Info("identity service listening", "addr", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

type serviceLogger struct{}

func (serviceLogger) Debug(format string, args ...any) {
	log.Println(append([]any{"[DBG]", format}, args...)...)
}
func (serviceLogger) Info(format string, args ...any) {
	log.Println(append([]any{"[INF]", format}, args...)...)
}
func (serviceLogger) Warn(format string, args ...any) {
	log.Println(append([]any{"[WRN]", format}, args...)...)
}
func (serviceLogger) Error(format string, args ...any) {
	log.Println(append([]any{"[ERR]", format}, args...)...)
}
