// Package config holds runtime settings for the identity service,
// with development defaults and environment variable overrides.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the identity service.
//
// Fields:
//   - ListenAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: sqlite DSN for the credential store.
//   - SigningKey: HMAC secret for signing access tokens (HS256). Do not
//     use the development default in production.
//   - Issuer: issuer claim stamped into access tokens.
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes. Access tokens are
//     not revocable, so keep their TTL short.
//   - SMTPAddr / SMTPHost / SMTPUsername / SMTPPassword: mail relay; when
//     SMTPAddr is empty notifications print to stdout.
//   - ResetURL: public password reset page the emailed token is appended to.
type Config struct {
	ListenAddr      string
	DatabaseDSN     string
	SigningKey      string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SMTPAddr        string
	SMTPHost        string
	SMTPUsername    string
	SMTPPassword    string
	ResetURL        string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.DatabaseDSN = "file:identity.db?cache=shared&_pragma=foreign_keys(1)"
	c.SigningKey = "dev-signing-secret"
	c.Issuer = "skillhub-identity"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 7 * 24 * time.Hour
	c.ResetURL = "http://localhost:3000/reset-password"
}

// Load builds a Config by applying defaults and overlaying values from the
// environment.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.loadEnv()
	return cfg
}

func (c *Config) loadEnv() {
	setString(&c.ListenAddr, "IDENTITY_LISTEN_ADDR")
	setString(&c.DatabaseDSN, "IDENTITY_DATABASE_DSN")
	setString(&c.SigningKey, "IDENTITY_SIGNING_KEY")
	setString(&c.Issuer, "IDENTITY_ISSUER")
	setDuration(&c.AccessTokenTTL, "IDENTITY_ACCESS_TOKEN_TTL")
	setDuration(&c.RefreshTokenTTL, "IDENTITY_REFRESH_TOKEN_TTL")
	setString(&c.SMTPAddr, "IDENTITY_SMTP_ADDR")
	setString(&c.SMTPHost, "IDENTITY_SMTP_HOST")
	setString(&c.SMTPUsername, "IDENTITY_SMTP_USERNAME")
	setString(&c.SMTPPassword, "IDENTITY_SMTP_PASSWORD")
	setString(&c.ResetURL, "IDENTITY_RESET_URL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	// bare number of seconds
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
	}
}
