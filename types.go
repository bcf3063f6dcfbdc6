package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AccountStore is the durable mapping of account records.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	Update(ctx context.Context, account *Account) (*Account, error)
}

// ArtifactStore persists single-use verification secrets.
type ArtifactStore interface {
	Create(ctx context.Context, artifact *VerificationArtifact) (*VerificationArtifact, error)
	// GetLiveBySecret returns the most recent unused, unexpired artifact
	// matching secret and purpose.
	GetLiveBySecret(ctx context.Context, secret string, purpose ArtifactPurpose, now time.Time) (*VerificationArtifact, error)
	// MarkUsed flips used false->true. The flip is conditional: it reports
	// false when the artifact was already consumed, so concurrent consumers
	// get exactly one winner.
	MarkUsed(ctx context.Context, id uuid.UUID) (bool, error)
	// DeleteExpired purges artifacts past their expiry. Maintenance hook,
	// never called on the request path.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// RefreshTokenStore persists refresh tokens.
type RefreshTokenStore interface {
	Create(ctx context.Context, token *RefreshToken) (*RefreshToken, error)
	GetBySecret(ctx context.Context, secret string) (*RefreshToken, error)
	// RevokeAllForAccount flips revoked true on every token owned by the
	// account and reports how many changed. Revocation is monotonic.
	RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

// Store bundles the per-entity stores behind one injection point.
type Store interface {
	Accounts() AccountStore
	Artifacts() ArtifactStore
	RefreshTokens() RefreshTokenStore
}

// Notifier delivers verification and reset secrets out of band.
// Verification and reset sends are critical: a failure aborts the
// operation that triggered them. Welcome mail is fire and forget.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordResetLink(ctx context.Context, email, token string) error
	SendWelcome(ctx context.Context, email string) error
}

// TokenCodec creates and verifies signed bearer tokens. Stateless, a pure
// function of the signing secret.
type TokenCodec interface {
	Issue(subjectID string, roles []string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*JWTClaims, error)
}

// MessageResponse is the generic success shape returned by operations that
// must not leak account existence.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResult is returned by login and refresh.
type AuthResult struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	Status       string   `json:"status"`
}

// DefaultLogger returns the fallback stdout logger used when a component is
// built without one.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(append([]any{"[ERR] IDENTITY", msg}, args...)...)
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(append([]any{"[WRN] IDENTITY", msg}, args...)...)
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(append([]any{"[INF] IDENTITY", msg}, args...)...)
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(append([]any{"[DBG] IDENTITY", msg}, args...)...)
}
