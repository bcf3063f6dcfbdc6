package identity

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	defaultOTPExpiry     = 10 * time.Minute
	defaultResetExpiry   = time.Hour
	defaultRefreshExpiry = 7 * 24 * time.Hour
)

// Engine owns account and token state transitions: registration, email
// verification, login, refresh, password reset, logout. Collaborators are
// injected at construction; the engine keeps no state of its own.
type Engine struct {
	store         Store
	codec         TokenCodec
	notifier      Notifier
	logger        Logger
	now           func() time.Time
	otpExpiry     time.Duration
	resetExpiry   time.Duration
	refreshExpiry time.Duration
}

type EngineOption func(*Engine)

// WithLogger overrides the logger used by the engine.
func WithLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithRefreshExpiry overrides the refresh token lifetime.
func WithRefreshExpiry(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.refreshExpiry = d
		}
	}
}

// NewEngine returns a lifecycle engine wired to its collaborators.
func NewEngine(store Store, codec TokenCodec, notifier Notifier, opts ...EngineOption) *Engine {
	e := &Engine{
		store:         store,
		codec:         codec,
		notifier:      notifier,
		logger:        defLogger{},
		now:           time.Now,
		otpExpiry:     defaultOTPExpiry,
		resetExpiry:   defaultResetExpiry,
		refreshExpiry: defaultRefreshExpiry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Register creates a PENDING account, generates a verification OTP, and
// sends it. The verification send is critical: its failure fails the whole
// operation. The success message never reveals deliverability.
func (e *Engine) Register(ctx context.Context, email, password, role string) (*MessageResponse, error) {
	e.logger.Info("registration attempt", "email", email)

	taken, err := e.store.Accounts().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, wrapInternal(err, "failed to check email uniqueness")
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	now := e.now()
	account := &Account{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  hash,
		Roles:         []string{normalizeRole(role)},
		Status:        StatusPending,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if account, err = e.store.Accounts().Create(ctx, account); err != nil {
		return nil, wrapInternal(err, "could not create account")
	}
	e.logger.Info("account created", "account_id", account.ID.String())

	otp := GenerateOTP()
	artifact := &VerificationArtifact{
		ID:        uuid.New(),
		AccountID: account.ID,
		Secret:    otp,
		Purpose:   PurposeEmailVerification,
		ExpiresAt: now.Add(e.otpExpiry),
		CreatedAt: now,
	}

	if _, err = e.store.Artifacts().Create(ctx, artifact); err != nil {
		return nil, wrapInternal(err, "could not create verification code")
	}

	if err = e.notifier.SendVerificationCode(ctx, account.Email, otp); err != nil {
		e.logger.Error("verification email failed", "email", account.Email, "error", err)
		return nil, wrapInternal(err, "failed to send verification email")
	}

	return &MessageResponse{
		Message: "Registration successful! Please check your email for verification code.",
	}, nil
}

// VerifyEmail consumes an OTP and activates the account. Calling it again
// after success is a Conflict, not an idempotent success. The account flip
// is written before the artifact-used flip, so a crash between the two
// leaves a retry failing cleanly at the used check instead of corrupting
// state; the conditional MarkUsed picks exactly one winner under races.
func (e *Engine) VerifyEmail(ctx context.Context, email, otp string) (*MessageResponse, error) {
	e.logger.Info("email verification attempt", "email", email)

	account, err := e.store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		return nil, e.notFoundOrInternal(err, "failed to retrieve account for verification")
	}

	if account.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	now := e.now()
	artifact, err := e.store.Artifacts().GetLiveBySecret(ctx, otp, PurposeEmailVerification, now)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrArtifactInvalid
		}
		return nil, wrapInternal(err, "failed to look up verification code")
	}

	if artifact.AccountID != account.ID {
		return nil, ErrArtifactInvalid
	}

	account.EmailVerified = true
	account.Status = StatusActive
	account.UpdatedAt = now
	if _, err = e.store.Accounts().Update(ctx, account); err != nil {
		return nil, wrapInternal(err, "failed to activate account")
	}

	consumed, err := e.store.Artifacts().MarkUsed(ctx, artifact.ID)
	if err != nil {
		return nil, wrapInternal(err, "failed to consume verification code")
	}
	if !consumed {
		return nil, ErrArtifactInvalid
	}

	e.logger.Info("email verified", "account_id", account.ID.String())

	go e.sendWelcome(account.Email)

	return &MessageResponse{Message: "Email verified successfully! You can now login."}, nil
}

// Login validates credentials and mints an access/refresh token pair.
// Unknown email and wrong password produce the same error; blocked
// accounts get specific, distinguishable reasons.
func (e *Engine) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	e.logger.Info("login attempt", "email", email)

	account, err := e.store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrapInternal(err, "failed to retrieve account for login")
	}

	if err = ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		e.logger.Warn("password mismatch", "account_id", account.ID.String())
		return nil, ErrInvalidCredentials
	}

	if err = ensureAuthenticatable(account); err != nil {
		e.logger.Warn("login blocked", "account_id", account.ID.String(), "status", account.Status)
		return nil, err
	}

	accessToken, _, err := e.codec.Issue(account.ID.String(), account.Roles)
	if err != nil {
		return nil, wrapInternal(err, "failed to issue access token")
	}

	now := e.now()
	refresh := &RefreshToken{
		ID:        uuid.New(),
		Secret:    NewOpaqueSecret(),
		AccountID: account.ID,
		ExpiresAt: now.Add(e.refreshExpiry),
		CreatedAt: now,
	}
	if refresh, err = e.store.RefreshTokens().Create(ctx, refresh); err != nil {
		return nil, wrapInternal(err, "failed to persist refresh token")
	}

	account.LastLogin = &now
	account.FailedAttempts = 0
	account.UpdatedAt = now
	if _, err = e.store.Accounts().Update(ctx, account); err != nil {
		return nil, wrapInternal(err, "failed to record login")
	}

	e.logger.Info("login successful", "account_id", account.ID.String())

	return e.authResult(account, accessToken, refresh.Secret), nil
}

// Refresh mints a new access token against a live refresh token. The
// refresh secret itself is not rotated: the same secret stays valid until
// its own expiry or revocation.
func (e *Engine) Refresh(ctx context.Context, refreshSecret string) (*AuthResult, error) {
	token, err := e.store.RefreshTokens().GetBySecret(ctx, refreshSecret)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, wrapInternal(err, "failed to look up refresh token")
	}

	if token.Expired(e.now()) {
		return nil, ErrRefreshTokenExpired
	}
	if token.Revoked {
		return nil, ErrRefreshTokenRevoked
	}

	account, err := e.store.Accounts().GetByID(ctx, token.AccountID)
	if err != nil {
		return nil, e.notFoundOrInternal(err, "failed to retrieve refresh token owner")
	}

	accessToken, _, err := e.codec.Issue(account.ID.String(), account.Roles)
	if err != nil {
		return nil, wrapInternal(err, "failed to issue access token")
	}

	e.logger.Info("access token refreshed", "account_id", account.ID.String())

	return e.authResult(account, accessToken, refreshSecret), nil
}

// ForgotPassword starts a reset flow. The caller-visible response is the
// same whether or not the account exists; only the reset send may surface
// a fault.
func (e *Engine) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	e.logger.Info("forgot password request", "email", email)

	generic := &MessageResponse{Message: "If this email exists, a reset link will be sent."}

	account, err := e.store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return generic, nil
		}
		return nil, wrapInternal(err, "failed to retrieve account for password reset")
	}

	now := e.now()
	artifact := &VerificationArtifact{
		ID:        uuid.New(),
		AccountID: account.ID,
		Secret:    NewOpaqueSecret(),
		Purpose:   PurposePasswordReset,
		ExpiresAt: now.Add(e.resetExpiry),
		CreatedAt: now,
	}

	if _, err = e.store.Artifacts().Create(ctx, artifact); err != nil {
		return nil, wrapInternal(err, "could not create reset token")
	}

	if err = e.notifier.SendPasswordResetLink(ctx, account.Email, artifact.Secret); err != nil {
		e.logger.Error("reset email failed", "email", account.Email, "error", err)
		return nil, wrapInternal(err, "failed to send password reset email")
	}

	return generic, nil
}

// ResetPassword consumes a reset token, stores the re-hashed password, and
// revokes every refresh token of the owner: all devices have to log in
// again.
func (e *Engine) ResetPassword(ctx context.Context, resetToken, newPassword string) (*MessageResponse, error) {
	now := e.now()

	artifact, err := e.store.Artifacts().GetLiveBySecret(ctx, resetToken, PurposePasswordReset, now)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrArtifactInvalid
		}
		return nil, wrapInternal(err, "failed to look up reset token")
	}

	account, err := e.store.Accounts().GetByID(ctx, artifact.AccountID)
	if err != nil {
		return nil, e.notFoundOrInternal(err, "failed to retrieve account for password reset")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	account.PasswordHash = hash
	account.UpdatedAt = now
	if _, err = e.store.Accounts().Update(ctx, account); err != nil {
		return nil, wrapInternal(err, "failed to store new password")
	}

	consumed, err := e.store.Artifacts().MarkUsed(ctx, artifact.ID)
	if err != nil {
		return nil, wrapInternal(err, "failed to consume reset token")
	}
	if !consumed {
		return nil, ErrArtifactInvalid
	}

	revoked, err := e.store.RefreshTokens().RevokeAllForAccount(ctx, account.ID)
	if err != nil {
		return nil, wrapInternal(err, "failed to revoke refresh tokens")
	}

	e.logger.Info("password reset successful",
		"account_id", account.ID.String(), "revoked_refresh_tokens", revoked)

	return &MessageResponse{Message: "Password reset successful! Please login with new password."}, nil
}

// Logout revokes every refresh token owned by the account. No-op if none
// exist; it always succeeds.
func (e *Engine) Logout(ctx context.Context, accountID uuid.UUID) (*MessageResponse, error) {
	revoked, err := e.store.RefreshTokens().RevokeAllForAccount(ctx, accountID)
	if err != nil {
		return nil, wrapInternal(err, "failed to revoke refresh tokens")
	}

	e.logger.Info("logout", "account_id", accountID.String(), "revoked_refresh_tokens", revoked)

	return &MessageResponse{Message: "Logout successful"}, nil
}

// ValidateToken delegates to the codec and reports validity as a message.
func (e *Engine) ValidateToken(ctx context.Context, accessToken string) (*MessageResponse, error) {
	claims, err := e.codec.Verify(accessToken)
	if err != nil {
		return &MessageResponse{Message: "Invalid token"}, err
	}

	return &MessageResponse{Message: "Valid token for user: " + claims.UserID()}, nil
}

func (e *Engine) authResult(account *Account, accessToken, refreshSecret string) *AuthResult {
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshSecret,
		TokenType:    "Bearer",
		UserID:       account.ID.String(),
		Email:        account.Email,
		Roles:        account.Roles,
		Status:       account.Status,
	}
}

// sendWelcome is fire and forget: a failed welcome mail never surfaces.
func (e *Engine) sendWelcome(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.notifier.SendWelcome(ctx, email); err != nil {
		e.logger.Warn("welcome email failed", "email", email, "error", err)
	}
}

func (e *Engine) notFoundOrInternal(err error, msg string) error {
	if goerrors.IsNotFound(err) {
		return ErrAccountNotFound
	}
	return wrapInternal(err, msg)
}

// ensureAuthenticatable enforces the credential policy beyond the password
// check: verified first, then lock, then status, matching the order the
// reasons are reported in.
func ensureAuthenticatable(account *Account) error {
	if !account.EmailVerified {
		return ErrEmailNotVerified
	}
	if account.AccountLocked {
		return ErrAccountLocked
	}
	if account.Status != StatusActive {
		return goerrors.New("account is not active, status: "+account.Status, ErrAccountNotActive.Category).
			WithTextCode(ErrAccountNotActive.TextCode).
			WithCode(goerrors.CodeUnauthorized)
	}
	return nil
}

func normalizeRole(role string) string {
	if role == "" {
		return RoleUser
	}
	return strings.ToUpper(role)
}
