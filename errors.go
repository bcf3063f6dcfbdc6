package identity

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeEmailTaken          = "EMAIL_ALREADY_REGISTERED"
	TextCodeAlreadyVerified     = "EMAIL_ALREADY_VERIFIED"
	TextCodeArtifactInvalid     = "INVALID_OR_EXPIRED_CODE"
	TextCodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	TextCodeAccountLocked       = "ACCOUNT_LOCKED"
	TextCodeAccountNotActive    = "ACCOUNT_NOT_ACTIVE"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	TextCodeRefreshTokenRevoked = "REFRESH_TOKEN_REVOKED"
)

// ErrEmailTaken is returned by register when the email is already present.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is returned when no account matches the addressed email or id.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrAlreadyVerified is the idempotent-reject on a second verification.
var ErrAlreadyVerified = goerrors.New("email already verified", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(goerrors.CodeConflict)

// ErrArtifactInvalid covers a missing, expired, consumed, or misaddressed
// one-time secret. Callers get no finer detail on purpose.
var ErrArtifactInvalid = goerrors.New("invalid or expired verification code", goerrors.CategoryValidation).
	WithTextCode(TextCodeArtifactInvalid).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials is the single error for unknown email and wrong
// password, so login never leaks account existence.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailNotVerified blocks login on a PENDING, unverified account.
var ErrEmailNotVerified = goerrors.New("email not verified, please verify your email first", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountLocked blocks login on a locked account.
var ErrAccountLocked = goerrors.New("account is locked, please contact support", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotActive blocks login on any non-ACTIVE status.
var ErrAccountNotActive = goerrors.New("account is not active", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountNotActive).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned by the codec for a well-formed, stale token.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned by the codec for anything it cannot verify
// short of expiry: bad signature, wrong algorithm, garbage input.
var ErrTokenMalformed = goerrors.New("token is malformed or has an invalid signature", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrRefreshTokenNotFound is returned by refresh when no record matches.
var ErrRefreshTokenNotFound = goerrors.New("refresh token not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrRefreshTokenExpired is returned by refresh past the token expiry.
var ErrRefreshTokenExpired = goerrors.New("refresh token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeRefreshTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrRefreshTokenRevoked is returned by refresh after a revocation cascade.
var ErrRefreshTokenRevoked = goerrors.New("refresh token revoked", goerrors.CategoryAuth).
	WithTextCode(TextCodeRefreshTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// wrapInternal normalizes store and notifier faults into the generic
// server-fault category without leaking detail to callers.
func wrapInternal(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
