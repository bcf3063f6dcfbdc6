package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the lifecycle status of an account
type AccountStatus = string

const (
	// StatusPending is a freshly registered, not yet verified account
	StatusPending AccountStatus = "PENDING"
	// StatusActive is a verified account that may authenticate
	StatusActive AccountStatus = "ACTIVE"
	// StatusSuspended is a locked-out account; leaving it is manual
	StatusSuspended AccountStatus = "SUSPENDED"
)

// Role labels carried in the roles claim
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account is the identity record. Email is the unique human-facing key,
// the password is stored only as a bcrypt hash.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	Roles          []string   `bun:"roles" json:"roles,omitempty"`
	Status         string     `bun:"status,notnull" json:"status,omitempty"`
	EmailVerified  bool       `bun:"email_verified" json:"email_verified,omitempty"`
	AccountLocked  bool       `bun:"account_locked" json:"account_locked,omitempty"`
	FailedAttempts int        `bun:"failed_login_attempts" json:"failed_login_attempts,omitempty"`
	LastLogin      *time.Time `bun:"last_login,nullzero" json:"last_login,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,notnull" json:"created_at,omitempty"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull" json:"updated_at,omitempty"`
}

// PrimaryRole is the role injected into the gateway identity headers.
func (a *Account) PrimaryRole() string {
	if len(a.Roles) == 0 {
		return RoleUser
	}
	return a.Roles[0]
}

// ArtifactPurpose discriminates single-use verification secrets
type ArtifactPurpose = string

const (
	// PurposeEmailVerification is a 6 digit OTP, valid 10 minutes
	PurposeEmailVerification ArtifactPurpose = "EMAIL_VERIFICATION"
	// PurposePasswordReset is a random token, valid 1 hour
	PurposePasswordReset ArtifactPurpose = "PASSWORD_RESET"
)

// VerificationArtifact is a single-use, time-bounded secret tied to one
// account and one purpose. Used is monotonic: once true it never resets.
type VerificationArtifact struct {
	bun.BaseModel `bun:"table:verification_artifacts,alias:va"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id,omitempty"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	Secret    string    `bun:"secret,notnull" json:"-"`
	Purpose   string    `bun:"purpose,notnull" json:"purpose,omitempty"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Used      bool      `bun:"used" json:"used,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at,omitempty"`
}

// Live reports whether the artifact can still be consumed at the given time.
func (v *VerificationArtifact) Live(now time.Time) bool {
	return !v.Used && now.Before(v.ExpiresAt)
}

// RefreshToken is a long-lived opaque credential used only to mint new
// access tokens. Revoked is monotonic; all tokens of one account are
// revoked together on logout or password reset.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Secret    string    `bun:"secret,notnull,unique" json:"-"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Revoked   bool      `bun:"revoked" json:"revoked,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at,omitempty"`
}

// Expired reports whether the token is past its expiry at the given time.
func (r *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
