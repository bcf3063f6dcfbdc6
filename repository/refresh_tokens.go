package repository

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/skillhub/identity"
)

// RefreshTokens stores refresh tokens, queryable by secret and by owner.
type RefreshTokens struct {
	db *bun.DB
}

var _ identity.RefreshTokenStore = (*RefreshTokens)(nil)

func (r *RefreshTokens) Create(ctx context.Context, token *identity.RefreshToken) (*identity.RefreshToken, error) {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(token).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create refresh token")
	}
	return token, nil
}

func (r *RefreshTokens) GetBySecret(ctx context.Context, secret string) (*identity.RefreshToken, error) {
	token := &identity.RefreshToken{}
	err := r.db.NewSelect().Model(token).Where("rt.secret = ?", secret).Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "failed to load refresh token")
	}
	return token, nil
}

// RevokeAllForAccount flips revoked on every live token of the account.
// The revoked guard keeps the flag monotonic and the count honest when two
// cascades race.
func (r *RefreshTokens) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*identity.RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("rt.account_id = ?", accountID).
		Where("rt.revoked = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke refresh tokens")
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}
