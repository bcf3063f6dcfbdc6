package repository

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/skillhub/identity"
)

// Accounts stores account records keyed by id with a unique email.
type Accounts struct {
	db *bun.DB
}

var _ identity.AccountStore = (*Accounts)(nil)

func (r *Accounts) GetByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	account := &identity.Account{}
	err := r.db.NewSelect().Model(account).Where("acc.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "failed to load account by id")
	}
	return account, nil
}

func (r *Accounts) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	account := &identity.Account{}
	err := r.db.NewSelect().Model(account).Where("acc.email = ?", email).Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "failed to load account by email")
	}
	return account, nil
}

func (r *Accounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*identity.Account)(nil)).
		Where("acc.email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check account existence")
	}
	return exists, nil
}

func (r *Accounts) Create(ctx context.Context, account *identity.Account) (*identity.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(account).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
	}
	return account, nil
}

func (r *Accounts) Update(ctx context.Context, account *identity.Account) (*identity.Account, error) {
	res, err := r.db.NewUpdate().Model(account).WherePK().Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrRecordNotFound
	}
	return account, nil
}
