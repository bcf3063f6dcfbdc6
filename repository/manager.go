// Package repository is the bun-backed credential store plus an in-memory
// double with the same semantics, used by tests and local tooling.
package repository

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	identity "github.com/skillhub/identity"
)

// ErrRecordNotFound is returned by every lookup that matches nothing.
var ErrRecordNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// Manager exposes the per-entity stores backed by one bun.DB.
type Manager struct {
	db            *bun.DB
	accounts      *Accounts
	artifacts     *Artifacts
	refreshTokens *RefreshTokens
}

var _ identity.Store = (*Manager)(nil)

// NewManager wires the repositories over the given database handle.
func NewManager(db *bun.DB) *Manager {
	return &Manager{
		db:            db,
		accounts:      &Accounts{db: db},
		artifacts:     &Artifacts{db: db},
		refreshTokens: &RefreshTokens{db: db},
	}
}

func (m *Manager) Accounts() identity.AccountStore { return m.accounts }

func (m *Manager) Artifacts() identity.ArtifactStore { return m.artifacts }

func (m *Manager) RefreshTokens() identity.RefreshTokenStore { return m.refreshTokens }

// RunInTx runs f inside a database transaction.
func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func notFoundOr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if goerrors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
