package repository

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/skillhub/identity"
)

// EnsureSchema creates the store tables when they do not exist. Intended
// for the sqlite development backend; managed databases run migrations.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*identity.Account)(nil),
		(*identity.VerificationArtifact)(nil),
		(*identity.RefreshToken)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create store schema")
		}
	}

	return nil
}
