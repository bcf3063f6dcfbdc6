package repository

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/skillhub/identity"
)

// Artifacts stores single-use verification secrets.
type Artifacts struct {
	db *bun.DB
}

var _ identity.ArtifactStore = (*Artifacts)(nil)

func (r *Artifacts) Create(ctx context.Context, artifact *identity.VerificationArtifact) (*identity.VerificationArtifact, error) {
	if artifact.ID == uuid.Nil {
		artifact.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(artifact).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create verification artifact")
	}
	return artifact, nil
}

func (r *Artifacts) GetLiveBySecret(ctx context.Context, secret string, purpose identity.ArtifactPurpose, now time.Time) (*identity.VerificationArtifact, error) {
	artifact := &identity.VerificationArtifact{}
	err := r.db.NewSelect().
		Model(artifact).
		Where("va.secret = ?", secret).
		Where("va.purpose = ?", purpose).
		Where("va.used = ?", false).
		Where("va.expires_at > ?", now).
		Order("va.created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "failed to load verification artifact")
	}
	return artifact, nil
}

// MarkUsed is a conditional update so the used flag stays monotonic under
// races: only the caller that actually flipped false->true gets true back.
func (r *Artifacts) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*identity.VerificationArtifact)(nil)).
		Set("used = ?", true).
		Where("va.id = ?", id).
		Where("va.used = ?", false).
		Exec(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification artifact")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read consume result")
	}
	return affected == 1, nil
}

func (r *Artifacts) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*identity.VerificationArtifact)(nil)).
		Where("va.expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to purge expired artifacts")
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}
