package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetStakingPool(ctx context.Context, poolAddress string) (*entity.StakingPool, error) {
	model, err := r.queries.GetStakingPool(ctx, poolAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get staking pool")
	}
	result, err := mapPoolModelToType(model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map pool model to type")
	}
	return result, nil
}

func (r *Repository) UpsertStakingPool(ctx context.Context, pool *entity.StakingPool) error {
	params, err := mapPoolTypeToParams(pool)
	if err != nil {
		return errors.Wrap(err, "failed to map pool type to params")
	}
	if err := r.queries.UpsertStakingPool(ctx, params); err != nil {
		return errors.Wrapf(err, "failed to upsert staking pool, address: %s", pool.PoolAddress)
	}
	return nil
}
