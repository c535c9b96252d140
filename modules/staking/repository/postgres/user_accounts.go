package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (r *Repository) GetUserStakeAccount(ctx context.Context, owner string) (*entity.UserStakeAccount, error) {
	model, err := r.queries.GetUserStakeAccount(ctx, owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get user stake account")
	}
	result, err := mapUserAccountModelToType(model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map user account model to type")
	}
	return result, nil
}

func (r *Repository) UpsertUserStakeAccount(ctx context.Context, account *entity.UserStakeAccount) error {
	params, err := mapUserAccountTypeToParams(account)
	if err != nil {
		return errors.Wrap(err, "failed to map user account type to params")
	}
	if err := r.queries.UpsertUserStakeAccount(ctx, params); err != nil {
		return errors.Wrapf(err, "failed to upsert user account, owner: %s", account.Owner)
	}
	return nil
}

func (r *Repository) ListUserStakeAccounts(ctx context.Context, isGariUser *bool, limit, offset int32) ([]*entity.UserStakeAccount, error) {
	var filter pgtype.Bool
	if isGariUser != nil {
		filter = pgtype.Bool{Bool: *isGariUser, Valid: true}
	}
	models, err := r.queries.ListUserStakeAccounts(ctx, gen.ListUserStakeAccountsParams{
		IsGariUser: filter,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user stake accounts")
	}
	results := make([]*entity.UserStakeAccount, 0, len(models))
	for _, model := range models {
		result, err := mapUserAccountModelToType(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map user account model to type")
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Repository) ListActiveOwnersInBlockTimeRange(ctx context.Context, fromBlockTime, toBlockTime int64) ([]string, error) {
	owners, err := r.queries.ListActiveOwnersInBlockTimeRange(ctx, gen.ListActiveOwnersInBlockTimeRangeParams{
		FromBlockTime: fromBlockTime,
		ToBlockTime:   toBlockTime,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active owners")
	}
	return owners, nil
}
