package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/repository/postgres/gen"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

// uniqueViolationCode is the postgres error code for unique constraint violations.
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func (r *Repository) GetLatestTransaction(ctx context.Context) (*entity.TransactionHistory, error) {
	model, err := r.queries.GetLatestTransaction(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get latest transaction")
	}
	result, err := mapTransactionModelToType(model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map transaction model to type")
	}
	return result, nil
}

func (r *Repository) GetTransactionsByOwnerUpToBlockTime(ctx context.Context, owner string, blockTime int64) ([]*entity.TransactionHistory, error) {
	models, err := r.queries.GetTransactionsByOwnerUpToBlockTime(ctx, gen.GetTransactionsByOwnerUpToBlockTimeParams{
		Owner:     owner,
		BlockTime: blockTime,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transactions by owner")
	}
	results := make([]*entity.TransactionHistory, 0, len(models))
	for _, model := range models {
		result, err := mapTransactionModelToType(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map transaction model to type")
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Repository) GetTransactionsInBlockTimeRange(ctx context.Context, fromBlockTime, toBlockTime int64) ([]*entity.TransactionHistory, error) {
	models, err := r.queries.GetTransactionsInBlockTimeRange(ctx, gen.GetTransactionsInBlockTimeRangeParams{
		FromBlockTime: fromBlockTime,
		ToBlockTime:   toBlockTime,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transactions in block time range")
	}
	results := make([]*entity.TransactionHistory, 0, len(models))
	for _, model := range models {
		result, err := mapTransactionModelToType(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map transaction model to type")
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Repository) ListTransactionsByOwner(ctx context.Context, owner string, limit, offset int32) ([]*entity.TransactionHistory, error) {
	models, err := r.queries.ListTransactionsByOwner(ctx, gen.ListTransactionsByOwnerParams{
		Owner:  owner,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions by owner")
	}
	results := make([]*entity.TransactionHistory, 0, len(models))
	for _, model := range models {
		result, err := mapTransactionModelToType(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map transaction model to type")
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Repository) InsertTransactionWithBalance(ctx context.Context, transaction *entity.TransactionHistory, account *entity.UserStakeAccount) error {
	txParams, err := mapTransactionTypeToParams(transaction)
	if err != nil {
		return errors.Wrap(err, "failed to map transaction type to params")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r) // re-throw panic after rollback
		}
	}()

	queries := r.queries.WithTx(tx)

	if err := queries.InsertTransaction(ctx, txParams); err != nil {
		_ = tx.Rollback(ctx)
		if isUniqueViolation(err) {
			return errors.Wrapf(errs.Duplicate, "signature %s is already mirrored", transaction.Signature)
		}
		return errors.Wrapf(err, "failed to insert transaction, signature: %s", transaction.Signature)
	}

	if account != nil {
		accountParams, err := mapUserAccountTypeToParams(account)
		if err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrap(err, "failed to map user account type to params")
		}
		if err := queries.UpsertUserStakeAccount(ctx, accountParams); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrapf(err, "failed to upsert user account, owner: %s", account.Owner)
		}
	}

	// Errored instructions never move funds, so they leave the balance alone.
	if !transaction.IsError {
		delta := int64(transaction.Amount)
		if transaction.InstructionKind == entity.InstructionUnstake {
			delta = -delta
		}
		if err := queries.AdjustUserBalance(ctx, gen.AdjustUserBalanceParams{
			Owner:   transaction.Owner,
			Balance: delta,
		}); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrapf(err, "failed to adjust user balance, owner: %s", transaction.Owner)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (r *Repository) SetTransactionAmountWithdrawn(ctx context.Context, signature string, amount uint128.Uint128) error {
	amountWithdrawn, err := numericFromUint128(&amount)
	if err != nil {
		return errors.Wrap(err, "failed to convert amount withdrawn")
	}
	if err := r.queries.SetTransactionAmountWithdrawn(ctx, gen.SetTransactionAmountWithdrawnParams{
		Signature:       signature,
		AmountWithdrawn: amountWithdrawn,
	}); err != nil {
		return errors.Wrapf(err, "failed to set amount withdrawn, signature: %s", signature)
	}
	return nil
}

func (r *Repository) SumAmountWithdrawnByOwner(ctx context.Context, owner string) (uint128.Uint128, error) {
	total, err := r.queries.SumAmountWithdrawnByOwner(ctx, owner)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "failed to sum amount withdrawn")
	}
	result, err := uint128FromNumeric(total)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "failed to parse amount withdrawn sum")
	}
	return lo.FromPtr(result), nil
}
