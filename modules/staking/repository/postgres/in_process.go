package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetInProcessTransaction(ctx context.Context, signature string, status entity.SettlementStatus) (*entity.InProcessTransaction, error) {
	model, err := r.queries.GetInProcessBySignatureAndStatus(ctx, gen.GetInProcessBySignatureAndStatusParams{
		Signature: signature,
		Status:    status.String(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get in-process transaction")
	}
	result, err := mapInProcessModelToType(model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map in-process model to type")
	}
	return result, nil
}

func (r *Repository) GetInProcessTransactionByID(ctx context.Context, settlementID string) (*entity.InProcessTransaction, error) {
	model, err := r.queries.GetInProcessBySettlementID(ctx, settlementID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get in-process transaction by id")
	}
	result, err := mapInProcessModelToType(model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map in-process model to type")
	}
	return result, nil
}

func (r *Repository) InsertInProcessTransaction(ctx context.Context, transaction *entity.InProcessTransaction) error {
	params, err := mapInProcessTypeToParams(transaction)
	if err != nil {
		return errors.Wrap(err, "failed to map in-process type to params")
	}
	if err := r.queries.InsertInProcessTransaction(ctx, params); err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(errs.Duplicate, "settlement id %s already exists", transaction.SettlementID)
		}
		return errors.Wrapf(err, "failed to insert in-process transaction, id: %s", transaction.SettlementID)
	}
	return nil
}

func (r *Repository) UpdateInProcessTransaction(ctx context.Context, settlementID, signature string, status entity.SettlementStatus) error {
	if err := r.queries.UpdateInProcessTransaction(ctx, gen.UpdateInProcessTransactionParams{
		SettlementID: settlementID,
		Signature:    signature,
		Status:       status.String(),
	}); err != nil {
		return errors.Wrapf(err, "failed to update in-process transaction, id: %s", settlementID)
	}
	return nil
}

func (r *Repository) ReplaceInProcessTransaction(ctx context.Context, predecessorID string, successor *entity.InProcessTransaction) error {
	params, err := mapInProcessTypeToParams(successor)
	if err != nil {
		return errors.Wrap(err, "failed to map in-process type to params")
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

	// Insert before delete: an interrupted replace must keep the successor.
	if err := queries.InsertInProcessTransaction(ctx, params); err != nil {
		_ = tx.Rollback(ctx)
		return errors.Wrapf(err, "failed to insert successor, id: %s", successor.SettlementID)
	}
	if err := queries.DeleteInProcessTransaction(ctx, predecessorID); err != nil {
		_ = tx.Rollback(ctx)
		return errors.Wrapf(err, "failed to delete predecessor, id: %s", predecessorID)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (r *Repository) ListStuckInProcessTransactions(ctx context.Context, submittedBefore int64) ([]*entity.InProcessTransaction, error) {
	models, err := r.queries.ListInProcessOlderThan(ctx, gen.ListInProcessOlderThanParams{
		Status:      entity.SettlementStatusProcessing.String(),
		SubmittedAt: submittedBefore,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stuck in-process transactions")
	}
	results := make([]*entity.InProcessTransaction, 0, len(models))
	for _, model := range models {
		result, err := mapInProcessModelToType(model)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map in-process model to type")
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Repository) MarkInProcessTransactionsFailed(ctx context.Context, signatures []string, submittedBefore int64) error {
	if len(signatures) == 0 {
		return nil
	}
	if err := r.queries.MarkInProcessFailedOlderThan(ctx, gen.MarkInProcessFailedOlderThanParams{
		Signatures:  signatures,
		SubmittedAt: submittedBefore,
	}); err != nil {
		return errors.Wrap(err, "failed to mark in-process transactions failed")
	}
	return nil
}
