package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
)

func (r *Repository) InsertNonParsedTransactions(ctx context.Context, signatures []string) error {
	for _, signature := range signatures {
		if err := r.queries.InsertNonParsedTransaction(ctx, signature); err != nil {
			return errors.Wrapf(err, "failed to insert non-parsed transaction, signature: %s", signature)
		}
	}
	return nil
}

func (r *Repository) ListNonParsedTransactions(ctx context.Context, limit int32) ([]*entity.NonParsedTransaction, error) {
	models, err := r.queries.ListNonParsedTransactions(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list non-parsed transactions")
	}
	results := make([]*entity.NonParsedTransaction, 0, len(models))
	for _, model := range models {
		results = append(results, mapNonParsedModelToType(model))
	}
	return results, nil
}

func (r *Repository) DeleteNonParsedTransactions(ctx context.Context, signatures []string) error {
	if len(signatures) == 0 {
		return nil
	}
	if err := r.queries.DeleteNonParsedTransactions(ctx, signatures); err != nil {
		return errors.Wrap(err, "failed to delete non-parsed transactions")
	}
	return nil
}
