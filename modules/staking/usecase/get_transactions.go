package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
)

// GetTransactionsByOwner returns the owner's mirrored history, newest first.
func (u *Usecase) GetTransactionsByOwner(ctx context.Context, owner string, limit, offset int32) ([]*entity.TransactionHistory, error) {
	transactions, err := u.stakingDg.ListTransactionsByOwner(ctx, owner, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during ListTransactionsByOwner")
	}
	return transactions, nil
}
