package datagateway

import (
	"context"

	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gaze-network/uint128"
)

type StakingDataGateway interface {
	LedgerMirrorDataGateway
	UserAccountDataGateway
	PoolDataGateway
	InProcessDataGateway
	NonParsedDataGateway
}

// LedgerMirrorDataGateway is the append-only transaction history mirror.
type LedgerMirrorDataGateway interface {
	// GetLatestTransaction returns the most recently mirrored transaction.
	// Returns errs.NotFound if the mirror is empty.
	GetLatestTransaction(ctx context.Context) (*entity.TransactionHistory, error)

	// GetTransactionsByOwnerUpToBlockTime returns non-error transactions for
	// the owner with block time <= blockTime, oldest first.
	GetTransactionsByOwnerUpToBlockTime(ctx context.Context, owner string, blockTime int64) ([]*entity.TransactionHistory, error)

	// GetTransactionsInBlockTimeRange returns non-error transactions with
	// fromBlockTime <= block_time < toBlockTime, grouped by owner, oldest first.
	GetTransactionsInBlockTimeRange(ctx context.Context, fromBlockTime, toBlockTime int64) ([]*entity.TransactionHistory, error)

	ListTransactionsByOwner(ctx context.Context, owner string, limit, offset int32) ([]*entity.TransactionHistory, error)

	// InsertTransactionWithBalance inserts a history row, upserts the owner's
	// account snapshot (when provided) and adjusts the owner's running balance,
	// all in a single database transaction. Returns errs.Duplicate if the
	// signature is already mirrored.
	InsertTransactionWithBalance(ctx context.Context, transaction *entity.TransactionHistory, account *entity.UserStakeAccount) error

	SetTransactionAmountWithdrawn(ctx context.Context, signature string, amount uint128.Uint128) error
	SumAmountWithdrawnByOwner(ctx context.Context, owner string) (uint128.Uint128, error)
}

type UserAccountDataGateway interface {
	// GetUserStakeAccount returns errs.NotFound when the owner is unknown.
	GetUserStakeAccount(ctx context.Context, owner string) (*entity.UserStakeAccount, error)

	// UpsertUserStakeAccount replaces the snapshot columns of the account.
	// The running balance is never written here.
	UpsertUserStakeAccount(ctx context.Context, account *entity.UserStakeAccount) error

	// ListUserStakeAccounts returns accounts ordered by staked amount
	// descending. A nil isGariUser returns all accounts.
	ListUserStakeAccounts(ctx context.Context, isGariUser *bool, limit, offset int32) ([]*entity.UserStakeAccount, error)

	ListActiveOwnersInBlockTimeRange(ctx context.Context, fromBlockTime, toBlockTime int64) ([]string, error)
}

type PoolDataGateway interface {
	// GetStakingPool returns errs.NotFound when the pool is unknown.
	GetStakingPool(ctx context.Context, poolAddress string) (*entity.StakingPool, error)
	UpsertStakingPool(ctx context.Context, pool *entity.StakingPool) error
}

// InProcessDataGateway tracks transactions awaiting settlement resolution.
type InProcessDataGateway interface {
	// GetInProcessTransaction returns errs.NotFound when no row matches.
	GetInProcessTransaction(ctx context.Context, signature string, status entity.SettlementStatus) (*entity.InProcessTransaction, error)
	GetInProcessTransactionByID(ctx context.Context, settlementID string) (*entity.InProcessTransaction, error)
	InsertInProcessTransaction(ctx context.Context, transaction *entity.InProcessTransaction) error
	UpdateInProcessTransaction(ctx context.Context, settlementID, signature string, status entity.SettlementStatus) error

	// ReplaceInProcessTransaction inserts the successor row and deletes the
	// predecessor in a single database transaction, in that order, so a crash
	// between the two steps leaves the successor rather than losing both.
	ReplaceInProcessTransaction(ctx context.Context, predecessorID string, successor *entity.InProcessTransaction) error

	ListStuckInProcessTransactions(ctx context.Context, submittedBefore int64) ([]*entity.InProcessTransaction, error)
	MarkInProcessTransactionsFailed(ctx context.Context, signatures []string, submittedBefore int64) error
}

// NonParsedDataGateway is the retry queue for signatures that failed decoding.
type NonParsedDataGateway interface {
	InsertNonParsedTransactions(ctx context.Context, signatures []string) error
	ListNonParsedTransactions(ctx context.Context, limit int32) ([]*entity.NonParsedTransaction, error)
	DeleteNonParsedTransactions(ctx context.Context, signatures []string) error
}
