package entity

import "github.com/gaze-network/uint128"

// UserStakeAccount is the last-known snapshot of a staking user, kept in
// sync with the mirrored transaction history.
//
// Balance must equal the signed sum of all non-error history amounts for the
// owner (stake adds, unstake subtracts). Every history insert adjusts it in
// the same database transaction.
type UserStakeAccount struct {
	Owner                string
	StakeDataAddress     string
	TokenWallet          *string
	PoolAddress          string
	IsGariUser           bool
	OwnershipShare       uint128.Uint128
	StakedAmount         uint64
	LockedAmount         uint64
	LockedUntil          int64
	LastStakingTimestamp int64
	Balance              int64
	AmountWithdrawn      *uint128.Uint128
}
