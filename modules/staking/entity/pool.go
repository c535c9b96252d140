package entity

import "github.com/gaze-network/uint128"

// StakingPool mirrors the raw on-chain pool account. One row per pool,
// mutated only by the reconciliation loop when it re-reads pool state.
type StakingPool struct {
	PoolAddress                  string
	Owner                        string
	TokenMint                    string
	HoldingWallet                string
	HoldingBump                  int16
	TotalStaked                  uint64
	TotalShares                  uint128.Uint128
	InterestRateHourly           uint32
	EstAPY                       int64
	MaxInterestRateHourly        uint32
	LastInterestAccruedTimestamp int64
	MinimumStakingAmount         uint64
	MinimumStakingPeriodSec      int64
	IsInterestAccrualPaused      bool
	IsActive                     bool
}
