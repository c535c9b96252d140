package ledger

import (
	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gaze-network/uint128"
)

// Transaction is a single parsed ledger transaction as returned by the
// staking web API.
type Transaction struct {
	BlockTime            int64  `json:"block_time"`
	Error                bool   `json:"error"`
	InstructionType      string `json:"instruction_type"`
	StakingDataAccount   string `json:"staking_data_account"`
	TransactionSignature string `json:"transaction_signature"`
	Amount               uint64 `json:"amount"`
}

// UserAccountBatch groups a page's transactions per staking user together
// with that user's current on-chain account snapshot.
type UserAccountBatch struct {
	StakingUserDataAccount string          `json:"staking_user_data_account"`
	UserTokenWallet        string          `json:"user_token_wallet"`
	Transactions           []Transaction   `json:"transactions"`
	IsGariUser             bool            `json:"is_gari_user"`
	OwnershipShare         uint128.Uint128 `json:"ownership_share"`
	StakedAmount           uint64          `json:"staked_amount"`
	LockedAmount           uint64          `json:"locked_amount"`
	LockedUntil            int64           `json:"locked_until"`
	LastStakingTimestamp   int64           `json:"last_staking_timestamp"`
}

// PoolState is the raw on-chain staking pool account.
type PoolState struct {
	StakingDataAccount           string          `json:"staking_data_account"`
	Owner                        string          `json:"owner"`
	StakingAccountToken          string          `json:"staking_account_token"`
	HoldingWallet                string          `json:"holding_wallet"`
	HoldingBump                  uint8           `json:"holding_bump"`
	TotalStaked                  uint64          `json:"total_staked"`
	TotalShares                  uint128.Uint128 `json:"total_shares"`
	InterestRateHourly           uint32          `json:"interest_rate_hourly"`
	EstAPY                       int64           `json:"est_apy"`
	MaxInterestRateHourly        uint32          `json:"max_interest_rate_hourly"`
	LastInterestAccruedTimestamp int64           `json:"last_interest_accrued_timestamp"`
	MinimumStakingAmount         uint64          `json:"minimum_staking_amount"`
	MinimumStakingPeriodSec      int64           `json:"minimum_staking_period_sec"`
	IsInterestAccrualPaused      bool            `json:"is_interest_accrual_paused"`
	IsActive                     bool            `json:"is_active"`
}

// ToEntity maps the wire pool state to the persisted pool row.
func (p PoolState) ToEntity() entity.StakingPool {
	return entity.StakingPool{
		PoolAddress:                  p.StakingDataAccount,
		Owner:                        p.Owner,
		TokenMint:                    p.StakingAccountToken,
		HoldingWallet:                p.HoldingWallet,
		HoldingBump:                  int16(p.HoldingBump),
		TotalStaked:                  p.TotalStaked,
		TotalShares:                  p.TotalShares,
		InterestRateHourly:           p.InterestRateHourly,
		EstAPY:                       p.EstAPY,
		MaxInterestRateHourly:        p.MaxInterestRateHourly,
		LastInterestAccruedTimestamp: p.LastInterestAccruedTimestamp,
		MinimumStakingAmount:         p.MinimumStakingAmount,
		MinimumStakingPeriodSec:      p.MinimumStakingPeriodSec,
		IsInterestAccrualPaused:      p.IsInterestAccrualPaused,
		IsActive:                     p.IsActive,
	}
}

// InstructionKind maps the wire instruction type to the entity kind.
func (t Transaction) InstructionKind() (entity.InstructionKind, error) {
	switch t.InstructionType {
	case "stake":
		return entity.InstructionStake, nil
	case "unstake":
		return entity.InstructionUnstake, nil
	default:
		return "", errors.Wrapf(errs.Unsupported, "instruction type %q", t.InstructionType)
	}
}
