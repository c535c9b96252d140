package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/fincalc"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

// UserStakeDetails combines the account snapshot with its interest-adjusted
// totals and the pool it stakes into.
type UserStakeDetails struct {
	Account         *entity.UserStakeAccount
	Pool            *entity.StakingPool
	EstimatedAPY    int64
	TotalStaked     uint64
	RewardsEarned   int64
	AmountWithdrawn uint128.Uint128
}

// GetUserAndStakeDetails returns errs.NotFound for unknown owners. Unlike the
// leaderboard, rewards are reported raw and may be negative.
func (u *Usecase) GetUserAndStakeDetails(ctx context.Context, owner string) (*UserStakeDetails, error) {
	account, err := u.stakingDg.GetUserStakeAccount(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetUserStakeAccount")
	}
	pool, err := u.stakingDg.GetStakingPool(ctx, u.poolAddress)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetStakingPool")
	}

	now := time.Now().Unix()
	totalStaked, err := fincalc.TotalStakedFor(account.OwnershipShare, *pool, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute total staked")
	}
	rewards, err := fincalc.RewardsEarned(account.OwnershipShare, *pool, account.Balance, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute rewards")
	}

	return &UserStakeDetails{
		Account: account,
		Pool:    pool,
		// derived from the live rate rather than the mirrored est_apy column
		EstimatedAPY:    fincalc.EstimatedAPY(pool.InterestRateHourly),
		TotalStaked:     totalStaked,
		RewardsEarned:   rewards,
		AmountWithdrawn: lo.FromPtr(account.AmountWithdrawn),
	}, nil
}
