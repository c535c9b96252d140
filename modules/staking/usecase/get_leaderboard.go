package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/fincalc"
)

// LeaderboardEntry is one ranked account with its interest-adjusted totals.
type LeaderboardEntry struct {
	Account       *entity.UserStakeAccount
	TotalStaked   uint64
	RewardsEarned uint64
}

// GetLeaderboard ranks accounts by staked amount. Rewards are computed from
// the pool's pending interest and clamped at zero: an account whose balance
// ran ahead of its share never shows negative rewards.
func (u *Usecase) GetLeaderboard(ctx context.Context, isGariUser *bool, limit, offset int32) ([]LeaderboardEntry, error) {
	pool, err := u.stakingDg.GetStakingPool(ctx, u.poolAddress)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetStakingPool")
	}
	accounts, err := u.stakingDg.ListUserStakeAccounts(ctx, isGariUser, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during ListUserStakeAccounts")
	}

	now := time.Now().Unix()
	entries := make([]LeaderboardEntry, 0, len(accounts))
	for _, account := range accounts {
		totalStaked, err := fincalc.TotalStakedFor(account.OwnershipShare, *pool, now)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compute total staked, owner: %s", account.Owner)
		}
		rewards, err := fincalc.RewardsEarned(account.OwnershipShare, *pool, account.Balance, now)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compute rewards, owner: %s", account.Owner)
		}
		if rewards < 0 {
			rewards = 0
		}
		entries = append(entries, LeaderboardEntry{
			Account:       account,
			TotalStaked:   totalStaked,
			RewardsEarned: uint64(rewards),
		})
	}
	return entries, nil
}
