package fincalc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccrueInterest(t *testing.T) {
	t.Run("zero_elapsed", func(t *testing.T) {
		interest, newTs, err := AccrueInterest(1000, 1000, 1_000_000, 100)
		require.NoError(t, err)
		assert.Zero(t, interest)
		assert.EqualValues(t, 1000, newTs)
	})
	t.Run("sub_hour_no_accrual", func(t *testing.T) {
		interest, newTs, err := AccrueInterest(1000, 1000+3599, 1_000_000, 100)
		require.NoError(t, err)
		assert.Zero(t, interest)
		assert.EqualValues(t, 1000, newTs, "timestamp must stay unchanged under one hour")
	})
	t.Run("single_hour", func(t *testing.T) {
		// 1e12 * (1e8 + 1e6) / 1e8 = 1.01e12
		interest, newTs, err := AccrueInterest(0, 3600, 1_000_000_000_000, 1_000_000)
		require.NoError(t, err)
		assert.EqualValues(t, 10_000_000_000, interest)
		assert.EqualValues(t, 3600, newTs)
	})
	t.Run("sub_hour_remainder_dropped", func(t *testing.T) {
		_, newTs, err := AccrueInterest(0, 3600*5+1799, 1_000_000, 100)
		require.NoError(t, err)
		assert.EqualValues(t, 3600*5, newTs)
	})
	t.Run("monotonic_in_hours", func(t *testing.T) {
		var prev uint64
		for hours := int64(1); hours <= MaxAccrualHours; hours++ {
			interest, _, err := AccrueInterest(0, hours*3600, 1_000_000_000, 5000)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, interest, prev, "hours=%d", hours)
			prev = interest
		}
	})
	t.Run("window_ceiling", func(t *testing.T) {
		_, _, err := AccrueInterest(0, (MaxAccrualHours+1)*3600, 1_000_000, 100)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAccrualWindowExceeded))

		_, _, err = AccrueInterest(0, MaxAccrualHours*3600, 1_000_000, 100)
		assert.NoError(t, err)
	})
	t.Run("chunking_equivalence", func(t *testing.T) {
		// 30 hours split 15+15 must agree bit-for-bit with 10+10+10.
		const totalStaked = 987_654_321_012_345
		const rate = 123_456
		a, tsA, errA := accrueInterest(0, 30*3600, totalStaked, rate, 15)
		b, tsB, errB := accrueInterest(0, 30*3600, totalStaked, rate, 10)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, a, b)
		assert.Equal(t, tsA, tsB)
	})
	t.Run("zero_rate", func(t *testing.T) {
		interest, _, err := AccrueInterest(0, 24*3600, 1_000_000, 0)
		require.NoError(t, err)
		assert.Zero(t, interest)
	})
}

func TestTotalStakedFor(t *testing.T) {
	t.Run("apportionment", func(t *testing.T) {
		pool := entity.StakingPool{
			TotalStaked:                  10000,
			TotalShares:                  uint128.From64(1000),
			InterestRateHourly:           0,
			LastInterestAccruedTimestamp: 1000,
		}
		claim, err := TotalStakedFor(uint128.From64(100), pool, 1000)
		require.NoError(t, err)
		assert.EqualValues(t, 1000, claim)
	})
	t.Run("zero_shares", func(t *testing.T) {
		pool := entity.StakingPool{TotalStaked: 10000}
		claim, err := TotalStakedFor(uint128.From64(100), pool, 1000)
		require.NoError(t, err)
		assert.Zero(t, claim)
	})
	t.Run("paused_accrual_skips_interest", func(t *testing.T) {
		pool := entity.StakingPool{
			TotalStaked:                  10000,
			TotalShares:                  uint128.From64(1000),
			InterestRateHourly:           1_000_000,
			LastInterestAccruedTimestamp: 0,
			IsInterestAccrualPaused:      true,
		}
		claim, err := TotalStakedFor(uint128.From64(100), pool, 10*3600)
		require.NoError(t, err)
		assert.EqualValues(t, 1000, claim)
	})
	t.Run("stale_accrual_window_fails", func(t *testing.T) {
		pool := entity.StakingPool{
			TotalStaked:                  10000,
			TotalShares:                  uint128.From64(1000),
			InterestRateHourly:           100,
			LastInterestAccruedTimestamp: 0,
		}
		_, err := TotalStakedFor(uint128.From64(100), pool, (MaxAccrualHours+1)*3600)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAccrualWindowExceeded))
	})
}

func TestRewardsEarned(t *testing.T) {
	pool := entity.StakingPool{
		TotalStaked:                  10000,
		TotalShares:                  uint128.From64(1000),
		LastInterestAccruedTimestamp: 1000,
	}
	t.Run("positive", func(t *testing.T) {
		rewards, err := RewardsEarned(uint128.From64(100), pool, 600, 1000)
		require.NoError(t, err)
		assert.EqualValues(t, 400, rewards)
	})
	t.Run("negative_surfaced_raw", func(t *testing.T) {
		rewards, err := RewardsEarned(uint128.From64(100), pool, 1500, 1000)
		require.NoError(t, err)
		assert.EqualValues(t, -500, rewards, "negative difference is the caller's policy to clamp")
	})
}

func TestEstimatedAPY(t *testing.T) {
	assert.Zero(t, EstimatedAPY(0))
	// 0.001% hourly compounds to roughly 9.15% over a year.
	apy := EstimatedAPY(1000)
	assert.InDelta(t, 915, apy, 2)
	assert.Greater(t, EstimatedAPY(2000), apy)
}
