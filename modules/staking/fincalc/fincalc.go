package fincalc

import (
	"math"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gaze-network/uint128"
)

const (
	// InterestMulFactor is the fixed-point scale of hourly interest rates
	// (1e-8 units per basis point of compounding).
	InterestMulFactor = 100_000_000

	// MaxAccrualHours is the hard ceiling on a single accrual window.
	// Callers must accrue more often than every 14 days.
	MaxAccrualHours = 14 * 24

	// maxPowChunk bounds the exponent applied per multiplication block.
	maxPowChunk = 15

	secondsPerHour = 3600
	hoursPerYear   = 8760
)

// ErrAccrualWindowExceeded is returned when the elapsed accrual window is
// longer than MaxAccrualHours. The computation fails instead of compounding
// an oversized window.
var ErrAccrualWindowExceeded = errors.New("interest accrual window exceeded")

// AccrueInterest compounds totalStaked by ((1e8+hourlyRate)/1e8)^hours where
// hours = floor((nowTs-lastTs)/3600). Under one elapsed hour no interest
// accrues and the timestamp is returned unchanged. The sub-hour remainder is
// dropped: newTs = lastTs + hours*3600.
func AccrueInterest(lastTs, nowTs int64, totalStaked uint64, hourlyRate uint32) (interest uint64, newTs int64, err error) {
	return accrueInterest(lastTs, nowTs, totalStaked, hourlyRate, maxPowChunk)
}

func accrueInterest(lastTs, nowTs int64, totalStaked uint64, hourlyRate uint32, chunkSize int64) (uint64, int64, error) {
	if nowTs <= lastTs {
		return 0, lastTs, nil
	}
	hours := (nowTs - lastTs) / secondsPerHour
	if hours < 1 {
		return 0, lastTs, nil
	}
	if hours > MaxAccrualHours {
		return 0, 0, errors.WithStack(ErrAccrualWindowExceeded)
	}

	var (
		numerator   = big.NewInt(InterestMulFactor + int64(hourlyRate))
		denominator = big.NewInt(InterestMulFactor)
		accNum      = new(big.Int).SetUint64(totalStaked)
		accDen      = big.NewInt(1)
	)
	// Exponentiation is applied in bounded blocks; the division happens once
	// at the end so the block split cannot change the truncated result.
	for remaining := hours; remaining > 0; {
		block := remaining
		if block > chunkSize {
			block = chunkSize
		}
		exp := big.NewInt(block)
		accNum.Mul(accNum, new(big.Int).Exp(numerator, exp, nil))
		accDen.Mul(accDen, new(big.Int).Exp(denominator, exp, nil))
		remaining -= block
	}

	newBalance := accNum.Div(accNum, accDen)
	if !newBalance.IsUint64() {
		return 0, 0, errors.Wrap(errs.OverflowUint64, "compounded balance")
	}
	interest := newBalance.Uint64() - totalStaked
	return interest, lastTs + hours*secondsPerHour, nil
}

// TotalStakedFor returns the user's current claim against the pool:
// (total_staked + unminted interest) * share / total_shares, multiplied
// before dividing in arbitrary width. A pool with zero shares has no
// claimants.
func TotalStakedFor(share uint128.Uint128, pool entity.StakingPool, now int64) (uint64, error) {
	if pool.TotalShares.IsZero() {
		return 0, nil
	}

	staked := pool.TotalStaked
	if !pool.IsInterestAccrualPaused {
		interest, _, err := AccrueInterest(pool.LastInterestAccruedTimestamp, now, pool.TotalStaked, pool.InterestRateHourly)
		if err != nil {
			return 0, errors.Wrap(err, "failed to accrue unminted interest")
		}
		var overflow bool
		staked, overflow = addUint64Checked(staked, interest)
		if overflow {
			return 0, errors.Wrap(errs.OverflowUint64, "total staked with interest")
		}
	}

	claim := new(big.Int).SetUint64(staked)
	claim.Mul(claim, share.Big())
	claim.Div(claim, pool.TotalShares.Big())
	if !claim.IsUint64() {
		return 0, errors.Wrap(errs.OverflowUint64, "user claim")
	}
	return claim.Uint64(), nil
}

// RewardsEarned is the user's computed claim minus the mirrored balance.
// The raw signed difference is surfaced; clamping negative values to zero is
// the caller's display policy.
func RewardsEarned(share uint128.Uint128, pool entity.StakingPool, balance int64, now int64) (int64, error) {
	claim, err := TotalStakedFor(share, pool, now)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	rewards := new(big.Int).SetUint64(claim)
	rewards.Sub(rewards, big.NewInt(balance))
	if !rewards.IsInt64() {
		return 0, errors.Wrap(errs.OverflowUint64, "rewards difference")
	}
	return rewards.Int64(), nil
}

// EstimatedAPY converts an hourly fixed-point rate to a display-only annual
// percentage yield in 1e-4 units. Floating point is fine here; the value is
// never used in accounting.
func EstimatedAPY(hourlyRate uint32) int64 {
	growth := math.Pow((InterestMulFactor+float64(hourlyRate))/InterestMulFactor, hoursPerYear)
	return int64(math.Round((growth - 1) * 10000))
}

func addUint64Checked(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}
