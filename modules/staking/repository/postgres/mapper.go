package postgres

import (
	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/repository/postgres/gen"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

func uint128FromNumeric(src pgtype.Numeric) (*uint128.Uint128, error) {
	if !src.Valid {
		return nil, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func numericFromUint128(src *uint128.Uint128) (pgtype.Numeric, error) {
	if src == nil {
		return pgtype.Numeric{}, nil
	}
	bytes := []byte(src.String())
	var result pgtype.Numeric
	err := result.UnmarshalJSON(bytes)
	if err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

func uint64FromNumeric(src pgtype.Numeric) (uint64, error) {
	value, err := uint128FromNumeric(src)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, nil
	}
	if value.Hi != 0 {
		return 0, errors.Wrapf(errs.OverflowUint64, "value %s does not fit in uint64", value)
	}
	return value.Lo, nil
}

func numericFromUint64(src uint64) (pgtype.Numeric, error) {
	return numericFromUint128(lo.ToPtr(uint128.From64(src)))
}

func mapPoolModelToType(src gen.StakingPool) (*entity.StakingPool, error) {
	totalStaked, err := uint64FromNumeric(src.TotalStaked)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse total staked")
	}
	totalShares, err := uint128FromNumeric(src.TotalShares)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse total shares")
	}
	minimumStakingAmount, err := uint64FromNumeric(src.MinimumStakingAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse minimum staking amount")
	}
	return &entity.StakingPool{
		PoolAddress:                  src.PoolAddress,
		Owner:                        src.Owner,
		TokenMint:                    src.TokenMint,
		HoldingWallet:                src.HoldingWallet,
		HoldingBump:                  src.HoldingBump,
		TotalStaked:                  totalStaked,
		TotalShares:                  lo.FromPtr(totalShares),
		InterestRateHourly:           uint32(src.InterestRateHourly),
		EstAPY:                       src.EstApy,
		MaxInterestRateHourly:        uint32(src.MaxInterestRateHourly),
		LastInterestAccruedTimestamp: src.LastInterestAccruedTimestamp,
		MinimumStakingAmount:         minimumStakingAmount,
		MinimumStakingPeriodSec:      src.MinimumStakingPeriodSec,
		IsInterestAccrualPaused:      src.IsInterestAccrualPaused,
		IsActive:                     src.IsActive,
	}, nil
}

func mapPoolTypeToParams(src *entity.StakingPool) (gen.UpsertStakingPoolParams, error) {
	totalStaked, err := numericFromUint64(src.TotalStaked)
	if err != nil {
		return gen.UpsertStakingPoolParams{}, errors.Wrap(err, "failed to convert total staked")
	}
	totalShares, err := numericFromUint128(&src.TotalShares)
	if err != nil {
		return gen.UpsertStakingPoolParams{}, errors.Wrap(err, "failed to convert total shares")
	}
	minimumStakingAmount, err := numericFromUint64(src.MinimumStakingAmount)
	if err != nil {
		return gen.UpsertStakingPoolParams{}, errors.Wrap(err, "failed to convert minimum staking amount")
	}
	return gen.UpsertStakingPoolParams{
		PoolAddress:                  src.PoolAddress,
		Owner:                        src.Owner,
		TokenMint:                    src.TokenMint,
		HoldingWallet:                src.HoldingWallet,
		HoldingBump:                  src.HoldingBump,
		TotalStaked:                  totalStaked,
		TotalShares:                  totalShares,
		InterestRateHourly:           int64(src.InterestRateHourly),
		EstApy:                       src.EstAPY,
		MaxInterestRateHourly:        int64(src.MaxInterestRateHourly),
		LastInterestAccruedTimestamp: src.LastInterestAccruedTimestamp,
		MinimumStakingAmount:         minimumStakingAmount,
		MinimumStakingPeriodSec:      src.MinimumStakingPeriodSec,
		IsInterestAccrualPaused:      src.IsInterestAccrualPaused,
		IsActive:                     src.IsActive,
	}, nil
}

func mapUserAccountModelToType(src gen.UserStakeAccount) (*entity.UserStakeAccount, error) {
	ownershipShare, err := uint128FromNumeric(src.OwnershipShare)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ownership share")
	}
	stakedAmount, err := uint64FromNumeric(src.StakedAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse staked amount")
	}
	lockedAmount, err := uint64FromNumeric(src.LockedAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse locked amount")
	}
	amountWithdrawn, err := uint128FromNumeric(src.AmountWithdrawn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse amount withdrawn")
	}
	var tokenWallet *string
	if src.TokenWallet.Valid {
		tokenWallet = lo.ToPtr(src.TokenWallet.String)
	}
	return &entity.UserStakeAccount{
		Owner:                src.Owner,
		StakeDataAddress:     src.StakeDataAddress,
		TokenWallet:          tokenWallet,
		PoolAddress:          src.PoolAddress,
		IsGariUser:           src.IsGariUser,
		OwnershipShare:       lo.FromPtr(ownershipShare),
		StakedAmount:         stakedAmount,
		LockedAmount:         lockedAmount,
		LockedUntil:          src.LockedUntil,
		LastStakingTimestamp: src.LastStakingTimestamp,
		Balance:              src.Balance,
		AmountWithdrawn:      amountWithdrawn,
	}, nil
}

func mapUserAccountTypeToParams(src *entity.UserStakeAccount) (gen.UpsertUserStakeAccountParams, error) {
	ownershipShare, err := numericFromUint128(&src.OwnershipShare)
	if err != nil {
		return gen.UpsertUserStakeAccountParams{}, errors.Wrap(err, "failed to convert ownership share")
	}
	stakedAmount, err := numericFromUint64(src.StakedAmount)
	if err != nil {
		return gen.UpsertUserStakeAccountParams{}, errors.Wrap(err, "failed to convert staked amount")
	}
	lockedAmount, err := numericFromUint64(src.LockedAmount)
	if err != nil {
		return gen.UpsertUserStakeAccountParams{}, errors.Wrap(err, "failed to convert locked amount")
	}
	amountWithdrawn, err := numericFromUint128(src.AmountWithdrawn)
	if err != nil {
		return gen.UpsertUserStakeAccountParams{}, errors.Wrap(err, "failed to convert amount withdrawn")
	}
	var tokenWallet pgtype.Text
	if src.TokenWallet != nil {
		tokenWallet = pgtype.Text{String: *src.TokenWallet, Valid: true}
	}
	return gen.UpsertUserStakeAccountParams{
		Owner:                src.Owner,
		StakeDataAddress:     src.StakeDataAddress,
		TokenWallet:          tokenWallet,
		PoolAddress:          src.PoolAddress,
		IsGariUser:           src.IsGariUser,
		OwnershipShare:       ownershipShare,
		StakedAmount:         stakedAmount,
		LockedAmount:         lockedAmount,
		LockedUntil:          src.LockedUntil,
		LastStakingTimestamp: src.LastStakingTimestamp,
		AmountWithdrawn:      amountWithdrawn,
	}, nil
}

func mapTransactionModelToType(src gen.TransactionHistory) (*entity.TransactionHistory, error) {
	amount, err := uint64FromNumeric(src.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse amount")
	}
	amountWithdrawn, err := uint128FromNumeric(src.AmountWithdrawn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse amount withdrawn")
	}
	return &entity.TransactionHistory{
		Signature:        src.Signature,
		BlockTime:        src.BlockTime,
		IsError:          src.IsError,
		InstructionKind:  entity.InstructionKind(src.InstructionKind),
		PoolAddress:      src.PoolAddress,
		StakeDataAddress: src.StakeDataAddress,
		Owner:            src.Owner,
		Amount:           amount,
		AmountWithdrawn:  amountWithdrawn,
	}, nil
}

func mapTransactionTypeToParams(src *entity.TransactionHistory) (gen.InsertTransactionParams, error) {
	amount, err := numericFromUint64(src.Amount)
	if err != nil {
		return gen.InsertTransactionParams{}, errors.Wrap(err, "failed to convert amount")
	}
	amountWithdrawn, err := numericFromUint128(src.AmountWithdrawn)
	if err != nil {
		return gen.InsertTransactionParams{}, errors.Wrap(err, "failed to convert amount withdrawn")
	}
	return gen.InsertTransactionParams{
		Signature:        src.Signature,
		BlockTime:        src.BlockTime,
		IsError:          src.IsError,
		InstructionKind:  src.InstructionKind.String(),
		PoolAddress:      src.PoolAddress,
		StakeDataAddress: src.StakeDataAddress,
		Owner:            src.Owner,
		Amount:           amount,
		AmountWithdrawn:  amountWithdrawn,
	}, nil
}

func mapInProcessModelToType(src gen.InProcessTransaction) (*entity.InProcessTransaction, error) {
	amount, err := uint128FromNumeric(src.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse amount")
	}
	return &entity.InProcessTransaction{
		SettlementID:    src.SettlementID,
		Signature:       src.Signature,
		Owner:           src.Owner,
		Status:          entity.SettlementStatus(src.Status),
		InstructionKind: entity.InstructionKind(src.InstructionKind),
		Amount:          lo.FromPtr(amount),
		SubmittedAt:     src.SubmittedAt,
	}, nil
}

func mapInProcessTypeToParams(src *entity.InProcessTransaction) (gen.InsertInProcessTransactionParams, error) {
	amount, err := numericFromUint128(&src.Amount)
	if err != nil {
		return gen.InsertInProcessTransactionParams{}, errors.Wrap(err, "failed to convert amount")
	}
	return gen.InsertInProcessTransactionParams{
		SettlementID:    src.SettlementID,
		Signature:       src.Signature,
		Owner:           src.Owner,
		Status:          src.Status.String(),
		InstructionKind: src.InstructionKind.String(),
		Amount:          amount,
		SubmittedAt:     src.SubmittedAt,
	}, nil
}

func mapNonParsedModelToType(src gen.NonParsedTransaction) *entity.NonParsedTransaction {
	result := entity.NonParsedTransaction{
		Signature: src.Signature,
	}
	if src.FirstSeenAt.Valid {
		result.FirstSeenAt = src.FirstSeenAt.Time.UTC()
	}
	return &result
}
