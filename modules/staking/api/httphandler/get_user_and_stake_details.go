package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

type getUserAndStakeDetailsRequest struct {
	Owner string `query:"owner"`
}

func (r getUserAndStakeDetailsRequest) Validate() error {
	var errList []error
	if r.Owner == "" {
		errList = append(errList, errors.New("'owner' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type stakeDetails struct {
	StakeDataAddress     string          `json:"stakeDataAddress"`
	PoolAddress          string          `json:"poolAddress"`
	TokenWallet          *string         `json:"tokenWallet,omitempty"`
	IsGariUser           bool            `json:"isGariUser"`
	OwnershipShare       uint128.Uint128 `json:"ownershipShare"`
	StakedAmount         uint64          `json:"stakedAmount"`
	LockedAmount         uint64          `json:"lockedAmount"`
	LockedUntil          int64           `json:"lockedUntil"`
	LastStakingTimestamp int64           `json:"lastStakingTimestamp"`
	Balance              int64           `json:"balance"`
}

type poolDetails struct {
	PoolAddress             string `json:"poolAddress"`
	TokenMint               string `json:"tokenMint"`
	InterestRateHourly      uint32 `json:"interestRateHourly"`
	EstAPY                  int64  `json:"estApy"`
	MinimumStakingAmount    uint64 `json:"minimumStakingAmount"`
	MinimumStakingPeriodSec int64  `json:"minimumStakingPeriodSec"`
	IsInterestAccrualPaused bool   `json:"isInterestAccrualPaused"`
	IsActive                bool   `json:"isActive"`
}

type getUserAndStakeDetailsResult struct {
	Owner           string          `json:"owner"`
	Stake           stakeDetails    `json:"stake"`
	Pool            poolDetails     `json:"pool"`
	TotalStaked     uint64          `json:"totalStaked"`
	RewardsEarned   int64           `json:"rewardsEarned"`
	AmountWithdrawn uint128.Uint128 `json:"amountWithdrawn"`
}

type getUserAndStakeDetailsResponse = HttpResponse[getUserAndStakeDetailsResult]

func (h *HttpHandler) GetUserAndStakeDetails(ctx *fiber.Ctx) (err error) {
	var req getUserAndStakeDetailsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	details, err := h.usecase.GetUserAndStakeDetails(ctx.UserContext(), req.Owner)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("user not found")
		}
		return errors.Wrap(err, "error during GetUserAndStakeDetails")
	}

	resp := getUserAndStakeDetailsResponse{
		Result: &getUserAndStakeDetailsResult{
			Owner: details.Account.Owner,
			Stake: stakeDetails{
				StakeDataAddress:     details.Account.StakeDataAddress,
				PoolAddress:          details.Account.PoolAddress,
				TokenWallet:          details.Account.TokenWallet,
				IsGariUser:           details.Account.IsGariUser,
				OwnershipShare:       details.Account.OwnershipShare,
				StakedAmount:         details.Account.StakedAmount,
				LockedAmount:         details.Account.LockedAmount,
				LockedUntil:          details.Account.LockedUntil,
				LastStakingTimestamp: details.Account.LastStakingTimestamp,
				Balance:              details.Account.Balance,
			},
			Pool: poolDetails{
				PoolAddress:             details.Pool.PoolAddress,
				TokenMint:               details.Pool.TokenMint,
				InterestRateHourly:      details.Pool.InterestRateHourly,
				EstAPY:                  details.EstimatedAPY,
				MinimumStakingAmount:    details.Pool.MinimumStakingAmount,
				MinimumStakingPeriodSec: details.Pool.MinimumStakingPeriodSec,
				IsInterestAccrualPaused: details.Pool.IsInterestAccrualPaused,
				IsActive:                details.Pool.IsActive,
			},
			TotalStaked:     details.TotalStaked,
			RewardsEarned:   details.RewardsEarned,
			AmountWithdrawn: details.AmountWithdrawn,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
