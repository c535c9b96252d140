package httphandler

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getLeaderboardRequest struct {
	paginationRequest
	IsGariUser string `query:"isGariUser"`

	isGariUser *bool
}

func (r *getLeaderboardRequest) Validate() error {
	var errList []error
	if err := r.paginationRequest.Validate(); err != nil {
		errList = append(errList, err)
	}
	if r.IsGariUser != "" {
		value, err := strconv.ParseBool(r.IsGariUser)
		if err != nil {
			errList = append(errList, errors.Errorf("'isGariUser' must be a boolean, got %q", r.IsGariUser))
		} else {
			r.isGariUser = lo.ToPtr(value)
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type leaderboardEntry struct {
	Rank            int             `json:"rank"`
	Owner           string          `json:"owner"`
	TokenWallet     *string         `json:"tokenWallet,omitempty"`
	IsGariUser      bool            `json:"isGariUser"`
	StakedAmount    uint64          `json:"stakedAmount"`
	TotalStaked     uint64          `json:"totalStaked"`
	RewardsEarned   uint64          `json:"rewardsEarned"`
	AmountWithdrawn uint128.Uint128 `json:"amountWithdrawn"`
}

type getLeaderboardResult struct {
	List []leaderboardEntry `json:"list"`
}

type getLeaderboardResponse = HttpResponse[getLeaderboardResult]

func (h *HttpHandler) GetLeaderboard(ctx *fiber.Ctx) (err error) {
	var req getLeaderboardRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if err := req.ParseDefault(); err != nil {
		return errors.WithStack(err)
	}

	entries, err := h.usecase.GetLeaderboard(ctx.UserContext(), req.isGariUser, req.Limit, req.Offset)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("staking pool not found")
		}
		return errors.Wrap(err, "error during GetLeaderboard")
	}

	list := make([]leaderboardEntry, 0, len(entries))
	for i, entry := range entries {
		list = append(list, leaderboardEntry{
			Rank:            int(req.Offset) + i + 1,
			Owner:           entry.Account.Owner,
			TokenWallet:     entry.Account.TokenWallet,
			IsGariUser:      entry.Account.IsGariUser,
			StakedAmount:    entry.Account.StakedAmount,
			TotalStaked:     entry.TotalStaked,
			RewardsEarned:   entry.RewardsEarned,
			AmountWithdrawn: lo.FromPtr(entry.Account.AmountWithdrawn),
		})
	}

	resp := getLeaderboardResponse{
		Result: &getLeaderboardResult{
			List: list,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
