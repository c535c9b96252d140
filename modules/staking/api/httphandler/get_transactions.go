package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

type getTransactionsRequest struct {
	paginationRequest
	Owner string `query:"owner"`
}

func (r getTransactionsRequest) Validate() error {
	var errList []error
	if err := r.paginationRequest.Validate(); err != nil {
		errList = append(errList, err)
	}
	if r.Owner == "" {
		errList = append(errList, errors.New("'owner' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type transactionItem struct {
	Signature       string           `json:"signature"`
	BlockTime       int64            `json:"blockTime"`
	IsError         bool             `json:"isError"`
	InstructionKind string           `json:"instructionKind"`
	PoolAddress     string           `json:"poolAddress"`
	Amount          uint64           `json:"amount"`
	AmountWithdrawn *uint128.Uint128 `json:"amountWithdrawn,omitempty"`
}

type getTransactionsResult struct {
	List []transactionItem `json:"list"`
}

type getTransactionsResponse = HttpResponse[getTransactionsResult]

func (h *HttpHandler) GetTransactions(ctx *fiber.Ctx) (err error) {
	var req getTransactionsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if err := req.ParseDefault(); err != nil {
		return errors.WithStack(err)
	}

	transactions, err := h.usecase.GetTransactionsByOwner(ctx.UserContext(), req.Owner, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetTransactionsByOwner")
	}

	list := make([]transactionItem, 0, len(transactions))
	for _, transaction := range transactions {
		list = append(list, transactionItem{
			Signature:       transaction.Signature,
			BlockTime:       transaction.BlockTime,
			IsError:         transaction.IsError,
			InstructionKind: transaction.InstructionKind.String(),
			PoolAddress:     transaction.PoolAddress,
			Amount:          transaction.Amount,
			AmountWithdrawn: transaction.AmountWithdrawn,
		})
	}

	resp := getTransactionsResponse{
		Result: &getTransactionsResult{
			List: list,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
