package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
}

func New(usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type paginationRequest struct {
	Limit  int32 `query:"limit"`
	Offset int32 `query:"offset"`
}

func (r paginationRequest) Validate() error {
	var errList []error
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > maxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", maxLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (r *paginationRequest) ParseDefault() error {
	if r.Limit == 0 {
		r.Limit = defaultLimit
	}
	return nil
}
