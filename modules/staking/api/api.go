package api

import (
	"github.com/gari-network/staking-indexer/modules/staking/api/httphandler"
	"github.com/gari-network/staking-indexer/modules/staking/usecase"
)

func NewHTTPHandler(usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(usecase)
}
