package usecase

import (
	"github.com/gari-network/staking-indexer/modules/staking/datagateway"
)

type Usecase struct {
	stakingDg   datagateway.StakingDataGateway
	poolAddress string
}

func New(stakingDg datagateway.StakingDataGateway, poolAddress string) *Usecase {
	return &Usecase{
		stakingDg:   stakingDg,
		poolAddress: poolAddress,
	}
}
