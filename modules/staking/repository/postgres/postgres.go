package postgres

import (
	"github.com/gari-network/staking-indexer/internal/postgres"
	"github.com/gari-network/staking-indexer/modules/staking/datagateway"
	"github.com/gari-network/staking-indexer/modules/staking/repository/postgres/gen"
)

// Make sure Repository implements the StakingDataGateway interface
var _ datagateway.StakingDataGateway = (*Repository)(nil)

type Repository struct {
	db      postgres.DB
	queries *gen.Queries
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:      db,
		queries: gen.New(db),
	}
}
