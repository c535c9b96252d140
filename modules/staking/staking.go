package staking

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/internal/config"
	"github.com/gari-network/staking-indexer/internal/postgres"
	stakingapi "github.com/gari-network/staking-indexer/modules/staking/api"
	"github.com/gari-network/staking-indexer/modules/staking/ledger"
	"github.com/gari-network/staking-indexer/modules/staking/notification"
	stakingpostgres "github.com/gari-network/staking-indexer/modules/staking/repository/postgres"
	"github.com/gari-network/staking-indexer/modules/staking/settlement"
	stakingusecase "github.com/gari-network/staking-indexer/modules/staking/usecase"
	"github.com/gari-network/staking-indexer/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
)

// New builds the staking module: the postgres-backed mirror, the ledger,
// settlement and notification clients, the reconciliation processor and the
// read API mounted on the shared HTTP server.
func New(injector do.Injector) (*Processor, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	pg, err := postgres.NewPool(ctx, conf.Postgres)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return nil, errors.Wrap(err, "Invalid Postgres configuration")
		}
		return nil, errors.Wrap(err, "can't create Postgres connection pool")
	}
	cleanupFuncs := []func(context.Context) error{
		func(context.Context) error {
			pg.Close()
			return nil
		},
	}
	repository := stakingpostgres.NewRepository(pg)

	ledgerClient, err := ledger.NewClient(conf.Ledger)
	if err != nil {
		return nil, errors.Wrap(err, "can't create ledger client")
	}
	settlementClient, err := settlement.NewClient(conf.Settlement)
	if err != nil {
		return nil, errors.Wrap(err, "can't create settlement client")
	}
	notifier, err := notification.NewClient(conf.Notification)
	if err != nil {
		return nil, errors.Wrap(err, "can't create notification client")
	}

	processor := NewProcessor(repository, ledgerClient, settlementClient, notifier, conf.Polling, conf.Ledger.PoolAddress, cleanupFuncs)

	// Mount API
	httpServer := do.MustInvoke[*fiber.App](injector)
	usecase := stakingusecase.New(repository, conf.Ledger.PoolAddress)
	httpHandler := stakingapi.NewHTTPHandler(usecase)
	if err := httpHandler.Mount(httpServer); err != nil {
		return nil, errors.Wrap(err, "can't mount staking API")
	}
	logger.InfoContext(ctx, "Mounted HTTP handler")

	return processor, nil
}
