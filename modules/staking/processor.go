package staking

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/internal/config"
	"github.com/gari-network/staking-indexer/modules/staking/datagateway"
	"github.com/gari-network/staking-indexer/modules/staking/ledger"
	"github.com/gari-network/staking-indexer/modules/staking/notification"
	"github.com/gari-network/staking-indexer/modules/staking/settlement"
	"github.com/gari-network/staking-indexer/pkg/logger"
	"github.com/gari-network/staking-indexer/pkg/logger/slogx"
	"github.com/gaze-network/uint128"
	"golang.org/x/sync/errgroup"
)

// nonParsedRetryLimit bounds how many queued signatures are re-resolved per
// polling round.
const nonParsedRetryLimit = 100

// LedgerGateway is the slice of the ledger web API the processor uses.
type LedgerGateway interface {
	ListTransactions(ctx context.Context, before, until string, limit int) (ledger.ListResult, error)
	GetPoolState(ctx context.Context, poolAddress string) (ledger.PoolState, error)
	ResolveSignatures(ctx context.Context, signatures []string, toRetry bool) (ledger.ResolveResult, error)
	AccrueInterest(ctx context.Context) error
}

// SettlementGateway is the slice of the settlement service the processor uses.
type SettlementGateway interface {
	UpdateTransaction(ctx context.Context, settlementID, signature string, withdrawable uint128.Uint128) (settlement.Response[json.RawMessage], error)
	RetryTransaction(ctx context.Context, signature, owner string, amount uint128.Uint128, kind string, withdrawable uint128.Uint128) (string, settlement.Outcome, error)
	InsertDailyPollingData(ctx context.Context, records []settlement.DailyPollingRecord) (settlement.Response[json.RawMessage], error)
}

// Notifier pushes best-effort staking notifications.
type Notifier interface {
	Notify(ctx context.Context, owner string, amount uint128.Uint128, kind, transactionID, status string) error
}

// Make sure the concrete clients satisfy the processor's gateways
var (
	_ LedgerGateway     = (*ledger.Client)(nil)
	_ SettlementGateway = (*settlement.Client)(nil)
	_ Notifier          = (*notification.Client)(nil)
)

// Processor mirrors the ledger into postgres and reconciles in-process
// settlement transactions against it.
type Processor struct {
	stakingDg   datagateway.StakingDataGateway
	ledger      LedgerGateway
	settlement  SettlementGateway
	notifier    Notifier
	conf        config.Polling
	poolAddress string

	cleanupFuncs []func(context.Context) error

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func NewProcessor(
	stakingDg datagateway.StakingDataGateway,
	ledgerClient LedgerGateway,
	settlementClient SettlementGateway,
	notifier Notifier,
	conf config.Polling,
	poolAddress string,
	cleanupFuncs []func(context.Context) error,
) *Processor {
	return &Processor{
		stakingDg:    stakingDg,
		ledger:       ledgerClient,
		settlement:   settlementClient,
		notifier:     notifier,
		conf:         conf,
		poolAddress:  poolAddress,
		cleanupFuncs: cleanupFuncs,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (p *Processor) Name() string {
	return common.ModuleStaking.String()
}

func (p *Processor) Shutdown() error {
	return p.ShutdownWithContext(context.Background())
}

func (p *Processor) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.ShutdownWithContext(ctx)
}

func (p *Processor) ShutdownWithContext(ctx context.Context) (err error) {
	p.quitOnce.Do(func() {
		close(p.quit)
		select {
		case <-p.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "processor shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "processor shutdown context canceled")
		}
	})
	return
}

// Run polls the ledger on a fixed interval and fires the daily jobs at the
// configured wall-clock time. A failed round is logged and retried on the
// next tick; only an invalid schedule aborts the loop.
func (p *Processor) Run(ctx context.Context) (err error) {
	defer close(p.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "staking"),
		slog.String("processor", p.Name()),
	)

	next, err := nextDailyRun(time.Now(), p.conf.DailyAt)
	if err != nil {
		return errors.Wrap(err, "can't schedule daily jobs")
	}
	daily := time.NewTimer(time.Until(next))
	defer daily.Stop()

	ticker := time.NewTicker(time.Duration(p.conf.IntervalSec) * time.Second)
	defer ticker.Stop()

	if err := p.pollRound(ctx); err != nil {
		logger.ErrorContext(ctx, "Polling round failed", slogx.Error(err))
	}

	for {
		select {
		case <-p.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping processor")
			for _, cleanup := range p.cleanupFuncs {
				if err := cleanup(ctx); err != nil {
					logger.ErrorContext(ctx, "Cleanup failed", slogx.Error(err))
				}
			}
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.pollRound(ctx); err != nil {
				logger.ErrorContext(ctx, "Polling round failed", slogx.Error(err))
			}
		case now := <-daily.C:
			p.runDailyJobs(ctx, now)
			next, err := nextDailyRun(time.Now(), p.conf.DailyAt)
			if err != nil {
				return errors.Wrap(err, "can't reschedule daily jobs")
			}
			daily.Reset(time.Until(next))
		}
	}
}

// pollRound mirrors every ledger transaction newer than the latest mirrored
// signature, page by page, then refreshes the touched pools.
func (p *Processor) pollRound(ctx context.Context) error {
	until := ""
	latest, err := p.stakingDg.GetLatestTransaction(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest mirrored transaction")
	}
	if err == nil {
		until = latest.Signature
	}

	touchedPools := map[string]struct{}{p.poolAddress: {}}

	before := ""
	for {
		page, err := p.ledger.ListTransactions(ctx, before, until, p.conf.PageSize)
		if err != nil {
			return errors.Wrap(err, "failed to fetch ledger page")
		}

		if err := p.ingestAccounts(ctx, page.Accounts, touchedPools); err != nil {
			return errors.Wrap(err, "failed to ingest ledger page")
		}

		if len(page.Unparsed) > 0 {
			if err := p.stakingDg.InsertNonParsedTransactions(ctx, page.Unparsed); err != nil {
				return errors.Wrap(err, "failed to queue non-parsed signatures")
			}
			logger.WarnContext(ctx, "Queued non-parsed signatures for retry", slog.Int("count", len(page.Unparsed)))
		}

		if page.Count < p.conf.PageSize || page.LastSignature == "" {
			break
		}
		before = page.LastSignature

		select {
		case <-time.After(time.Duration(p.conf.LedgerCallSleepMs) * time.Millisecond):
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}

	if err := p.retryNonParsed(ctx, touchedPools); err != nil {
		logger.ErrorContext(ctx, "Failed to retry non-parsed signatures", slogx.Error(err))
	}

	if err := p.refreshPools(ctx, touchedPools); err != nil {
		return errors.Wrap(err, "failed to refresh pools")
	}
	return nil
}

// retryNonParsed re-resolves queued signatures; only those the ledger could
// parse this time are removed from the queue.
func (p *Processor) retryNonParsed(ctx context.Context, touchedPools map[string]struct{}) error {
	queued, err := p.stakingDg.ListNonParsedTransactions(ctx, nonParsedRetryLimit)
	if err != nil {
		return errors.Wrap(err, "failed to list non-parsed signatures")
	}
	if len(queued) == 0 {
		return nil
	}

	signatures := make([]string, 0, len(queued))
	for _, item := range queued {
		signatures = append(signatures, item.Signature)
	}

	result, err := p.ledger.ResolveSignatures(ctx, signatures, true)
	if err != nil {
		return errors.Wrap(err, "failed to resolve non-parsed signatures")
	}
	if err := p.ingestAccounts(ctx, result.Accounts, touchedPools); err != nil {
		return errors.Wrap(err, "failed to ingest resolved signatures")
	}

	resolved := resolvedSignatures(result.Accounts)
	if len(resolved) == 0 {
		return nil
	}
	if err := p.stakingDg.DeleteNonParsedTransactions(ctx, resolved); err != nil {
		return errors.Wrap(err, "failed to dequeue resolved signatures")
	}
	return nil
}

func resolvedSignatures(accounts map[string]ledger.UserAccountBatch) []string {
	var signatures []string
	for _, batch := range accounts {
		for _, tx := range batch.Transactions {
			signatures = append(signatures, tx.TransactionSignature)
		}
	}
	return signatures
}

func (p *Processor) refreshPools(ctx context.Context, pools map[string]struct{}) error {
	g, ctx := errgroup.WithContext(ctx)
	for poolAddress := range pools {
		if poolAddress == "" {
			continue
		}
		g.Go(func() error {
			state, err := p.ledger.GetPoolState(ctx, poolAddress)
			if err != nil {
				return errors.Wrapf(err, "failed to read pool state, address: %s", poolAddress)
			}
			pool := state.ToEntity()
			if err := p.stakingDg.UpsertStakingPool(ctx, &pool); err != nil {
				return errors.Wrapf(err, "failed to upsert pool, address: %s", poolAddress)
			}
			return nil
		})
	}
	return errors.WithStack(g.Wait())
}
