package staking

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/fifo"
	"github.com/gari-network/staking-indexer/modules/staking/settlement"
	"github.com/gari-network/staking-indexer/pkg/logger"
	"github.com/gari-network/staking-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

const (
	dailyTimeLayout = "15:04:05"

	// metricsBatchSize is how many recomputed records go into one settlement push.
	metricsBatchSize = 100

	// metricsLag trails the nightly window behind the run time so late-arriving
	// ledger pages for the window's tail are already mirrored.
	metricsLag = time.Hour
)

// nextDailyRun returns the next wall-clock occurrence of `at` (HH:MM:SS)
// strictly after now.
func nextDailyRun(now time.Time, at string) (time.Time, error) {
	t, err := time.Parse(dailyTimeLayout, at)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid daily schedule %q", at)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}

// runDailyJobs runs the stuck-transaction sweep, the nightly metrics push and
// the on-chain interest accrual trigger. The jobs are independent: one
// failing is logged without skipping the others.
func (p *Processor) runDailyJobs(ctx context.Context, now time.Time) {
	logger.InfoContext(ctx, "Running daily jobs")
	if err := p.sweepStuckTransactions(ctx, now); err != nil {
		logger.ErrorContext(ctx, "Stuck transaction sweep failed", slogx.Error(err))
	}
	if err := p.pushNightlyMetrics(ctx, now); err != nil {
		logger.ErrorContext(ctx, "Nightly metrics push failed", slogx.Error(err))
	}
	if err := p.ledger.AccrueInterest(ctx); err != nil {
		logger.ErrorContext(ctx, "Interest accrual trigger failed", slogx.Error(err))
	}
}

// sweepStuckTransactions re-resolves in-process transactions that stayed in
// processing past the cutoff. Signatures the ledger can still resolve go
// through the normal ingest path; the rest are bulk-failed under the same
// cutoff so a concurrently arriving fresh submission is never touched.
func (p *Processor) sweepStuckTransactions(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-time.Duration(p.conf.StuckCutoffDays) * 24 * time.Hour).Unix()

	stuck, err := p.stakingDg.ListStuckInProcessTransactions(ctx, cutoff)
	if err != nil {
		return errors.Wrap(err, "failed to list stuck transactions")
	}
	if len(stuck) == 0 {
		return nil
	}

	signatures := lo.Uniq(lo.Map(stuck, func(item *entity.InProcessTransaction, _ int) string {
		return item.Signature
	}))

	result, err := p.ledger.ResolveSignatures(ctx, signatures, false)
	if err != nil {
		return errors.Wrap(err, "failed to resolve stuck signatures")
	}

	touchedPools := map[string]struct{}{p.poolAddress: {}}
	if err := p.ingestAccounts(ctx, result.Accounts, touchedPools); err != nil {
		return errors.Wrap(err, "failed to ingest resolved stuck transactions")
	}

	resolved := lo.SliceToMap(resolvedSignatures(result.Accounts), func(signature string) (string, struct{}) {
		return signature, struct{}{}
	})
	unresolved := lo.Filter(signatures, func(signature string, _ int) bool {
		_, ok := resolved[signature]
		return !ok
	})
	if len(unresolved) == 0 {
		return nil
	}

	if err := p.stakingDg.MarkInProcessTransactionsFailed(ctx, unresolved, cutoff); err != nil {
		return errors.Wrap(err, "failed to bulk-fail unresolved transactions")
	}
	logger.WarnContext(ctx, "Bulk-failed unresolvable stuck transactions", slogx.Int("count", len(unresolved)))
	return nil
}

// pushNightlyMetrics recomputes the withdrawable amount of every unstake in
// the previous day's window and pushes the results to the settlement service
// in fixed-size batches.
func (p *Processor) pushNightlyMetrics(ctx context.Context, now time.Time) error {
	at, err := time.Parse(dailyTimeLayout, p.conf.DailyAt)
	if err != nil {
		return errors.Wrapf(err, "invalid daily schedule %q", p.conf.DailyAt)
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), at.Second(), 0, now.Location()).Add(-metricsLag)
	start := end.Add(-24 * time.Hour)

	transactions, err := p.stakingDg.GetTransactionsInBlockTimeRange(ctx, start.Unix(), end.Unix())
	if err != nil {
		return errors.Wrap(err, "failed to load window transactions")
	}
	if len(transactions) == 0 {
		return nil
	}

	byOwner := make(map[string][]*entity.TransactionHistory)
	events := make(map[string][]fifo.Event)
	for _, transaction := range transactions {
		byOwner[transaction.Owner] = append(byOwner[transaction.Owner], transaction)
		events[transaction.Owner] = append(events[transaction.Owner], fifo.Event{
			BlockTime: transaction.BlockTime,
			Kind:      transaction.InstructionKind,
			Amount:    transaction.Amount,
		})
	}

	withdrawables, err := fifo.BatchWithdrawables(events)
	if err != nil {
		return errors.Wrap(err, "failed to recompute withdrawable amounts")
	}

	var records []settlement.DailyPollingRecord
	for owner, ownerTransactions := range byOwner {
		// query order and matcher order both ascend by block time, so the
		// i-th unstake lines up with the i-th recomputed amount
		i := 0
		for _, transaction := range ownerTransactions {
			if transaction.InstructionKind != entity.InstructionUnstake {
				continue
			}
			amount := withdrawables[owner][i]
			i++
			if transaction.AmountWithdrawn == nil || transaction.AmountWithdrawn.Cmp(amount) != 0 {
				if err := p.stakingDg.SetTransactionAmountWithdrawn(ctx, transaction.Signature, amount); err != nil {
					return errors.Wrapf(err, "failed to correct withdrawable amount, signature: %s", transaction.Signature)
				}
			}
			records = append(records, settlement.DailyPollingRecord{
				TransactionCase:    transaction.InstructionKind.String(),
				Amount:             strconv.FormatUint(transaction.Amount, 10),
				Signature:          transaction.Signature,
				PublicKey:          owner,
				WithdrawableAmount: settlement.WithdrawableString(amount),
			})
		}
	}

	for _, batch := range lo.Chunk(records, metricsBatchSize) {
		response, err := p.settlement.InsertDailyPollingData(ctx, batch)
		if err != nil {
			return errors.Wrap(err, "failed to push metrics batch")
		}
		if response.Outcome() != settlement.OutcomeAccepted {
			logger.WarnContext(ctx, "Settlement rejected metrics batch",
				slogx.Int("code", response.Code), slogx.Int("size", len(batch)))
		}
	}
	logger.InfoContext(ctx, "Pushed nightly metrics", slogx.Int("records", len(records)))
	return nil
}
