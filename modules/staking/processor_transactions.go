package staking

import (
	"context"
	"log/slog"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/fifo"
	"github.com/gari-network/staking-indexer/modules/staking/ledger"
	"github.com/gari-network/staking-indexer/modules/staking/settlement"
	"github.com/gari-network/staking-indexer/pkg/logger"
	"github.com/gari-network/staking-indexer/pkg/logger/slogx"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

func (p *Processor) ingestAccounts(ctx context.Context, accounts map[string]ledger.UserAccountBatch, touchedPools map[string]struct{}) error {
	for owner, batch := range accounts {
		if err := p.ingestOwnerBatch(ctx, owner, batch, touchedPools); err != nil {
			return errors.Wrapf(err, "failed to ingest batch for owner %s", owner)
		}
	}
	return nil
}

// ingestOwnerBatch mirrors one user's page of transactions, oldest first, and
// settles each one that has a pending in-process record. A settlement failure
// is logged but does not fail the batch: the row stays in processing and the
// sweep picks it up later.
func (p *Processor) ingestOwnerBatch(ctx context.Context, owner string, batch ledger.UserAccountBatch, touchedPools map[string]struct{}) error {
	account := p.accountFromBatch(ctx, owner, batch)

	transactions := make([]ledger.Transaction, len(batch.Transactions))
	copy(transactions, batch.Transactions)
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].BlockTime < transactions[j].BlockTime
	})

	for _, wireTx := range transactions {
		kind, err := wireTx.InstructionKind()
		if err != nil {
			logger.WarnContext(ctx, "Unknown instruction type, queueing signature for retry",
				slogx.String("signature", wireTx.TransactionSignature),
				slogx.String("instruction_type", wireTx.InstructionType))
			if err := p.stakingDg.InsertNonParsedTransactions(ctx, []string{wireTx.TransactionSignature}); err != nil {
				return errors.Wrap(err, "failed to queue non-parsed signature")
			}
			continue
		}

		poolAddress := wireTx.StakingDataAccount
		if poolAddress == "" {
			poolAddress = p.poolAddress
		}
		touchedPools[poolAddress] = struct{}{}

		transaction := &entity.TransactionHistory{
			Signature:        wireTx.TransactionSignature,
			BlockTime:        wireTx.BlockTime,
			IsError:          wireTx.Error,
			InstructionKind:  kind,
			PoolAddress:      poolAddress,
			StakeDataAddress: batch.StakingUserDataAccount,
			Owner:            owner,
			Amount:           wireTx.Amount,
		}
		if account != nil {
			account.PoolAddress = poolAddress
		}

		if err := p.stakingDg.InsertTransactionWithBalance(ctx, transaction, account); err != nil {
			if !errors.Is(err, errs.Duplicate) {
				return errors.Wrap(err, "failed to mirror transaction")
			}
			// Already mirrored; an earlier run may still have died before
			// settling it, so fall through to the settlement lookup.
			logger.DebugContext(ctx, "Transaction already mirrored", slogx.String("signature", transaction.Signature))
		}

		if err := p.resolveSettlement(ctx, transaction); err != nil {
			logger.ErrorContext(ctx, "Failed to settle transaction, leaving it in process",
				slogx.Error(err), slogx.String("signature", transaction.Signature))
		}
	}
	return nil
}

// accountFromBatch maps the wire account snapshot, carrying forward the
// already-computed withdrawn total so the upsert does not clear it.
func (p *Processor) accountFromBatch(ctx context.Context, owner string, batch ledger.UserAccountBatch) *entity.UserStakeAccount {
	account := &entity.UserStakeAccount{
		Owner:                owner,
		StakeDataAddress:     batch.StakingUserDataAccount,
		PoolAddress:          p.poolAddress,
		IsGariUser:           batch.IsGariUser,
		OwnershipShare:       batch.OwnershipShare,
		StakedAmount:         batch.StakedAmount,
		LockedAmount:         batch.LockedAmount,
		LockedUntil:          batch.LockedUntil,
		LastStakingTimestamp: batch.LastStakingTimestamp,
	}
	if batch.UserTokenWallet != "" {
		account.TokenWallet = lo.ToPtr(batch.UserTokenWallet)
	}

	existing, err := p.stakingDg.GetUserStakeAccount(ctx, owner)
	if err == nil {
		account.AmountWithdrawn = existing.AmountWithdrawn
	} else if !errors.Is(err, errs.NotFound) {
		logger.WarnContext(ctx, "Failed to read existing account snapshot", slogx.Error(err), slogx.String("owner", owner))
	}
	return account
}

// resolveSettlement drives the in-process state machine for one mirrored
// transaction:
//
//	processing -> processed  on an accepted update, or an accepted retry
//	                         (which also re-keys the record to the new id)
//	processing -> failed     on a rejected retry
//	processing -> processing on any other response, for the sweep to revisit
func (p *Processor) resolveSettlement(ctx context.Context, transaction *entity.TransactionHistory) error {
	inProcess, err := p.stakingDg.GetInProcessTransaction(ctx, transaction.Signature, entity.SettlementStatusProcessing)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil
		}
		return errors.Wrap(err, "failed to look up in-process transaction")
	}

	withdrawable := uint128.Zero
	if transaction.InstructionKind == entity.InstructionUnstake && !transaction.IsError {
		withdrawable, err = p.withdrawableFor(ctx, transaction)
		if err != nil {
			return errors.Wrap(err, "failed to compute withdrawable amount")
		}
		if err := p.stakingDg.SetTransactionAmountWithdrawn(ctx, transaction.Signature, withdrawable); err != nil {
			return errors.Wrap(err, "failed to record withdrawable amount")
		}
		if err := p.refreshAccountWithdrawn(ctx, transaction.Owner); err != nil {
			return errors.Wrap(err, "failed to refresh account withdrawn total")
		}
	}

	response, err := p.settlement.UpdateTransaction(ctx, inProcess.SettlementID, transaction.Signature, withdrawable)
	if err != nil {
		return errors.Wrap(err, "settlement update failed")
	}

	switch response.Outcome() {
	case settlement.OutcomeAccepted:
		if err := p.stakingDg.UpdateInProcessTransaction(ctx, inProcess.SettlementID, transaction.Signature, entity.SettlementStatusProcessed); err != nil {
			return errors.Wrap(err, "failed to mark transaction processed")
		}
		p.notifyResolution(ctx, transaction.Owner, inProcess.Amount, inProcess.InstructionKind, inProcess.SettlementID, "successful")

	case settlement.OutcomeRejected:
		newID, outcome, err := p.settlement.RetryTransaction(ctx, transaction.Signature, transaction.Owner, inProcess.Amount, inProcess.InstructionKind.String(), withdrawable)
		if err != nil {
			return errors.Wrap(err, "settlement retry failed")
		}
		if outcome == settlement.OutcomeAccepted && newID != "" {
			successor := *inProcess
			successor.SettlementID = newID
			successor.Signature = transaction.Signature
			successor.Status = entity.SettlementStatusProcessed
			if err := p.stakingDg.ReplaceInProcessTransaction(ctx, inProcess.SettlementID, &successor); err != nil {
				return errors.Wrap(err, "failed to re-key in-process transaction")
			}
			p.notifyResolution(ctx, transaction.Owner, inProcess.Amount, inProcess.InstructionKind, newID, "successful")
			return nil
		}
		if err := p.stakingDg.UpdateInProcessTransaction(ctx, inProcess.SettlementID, transaction.Signature, entity.SettlementStatusFailed); err != nil {
			return errors.Wrap(err, "failed to mark transaction failed")
		}
		p.notifyResolution(ctx, transaction.Owner, inProcess.Amount, inProcess.InstructionKind, inProcess.SettlementID, "failed")

	default:
		logger.ErrorContext(ctx, "Unexpected settlement response, leaving transaction in process",
			slog.Int("code", response.Code),
			slogx.String("signature", transaction.Signature),
			slogx.String("settlement_id", inProcess.SettlementID))
	}
	return nil
}

// withdrawableFor replays the owner's mirrored history up to the
// transaction's block time through the FIFO matcher.
func (p *Processor) withdrawableFor(ctx context.Context, transaction *entity.TransactionHistory) (uint128.Uint128, error) {
	history, err := p.stakingDg.GetTransactionsByOwnerUpToBlockTime(ctx, transaction.Owner, transaction.BlockTime)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "failed to load owner history")
	}

	events := make([]fifo.Event, 0, len(history))
	for _, prior := range history {
		if prior.Signature == transaction.Signature {
			continue
		}
		events = append(events, fifo.Event{
			BlockTime: prior.BlockTime,
			Kind:      prior.InstructionKind,
			Amount:    prior.Amount,
		})
	}

	return fifo.NewLedger(events).Withdrawable(fifo.Event{
		BlockTime: transaction.BlockTime,
		Kind:      transaction.InstructionKind,
		Amount:    transaction.Amount,
	})
}

func (p *Processor) refreshAccountWithdrawn(ctx context.Context, owner string) error {
	total, err := p.stakingDg.SumAmountWithdrawnByOwner(ctx, owner)
	if err != nil {
		return errors.Wrap(err, "failed to sum withdrawn amounts")
	}
	account, err := p.stakingDg.GetUserStakeAccount(ctx, owner)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil
		}
		return errors.Wrap(err, "failed to get account")
	}
	account.AmountWithdrawn = &total
	return errors.WithStack(p.stakingDg.UpsertUserStakeAccount(ctx, account))
}

// notifyResolution is best effort: a failed push never blocks settlement.
func (p *Processor) notifyResolution(ctx context.Context, owner string, amount uint128.Uint128, kind entity.InstructionKind, settlementID, status string) {
	if err := p.notifier.Notify(ctx, owner, amount, kind.String(), settlementID, status); err != nil {
		logger.WarnContext(ctx, "Failed to send staking notification",
			slogx.Error(err), slogx.String("settlement_id", settlementID))
	}
}
