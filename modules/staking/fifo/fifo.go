package fifo

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gaze-network/uint128"
)

// Event is a single non-error stake or unstake observation, ordered by
// ledger block time.
type Event struct {
	BlockTime int64
	Kind      entity.InstructionKind
	Amount    uint64
}

// Ledger is a per-user ordered event list. It is a value type constructed
// fresh per call: no shared state, so the same input always yields the same
// result regardless of when the matcher runs.
type Ledger struct {
	events []Event
}

// NewLedger builds a ledger from the user's prior events. Events are copied
// and sorted ascending by block time if not already ordered.
func NewLedger(events []Event) Ledger {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BlockTime < sorted[j].BlockTime
	})
	return Ledger{events: sorted}
}

// Withdrawable returns how much of the current unstake exceeds the user's
// matched staked principal.
//
// Two running accumulators track staked and unstaked totals. Whenever the
// unstaked total crosses above the staked total, the excess has been
// withdrawn beyond principal and both accumulators reset to zero: the excess
// is consumed per crossing and never carries forward as a deficit. The
// current unstake itself is folded in before the final comparison.
func (l Ledger) Withdrawable(current Event) (uint128.Uint128, error) {
	if current.Kind != entity.InstructionUnstake {
		return uint128.Zero, nil
	}

	stakeAcc, unstakeAcc := uint128.Zero, uint128.Zero
	for _, event := range l.events {
		switch event.Kind {
		case entity.InstructionStake:
			next, carry := stakeAcc.AddOverflow(uint128.From64(event.Amount))
			if carry {
				return uint128.Zero, errors.Wrap(errs.OverflowUint128, "stake accumulator")
			}
			stakeAcc = next
		case entity.InstructionUnstake:
			next, carry := unstakeAcc.AddOverflow(uint128.From64(event.Amount))
			if carry {
				return uint128.Zero, errors.Wrap(errs.OverflowUint128, "unstake accumulator")
			}
			unstakeAcc = next
			if unstakeAcc.Cmp(stakeAcc) > 0 {
				stakeAcc, unstakeAcc = uint128.Zero, uint128.Zero
			}
		}
	}

	final, carry := unstakeAcc.AddOverflow(uint128.From64(current.Amount))
	if carry {
		return uint128.Zero, errors.Wrap(errs.OverflowUint128, "unstake accumulator")
	}
	if final.Cmp(stakeAcc) > 0 {
		return final.Sub(stakeAcc), nil
	}
	return uint128.Zero, nil
}

// BatchWithdrawables runs the matcher over many users' events at once, as
// the nightly metrics job does. Each user's unstakes are evaluated with the
// identical single-user algorithm, so batch and single-event results agree
// bit-for-bit.
//
// The returned map carries, per owner, the withdrawable amount of every
// unstake event in block time order.
func BatchWithdrawables(eventsByOwner map[string][]Event) (map[string][]uint128.Uint128, error) {
	results := make(map[string][]uint128.Uint128, len(eventsByOwner))
	for owner, events := range eventsByOwner {
		ownerEvents := make([]Event, len(events))
		copy(ownerEvents, events)
		sort.SliceStable(ownerEvents, func(i, j int) bool {
			return ownerEvents[i].BlockTime < ownerEvents[j].BlockTime
		})
		for i, event := range ownerEvents {
			if event.Kind != entity.InstructionUnstake {
				continue
			}
			withdrawable, err := NewLedger(ownerEvents[:i]).Withdrawable(event)
			if err != nil {
				return nil, errors.Wrapf(err, "owner %s", owner)
			}
			results[owner] = append(results[owner], withdrawable)
		}
	}
	return results, nil
}
