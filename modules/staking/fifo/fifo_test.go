package fifo

import (
	"testing"

	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stake(t int64, amount uint64) Event {
	return Event{BlockTime: t, Kind: entity.InstructionStake, Amount: amount}
}

func unstake(t int64, amount uint64) Event {
	return Event{BlockTime: t, Kind: entity.InstructionUnstake, Amount: amount}
}

func TestWithdrawable(t *testing.T) {
	t.Run("excess_over_single_stake", func(t *testing.T) {
		ledger := NewLedger([]Event{stake(0, 100)})
		got, err := ledger.Withdrawable(unstake(1, 150))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(50), got)
	})
	t.Run("covered_by_principal", func(t *testing.T) {
		ledger := NewLedger([]Event{stake(0, 100), stake(1, 50)})
		got, err := ledger.Withdrawable(unstake(2, 120))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
	t.Run("reset_after_crossing", func(t *testing.T) {
		// The first unstake crossed principal, consuming both accumulators.
		// The next unstake starts from zero and is withdrawn in full.
		ledger := NewLedger([]Event{stake(0, 100), unstake(1, 150)})
		got, err := ledger.Withdrawable(unstake(2, 60))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(60), got)
	})
	t.Run("stake_after_crossing_covers_again", func(t *testing.T) {
		ledger := NewLedger([]Event{stake(0, 100), unstake(1, 150), stake(2, 40)})
		got, err := ledger.Withdrawable(unstake(3, 60))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(20), got)
	})
	t.Run("covered_unstake_keeps_accumulators", func(t *testing.T) {
		// No crossing at the covered unstake: the remaining principal
		// (150-120=30) still offsets the current one.
		ledger := NewLedger([]Event{stake(0, 100), stake(1, 50), unstake(2, 120)})
		got, err := ledger.Withdrawable(unstake(3, 60))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(30), got)
	})
	t.Run("stake_event_is_never_withdrawable", func(t *testing.T) {
		ledger := NewLedger([]Event{stake(0, 100)})
		got, err := ledger.Withdrawable(stake(1, 100))
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
	t.Run("unordered_input_is_sorted", func(t *testing.T) {
		ledger := NewLedger([]Event{stake(5, 50), stake(0, 100)})
		got, err := ledger.Withdrawable(unstake(6, 200))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(50), got)
	})
	t.Run("replay_deterministic", func(t *testing.T) {
		events := []Event{stake(0, 100), unstake(1, 150), stake(2, 40), unstake(3, 10)}
		first, err := NewLedger(events).Withdrawable(unstake(4, 90))
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := NewLedger(events).Withdrawable(unstake(4, 90))
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})
	t.Run("max_uint64_amounts", func(t *testing.T) {
		events := make([]Event, 0, 4)
		for i := int64(0); i < 4; i++ {
			events = append(events, unstake(i, ^uint64(0)))
		}
		ledger := NewLedger(events)
		got, err := ledger.Withdrawable(unstake(10, 1))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(1), got, "every prior unstake crossed and was consumed")
	})
}

func TestBatchWithdrawables(t *testing.T) {
	events := map[string][]Event{
		"alice": {stake(0, 100), unstake(1, 150), unstake(2, 60)},
		"bob":   {stake(3, 500), unstake(4, 700)},
	}

	t.Run("matches_single_user_runs", func(t *testing.T) {
		got, err := BatchWithdrawables(events)
		require.NoError(t, err)
		require.Len(t, got["alice"], 2)
		require.Len(t, got["bob"], 1)

		assert.Equal(t, uint128.From64(50), got["alice"][0])
		assert.Equal(t, uint128.From64(60), got["alice"][1])
		assert.Equal(t, uint128.From64(200), got["bob"][0])

		// bit-for-bit agreement with the single-user matcher
		single, err := NewLedger([]Event{stake(0, 100), unstake(1, 150)}).Withdrawable(unstake(2, 60))
		require.NoError(t, err)
		assert.Equal(t, single, got["alice"][1])
	})
	t.Run("empty_input", func(t *testing.T) {
		got, err := BatchWithdrawables(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
