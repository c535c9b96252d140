package ledger

import (
	"encoding/json"
	"testing"

	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListResultUnmarshal(t *testing.T) {
	body := `[
		{"alice": {
			"staking_user_data_account": "stake-data-1",
			"user_token_wallet": "wallet-1",
			"transactions": [
				{"block_time": 10, "error": false, "instruction_type": "stake", "staking_data_account": "pool-1", "transaction_signature": "sig-1", "amount": 100}
			],
			"is_gari_user": true,
			"ownership_share": 42,
			"staked_amount": 100,
			"locked_amount": 0,
			"locked_until": 0,
			"last_staking_timestamp": 10
		}},
		1,
		"sig-1",
		["sig-raw"]
	]`

	var result ListResult
	require.NoError(t, json.Unmarshal([]byte(body), &result))

	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "sig-1", result.LastSignature)
	assert.Equal(t, []string{"sig-raw"}, result.Unparsed)

	batch, ok := result.Accounts["alice"]
	require.True(t, ok)
	assert.Equal(t, "stake-data-1", batch.StakingUserDataAccount)
	assert.True(t, batch.IsGariUser)
	require.Len(t, batch.Transactions, 1)
	assert.Equal(t, "sig-1", batch.Transactions[0].TransactionSignature)
	assert.Equal(t, uint64(100), batch.Transactions[0].Amount)
}

func TestListResultUnmarshal_WrongArity(t *testing.T) {
	var result ListResult
	err := json.Unmarshal([]byte(`[{}, 0]`), &result)
	assert.Error(t, err)
}

func TestResolveResultUnmarshal(t *testing.T) {
	body := `[
		{"bob": {"transactions": [
			{"block_time": 5, "error": false, "instruction_type": "unstake", "staking_data_account": "pool-1", "transaction_signature": "sig-2", "amount": 50}
		]}},
		["sig-still-raw"]
	]`

	var result ResolveResult
	require.NoError(t, json.Unmarshal([]byte(body), &result))
	require.Contains(t, result.Accounts, "bob")
	assert.Equal(t, []string{"sig-still-raw"}, result.Unparsed)
}

func TestTransactionInstructionKind(t *testing.T) {
	kind, err := Transaction{InstructionType: "stake"}.InstructionKind()
	require.NoError(t, err)
	assert.Equal(t, entity.InstructionStake, kind)

	kind, err = Transaction{InstructionType: "unstake"}.InstructionKind()
	require.NoError(t, err)
	assert.Equal(t, entity.InstructionUnstake, kind)

	_, err = Transaction{InstructionType: "claim"}.InstructionKind()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.Unsupported)
}

func TestPoolStateToEntity(t *testing.T) {
	state := PoolState{
		StakingDataAccount:   "pool-1",
		Owner:                "authority",
		StakingAccountToken:  "mint",
		HoldingWallet:        "holding",
		HoldingBump:          254,
		TotalStaked:          1_000_000,
		InterestRateHourly:   761,
		MinimumStakingAmount: 1000,
		IsActive:             true,
	}

	pool := state.ToEntity()
	assert.Equal(t, "pool-1", pool.PoolAddress)
	assert.Equal(t, "mint", pool.TokenMint)
	assert.Equal(t, int16(254), pool.HoldingBump)
	assert.Equal(t, uint64(1_000_000), pool.TotalStaked)
	assert.True(t, pool.IsActive)
}
