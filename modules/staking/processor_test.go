package staking

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/common/errs"
	"github.com/gari-network/staking-indexer/internal/config"
	"github.com/gari-network/staking-indexer/modules/staking/entity"
	"github.com/gari-network/staking-indexer/modules/staking/ledger"
	"github.com/gari-network/staking-indexer/modules/staking/settlement"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	transactions map[string]*entity.TransactionHistory
	accounts     map[string]*entity.UserStakeAccount
	pools        map[string]*entity.StakingPool
	inProcess    map[string]*entity.InProcessTransaction
	nonParsed    map[string]time.Time

	// replaceOps records the order of writes inside ReplaceInProcessTransaction
	replaceOps []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transactions: make(map[string]*entity.TransactionHistory),
		accounts:     make(map[string]*entity.UserStakeAccount),
		pools:        make(map[string]*entity.StakingPool),
		inProcess:    make(map[string]*entity.InProcessTransaction),
		nonParsed:    make(map[string]time.Time),
	}
}

func (s *fakeStore) GetLatestTransaction(_ context.Context) (*entity.TransactionHistory, error) {
	var latest *entity.TransactionHistory
	for _, tx := range s.transactions {
		if latest == nil || tx.BlockTime > latest.BlockTime {
			latest = tx
		}
	}
	if latest == nil {
		return nil, errors.WithStack(errs.NotFound)
	}
	out := *latest
	return &out, nil
}

func (s *fakeStore) GetTransactionsByOwnerUpToBlockTime(_ context.Context, owner string, blockTime int64) ([]*entity.TransactionHistory, error) {
	var result []*entity.TransactionHistory
	for _, tx := range s.transactions {
		if tx.Owner == owner && !tx.IsError && tx.BlockTime <= blockTime {
			out := *tx
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BlockTime < result[j].BlockTime })
	return result, nil
}

func (s *fakeStore) GetTransactionsInBlockTimeRange(_ context.Context, from, to int64) ([]*entity.TransactionHistory, error) {
	var result []*entity.TransactionHistory
	for _, tx := range s.transactions {
		if !tx.IsError && tx.BlockTime >= from && tx.BlockTime < to {
			out := *tx
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Owner != result[j].Owner {
			return result[i].Owner < result[j].Owner
		}
		return result[i].BlockTime < result[j].BlockTime
	})
	return result, nil
}

func (s *fakeStore) ListTransactionsByOwner(_ context.Context, owner string, limit, offset int32) ([]*entity.TransactionHistory, error) {
	var result []*entity.TransactionHistory
	for _, tx := range s.transactions {
		if tx.Owner == owner {
			out := *tx
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BlockTime > result[j].BlockTime })
	start := min(int(offset), len(result))
	end := min(start+int(limit), len(result))
	return result[start:end], nil
}

func (s *fakeStore) InsertTransactionWithBalance(_ context.Context, tx *entity.TransactionHistory, account *entity.UserStakeAccount) error {
	if _, ok := s.transactions[tx.Signature]; ok {
		return errors.WithStack(errs.Duplicate)
	}
	stored := *tx
	s.transactions[tx.Signature] = &stored
	if account != nil {
		s.upsertAccount(account)
	}
	if !tx.IsError {
		delta := int64(tx.Amount)
		if tx.InstructionKind == entity.InstructionUnstake {
			delta = -delta
		}
		existing, ok := s.accounts[tx.Owner]
		if !ok {
			existing = &entity.UserStakeAccount{Owner: tx.Owner}
			s.accounts[tx.Owner] = existing
		}
		existing.Balance += delta
	}
	return nil
}

func (s *fakeStore) upsertAccount(account *entity.UserStakeAccount) {
	stored := *account
	if existing, ok := s.accounts[account.Owner]; ok {
		stored.Balance = existing.Balance
	}
	s.accounts[account.Owner] = &stored
}

func (s *fakeStore) SetTransactionAmountWithdrawn(_ context.Context, signature string, amount uint128.Uint128) error {
	tx, ok := s.transactions[signature]
	if !ok {
		return errors.WithStack(errs.NotFound)
	}
	tx.AmountWithdrawn = lo.ToPtr(amount)
	return nil
}

func (s *fakeStore) SumAmountWithdrawnByOwner(_ context.Context, owner string) (uint128.Uint128, error) {
	total := uint128.Zero
	for _, tx := range s.transactions {
		if tx.Owner == owner && tx.AmountWithdrawn != nil {
			total, _ = total.AddOverflow(*tx.AmountWithdrawn)
		}
	}
	return total, nil
}

func (s *fakeStore) GetUserStakeAccount(_ context.Context, owner string) (*entity.UserStakeAccount, error) {
	account, ok := s.accounts[owner]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	out := *account
	return &out, nil
}

func (s *fakeStore) UpsertUserStakeAccount(_ context.Context, account *entity.UserStakeAccount) error {
	s.upsertAccount(account)
	return nil
}

func (s *fakeStore) ListUserStakeAccounts(_ context.Context, isGariUser *bool, limit, offset int32) ([]*entity.UserStakeAccount, error) {
	var result []*entity.UserStakeAccount
	for _, account := range s.accounts {
		if isGariUser != nil && account.IsGariUser != *isGariUser {
			continue
		}
		out := *account
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StakedAmount != result[j].StakedAmount {
			return result[i].StakedAmount > result[j].StakedAmount
		}
		return result[i].Owner < result[j].Owner
	})
	start := min(int(offset), len(result))
	end := min(start+int(limit), len(result))
	return result[start:end], nil
}

func (s *fakeStore) ListActiveOwnersInBlockTimeRange(_ context.Context, from, to int64) ([]string, error) {
	owners := make(map[string]struct{})
	for _, tx := range s.transactions {
		if tx.BlockTime >= from && tx.BlockTime < to {
			owners[tx.Owner] = struct{}{}
		}
	}
	return lo.Keys(owners), nil
}

func (s *fakeStore) GetStakingPool(_ context.Context, poolAddress string) (*entity.StakingPool, error) {
	pool, ok := s.pools[poolAddress]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	out := *pool
	return &out, nil
}

func (s *fakeStore) UpsertStakingPool(_ context.Context, pool *entity.StakingPool) error {
	stored := *pool
	s.pools[pool.PoolAddress] = &stored
	return nil
}

func (s *fakeStore) GetInProcessTransaction(_ context.Context, signature string, status entity.SettlementStatus) (*entity.InProcessTransaction, error) {
	for _, tx := range s.inProcess {
		if tx.Signature == signature && tx.Status == status {
			out := *tx
			return &out, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (s *fakeStore) GetInProcessTransactionByID(_ context.Context, settlementID string) (*entity.InProcessTransaction, error) {
	tx, ok := s.inProcess[settlementID]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	out := *tx
	return &out, nil
}

func (s *fakeStore) InsertInProcessTransaction(_ context.Context, tx *entity.InProcessTransaction) error {
	if _, ok := s.inProcess[tx.SettlementID]; ok {
		return errors.WithStack(errs.Duplicate)
	}
	stored := *tx
	s.inProcess[tx.SettlementID] = &stored
	return nil
}

func (s *fakeStore) UpdateInProcessTransaction(_ context.Context, settlementID, signature string, status entity.SettlementStatus) error {
	tx, ok := s.inProcess[settlementID]
	if !ok {
		return errors.WithStack(errs.NotFound)
	}
	tx.Signature = signature
	tx.Status = status
	return nil
}

func (s *fakeStore) ReplaceInProcessTransaction(_ context.Context, predecessorID string, successor *entity.InProcessTransaction) error {
	stored := *successor
	s.inProcess[successor.SettlementID] = &stored
	s.replaceOps = append(s.replaceOps, "insert:"+successor.SettlementID)
	delete(s.inProcess, predecessorID)
	s.replaceOps = append(s.replaceOps, "delete:"+predecessorID)
	return nil
}

func (s *fakeStore) ListStuckInProcessTransactions(_ context.Context, submittedBefore int64) ([]*entity.InProcessTransaction, error) {
	var result []*entity.InProcessTransaction
	for _, tx := range s.inProcess {
		if tx.Status == entity.SettlementStatusProcessing && tx.SubmittedAt < submittedBefore {
			out := *tx
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt < result[j].SubmittedAt })
	return result, nil
}

func (s *fakeStore) MarkInProcessTransactionsFailed(_ context.Context, signatures []string, submittedBefore int64) error {
	for _, tx := range s.inProcess {
		if tx.Status != entity.SettlementStatusProcessing || tx.SubmittedAt >= submittedBefore {
			continue
		}
		if lo.Contains(signatures, tx.Signature) {
			tx.Status = entity.SettlementStatusFailed
		}
	}
	return nil
}

func (s *fakeStore) InsertNonParsedTransactions(_ context.Context, signatures []string) error {
	for _, signature := range signatures {
		if _, ok := s.nonParsed[signature]; !ok {
			s.nonParsed[signature] = time.Now()
		}
	}
	return nil
}

func (s *fakeStore) ListNonParsedTransactions(_ context.Context, limit int32) ([]*entity.NonParsedTransaction, error) {
	var result []*entity.NonParsedTransaction
	for signature, firstSeen := range s.nonParsed {
		result = append(result, &entity.NonParsedTransaction{Signature: signature, FirstSeenAt: firstSeen})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Signature < result[j].Signature })
	if len(result) > int(limit) {
		result = result[:limit]
	}
	return result, nil
}

func (s *fakeStore) DeleteNonParsedTransactions(_ context.Context, signatures []string) error {
	for _, signature := range signatures {
		delete(s.nonParsed, signature)
	}
	return nil
}

type updateCall struct {
	settlementID string
	signature    string
	withdrawable string
}

type retryCall struct {
	signature    string
	owner        string
	amount       string
	kind         string
	withdrawable string
}

type fakeSettlement struct {
	updateCode   int
	retryOutcome settlement.Outcome
	retryID      string

	updates []updateCall
	retries []retryCall
	daily   [][]settlement.DailyPollingRecord
}

func (f *fakeSettlement) UpdateTransaction(_ context.Context, settlementID, signature string, withdrawable uint128.Uint128) (settlement.Response[json.RawMessage], error) {
	f.updates = append(f.updates, updateCall{
		settlementID: settlementID,
		signature:    signature,
		withdrawable: settlement.WithdrawableString(withdrawable),
	})
	return settlement.Response[json.RawMessage]{Code: f.updateCode}, nil
}

func (f *fakeSettlement) RetryTransaction(_ context.Context, signature, owner string, amount uint128.Uint128, kind string, withdrawable uint128.Uint128) (string, settlement.Outcome, error) {
	f.retries = append(f.retries, retryCall{
		signature:    signature,
		owner:        owner,
		amount:       amount.String(),
		kind:         kind,
		withdrawable: settlement.WithdrawableString(withdrawable),
	})
	return f.retryID, f.retryOutcome, nil
}

func (f *fakeSettlement) InsertDailyPollingData(_ context.Context, records []settlement.DailyPollingRecord) (settlement.Response[json.RawMessage], error) {
	f.daily = append(f.daily, records)
	return settlement.Response[json.RawMessage]{Code: 200}, nil
}

type fakeLedger struct {
	pages      []ledger.ListResult
	resolved   ledger.ResolveResult
	poolStates map[string]ledger.PoolState

	listCalls    int
	resolveCalls []bool
	accrued      int
	poolsQueried []string
}

func (f *fakeLedger) ListTransactions(_ context.Context, _, _ string, _ int) (ledger.ListResult, error) {
	if f.listCalls >= len(f.pages) {
		return ledger.ListResult{}, nil
	}
	page := f.pages[f.listCalls]
	f.listCalls++
	return page, nil
}

func (f *fakeLedger) GetPoolState(_ context.Context, poolAddress string) (ledger.PoolState, error) {
	f.poolsQueried = append(f.poolsQueried, poolAddress)
	state, ok := f.poolStates[poolAddress]
	if !ok {
		return ledger.PoolState{}, errors.Errorf("unknown pool %s", poolAddress)
	}
	return state, nil
}

func (f *fakeLedger) ResolveSignatures(_ context.Context, _ []string, toRetry bool) (ledger.ResolveResult, error) {
	f.resolveCalls = append(f.resolveCalls, toRetry)
	return f.resolved, nil
}

func (f *fakeLedger) AccrueInterest(_ context.Context) error {
	f.accrued++
	return nil
}

type notifyCall struct {
	owner         string
	amount        string
	kind          string
	transactionID string
	status        string
}

type fakeNotifier struct {
	calls []notifyCall
}

func (f *fakeNotifier) Notify(_ context.Context, owner string, amount uint128.Uint128, kind, transactionID, status string) error {
	f.calls = append(f.calls, notifyCall{
		owner:         owner,
		amount:        amount.String(),
		kind:          kind,
		transactionID: transactionID,
		status:        status,
	})
	return nil
}

func testPollingConfig() config.Polling {
	return config.Polling{
		PageSize:          1000,
		LedgerCallSleepMs: 0,
		IntervalSec:       10,
		DailyAt:           "04:00:00",
		StuckCutoffDays:   2,
	}
}

func newTestProcessor(store *fakeStore, ledgerClient *fakeLedger, settlementClient *fakeSettlement, notifier *fakeNotifier) *Processor {
	return NewProcessor(store, ledgerClient, settlementClient, notifier, testPollingConfig(), "POOL", nil)
}

func seedInProcess(store *fakeStore, id, signature, owner string, amount uint64) {
	store.inProcess[id] = &entity.InProcessTransaction{
		SettlementID:    id,
		Signature:       signature,
		Owner:           owner,
		Status:          entity.SettlementStatusProcessing,
		InstructionKind: entity.InstructionUnstake,
		Amount:          uint128.From64(amount),
		SubmittedAt:     time.Now().Unix(),
	}
}

func TestResolveSettlement(t *testing.T) {
	ctx := context.Background()

	unstakeTx := func(signature, owner string, blockTime int64, amount uint64) *entity.TransactionHistory {
		return &entity.TransactionHistory{
			Signature:       signature,
			BlockTime:       blockTime,
			InstructionKind: entity.InstructionUnstake,
			Owner:           owner,
			Amount:          amount,
		}
	}

	t.Run("accepted_marks_processed", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{updateCode: 200}
		notifier := &fakeNotifier{}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, notifier)

		seedInProcess(store, "id-1", "sig-1", "alice", 150)
		tx := unstakeTx("sig-1", "alice", 10, 150)
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))

		require.NoError(t, p.resolveSettlement(ctx, tx))

		assert.Equal(t, entity.SettlementStatusProcessed, store.inProcess["id-1"].Status)
		require.Len(t, notifier.calls, 1)
		assert.Equal(t, "successful", notifier.calls[0].status)
		assert.Equal(t, "id-1", notifier.calls[0].transactionID)
	})

	t.Run("withdrawable_reported_to_settlement", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{updateCode: 200}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, &fakeNotifier{})

		// staked 100, unstaking 150: 50 beyond principal
		stakeTx := &entity.TransactionHistory{
			Signature:       "sig-stake",
			BlockTime:       1,
			InstructionKind: entity.InstructionStake,
			Owner:           "alice",
			Amount:          100,
		}
		require.NoError(t, store.InsertTransactionWithBalance(ctx, stakeTx, nil))

		seedInProcess(store, "id-1", "sig-1", "alice", 150)
		tx := unstakeTx("sig-1", "alice", 10, 150)
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))

		require.NoError(t, p.resolveSettlement(ctx, tx))

		require.Len(t, settlementClient.updates, 1)
		assert.Equal(t, "50", settlementClient.updates[0].withdrawable)
		require.NotNil(t, store.transactions["sig-1"].AmountWithdrawn)
		assert.Equal(t, uint128.From64(50), *store.transactions["sig-1"].AmountWithdrawn)
	})

	t.Run("zero_withdrawable_sent_as_empty_string", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{updateCode: 200}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, &fakeNotifier{})

		stakeTx := &entity.TransactionHistory{
			Signature:       "sig-stake",
			BlockTime:       1,
			InstructionKind: entity.InstructionStake,
			Owner:           "alice",
			Amount:          200,
		}
		require.NoError(t, store.InsertTransactionWithBalance(ctx, stakeTx, nil))

		seedInProcess(store, "id-1", "sig-1", "alice", 150)
		tx := unstakeTx("sig-1", "alice", 10, 150)
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))

		require.NoError(t, p.resolveSettlement(ctx, tx))

		require.Len(t, settlementClient.updates, 1)
		assert.Equal(t, "", settlementClient.updates[0].withdrawable)
	})

	t.Run("rejected_then_retry_accepted_rekeys_record", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{
			updateCode:   400,
			retryOutcome: settlement.OutcomeAccepted,
			retryID:      "id-2",
		}
		notifier := &fakeNotifier{}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, notifier)

		seedInProcess(store, "id-1", "sig-1", "alice", 150)
		tx := unstakeTx("sig-1", "alice", 10, 150)
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))

		require.NoError(t, p.resolveSettlement(ctx, tx))

		require.Len(t, settlementClient.retries, 1)
		assert.Equal(t, "150", settlementClient.retries[0].amount)
		assert.Equal(t, "unstake", settlementClient.retries[0].kind)

		_, ok := store.inProcess["id-1"]
		assert.False(t, ok, "predecessor must be deleted")
		require.Contains(t, store.inProcess, "id-2")
		assert.Equal(t, entity.SettlementStatusProcessed, store.inProcess["id-2"].Status)
		assert.Equal(t, []string{"insert:id-2", "delete:id-1"}, store.replaceOps, "successor inserted before predecessor deleted")

		require.Len(t, notifier.calls, 1)
		assert.Equal(t, "successful", notifier.calls[0].status)
		assert.Equal(t, "id-2", notifier.calls[0].transactionID)
	})

	t.Run("rejected_then_retry_rejected_marks_failed", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{
			updateCode:   404,
			retryOutcome: settlement.OutcomeRejected,
		}
		notifier := &fakeNotifier{}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, notifier)

		seedInProcess(store, "id-1", "sig-1", "alice", 150)
		tx := unstakeTx("sig-1", "alice", 10, 150)
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))

		require.NoError(t, p.resolveSettlement(ctx, tx))

		assert.Equal(t, entity.SettlementStatusFailed, store.inProcess["id-1"].Status)
		require.Len(t, notifier.calls, 1)
		assert.Equal(t, "failed", notifier.calls[0].status)
	})

	t.Run("anomaly_leaves_record_in_process", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{updateCode: 500}
		notifier := &fakeNotifier{}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, notifier)

		seedInProcess(store, "id-1", "sig-1", "alice", 150)
		tx := unstakeTx("sig-1", "alice", 10, 150)
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))

		require.NoError(t, p.resolveSettlement(ctx, tx))

		assert.Equal(t, entity.SettlementStatusProcessing, store.inProcess["id-1"].Status)
		assert.Empty(t, settlementClient.retries)
		assert.Empty(t, notifier.calls)
	})

	t.Run("no_in_process_record_is_noop", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{updateCode: 200}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, &fakeNotifier{})

		tx := unstakeTx("sig-1", "alice", 10, 150)
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))

		require.NoError(t, p.resolveSettlement(ctx, tx))
		assert.Empty(t, settlementClient.updates)
	})
}

func TestIngestOwnerBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors_transactions_and_balance", func(t *testing.T) {
		store := newFakeStore()
		p := newTestProcessor(store, &fakeLedger{}, &fakeSettlement{updateCode: 200}, &fakeNotifier{})

		batch := ledger.UserAccountBatch{
			StakingUserDataAccount: "stake-data-1",
			UserTokenWallet:        "wallet-1",
			StakedAmount:           70,
			Transactions: []ledger.Transaction{
				{BlockTime: 2, InstructionType: "unstake", StakingDataAccount: "POOL", TransactionSignature: "sig-2", Amount: 30},
				{BlockTime: 1, InstructionType: "stake", StakingDataAccount: "POOL", TransactionSignature: "sig-1", Amount: 100},
			},
		}
		touched := map[string]struct{}{}
		require.NoError(t, p.ingestOwnerBatch(ctx, "alice", batch, touched))

		assert.Len(t, store.transactions, 2)
		assert.Equal(t, int64(70), store.accounts["alice"].Balance)
		assert.Contains(t, touched, "POOL")
		require.NotNil(t, store.accounts["alice"].TokenWallet)
		assert.Equal(t, "wallet-1", *store.accounts["alice"].TokenWallet)
	})

	t.Run("duplicate_signature_still_resolves_settlement", func(t *testing.T) {
		store := newFakeStore()
		settlementClient := &fakeSettlement{updateCode: 200}
		p := newTestProcessor(store, &fakeLedger{}, settlementClient, &fakeNotifier{})

		// mirrored by an earlier run that died before settling
		require.NoError(t, store.InsertTransactionWithBalance(ctx, &entity.TransactionHistory{
			Signature:       "sig-1",
			BlockTime:       1,
			InstructionKind: entity.InstructionStake,
			Owner:           "alice",
			Amount:          100,
		}, nil))
		seedInProcess(store, "id-1", "sig-1", "alice", 100)

		batch := ledger.UserAccountBatch{
			Transactions: []ledger.Transaction{
				{BlockTime: 1, InstructionType: "stake", StakingDataAccount: "POOL", TransactionSignature: "sig-1", Amount: 100},
			},
		}
		require.NoError(t, p.ingestOwnerBatch(ctx, "alice", batch, map[string]struct{}{}))

		assert.Len(t, store.transactions, 1)
		assert.Equal(t, int64(100), store.accounts["alice"].Balance, "duplicate must not double-count balance")
		require.Len(t, settlementClient.updates, 1)
		assert.Equal(t, "id-1", settlementClient.updates[0].settlementID)
	})

	t.Run("unknown_instruction_queued_for_retry", func(t *testing.T) {
		store := newFakeStore()
		p := newTestProcessor(store, &fakeLedger{}, &fakeSettlement{updateCode: 200}, &fakeNotifier{})

		batch := ledger.UserAccountBatch{
			Transactions: []ledger.Transaction{
				{BlockTime: 1, InstructionType: "mystery", TransactionSignature: "sig-odd", Amount: 5},
			},
		}
		require.NoError(t, p.ingestOwnerBatch(ctx, "alice", batch, map[string]struct{}{}))

		assert.Empty(t, store.transactions)
		assert.Contains(t, store.nonParsed, "sig-odd")
	})
}

func TestPollRound(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	ledgerClient := &fakeLedger{
		pages: []ledger.ListResult{
			{
				Accounts: map[string]ledger.UserAccountBatch{
					"alice": {
						StakingUserDataAccount: "stake-data-1",
						Transactions: []ledger.Transaction{
							{BlockTime: 1, InstructionType: "stake", StakingDataAccount: "POOL", TransactionSignature: "sig-1", Amount: 100},
						},
					},
				},
				Count:         1,
				LastSignature: "sig-1",
				Unparsed:      []string{"sig-raw"},
			},
		},
		poolStates: map[string]ledger.PoolState{
			"POOL": {StakingDataAccount: "POOL", TotalStaked: 100, IsActive: true},
		},
		resolved: ledger.ResolveResult{},
	}
	p := newTestProcessor(store, ledgerClient, &fakeSettlement{updateCode: 200}, &fakeNotifier{})

	require.NoError(t, p.pollRound(ctx))

	assert.Contains(t, store.transactions, "sig-1")
	assert.Contains(t, store.nonParsed, "sig-raw")
	require.Contains(t, store.pools, "POOL")
	assert.Equal(t, uint64(100), store.pools["POOL"].TotalStaked)
	assert.Equal(t, 1, ledgerClient.listCalls, "single short page ends the round")
}

func TestSweepStuckTransactions(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	old := now.Add(-72 * time.Hour).Unix()

	store := newFakeStore()
	store.inProcess["id-old-1"] = &entity.InProcessTransaction{
		SettlementID:    "id-old-1",
		Signature:       "sig-old-1",
		Owner:           "alice",
		Status:          entity.SettlementStatusProcessing,
		InstructionKind: entity.InstructionUnstake,
		Amount:          uint128.From64(50),
		SubmittedAt:     old,
	}
	store.inProcess["id-old-2"] = &entity.InProcessTransaction{
		SettlementID:    "id-old-2",
		Signature:       "sig-old-2",
		Owner:           "bob",
		Status:          entity.SettlementStatusProcessing,
		InstructionKind: entity.InstructionUnstake,
		Amount:          uint128.From64(60),
		SubmittedAt:     old,
	}
	store.inProcess["id-fresh"] = &entity.InProcessTransaction{
		SettlementID:    "id-fresh",
		Signature:       "sig-fresh",
		Owner:           "carol",
		Status:          entity.SettlementStatusProcessing,
		InstructionKind: entity.InstructionUnstake,
		Amount:          uint128.From64(70),
		SubmittedAt:     now.Unix(),
	}

	// the ledger can still resolve sig-old-1 only
	ledgerClient := &fakeLedger{
		resolved: ledger.ResolveResult{
			Accounts: map[string]ledger.UserAccountBatch{
				"alice": {
					Transactions: []ledger.Transaction{
						{BlockTime: 5, InstructionType: "unstake", StakingDataAccount: "POOL", TransactionSignature: "sig-old-1", Amount: 50},
					},
				},
			},
		},
		poolStates: map[string]ledger.PoolState{
			"POOL": {StakingDataAccount: "POOL"},
		},
	}
	settlementClient := &fakeSettlement{updateCode: 200}
	p := newTestProcessor(store, ledgerClient, settlementClient, &fakeNotifier{})

	require.NoError(t, p.sweepStuckTransactions(ctx, now))

	require.Len(t, ledgerClient.resolveCalls, 1)
	assert.False(t, ledgerClient.resolveCalls[0], "sweep resolves without retry semantics")

	assert.Equal(t, entity.SettlementStatusProcessed, store.inProcess["id-old-1"].Status)
	assert.Equal(t, entity.SettlementStatusFailed, store.inProcess["id-old-2"].Status)
	assert.Equal(t, entity.SettlementStatusProcessing, store.inProcess["id-fresh"].Status, "fresh submissions are out of the sweep window")
}

func TestPushNightlyMetrics(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 4, 0, 0, 0, time.UTC)
	// window: 2024-05-01 03:00:00 to 2024-05-02 03:00:00 UTC
	inWindow := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Unix()

	store := newFakeStore()
	seed := []*entity.TransactionHistory{
		{Signature: "sig-1", BlockTime: inWindow, InstructionKind: entity.InstructionStake, Owner: "alice", Amount: 100},
		{Signature: "sig-2", BlockTime: inWindow + 10, InstructionKind: entity.InstructionUnstake, Owner: "alice", Amount: 150},
		{Signature: "sig-out", BlockTime: now.Unix() + 100, InstructionKind: entity.InstructionUnstake, Owner: "bob", Amount: 70},
	}
	for _, tx := range seed {
		require.NoError(t, store.InsertTransactionWithBalance(ctx, tx, nil))
	}

	settlementClient := &fakeSettlement{updateCode: 200}
	p := newTestProcessor(store, &fakeLedger{}, settlementClient, &fakeNotifier{})

	require.NoError(t, p.pushNightlyMetrics(ctx, now))

	require.Len(t, settlementClient.daily, 1)
	records := settlementClient.daily[0]
	require.Len(t, records, 1, "only the in-window unstake is pushed")
	assert.Equal(t, "sig-2", records[0].Signature)
	assert.Equal(t, "alice", records[0].PublicKey)
	assert.Equal(t, "150", records[0].Amount)
	assert.Equal(t, "50", records[0].WithdrawableAmount)

	require.NotNil(t, store.transactions["sig-2"].AmountWithdrawn, "corrected amount is persisted")
	assert.Equal(t, uint128.From64(50), *store.transactions["sig-2"].AmountWithdrawn)
}

func TestNextDailyRun(t *testing.T) {
	t.Run("later_today", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)
		next, err := nextDailyRun(now, "04:00:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC), next)
	})
	t.Run("tomorrow", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC)
		next, err := nextDailyRun(now, "04:00:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 2, 4, 0, 0, 0, time.UTC), next)
	})
	t.Run("exact_boundary_rolls_over", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC)
		next, err := nextDailyRun(now, "04:00:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 2, 4, 0, 0, 0, time.UTC), next)
	})
	t.Run("invalid_schedule", func(t *testing.T) {
		_, err := nextDailyRun(time.Now(), "4am")
		assert.Error(t, err)
	})
}
