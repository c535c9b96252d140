package entity

import (
	"time"

	"github.com/gaze-network/uint128"
)

type InstructionKind string

const (
	InstructionStake   InstructionKind = "stake"
	InstructionUnstake InstructionKind = "unstake"
)

func (k InstructionKind) String() string {
	return string(k)
}

// TransactionHistory is an append-only mirror of a ledger transaction.
// Signature is the natural key and dedup boundary. Rows are never updated
// except to set AmountWithdrawn once computed, and never deleted.
type TransactionHistory struct {
	Signature        string
	BlockTime        int64
	IsError          bool
	InstructionKind  InstructionKind
	PoolAddress      string
	StakeDataAddress string
	Owner            string
	Amount           uint64
	AmountWithdrawn  *uint128.Uint128
}

type SettlementStatus string

const (
	SettlementStatusProcessing SettlementStatus = "processing"
	SettlementStatusProcessed  SettlementStatus = "processed"
	SettlementStatusFailed     SettlementStatus = "failed"
)

func (s SettlementStatus) String() string {
	return string(s)
}

// InProcessTransaction tracks a transaction submitted to the settlement
// service until it is resolved against the ledger. Keyed by the
// settlement-assigned transaction id; retried submissions get a new id.
type InProcessTransaction struct {
	SettlementID    string
	Signature       string
	Owner           string
	Status          SettlementStatus
	InstructionKind InstructionKind
	Amount          uint128.Uint128
	SubmittedAt     int64
}

// NonParsedTransaction is the retry queue for signatures the poller could
// not decode.
type NonParsedTransaction struct {
	Signature   string
	FirstSeenAt time.Time
}
