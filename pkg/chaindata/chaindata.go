// Package chaindata holds the per-block execution trace model the pipeline
// consumes: the block envelope, transaction traces with receipts and calls,
// logs, and state-diff balance changes. The streaming substrate that
// produces these is external.
package chaindata

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

type DetailLevel int

const (
	// DetailLevel_Extended traces carry full call trees and balance changes.
	DetailLevel_Extended DetailLevel = iota
	// DetailLevel_Base traces carry only receipts; call attribution and
	// balance deltas are unavailable and must be reconciled over RPC.
	DetailLevel_Base
)

type TxStatus int

const (
	TxStatus_Unknown TxStatus = iota
	TxStatus_Succeeded
	TxStatus_Failed
	TxStatus_Reverted
)

type CallType int

const (
	CallType_Unspecified CallType = iota
	CallType_Call
	CallType_Callcode
	CallType_Delegate
	CallType_Static
	CallType_Create
)

func (c CallType) String() string {
	switch c {
	case CallType_Call:
		return "call"
	case CallType_Callcode:
		return "callcode"
	case CallType_Delegate:
		return "delegate"
	case CallType_Static:
		return "static"
	case CallType_Create:
		return "create"
	}
	return "unspecified"
}

type BalanceChangeReason int

const (
	BalanceChangeReason_Unknown BalanceChangeReason = iota
	BalanceChangeReason_RewardMineBlock
	BalanceChangeReason_RewardMineUncle
	BalanceChangeReason_RewardTransactionFee
	BalanceChangeReason_Withdrawal
	BalanceChangeReason_GenesisBalance
	BalanceChangeReason_DaoRefundContract
	BalanceChangeReason_DaoAdjustBalance
	BalanceChangeReason_SuicideRefund
	BalanceChangeReason_SuicideWithdraw
	BalanceChangeReason_GasBuy
	BalanceChangeReason_GasRefund
	BalanceChangeReason_Transfer
	BalanceChangeReason_StateChange
	BalanceChangeReason_Burn
)

// IsGasRelated reports whether a delta applies even when the transaction
// reverts. Gas is deducted regardless of execution outcome.
func (r BalanceChangeReason) IsGasRelated() bool {
	switch r {
	case BalanceChangeReason_GasBuy, BalanceChangeReason_GasRefund, BalanceChangeReason_RewardTransactionFee:
		return true
	}
	return false
}

func (r BalanceChangeReason) String() string {
	switch r {
	case BalanceChangeReason_RewardMineBlock:
		return "reward_mine_block"
	case BalanceChangeReason_RewardMineUncle:
		return "reward_mine_uncle"
	case BalanceChangeReason_RewardTransactionFee:
		return "reward_transaction_fee"
	case BalanceChangeReason_Withdrawal:
		return "withdrawal"
	case BalanceChangeReason_GenesisBalance:
		return "genesis_balance"
	case BalanceChangeReason_DaoRefundContract:
		return "dao_refund_contract"
	case BalanceChangeReason_DaoAdjustBalance:
		return "dao_adjust_balance"
	case BalanceChangeReason_SuicideRefund:
		return "suicide_refund"
	case BalanceChangeReason_SuicideWithdraw:
		return "suicide_withdraw"
	case BalanceChangeReason_GasBuy:
		return "gas_buy"
	case BalanceChangeReason_GasRefund:
		return "gas_refund"
	case BalanceChangeReason_Transfer:
		return "transfer"
	case BalanceChangeReason_StateChange:
		return "state_change"
	case BalanceChangeReason_Burn:
		return "burn"
	}
	return "unknown"
}

type BalanceChange struct {
	Address  []byte
	OldValue *uint256.Int
	NewValue *uint256.Int
	Reason   BalanceChangeReason
	Ordinal  uint64
}

type Log struct {
	Address []byte
	Topics  [][]byte
	Data    []byte
	Index   uint32
	// Ordinal is a block-unique monotone id assigned by the substrate.
	Ordinal uint64
}

// Topic0 returns the event signature topic, or nil for anonymous events.
func (l *Log) Topic0() []byte {
	if len(l.Topics) == 0 {
		return nil
	}
	return l.Topics[0]
}

type Call struct {
	Index              uint32
	ParentIndex        uint32
	Depth              uint32
	CallType           CallType
	Caller             []byte
	Address            []byte
	AddressDelegatesTo []byte
	Value              *uint256.Int
	GasConsumed        uint64
	GasLimit           uint64
	BeginOrdinal       uint64
	EndOrdinal         uint64
	Suicide            bool
	StatusFailed       bool
	StatusReverted     bool
	Logs               []*Log
	BalanceChanges     []*BalanceChange
	CodeChanges        []*CodeChange
	Input              []byte
}

type CodeChange struct {
	Address []byte
	NewCode []byte
	NewHash []byte
}

type TransactionTrace struct {
	Hash     []byte
	From     []byte
	To       []byte // nil for contract creations
	Nonce    uint64
	GasPrice string
	GasLimit uint64
	GasUsed  uint64
	Value    string
	Input    []byte
	Index    uint32
	Status   TxStatus
	Calls    []*Call
	Receipt  *Receipt
}

type Receipt struct {
	Logs []*Log
	// ContractAddress is set when the transaction deployed a contract.
	ContractAddress []byte
}

// CreatesContract reports whether the transaction is a contract creation.
func (t *TransactionTrace) CreatesContract() bool {
	return len(t.To) == 0
}

func (t *TransactionTrace) Succeeded() bool {
	return t.Status == TxStatus_Succeeded
}

type Block struct {
	Number         uint64
	Hash           []byte
	Timestamp      time.Time
	Transactions   []*TransactionTrace
	BalanceChanges []*BalanceChange
	SystemCalls    []*Call
	DetailLevel    DetailLevel
}

// LogWithCall pairs a log with the call that emitted it. Call is nil when
// the trace detail level does not attribute logs to calls.
type LogWithCall struct {
	Log  *Log
	Call *Call
}

// LogsWithCalls iterates a transaction's logs in ordinal order. With an
// extended trace it walks the call tree so each log carries its owning
// call; with base detail it falls back to receipt logs.
func (b *Block) LogsWithCalls(tx *TransactionTrace) []LogWithCall {
	out := make([]LogWithCall, 0)
	if b.DetailLevel == DetailLevel_Extended && len(tx.Calls) > 0 {
		for _, call := range tx.Calls {
			for _, lg := range call.Logs {
				out = append(out, LogWithCall{Log: lg, Call: call})
			}
		}
		return out
	}
	if tx.Receipt != nil {
		for _, lg := range tx.Receipt.Logs {
			out = append(out, LogWithCall{Log: lg})
		}
	}
	return out
}

// Well-known genesis blocks whose recorded timestamp is zero. Keyed by the
// block hash without the 0x prefix.
var genesisTimestamps = map[string]int64{
	"d4e56740f876aef8c010b86a40d5f56745a118d0906a34e69aec8c0db1cb8fa3": 1438269973, // Ethereum mainnet
	"7ee576b35482195fc49205cec9af72ce14f003b9ae69f6ba0faef4514be8b442": 1622240000, // Arbitrum One
	"2ad24e03026118f9b3a48626f0636e38c93660e90a6812e853a99aa8c5371561": 1656120000, // Arbitrum Nova
	"dcd9e6a8f9973eaa62da2874959cb152faeb4fd6929177bd6335a1a16074ef9c": 1635393439, // Boba
}

// MustTimestamp returns the block timestamp, applying the genesis override
// table for block 0 when the recorded timestamp is missing. A block with no
// resolvable timestamp cannot be keyed and is a fatal precondition failure.
func (b *Block) MustTimestamp() (time.Time, error) {
	if !b.Timestamp.IsZero() && b.Timestamp.Unix() != 0 {
		return b.Timestamp, nil
	}
	if b.Number == 0 {
		if ts, ok := genesisTimestamps[hex.EncodeToString(b.Hash)]; ok {
			return time.Unix(ts, 0).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("missing timestamp")
}
