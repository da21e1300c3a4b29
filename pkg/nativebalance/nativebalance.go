// Package nativebalance reconstructs per-address native balances from a
// block's balance deltas. The block-level deltas (rewards, withdrawals,
// genesis, DAO fork) apply first, then system calls, then per-transaction
// call deltas. Gas deltas apply even for reverted transactions; everything
// else requires top-level success.
package nativebalance

import (
	"encoding/hex"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tracelake/evmetl/pkg/chaindata"
)

// Observation is the latest balance seen for one address in the block.
type Observation struct {
	Address []byte
	Balance *uint256.Int
}

// Event is a value-bearing block-level occurrence (reward, withdrawal,
// genesis allocation, DAO adjustment). Value carries a sign for the DAO
// cases, which can move both directions.
type Event struct {
	Address []byte
	Value   *big.Int
	Reason  chaindata.BalanceChangeReason
	Ordinal uint64
}

// Selfdestruct records one SELFDESTRUCT refund transfer.
type Selfdestruct struct {
	From    []byte
	To      []byte
	Value   *uint256.Int
	Ordinal uint64
}

// QualifyingCall is an internal value transfer emitted to the calls table.
type QualifyingCall struct {
	Tx   *chaindata.TransactionTrace
	Call *chaindata.Call
}

// Result is the full reconstruction for one block.
type Result struct {
	balances map[string]*uint256.Int
	order    []string

	Rewards       []Event
	Withdrawals   []Event
	Genesis       []Event
	DaoEvents     []Event
	Selfdestructs []Selfdestruct

	// ValueTransactions are successful transactions qualifying for a
	// transactions row; Calls are their qualifying internal calls.
	ValueTransactions []*chaindata.TransactionTrace
	Calls             []QualifyingCall
}

// Balances returns the latest-balance observations in first-touch order.
func (r *Result) Balances() []Observation {
	out := make([]Observation, 0, len(r.order))
	for _, key := range r.order {
		addr, _ := hex.DecodeString(key)
		out = append(out, Observation{Address: addr, Balance: r.balances[key]})
	}
	return out
}

// Balance returns the reconstructed balance for an address, if touched.
func (r *Result) Balance(addr []byte) (*uint256.Int, bool) {
	v, ok := r.balances[hex.EncodeToString(addr)]
	return v, ok
}

// Override replaces a reconstructed balance with an authoritative value,
// used when reduced-detail traces are reconciled over RPC.
func (r *Result) Override(addr []byte, v *uint256.Int) {
	key := hex.EncodeToString(addr)
	if _, ok := r.balances[key]; !ok {
		r.order = append(r.order, key)
	}
	r.balances[key] = v
}

func (r *Result) apply(bc *chaindata.BalanceChange) {
	if bc == nil || len(bc.Address) == 0 {
		return
	}
	key := hex.EncodeToString(bc.Address)
	if _, ok := r.balances[key]; !ok {
		r.order = append(r.order, key)
	}
	r.balances[key] = bc.NewValue
}

// delta computes new − old as a signed big integer.
func delta(bc *chaindata.BalanceChange) *big.Int {
	oldV := new(big.Int)
	newV := new(big.Int)
	if bc.OldValue != nil {
		oldV = bc.OldValue.ToBig()
	}
	if bc.NewValue != nil {
		newV = bc.NewValue.ToBig()
	}
	return newV.Sub(newV, oldV)
}

// Reconstruct runs the full per-block algorithm.
func Reconstruct(block *chaindata.Block) *Result {
	r := &Result{balances: make(map[string]*uint256.Int)}

	for _, bc := range block.BalanceChanges {
		r.apply(bc)
		d := delta(bc)
		ev := Event{Address: bc.Address, Value: d, Reason: bc.Reason, Ordinal: bc.Ordinal}
		switch bc.Reason {
		case chaindata.BalanceChangeReason_RewardMineBlock, chaindata.BalanceChangeReason_RewardMineUncle:
			if d.Sign() > 0 {
				r.Rewards = append(r.Rewards, ev)
			}
		case chaindata.BalanceChangeReason_Withdrawal:
			if d.Sign() > 0 {
				r.Withdrawals = append(r.Withdrawals, ev)
			}
		case chaindata.BalanceChangeReason_GenesisBalance:
			if d.Sign() > 0 {
				r.Genesis = append(r.Genesis, ev)
			}
		case chaindata.BalanceChangeReason_DaoRefundContract, chaindata.BalanceChangeReason_DaoAdjustBalance:
			r.DaoEvents = append(r.DaoEvents, ev)
		}
	}

	for _, call := range block.SystemCalls {
		for _, bc := range call.BalanceChanges {
			r.apply(bc)
		}
	}

	for _, tx := range block.Transactions {
		success := tx.Succeeded()
		for _, call := range tx.Calls {
			for _, bc := range call.BalanceChanges {
				if bc.Reason.IsGasRelated() {
					r.apply(bc)
					continue
				}
				if !success {
					continue
				}
				r.apply(bc)
			}
			if call.Suicide && success {
				r.recordSelfdestruct(call)
			}
		}
		if success && qualifiesForRow(tx) {
			r.ValueTransactions = append(r.ValueTransactions, tx)
			for _, call := range tx.Calls {
				if qualifyingCall(call) {
					r.Calls = append(r.Calls, QualifyingCall{Tx: tx, Call: call})
				}
			}
		}
	}

	return r
}

func (r *Result) recordSelfdestruct(call *chaindata.Call) {
	for _, bc := range call.BalanceChanges {
		if bc.Reason != chaindata.BalanceChangeReason_SuicideRefund {
			continue
		}
		v := new(uint256.Int)
		if bc.NewValue != nil {
			v.Set(bc.NewValue)
		}
		if bc.OldValue != nil {
			v.Sub(v, bc.OldValue)
		}
		if v.IsZero() {
			continue
		}
		r.Selfdestructs = append(r.Selfdestructs, Selfdestruct{
			From:    call.Address,
			To:      bc.Address,
			Value:   v,
			Ordinal: bc.Ordinal,
		})
	}
}

func qualifiesForRow(tx *chaindata.TransactionTrace) bool {
	if tx.Value != "" && tx.Value != "0" {
		return true
	}
	for _, call := range tx.Calls {
		if qualifyingCall(call) {
			return true
		}
	}
	return false
}

// qualifyingCall reports whether an internal call moves value: CALL or
// CREATE below the top level with a non-zero value. DELEGATE and STATIC
// never move value.
func qualifyingCall(call *chaindata.Call) bool {
	if call.Depth == 0 {
		return false
	}
	if call.CallType != chaindata.CallType_Call && call.CallType != chaindata.CallType_Create {
		return false
	}
	return call.Value != nil && !call.Value.IsZero()
}

// TouchedAddresses is the union of addresses a reduced-detail trace may
// have moved value for: senders, recipients, call parties and log
// emitters. Reconciliation reads these over RPC.
func TouchedAddresses(block *chaindata.Block) [][]byte {
	seen := make(map[string]bool)
	out := make([][]byte, 0)
	add := func(addr []byte) {
		if len(addr) == 0 {
			return
		}
		key := hex.EncodeToString(addr)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, addr)
	}
	for _, tx := range block.Transactions {
		add(tx.From)
		add(tx.To)
		for _, call := range tx.Calls {
			add(call.Address)
			add(call.Caller)
			add(call.AddressDelegatesTo)
			for _, lg := range call.Logs {
				add(lg.Address)
			}
		}
		if tx.Receipt != nil {
			for _, lg := range tx.Receipt.Logs {
				add(lg.Address)
			}
		}
	}
	return out
}
