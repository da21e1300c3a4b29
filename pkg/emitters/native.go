package emitters

import (
	"context"
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/nativebalance"
	"github.com/tracelake/evmetl/pkg/tables"
)

// NativeReader resolves native balances over RPC for reduced-detail
// reconciliation.
type NativeReader interface {
	NativeBalance(ctx context.Context, addrs [][]byte, chunkSize int) (map[string]*big.Int, error)
}

// EmitNative renders the native-balance view of the block: latest
// balances, block rewards, withdrawals, selfdestructs and the value
// transactions/calls tables. With reduced-detail traces the reconstructed
// values are reconciled against eth_getBalance before emission.
func (e *Emitter) EmitNative(ctx context.Context, block *chaindata.Block, reader NativeReader, chunkSize int, t *tables.Tables) error {
	recon := nativebalance.Reconstruct(block)

	if block.DetailLevel == chaindata.DetailLevel_Base && reader != nil {
		touched := nativebalance.TouchedAddresses(block)
		if len(touched) > 0 {
			resolved, err := reader.NativeBalance(ctx, touched, chunkSize)
			if err != nil {
				return err
			}
			for _, addr := range touched {
				v, ok := resolved[hex.EncodeToString(addr)]
				if !ok {
					continue
				}
				u, overflow := uint256.FromBig(v)
				if overflow {
					continue
				}
				recon.Override(addr, u)
			}
		}
	}

	if len(recon.Balances()) == 0 && len(recon.ValueTransactions) == 0 {
		return nil
	}
	env, err := blockEnvelope(block)
	if err != nil {
		return err
	}

	blockNum := strconv.FormatUint(block.Number, 10)
	for _, obs := range recon.Balances() {
		amount := "0"
		if obs.Balance != nil {
			amount = obs.Balance.Dec()
		}
		t.UpsertRow("balances_native",
			tables.NativeBalanceKey(e.Encoding, obs.Address),
			tables.Cols(append([]string{
				"amount", amount,
				"block_num", blockNum,
			}, env...)...))
	}

	emitEvents := func(table string, events []nativebalance.Event) {
		for _, ev := range events {
			t.AppendRow(table,
				tables.Cols(
					"block_num", blockNum,
					"address", e.addr(ev.Address),
					"ordinal", strconv.FormatUint(ev.Ordinal, 10),
				),
				tables.Cols(append([]string{
					"value", ev.Value.String(),
					"reason", ev.Reason.String(),
				}, env...)...))
		}
	}
	emitEvents("block_rewards", recon.Rewards)
	emitEvents("withdrawals", recon.Withdrawals)
	emitEvents("genesis_balances", recon.Genesis)
	emitEvents("dao_fork_adjustments", recon.DaoEvents)

	for _, sd := range recon.Selfdestructs {
		t.AppendRow("selfdestructs",
			tables.Cols(
				"block_num", blockNum,
				"ordinal", strconv.FormatUint(sd.Ordinal, 10),
			),
			tables.Cols(append([]string{
				"from", e.addr(sd.From),
				"to", e.addr(sd.To),
				"value", sd.Value.Dec(),
			}, env...)...))
	}

	for _, tx := range recon.ValueTransactions {
		t.AppendRow("transactions",
			tables.Cols(
				"block_num", blockNum,
				"tx_index", strconv.FormatUint(uint64(tx.Index), 10),
			),
			tables.Cols(append([]string{
				"tx_hash", e.id(tx.Hash),
				"from", e.addr(tx.From),
				"to", e.addr(tx.To),
				"nonce", strconv.FormatUint(tx.Nonce, 10),
				"value", tx.Value,
				"gas_price", tx.GasPrice,
				"gas_limit", strconv.FormatUint(tx.GasLimit, 10),
				"gas_used", strconv.FormatUint(tx.GasUsed, 10),
			}, env...)...))
	}
	for _, qc := range recon.Calls {
		call := qc.Call
		t.AppendRow("calls",
			tables.Cols(
				"block_num", blockNum,
				"tx_index", strconv.FormatUint(uint64(qc.Tx.Index), 10),
				"call_index", strconv.FormatUint(uint64(call.Index), 10),
			),
			tables.Cols(append([]string{
				"tx_hash", e.id(qc.Tx.Hash),
				"begin_ordinal", strconv.FormatUint(call.BeginOrdinal, 10),
				"end_ordinal", strconv.FormatUint(call.EndOrdinal, 10),
				"caller", e.addr(call.Caller),
				"address", e.addr(call.Address),
				"value", call.Value.Dec(),
				"gas_consumed", strconv.FormatUint(call.GasConsumed, 10),
				"gas_limit", strconv.FormatUint(call.GasLimit, 10),
				"depth", strconv.FormatUint(uint64(call.Depth), 10),
				"parent_index", strconv.FormatUint(uint64(call.ParentIndex), 10),
				"call_type", call.CallType.String(),
			}, env...)...))
	}
	return nil
}
