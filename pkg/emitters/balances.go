package emitters

import (
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/erc20"
	"github.com/tracelake/evmetl/pkg/rpcbatch"
	"github.com/tracelake/evmetl/pkg/tables"
)

// TokenReader is the slice of rpcbatch.Caller the balance emitters need.
type TokenReader interface {
	BalanceOf(ctx context.Context, pairs []rpcbatch.BalancePair, chunkSize int) (map[string]*big.Int, error)
	TotalSupply(ctx context.Context, contracts [][]byte, chunkSize int) (map[string]*big.Int, error)
}

var zeroAddress = make([]byte, 20)

// EmitTokenBalances upserts the current ERC-20 balance for every
// (contract, holder) pair touched by a transfer in the block. Pairs the
// RPC could not resolve produce no row: absence means unknown.
func (e *Emitter) EmitTokenBalances(ctx context.Context, block *chaindata.Block, events *protocols.Events, reader TokenReader, chunkSize int, t *tables.Tables) error {
	pairs := touchedPairs(events)
	if len(pairs) == 0 {
		return nil
	}
	env, err := blockEnvelope(block)
	if err != nil {
		return err
	}
	balances, err := reader.BalanceOf(ctx, pairs, chunkSize)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		v, ok := balances[rpcbatch.PairKey(p.Contract, p.Owner)]
		if !ok {
			continue
		}
		t.UpsertRow("erc20_balances",
			tables.TokenBalanceKey(e.Encoding, p.Contract, p.Owner),
			tables.Cols(append([]string{
				"amount", v.String(),
				"block_num", strconv.FormatUint(block.Number, 10),
			}, env...)...))
	}
	return nil
}

// EmitTokenSupply upserts totalSupply for every contract that emitted a
// transfer in the block.
func (e *Emitter) EmitTokenSupply(ctx context.Context, block *chaindata.Block, events *protocols.Events, reader TokenReader, chunkSize int, t *tables.Tables) error {
	contracts := touchedContracts(events)
	if len(contracts) == 0 {
		return nil
	}
	env, err := blockEnvelope(block)
	if err != nil {
		return err
	}
	supplies, err := reader.TotalSupply(ctx, contracts, chunkSize)
	if err != nil {
		return err
	}
	for _, contract := range contracts {
		v, ok := supplies[hex.EncodeToString(contract)]
		if !ok {
			continue
		}
		t.UpsertRow("erc20_supply",
			tables.SupplyKey(e.Encoding, contract),
			tables.Cols(append([]string{
				"total_supply", v.String(),
				"block_num", strconv.FormatUint(block.Number, 10),
			}, env...)...))
	}
	return nil
}

// touchedPairs collects the unique (contract, holder) pairs from the
// block's transfers, in first-touch order. The zero address never holds.
func touchedPairs(events *protocols.Events) []rpcbatch.BalancePair {
	if events == nil {
		return nil
	}
	seen := make(map[string]bool)
	pairs := make([]rpcbatch.BalancePair, 0)
	add := func(contract, owner []byte) {
		if len(owner) == 0 || bytes.Equal(owner, zeroAddress) {
			return
		}
		key := rpcbatch.PairKey(contract, owner)
		if seen[key] {
			return
		}
		seen[key] = true
		pairs = append(pairs, rpcbatch.BalancePair{Contract: contract, Owner: owner})
	}
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			if p, ok := lg.Payload.(*erc20.Transfer); ok {
				add(lg.Address, p.From)
				add(lg.Address, p.To)
			}
		}
	}
	return pairs
}

func touchedContracts(events *protocols.Events) [][]byte {
	if events == nil {
		return nil
	}
	seen := make(map[string]bool)
	contracts := make([][]byte, 0)
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			if _, ok := lg.Payload.(*erc20.Transfer); !ok {
				continue
			}
			key := hex.EncodeToString(lg.Address)
			if seen[key] {
				continue
			}
			seen[key] = true
			contracts = append(contracts, lg.Address)
		}
	}
	return contracts
}
