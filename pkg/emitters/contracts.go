package emitters

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/encoding"
	"github.com/tracelake/evmetl/pkg/tables"
)

// EmitContracts renders one row per contract deployed in the block. A
// top-level creation (to == nil) has the sender as deployer and no
// factory; a CREATE call below the top level records its caller as the
// factory. Failed transactions deploy nothing.
func (e *Emitter) EmitContracts(block *chaindata.Block, t *tables.Tables) error {
	env, err := e.relationalEnvelope(block)
	if err != nil {
		return err
	}
	for _, tx := range block.Transactions {
		if !tx.Succeeded() {
			continue
		}
		if tx.CreatesContract() && tx.Receipt != nil && len(tx.Receipt.ContractAddress) > 0 {
			if err := e.emitContractRow(block, tx, tx.Receipt.ContractAddress, nil, topLevelCode(tx), tx.Input, topLevelOrdinal(tx), env, t); err != nil {
				return err
			}
		}
		for _, call := range tx.Calls {
			if call.CallType != chaindata.CallType_Create || call.Depth == 0 {
				continue
			}
			if call.StatusFailed || call.StatusReverted {
				continue
			}
			if err := e.emitContractRow(block, tx, call.Address, call.Caller, callCode(call), call.Input, call.BeginOrdinal, env, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Emitter) emitContractRow(block *chaindata.Block, tx *chaindata.TransactionTrace, address, factory, code, input []byte, ordinal uint64, env []string, t *tables.Tables) error {
	key, err := e.contractKey(block, tx.Index, ordinal)
	if err != nil {
		return err
	}
	key.Set("address", e.addr(address))
	codeHash := ""
	if len(code) > 0 {
		codeHash = encoding.RenderHash(crypto.Keccak256(code))
	}
	cols := append([]string{
		"tx_hash", e.id(tx.Hash),
		"address", e.addr(address),
		"deployer", e.addr(tx.From),
		"factory", e.addr(factory),
		"code", encoding.RenderHash(code),
		"code_hash", codeHash,
		"input", encoding.RenderHash(input),
	}, env...)
	t.AppendRow("contracts", key, tables.Cols(cols...))
	return nil
}

// topLevelCode finds the deployed runtime code for a creation transaction
// from the top-level call's code changes.
func topLevelCode(tx *chaindata.TransactionTrace) []byte {
	for _, call := range tx.Calls {
		if call.Depth != 0 {
			continue
		}
		for _, cc := range call.CodeChanges {
			return cc.NewCode
		}
	}
	return nil
}

// topLevelOrdinal is the begin ordinal of the creation transaction's
// top-level call.
func topLevelOrdinal(tx *chaindata.TransactionTrace) uint64 {
	for _, call := range tx.Calls {
		if call.Depth == 0 {
			return call.BeginOrdinal
		}
	}
	return 0
}

func callCode(call *chaindata.Call) []byte {
	for _, cc := range call.CodeChanges {
		if len(cc.NewCode) > 0 {
			return cc.NewCode
		}
	}
	return nil
}
