package tables

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/encoding"
)

// LogKeyColumnar builds the append-row key for columnar warehouses:
// minute first for partition selectivity, block hash last for fork
// uniqueness inside a time window.
func LogKeyColumnar(block *chaindata.Block, txIndex, logIndex uint32) (*orderedmap.OrderedMap[string, string], error) {
	ts, err := block.MustTimestamp()
	if err != nil {
		return nil, err
	}
	unix := ts.Unix()
	return Cols(
		"minute", strconv.FormatInt(unix/60, 10),
		"timestamp", strconv.FormatInt(unix, 10),
		"block_num", strconv.FormatUint(block.Number, 10),
		"tx_index", strconv.FormatUint(uint64(txIndex), 10),
		"log_index", strconv.FormatUint(uint64(logIndex), 10),
		"block_hash", encoding.RenderHash(block.Hash),
	), nil
}

// LogKeyRelational is the compact key for relational sinks.
func LogKeyRelational(block *chaindata.Block, txIndex, logIndex uint32) *orderedmap.OrderedMap[string, string] {
	return Cols(
		"block_num", strconv.FormatUint(block.Number, 10),
		"tx_index", strconv.FormatUint(uint64(txIndex), 10),
		"log_index", strconv.FormatUint(uint64(logIndex), 10),
	)
}

// ContractKeyColumnar keys contract deployment rows by the creation
// call's ordinal; deployments have no log index.
func ContractKeyColumnar(block *chaindata.Block, txIndex uint32, ordinal uint64) (*orderedmap.OrderedMap[string, string], error) {
	ts, err := block.MustTimestamp()
	if err != nil {
		return nil, err
	}
	unix := ts.Unix()
	return Cols(
		"minute", strconv.FormatInt(unix/60, 10),
		"timestamp", strconv.FormatInt(unix, 10),
		"block_num", strconv.FormatUint(block.Number, 10),
		"tx_index", strconv.FormatUint(uint64(txIndex), 10),
		"ordinal", strconv.FormatUint(ordinal, 10),
		"block_hash", encoding.RenderHash(block.Hash),
	), nil
}

func ContractKeyRelational(block *chaindata.Block, txIndex uint32, ordinal uint64) *orderedmap.OrderedMap[string, string] {
	return Cols(
		"block_num", strconv.FormatUint(block.Number, 10),
		"tx_index", strconv.FormatUint(uint64(txIndex), 10),
		"ordinal", strconv.FormatUint(ordinal, 10),
	)
}

// TokenBalanceKey keys ERC-20 balance upserts by (contract, holder).
func TokenBalanceKey(enc encoding.Encoding, contract, holder []byte) *orderedmap.OrderedMap[string, string] {
	return Cols(
		"contract", encoding.RenderAddress(enc, contract),
		"address", encoding.RenderAddress(enc, holder),
	)
}

// NativeBalanceKey keys native balance upserts by holder address.
func NativeBalanceKey(enc encoding.Encoding, holder []byte) *orderedmap.OrderedMap[string, string] {
	return Cols("address", encoding.RenderAddress(enc, holder))
}

// SupplyKey keys totalSupply upserts by contract.
func SupplyKey(enc encoding.Encoding, contract []byte) *orderedmap.OrderedMap[string, string] {
	return Cols("contract", encoding.RenderAddress(enc, contract))
}
