// Package tests holds fixture builders shared by the package tests:
// deterministic addresses and hashes, ABI word packing, and minimal block
// scaffolding around receipt logs.
package tests

import (
	"bytes"
	"math/big"
	"time"

	"github.com/tracelake/evmetl/pkg/chaindata"
)

// Addr returns a 20-byte address filled with b.
func Addr(b byte) []byte {
	return bytes.Repeat([]byte{b}, 20)
}

// Hash returns a 32-byte hash filled with b.
func Hash(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

// Word packs an integer into a 32-byte ABI word, two's complement for
// negative values.
func Word(v *big.Int) []byte {
	out := make([]byte, 32)
	if v.Sign() < 0 {
		twos := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), v)
		copy(out, twos.Bytes())
		return out
	}
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// AddressWord left-pads a 20-byte address into a topic or data word.
func AddressWord(addr []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(addr):], addr)
	return out
}

// Concat joins ABI words into log data.
func Concat(words ...[]byte) []byte {
	out := make([]byte, 0, 32*len(words))
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// Timestamp is the fixed block time used across fixtures.
var Timestamp = time.Unix(1700000040, 0).UTC()

// NewBlock wraps transactions in a block with a deterministic envelope.
func NewBlock(number uint64, txs ...*chaindata.TransactionTrace) *chaindata.Block {
	return &chaindata.Block{
		Number:       number,
		Hash:         Hash(0xbb),
		Timestamp:    Timestamp,
		Transactions: txs,
	}
}

// NewTx builds a successful transaction whose logs arrive via the receipt.
func NewTx(index uint32, from, to []byte, logs ...*chaindata.Log) *chaindata.TransactionTrace {
	return &chaindata.TransactionTrace{
		Hash:    Hash(byte(0x10 + index)),
		From:    from,
		To:      to,
		Index:   index,
		Status:  chaindata.TxStatus_Succeeded,
		Receipt: &chaindata.Receipt{Logs: logs},
	}
}

// NewLog assembles a log with block-unique ordinal and index.
func NewLog(address []byte, index uint32, topics [][]byte, data []byte) *chaindata.Log {
	return &chaindata.Log{
		Address: address,
		Topics:  topics,
		Data:    data,
		Index:   index,
		Ordinal: uint64(index) + 1,
	}
}
