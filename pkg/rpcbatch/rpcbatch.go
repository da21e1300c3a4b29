// Package rpcbatch fans out contract reads over JSON-RPC in bounded
// batches. Decode failures are per-call: the failing entry is logged and
// omitted from the result, and callers must treat absence as unknown,
// never as zero.
package rpcbatch

import (
	"context"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
)

// 4-byte call selectors.
const (
	balanceOfSelector   = "0x70a08231"
	totalSupplySelector = "0x18160ddd"
)

const DefaultChunkSize = 50

// Caller wraps an RPC client for batched reads.
type Caller struct {
	client  *rpc.Client
	logger  *zap.Logger
	metrics *metrics.MetricsClient
}

func NewCaller(client *rpc.Client, l *zap.Logger, mc *metrics.MetricsClient) *Caller {
	return &Caller{client: client, logger: l, metrics: mc}
}

// BalancePair identifies one (contract, holder) read.
type BalancePair struct {
	Contract []byte
	Owner    []byte
}

// PairKey is the result-map key for a balance pair.
func PairKey(contract, owner []byte) string {
	return hex.EncodeToString(contract) + ":" + hex.EncodeToString(owner)
}

// BalanceOf resolves ERC-20 balances for the given pairs. One batched
// round-trip per chunk; the last chunk may be smaller.
func (c *Caller) BalanceOf(ctx context.Context, pairs []BalancePair, chunkSize int) (map[string]*big.Int, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	out := make(map[string]*big.Int, len(pairs))
	for start := 0; start < len(pairs); start += chunkSize {
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]

		batch := make([]rpc.BatchElem, len(chunk))
		results := make([]hexutil.Bytes, len(chunk))
		for i, p := range chunk {
			data := balanceOfSelector + "000000000000000000000000" + hex.EncodeToString(p.Owner)
			batch[i] = rpc.BatchElem{
				Method: "eth_call",
				Args: []interface{}{
					map[string]interface{}{
						"to":   common.BytesToAddress(p.Contract),
						"data": data,
					},
					"latest",
				},
				Result: &results[i],
			}
		}
		if err := c.client.BatchCallContext(ctx, batch); err != nil {
			return nil, errors.Wrap(err, "balanceOf batch")
		}
		for i, elem := range batch {
			key := PairKey(chunk[i].Contract, chunk[i].Owner)
			v, ok := c.decodeWord(elem.Error, results[i], "balanceOf", key)
			if !ok {
				continue
			}
			out[key] = v
		}
	}
	return out, nil
}

// TotalSupply resolves totalSupply per contract, keyed by lowercase hex
// contract address.
func (c *Caller) TotalSupply(ctx context.Context, contracts [][]byte, chunkSize int) (map[string]*big.Int, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	out := make(map[string]*big.Int, len(contracts))
	for start := 0; start < len(contracts); start += chunkSize {
		end := start + chunkSize
		if end > len(contracts) {
			end = len(contracts)
		}
		chunk := contracts[start:end]

		batch := make([]rpc.BatchElem, len(chunk))
		results := make([]hexutil.Bytes, len(chunk))
		for i, contract := range chunk {
			batch[i] = rpc.BatchElem{
				Method: "eth_call",
				Args: []interface{}{
					map[string]interface{}{
						"to":   common.BytesToAddress(contract),
						"data": totalSupplySelector,
					},
					"latest",
				},
				Result: &results[i],
			}
		}
		if err := c.client.BatchCallContext(ctx, batch); err != nil {
			return nil, errors.Wrap(err, "totalSupply batch")
		}
		for i, elem := range batch {
			key := hex.EncodeToString(chunk[i])
			v, ok := c.decodeWord(elem.Error, results[i], "totalSupply", key)
			if !ok {
				continue
			}
			out[key] = v
		}
	}
	return out, nil
}

// NativeBalance resolves eth_getBalance per address, keyed by lowercase
// hex address.
func (c *Caller) NativeBalance(ctx context.Context, addrs [][]byte, chunkSize int) (map[string]*big.Int, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	out := make(map[string]*big.Int, len(addrs))
	for start := 0; start < len(addrs); start += chunkSize {
		end := start + chunkSize
		if end > len(addrs) {
			end = len(addrs)
		}
		chunk := addrs[start:end]

		batch := make([]rpc.BatchElem, len(chunk))
		results := make([]hexutil.Big, len(chunk))
		for i, addr := range chunk {
			batch[i] = rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.BytesToAddress(addr), "latest"},
				Result: &results[i],
			}
		}
		if err := c.client.BatchCallContext(ctx, batch); err != nil {
			return nil, errors.Wrap(err, "eth_getBalance batch")
		}
		for i, elem := range batch {
			key := hex.EncodeToString(chunk[i])
			if elem.Error != nil {
				c.miss("eth_getBalance", key, elem.Error)
				continue
			}
			out[key] = (*big.Int)(&results[i])
		}
	}
	return out, nil
}

// decodeWord interprets one 32-byte eth_call return. Empty returndata is
// a decode miss: the contract did not answer the selector.
func (c *Caller) decodeWord(callErr error, data hexutil.Bytes, method, key string) (*big.Int, bool) {
	if callErr != nil {
		c.miss(method, key, callErr)
		return nil, false
	}
	if len(data) != 32 {
		c.miss(method, key, errors.Errorf("unexpected returndata length %d", len(data)))
		return nil, false
	}
	return new(big.Int).SetBytes(data), true
}

func (c *Caller) miss(method, key string, err error) {
	if c.logger != nil {
		c.logger.Sugar().Warnw("Undecodable RPC response, omitting entry",
			zap.String("method", method),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	if c.metrics != nil {
		c.metrics.IncrRpcDecodeMiss(method)
	}
}
