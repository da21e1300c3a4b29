// Package protocols defines the canonical decoded-event model shared by
// every protocol decoder, and the per-block decode loop. Structurally
// identical transaction/log shapes are collapsed into one envelope rather
// than repeated per protocol.
package protocols

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
)

// Events is a protocol's view of one block: only transactions with at
// least one matched log, each carrying only its matched logs.
type Events struct {
	Protocol     string
	Transactions []*Transaction
}

// Transaction is the decoded transaction envelope. Large integers are
// decimal strings so no warehouse bridge ever rounds them.
type Transaction struct {
	Hash     []byte
	From     []byte
	To       []byte // nil for contract creations
	Nonce    uint64
	GasPrice string
	GasLimit uint64
	GasUsed  uint64
	Value    string
	Index    uint32
	// ContractAddress is the deployed contract for creation transactions.
	ContractAddress []byte
	Logs            []*DecodedLog
}

// CallMeta attributes a log to the call that emitted it. CallType stays
// Unspecified and Caller empty when the trace lacks call detail.
type CallMeta struct {
	Caller   []byte
	Index    uint32
	Depth    uint32
	CallType chaindata.CallType
}

// DecodedLog is the log envelope plus its tagged decoded payload. Payload
// is one of the protocol package's event structs; emitters type-switch on it.
type DecodedLog struct {
	Address []byte
	Ordinal uint64
	Index   uint32
	Topics  [][]byte
	Data    []byte
	Call    *CallMeta
	Event   string
	Payload interface{}
}

// DecodeCtx carries the cross-cutting decode dependencies. Logger and
// Metrics may be nil; helpers tolerate that so decoders stay testable in
// isolation.
type DecodeCtx struct {
	Protocol string
	Logger   *zap.Logger
	Metrics  *metrics.MetricsClient
}

// I32 narrows a big integer to int32, substituting 0 on overflow with an
// info-level line and an overflow counter bump.
func (c *DecodeCtx) I32(field string, v *big.Int) int32 {
	n, ok := evmabi.I32FromBig(v)
	if !ok {
		c.overflow(field, v)
		return 0
	}
	return n
}

func (c *DecodeCtx) U32(field string, v *big.Int) uint32 {
	n, ok := evmabi.U32FromBig(v)
	if !ok {
		c.overflow(field, v)
		return 0
	}
	return n
}

func (c *DecodeCtx) U64(field string, v *big.Int) uint64 {
	n, ok := evmabi.U64FromBig(v)
	if !ok {
		c.overflow(field, v)
		return 0
	}
	return n
}

func (c *DecodeCtx) overflow(field string, v *big.Int) {
	if c.Logger != nil {
		c.Logger.Sugar().Infow("Numeric overflow during narrowing",
			zap.String("protocol", c.Protocol),
			zap.String("field", field),
			zap.String("value", evmabi.DecimalString(v)),
		)
	}
	if c.Metrics != nil {
		c.Metrics.IncrNumericOverflow(c.Protocol, field)
	}
}

// DecodeFunc maps an unpacked field map to a protocol payload struct.
type DecodeFunc func(ctx *DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error)

// Handler pairs a declared event with its payload decoder.
type Handler struct {
	Event  *evmabi.Event
	Decode DecodeFunc
}

// Registry is a protocol's ordered handler table. First topic0 match wins;
// ordering is fixed at registration.
type Registry struct {
	Protocol string
	Handlers []Handler
}

func NewRegistry(protocol string, handlers ...Handler) *Registry {
	return &Registry{Protocol: protocol, Handlers: handlers}
}

// Decode maps one block to this protocol's Events. Pure with respect to
// the block: a malformed payload skips only that log and bumps the skip
// counter; transactions with no matched log are excluded.
func (r *Registry) Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *Events {
	ctx := &DecodeCtx{Protocol: r.Protocol, Logger: l, Metrics: mc}
	events := &Events{Protocol: r.Protocol, Transactions: make([]*Transaction, 0)}

	for _, tx := range block.Transactions {
		decodedTx := &Transaction{
			Hash:     tx.Hash,
			From:     tx.From,
			To:       tx.To,
			Nonce:    tx.Nonce,
			GasPrice: tx.GasPrice,
			GasLimit: tx.GasLimit,
			GasUsed:  tx.GasUsed,
			Value:    tx.Value,
			Index:    tx.Index,
			Logs:     make([]*DecodedLog, 0),
		}
		if tx.Receipt != nil {
			decodedTx.ContractAddress = tx.Receipt.ContractAddress
		}

		for _, pair := range block.LogsWithCalls(tx) {
			lg := pair.Log
			topic0 := lg.Topic0()
			if topic0 == nil {
				continue
			}
			for _, h := range r.Handlers {
				if !h.Event.Matches(topic0) || len(lg.Topics) != h.Event.TopicCount() {
					continue
				}
				m, err := h.Event.Unpack(lg)
				if err != nil {
					r.skip(ctx, lg, h.Event.Name, err)
					break
				}
				payload, err := h.Decode(ctx, m, lg)
				if err != nil {
					r.skip(ctx, lg, h.Event.Name, err)
					break
				}
				decodedTx.Logs = append(decodedTx.Logs, &DecodedLog{
					Address: lg.Address,
					Ordinal: lg.Ordinal,
					Index:   lg.Index,
					Topics:  lg.Topics,
					Data:    lg.Data,
					Call:    callMeta(pair.Call),
					Event:   h.Event.Name,
					Payload: payload,
				})
				if mc != nil {
					mc.IncrDecodedLog(r.Protocol, h.Event.Name)
				}
				break
			}
		}

		if len(decodedTx.Logs) > 0 {
			events.Transactions = append(events.Transactions, decodedTx)
		}
	}
	return events
}

func (r *Registry) skip(ctx *DecodeCtx, lg *chaindata.Log, event string, err error) {
	if ctx.Logger != nil {
		ctx.Logger.Sugar().Warnw("Failed to decode log, skipping",
			zap.String("protocol", r.Protocol),
			zap.String("event", event),
			zap.Uint64("ordinal", lg.Ordinal),
			zap.Error(err),
		)
	}
	if ctx.Metrics != nil {
		ctx.Metrics.IncrSkippedLog(r.Protocol, event)
	}
}

func callMeta(call *chaindata.Call) *CallMeta {
	if call == nil {
		return nil
	}
	return &CallMeta{
		Caller:   call.Caller,
		Index:    call.Index,
		Depth:    call.Depth,
		CallType: call.CallType,
	}
}
