// Package emitters converts decoded protocol events into warehouse rows.
// Each emitter is pure with respect to its inputs: the block, the decoded
// events and the identity store. Rows accumulate into a tables.Tables and
// the host turns that into database changes.
package emitters

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/config"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/encoding"
	"github.com/tracelake/evmetl/pkg/pooltracker"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/tables"
)

// Emitter carries the row-rendering configuration shared by every family.
type Emitter struct {
	Target   config.Target
	Encoding encoding.Encoding
	Logger   *zap.Logger
}

func NewEmitter(target config.Target, enc encoding.Encoding, l *zap.Logger) *Emitter {
	return &Emitter{Target: target, Encoding: enc, Logger: l}
}

// addr renders an address field through the configured encoding.
func (e *Emitter) addr(b []byte) string {
	return encoding.RenderAddress(e.Encoding, b)
}

// id renders hashes and opaque identifiers, always hex.
func (e *Emitter) id(b []byte) string {
	return encoding.RenderHash(b)
}

// logKey builds the append-row key for the configured warehouse target.
func (e *Emitter) logKey(block *chaindata.Block, txIndex, logIndex uint32) (*orderedmap.OrderedMap[string, string], error) {
	if e.Target == config.Target_Columnar {
		return tables.LogKeyColumnar(block, txIndex, logIndex)
	}
	return tables.LogKeyRelational(block, txIndex, logIndex), nil
}

// contractKey keys contract rows by creation ordinal; deployments have no
// log index.
func (e *Emitter) contractKey(block *chaindata.Block, txIndex uint32, ordinal uint64) (*orderedmap.OrderedMap[string, string], error) {
	if e.Target == config.Target_Columnar {
		return tables.ContractKeyColumnar(block, txIndex, ordinal)
	}
	return tables.ContractKeyRelational(block, txIndex, ordinal), nil
}

// blockEnvelope renders the envelope fields a row's key does not already
// carry. Columnar log keys embed both; every other row gets them as
// columns so each emitted row carries block_num, block_hash and timestamp.
func blockEnvelope(block *chaindata.Block) ([]string, error) {
	ts, err := block.MustTimestamp()
	if err != nil {
		return nil, err
	}
	return []string{
		"timestamp", strconv.FormatInt(ts.Unix(), 10),
		"block_hash", encoding.RenderHash(block.Hash),
	}, nil
}

// relationalEnvelope is blockEnvelope for relational targets only; the
// columnar log key already carries both fields.
func (e *Emitter) relationalEnvelope(block *chaindata.Block) ([]string, error) {
	if e.Target == config.Target_Columnar {
		return nil, nil
	}
	return blockEnvelope(block)
}

// envelope renders the shared tx/log envelope columns every log row carries.
func (e *Emitter) envelope(tx *protocols.Transaction, lg *protocols.DecodedLog) []string {
	cols := []string{
		"tx_hash", e.id(tx.Hash),
		"tx_from", e.addr(tx.From),
		"tx_to", e.addr(tx.To),
		"log_address", e.addr(lg.Address),
		"ordinal", strconv.FormatUint(lg.Ordinal, 10),
	}
	if lg.Call != nil {
		cols = append(cols,
			"caller", e.addr(lg.Call.Caller),
			"call_type", lg.Call.CallType.String(),
		)
	} else {
		cols = append(cols, "caller", "", "call_type", chaindata.CallType_Unspecified.String())
	}
	return cols
}

// poolCols renders the enrichment columns from a PoolRecord. A nil record
// yields empty fields.
func (e *Emitter) poolCols(rec *pooltracker.PoolRecord) []string {
	if rec == nil {
		return []string{"factory", "", "token0", "", "token1", ""}
	}
	return []string{
		"factory", e.addr(rec.Factory),
		"token0", e.addr(rec.Currency0),
		"token1", e.addr(rec.Currency1),
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
