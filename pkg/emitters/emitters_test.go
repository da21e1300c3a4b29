package emitters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/config"
	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/encoding"
	"github.com/tracelake/evmetl/pkg/pooltracker"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/cow"
	"github.com/tracelake/evmetl/pkg/protocols/curve"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv2"
	"github.com/tracelake/evmetl/pkg/tables"
)

func newTestEmitter() *Emitter {
	return NewEmitter(config.Target_Columnar, encoding.Encoding_Hex, nil)
}

func swapEvents(pair []byte) *protocols.Events {
	return &protocols.Events{
		Protocol: uniswapv2.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Hash:  tests.Hash(0x10),
			From:  tests.Addr(0x01),
			To:    pair,
			Index: 0,
			Logs: []*protocols.DecodedLog{{
				Address: pair,
				Ordinal: 5,
				Index:   2,
				Event:   "Swap",
				Payload: &uniswapv2.Swap{
					Sender:     tests.Addr(0x01),
					To:         tests.Addr(0x02),
					Amount0In:  "1000",
					Amount1In:  "0",
					Amount0Out: "0",
					Amount1Out: "997",
				},
			}},
		}},
	}
}

func Test_EmitDex_SkipsSwapOnUnknownPool(t *testing.T) {
	e := newTestEmitter()
	store := pooltracker.NewMemoryStore()
	acc := tables.New()

	err := e.EmitDex(tests.NewBlock(100), swapEvents(tests.Addr(0xcc)), store, acc)
	assert.Nil(t, err)
	assert.Equal(t, 0, acc.RowCount())
}

func Test_EmitDex_EnrichesSwapFromStore(t *testing.T) {
	e := newTestEmitter()
	pair := tests.Addr(0xcc)
	store := pooltracker.NewMemoryStore()
	store.SetIfAbsent(pooltracker.Key(pair), &pooltracker.PoolRecord{
		Factory:   tests.Addr(0xfa),
		Currency0: tests.Addr(0xa0),
		Currency1: tests.Addr(0xa1),
	})
	acc := tables.New()

	err := e.EmitDex(tests.NewBlock(100), swapEvents(pair), store, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("uniswap_v2_swap")
	assert.Equal(t, 1, len(rows))

	factory, _ := rows[0].Columns.Get("factory")
	token0, _ := rows[0].Columns.Get("token0")
	assert.Equal(t, encoding.RenderAddress(encoding.Encoding_Hex, tests.Addr(0xfa)), factory)
	assert.Equal(t, encoding.RenderAddress(encoding.Encoding_Hex, tests.Addr(0xa0)), token0)

	txHash, _ := rows[0].Columns.Get("tx_hash")
	assert.Equal(t, encoding.RenderHash(tests.Hash(0x10)), txHash)
	callType, _ := rows[0].Columns.Get("call_type")
	assert.Equal(t, "unspecified", callType)

	minute, _ := rows[0].Keys.Get("minute")
	assert.Equal(t, "28333334", minute)
	logIndex, _ := rows[0].Keys.Get("log_index")
	assert.Equal(t, "2", logIndex)
}

func Test_EmitDex_CurveEmitsWithEmptyPoolColumns(t *testing.T) {
	e := newTestEmitter()
	store := pooltracker.NewMemoryStore()
	acc := tables.New()

	events := &protocols.Events{
		Protocol: curve.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Hash:  tests.Hash(0x11),
			From:  tests.Addr(0x01),
			To:    tests.Addr(0xdd),
			Index: 0,
			Logs: []*protocols.DecodedLog{{
				Address: tests.Addr(0xdd),
				Event:   "TokenExchange",
				Payload: &curve.TokenExchange{
					Buyer:        tests.Addr(0x01),
					SoldId:       "0",
					TokensSold:   "100",
					BoughtId:     "1",
					TokensBought: "99",
				},
			}},
		}},
	}

	err := e.EmitDex(tests.NewBlock(100), events, store, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("curve_token_exchange")
	assert.Equal(t, 1, len(rows))
	factory, _ := rows[0].Columns.Get("factory")
	assert.Equal(t, "", factory)
	sold, _ := rows[0].Columns.Get("tokens_sold")
	assert.Equal(t, "100", sold)
}

func Test_EmitDex_RelationalKeyShape(t *testing.T) {
	e := NewEmitter(config.Target_Relational, encoding.Encoding_Hex, nil)
	pair := tests.Addr(0xcc)
	store := pooltracker.NewMemoryStore()
	store.SetIfAbsent(pooltracker.Key(pair), &pooltracker.PoolRecord{})
	acc := tables.New()

	err := e.EmitDex(tests.NewBlock(100), swapEvents(pair), store, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("uniswap_v2_swap")
	assert.Equal(t, 1, len(rows))
	assert.Equal(t, 3, rows[0].Keys.Len())
	_, hasMinute := rows[0].Keys.Get("minute")
	assert.False(t, hasMinute)
}

func Test_EmitDex_RelationalRowsCarryBlockEnvelope(t *testing.T) {
	e := NewEmitter(config.Target_Relational, encoding.Encoding_Hex, nil)
	pair := tests.Addr(0xcc)
	store := pooltracker.NewMemoryStore()
	store.SetIfAbsent(pooltracker.Key(pair), &pooltracker.PoolRecord{})
	acc := tables.New()

	err := e.EmitDex(tests.NewBlock(100), swapEvents(pair), store, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("uniswap_v2_swap")
	assert.Equal(t, 1, len(rows))

	// The relational key carries no envelope, so the columns must.
	ts, ok := rows[0].Columns.Get("timestamp")
	assert.True(t, ok)
	assert.Equal(t, "1700000040", ts)
	blockHash, ok := rows[0].Columns.Get("block_hash")
	assert.True(t, ok)
	assert.Equal(t, encoding.RenderHash(tests.Hash(0xbb)), blockHash)
}

func Test_EmitDex_CowTradeEmitsWithEmptyPoolColumns(t *testing.T) {
	e := newTestEmitter()
	store := pooltracker.NewMemoryStore()
	acc := tables.New()

	settlement := tests.Addr(0x9a)
	events := &protocols.Events{
		Protocol: cow.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Hash:  tests.Hash(0x12),
			From:  tests.Addr(0x01),
			To:    settlement,
			Index: 0,
			Logs: []*protocols.DecodedLog{{
				Address: settlement,
				Event:   "Trade",
				Payload: &cow.Trade{
					Owner:      tests.Addr(0x01),
					SellToken:  tests.Addr(0xa0),
					BuyToken:   tests.Addr(0xa1),
					SellAmount: "100",
					BuyAmount:  "99",
					FeeAmount:  "1",
					OrderUid:   tests.Hash(0x77),
				},
			}},
		}},
	}

	err := e.EmitDex(tests.NewBlock(100), events, store, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("cow_trade")
	assert.Equal(t, 1, len(rows))
	factory, ok := rows[0].Columns.Get("factory")
	assert.True(t, ok)
	assert.Equal(t, "", factory)
	token0, ok := rows[0].Columns.Get("token0")
	assert.True(t, ok)
	assert.Equal(t, "", token0)
	sellAmount, _ := rows[0].Columns.Get("sell_amount")
	assert.Equal(t, "100", sellAmount)
}

func Test_EmitDex_TronAddressRendering(t *testing.T) {
	e := NewEmitter(config.Target_Columnar, encoding.Encoding_TronBase58, nil)
	pair := tests.Addr(0x3d)
	store := pooltracker.NewMemoryStore()
	store.SetIfAbsent(pooltracker.Key(pair), &pooltracker.PoolRecord{
		Factory:   tests.Addr(0xfa),
		Currency0: tests.Addr(0xa0),
		Currency1: tests.Addr(0xa1),
	})
	acc := tables.New()

	err := e.EmitDex(tests.NewBlock(100), swapEvents(pair), store, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("uniswap_v2_swap")
	assert.Equal(t, 1, len(rows))

	logAddress, _ := rows[0].Columns.Get("log_address")
	decoded, err := encoding.DecodeAddress(encoding.Encoding_TronBase58, logAddress)
	assert.Nil(t, err)
	assert.Equal(t, append([]byte{0x41}, pair...), decoded)

	// Hashes stay hex regardless of the address encoding.
	txHash, _ := rows[0].Columns.Get("tx_hash")
	assert.Equal(t, encoding.RenderHash(tests.Hash(0x10)), txHash)
}
