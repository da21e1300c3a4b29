package ohlcv

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/tables"
)

func mustFloat(t *testing.T, s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	assert.Nil(t, err)
	return v
}

func observeSwap(acc *Accumulator, key Key, in, out int64) {
	acc.Observe(key,
		decimal.NewFromInt(in),
		decimal.NewFromInt(-out),
		tests.Addr(0x05), tests.Addr(0x06))
}

func Test_QuantileInterpolation(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	assert.InDelta(t, 3.85, quantile(samples, 0.95), 1e-9)
	assert.InDelta(t, 1.15, quantile(samples, 0.05), 1e-9)
	assert.InDelta(t, 4, quantile(samples, 1), 1e-9)
	assert.InDelta(t, 1, quantile(samples, 0), 1e-9)
}

func Test_CandleFromFourSwaps(t *testing.T) {
	acc := NewAccumulator()
	key, _ := NewKey("uniswap_v2", tests.Addr(0xfa), tests.Addr(0xcc), tests.Addr(0xa0), tests.Addr(0xa1))

	// Prices 1, 2, 3, 4.
	observeSwap(acc, key, 1000, 1000)
	observeSwap(acc, key, 1000, 2000)
	observeSwap(acc, key, 1000, 3000)
	observeSwap(acc, key, 1000, 4000)

	acc2 := tables.New()
	acc.Rows(700, []string{"timestamp", "1700000040", "block_hash", "0xbb"}, acc2)
	rows := acc2.RowsFor("ohlcv")
	assert.Equal(t, 1, len(rows))

	ts, _ := rows[0].Columns.Get("timestamp")
	assert.Equal(t, "1700000040", ts)
	blockHash, _ := rows[0].Columns.Get("block_hash")
	assert.Equal(t, "0xbb", blockHash)

	open, _ := rows[0].Columns.Get("open")
	closeP, _ := rows[0].Columns.Get("close")
	high, _ := rows[0].Columns.Get("high")
	low, _ := rows[0].Columns.Get("low")
	assert.Equal(t, "1", open)
	assert.Equal(t, "4", closeP)
	assert.InDelta(t, 3.85, mustFloat(t, high), 1e-9)
	assert.InDelta(t, 1.15, mustFloat(t, low), 1e-9)

	users, _ := rows[0].Columns.Get("unique_users")
	assert.Equal(t, "2", users)
	txCount, _ := rows[0].Columns.Get("tx_count")
	assert.Equal(t, "4", txCount)
}

func Test_GrossDominatesNet(t *testing.T) {
	acc := NewAccumulator()
	key, _ := NewKey("uniswap_v2", tests.Addr(0xfa), tests.Addr(0xcc), tests.Addr(0xa0), tests.Addr(0xa1))

	observeSwap(acc, key, 1000, 900)
	acc.Observe(key, decimal.NewFromInt(-500), decimal.NewFromInt(450), tests.Addr(0x07), tests.Addr(0x08))

	agg := acc.pools[key]
	assert.Equal(t, "1500", agg.gross0.String())
	assert.Equal(t, "500", agg.net0.String())
	assert.Equal(t, "1350", agg.gross1.String())
	assert.Equal(t, "-450", agg.net1.String())
}

func Test_ZeroSamplesYieldNoRow(t *testing.T) {
	acc := NewAccumulator()
	key, _ := NewKey("uniswap_v2", tests.Addr(0xfa), tests.Addr(0xcc), tests.Addr(0xa0), tests.Addr(0xa1))

	// Same-sign legs never form a price.
	acc.Observe(key, decimal.NewFromInt(10), decimal.NewFromInt(10), tests.Addr(0x05), tests.Addr(0x06))

	out := tables.New()
	acc.Rows(701, nil, out)
	assert.Equal(t, 0, len(out.RowsFor("ohlcv")))
}

func Test_NewKey_CanonicalOrder(t *testing.T) {
	a := tests.Addr(0xa0)
	b := tests.Addr(0xa1)

	forward, flippedF := NewKey("p", tests.Addr(0xfa), tests.Addr(0xcc), a, b)
	reverse, flippedR := NewKey("p", tests.Addr(0xfa), tests.Addr(0xcc), b, a)

	assert.Equal(t, forward, reverse)
	assert.False(t, flippedF)
	assert.True(t, flippedR)
}
