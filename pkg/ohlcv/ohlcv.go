// Package ohlcv aggregates per-pool swap activity for one block into a
// single candle row per pool. Token amounts accumulate as decimals since
// u256 flows exceed the float64 mantissa; only the derived prices are
// floating point.
package ohlcv

import (
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tracelake/evmetl/pkg/tables"
)

// Key identifies one pool's candle. Token order is canonicalized so the
// same pool always aggregates under one key regardless of swap direction.
type Key struct {
	Protocol string
	Factory  string
	Pool     string
	Token0   string
	Token1   string
}

// NewKey builds a canonical key from raw address bytes. When the token
// pair arrives out of order the returned flipped flag tells the caller to
// negate its amount orientation.
func NewKey(protocol string, factory, pool, token0, token1 []byte) (Key, bool) {
	t0 := hex.EncodeToString(token0)
	t1 := hex.EncodeToString(token1)
	flipped := t0 > t1
	if flipped {
		t0, t1 = t1, t0
	}
	return Key{
		Protocol: protocol,
		Factory:  hex.EncodeToString(factory),
		Pool:     hex.EncodeToString(pool),
		Token0:   t0,
		Token1:   t1,
	}, flipped
}

type poolAgg struct {
	samples []float64
	first   float64
	last    float64

	gross0 decimal.Decimal
	gross1 decimal.Decimal
	net0   decimal.Decimal
	net1   decimal.Decimal

	txCount int
	users   map[string]bool
}

// Accumulator collects swap samples for the current block.
type Accumulator struct {
	pools map[Key]*poolAgg
	order []Key
}

func NewAccumulator() *Accumulator {
	return &Accumulator{pools: make(map[Key]*poolAgg)}
}

// Observe records one swap. amount0/amount1 are signed pool-relative
// flows for the canonical token0/token1: positive into the pool, negative
// out. The price sample is |output| / |input|; a swap where either leg is
// zero contributes flows but no sample.
func (a *Accumulator) Observe(key Key, amount0, amount1 decimal.Decimal, sender, txFrom []byte) {
	agg, ok := a.pools[key]
	if !ok {
		agg = &poolAgg{users: make(map[string]bool)}
		a.pools[key] = agg
		a.order = append(a.order, key)
	}

	agg.gross0 = agg.gross0.Add(amount0.Abs())
	agg.gross1 = agg.gross1.Add(amount1.Abs())
	agg.net0 = agg.net0.Add(amount0)
	agg.net1 = agg.net1.Add(amount1)
	agg.txCount++
	if len(sender) > 0 {
		agg.users[hex.EncodeToString(sender)] = true
	}
	if len(txFrom) > 0 {
		agg.users[hex.EncodeToString(txFrom)] = true
	}

	price, ok := priceOf(amount0, amount1)
	if !ok {
		return
	}
	if len(agg.samples) == 0 {
		agg.first = price
	}
	agg.last = price
	agg.samples = append(agg.samples, price)
}

// priceOf derives |output| / |input| from the signed legs. The input leg
// flows into the pool (positive), the output leg out (negative).
func priceOf(amount0, amount1 decimal.Decimal) (float64, bool) {
	if amount0.IsZero() || amount1.IsZero() {
		return 0, false
	}
	var in, out decimal.Decimal
	switch {
	case amount0.Sign() > 0 && amount1.Sign() < 0:
		in, out = amount0, amount1
	case amount1.Sign() > 0 && amount0.Sign() < 0:
		in, out = amount1, amount0
	default:
		return 0, false
	}
	inF, _ := in.Abs().Float64()
	outF, _ := out.Abs().Float64()
	if inF == 0 {
		return 0, false
	}
	return outF / inF, true
}

// quantile interpolates linearly on the sorted sample array. q in [0,1].
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Rows renders one candle row per pool with at least one price sample,
// in first-observation order. env carries the block envelope columns
// every row repeats alongside block_num.
func (a *Accumulator) Rows(blockNum uint64, env []string, t *tables.Tables) {
	num := strconv.FormatUint(blockNum, 10)
	for _, key := range a.order {
		agg := a.pools[key]
		if len(agg.samples) == 0 {
			continue
		}
		sorted := make([]float64, len(agg.samples))
		copy(sorted, agg.samples)
		sort.Float64s(sorted)

		t.AppendRow("ohlcv",
			tables.Cols(
				"block_num", num,
				"protocol", key.Protocol,
				"factory", key.Factory,
				"pool", key.Pool,
				"token0", key.Token0,
				"token1", key.Token1,
			),
			tables.Cols(append([]string{
				"open", formatPrice(agg.first),
				"high", formatPrice(quantile(sorted, 0.95)),
				"low", formatPrice(quantile(sorted, 0.05)),
				"close", formatPrice(agg.last),
				"gross_volume0", agg.gross0.String(),
				"gross_volume1", agg.gross1.String(),
				"net_flow0", agg.net0.String(),
				"net_flow1", agg.net1.String(),
				"tx_count", strconv.Itoa(agg.txCount),
				"unique_users", strconv.Itoa(len(agg.users)),
			}, env...)...))
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
