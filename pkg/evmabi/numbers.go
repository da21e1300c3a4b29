package evmabi

import (
	"math"
	"math/big"
)

// Range-checked narrowings. Fields with a bounded semantic range (ticks fit
// int24, fees fit uint24) narrow to native ints; a value outside the target
// range returns ok=false and the caller substitutes zero, logs at info
// level, and bumps the overflow counter.

func I32FromBig(v *big.Int) (int32, bool) {
	if v == nil || !v.IsInt64() {
		return 0, false
	}
	n := v.Int64()
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int32(n), true
}

func U32FromBig(v *big.Int) (uint32, bool) {
	if v == nil || !v.IsUint64() {
		return 0, false
	}
	n := v.Uint64()
	if n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

func U64FromBig(v *big.Int) (uint64, bool) {
	if v == nil || !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

// DecimalString renders an integer as base-10 ASCII; nil renders as "0".
func DecimalString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// DecimalStrings renders an integer array for array-valued event fields.
func DecimalStrings(vs []*big.Int) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, DecimalString(v))
	}
	return out
}
