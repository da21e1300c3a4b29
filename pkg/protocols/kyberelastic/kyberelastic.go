// Package kyberelastic decodes KyberSwap Elastic factory and pool events.
// The pool model mirrors concentrated liquidity with reinvestment tokens
// layered on top, so burns come in two shapes.
package kyberelastic

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "kyber_elastic"

type PoolCreated struct {
	Token0       []byte
	Token1       []byte
	SwapFeeUnits uint64
	TickDistance int32
	Pool         []byte
}

type Swap struct {
	Sender      []byte
	Recipient   []byte
	DeltaQty0   string
	DeltaQty1   string
	SqrtP       string
	Liquidity   string
	CurrentTick int32
}

type Mint struct {
	Sender    []byte
	Owner     []byte
	TickLower int32
	TickUpper int32
	Qty       string
	Qty0      string
	Qty1      string
}

type Burn struct {
	Owner     []byte
	TickLower int32
	TickUpper int32
	Qty       string
	Qty0      string
	Qty1      string
}

type BurnRTokens struct {
	Sender []byte
	Qty    string
	Qty0   string
	Qty1   string
}

var (
	poolCreatedEvent = evmabi.MustEvent("PoolCreated",
		evmabi.Field{Name: "token0", Type: "address", Indexed: true},
		evmabi.Field{Name: "token1", Type: "address", Indexed: true},
		evmabi.Field{Name: "swapFeeUnits", Type: "uint24", Indexed: true},
		evmabi.Field{Name: "tickDistance", Type: "int24"},
		evmabi.Field{Name: "pool", Type: "address"},
	)
	swapEvent = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "recipient", Type: "address", Indexed: true},
		evmabi.Field{Name: "deltaQty0", Type: "int256"},
		evmabi.Field{Name: "deltaQty1", Type: "int256"},
		evmabi.Field{Name: "sqrtP", Type: "uint160"},
		evmabi.Field{Name: "liquidity", Type: "uint128"},
		evmabi.Field{Name: "currentTick", Type: "int24"},
	)
	mintEvent = evmabi.MustEvent("Mint",
		evmabi.Field{Name: "sender", Type: "address"},
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "tickLower", Type: "int24", Indexed: true},
		evmabi.Field{Name: "tickUpper", Type: "int24", Indexed: true},
		evmabi.Field{Name: "qty", Type: "uint128"},
		evmabi.Field{Name: "qty0", Type: "uint256"},
		evmabi.Field{Name: "qty1", Type: "uint256"},
	)
	burnEvent = evmabi.MustEvent("Burn",
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "tickLower", Type: "int24", Indexed: true},
		evmabi.Field{Name: "tickUpper", Type: "int24", Indexed: true},
		evmabi.Field{Name: "qty", Type: "uint128"},
		evmabi.Field{Name: "qty0", Type: "uint256"},
		evmabi.Field{Name: "qty1", Type: "uint256"},
	)
	burnRTokensEvent = evmabi.MustEvent("BurnRTokens",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "qty", Type: "uint256"},
		evmabi.Field{Name: "qty0", Type: "uint256"},
		evmabi.Field{Name: "qty1", Type: "uint256"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: poolCreatedEvent, Decode: decodePoolCreated},
	protocols.Handler{Event: swapEvent, Decode: decodeSwap},
	protocols.Handler{Event: mintEvent, Decode: decodeMint},
	protocols.Handler{Event: burnEvent, Decode: decodeBurn},
	protocols.Handler{Event: burnRTokensEvent, Decode: decodeBurnRTokens},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodePoolCreated(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	token0, err := evmabi.AsAddress(m, "token0")
	if err != nil {
		return nil, err
	}
	token1, err := evmabi.AsAddress(m, "token1")
	if err != nil {
		return nil, err
	}
	swapFeeUnits, err := evmabi.AsBig(m, "swapFeeUnits")
	if err != nil {
		return nil, err
	}
	tickDistance, err := evmabi.AsBig(m, "tickDistance")
	if err != nil {
		return nil, err
	}
	pool, err := evmabi.AsAddress(m, "pool")
	if err != nil {
		return nil, err
	}
	return &PoolCreated{
		Token0:       token0,
		Token1:       token1,
		SwapFeeUnits: ctx.U64("swapFeeUnits", swapFeeUnits),
		TickDistance: ctx.I32("tickDistance", tickDistance),
		Pool:         pool,
	}, nil
}

func decodeSwap(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	recipient, err := evmabi.AsAddress(m, "recipient")
	if err != nil {
		return nil, err
	}
	deltaQty0, err := evmabi.AsBig(m, "deltaQty0")
	if err != nil {
		return nil, err
	}
	deltaQty1, err := evmabi.AsBig(m, "deltaQty1")
	if err != nil {
		return nil, err
	}
	sqrtP, err := evmabi.AsBig(m, "sqrtP")
	if err != nil {
		return nil, err
	}
	liquidity, err := evmabi.AsBig(m, "liquidity")
	if err != nil {
		return nil, err
	}
	currentTick, err := evmabi.AsBig(m, "currentTick")
	if err != nil {
		return nil, err
	}
	return &Swap{
		Sender:      sender,
		Recipient:   recipient,
		DeltaQty0:   evmabi.DecimalString(deltaQty0),
		DeltaQty1:   evmabi.DecimalString(deltaQty1),
		SqrtP:       evmabi.DecimalString(sqrtP),
		Liquidity:   evmabi.DecimalString(liquidity),
		CurrentTick: ctx.I32("currentTick", currentTick),
	}, nil
}

func decodeMint(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	tickLower, err := evmabi.AsBig(m, "tickLower")
	if err != nil {
		return nil, err
	}
	tickUpper, err := evmabi.AsBig(m, "tickUpper")
	if err != nil {
		return nil, err
	}
	qty, err := evmabi.AsBig(m, "qty")
	if err != nil {
		return nil, err
	}
	qty0, err := evmabi.AsBig(m, "qty0")
	if err != nil {
		return nil, err
	}
	qty1, err := evmabi.AsBig(m, "qty1")
	if err != nil {
		return nil, err
	}
	return &Mint{
		Sender:    sender,
		Owner:     owner,
		TickLower: ctx.I32("tickLower", tickLower),
		TickUpper: ctx.I32("tickUpper", tickUpper),
		Qty:       evmabi.DecimalString(qty),
		Qty0:      evmabi.DecimalString(qty0),
		Qty1:      evmabi.DecimalString(qty1),
	}, nil
}

func decodeBurn(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	tickLower, err := evmabi.AsBig(m, "tickLower")
	if err != nil {
		return nil, err
	}
	tickUpper, err := evmabi.AsBig(m, "tickUpper")
	if err != nil {
		return nil, err
	}
	qty, err := evmabi.AsBig(m, "qty")
	if err != nil {
		return nil, err
	}
	qty0, err := evmabi.AsBig(m, "qty0")
	if err != nil {
		return nil, err
	}
	qty1, err := evmabi.AsBig(m, "qty1")
	if err != nil {
		return nil, err
	}
	return &Burn{
		Owner:     owner,
		TickLower: ctx.I32("tickLower", tickLower),
		TickUpper: ctx.I32("tickUpper", tickUpper),
		Qty:       evmabi.DecimalString(qty),
		Qty0:      evmabi.DecimalString(qty0),
		Qty1:      evmabi.DecimalString(qty1),
	}, nil
}

func decodeBurnRTokens(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	qty, err := evmabi.AsBig(m, "qty")
	if err != nil {
		return nil, err
	}
	qty0, err := evmabi.AsBig(m, "qty0")
	if err != nil {
		return nil, err
	}
	qty1, err := evmabi.AsBig(m, "qty1")
	if err != nil {
		return nil, err
	}
	return &BurnRTokens{
		Sender: sender,
		Qty:    evmabi.DecimalString(qty),
		Qty0:   evmabi.DecimalString(qty0),
		Qty1:   evmabi.DecimalString(qty1),
	}, nil
}
