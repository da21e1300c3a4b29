// Package uniswapv4 decodes Uniswap v4 PoolManager events. v4 pools are
// virtual: they are keyed by a 32-byte pool id instead of a contract
// address, and all events flow through the singleton manager.
package uniswapv4

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "uniswap_v4"

type Initialize struct {
	PoolId       []byte
	Currency0    []byte
	Currency1    []byte
	Fee          uint64
	TickSpacing  int32
	Hooks        []byte
	SqrtPriceX96 string
	Tick         int32
}

type Swap struct {
	PoolId       []byte
	Sender       []byte
	Amount0      string
	Amount1      string
	SqrtPriceX96 string
	Liquidity    string
	Tick         int32
	Fee          uint64
}

type ModifyLiquidity struct {
	PoolId         []byte
	Sender         []byte
	TickLower      int32
	TickUpper      int32
	LiquidityDelta string
	Salt           []byte
}

type Donate struct {
	PoolId  []byte
	Sender  []byte
	Amount0 string
	Amount1 string
}

var (
	InitializeEvent = evmabi.MustEvent("Initialize",
		evmabi.Field{Name: "id", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "currency0", Type: "address", Indexed: true},
		evmabi.Field{Name: "currency1", Type: "address", Indexed: true},
		evmabi.Field{Name: "fee", Type: "uint24"},
		evmabi.Field{Name: "tickSpacing", Type: "int24"},
		evmabi.Field{Name: "hooks", Type: "address"},
		evmabi.Field{Name: "sqrtPriceX96", Type: "uint160"},
		evmabi.Field{Name: "tick", Type: "int24"},
	)
	SwapEvent = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "id", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "int128"},
		evmabi.Field{Name: "amount1", Type: "int128"},
		evmabi.Field{Name: "sqrtPriceX96", Type: "uint160"},
		evmabi.Field{Name: "liquidity", Type: "uint128"},
		evmabi.Field{Name: "tick", Type: "int24"},
		evmabi.Field{Name: "fee", Type: "uint24"},
	)
	ModifyLiquidityEvent = evmabi.MustEvent("ModifyLiquidity",
		evmabi.Field{Name: "id", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "tickLower", Type: "int24"},
		evmabi.Field{Name: "tickUpper", Type: "int24"},
		evmabi.Field{Name: "liquidityDelta", Type: "int256"},
		evmabi.Field{Name: "salt", Type: "bytes32"},
	)
	DonateEvent = evmabi.MustEvent("Donate",
		evmabi.Field{Name: "id", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: InitializeEvent, Decode: decodeInitialize},
	protocols.Handler{Event: SwapEvent, Decode: decodeSwap},
	protocols.Handler{Event: ModifyLiquidityEvent, Decode: decodeModifyLiquidity},
	protocols.Handler{Event: DonateEvent, Decode: decodeDonate},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeInitialize(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	id, err := evmabi.AsBytes32(m, "id")
	if err != nil {
		return nil, err
	}
	currency0, err := evmabi.AsAddress(m, "currency0")
	if err != nil {
		return nil, err
	}
	currency1, err := evmabi.AsAddress(m, "currency1")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	tickSpacing, err := evmabi.AsBig(m, "tickSpacing")
	if err != nil {
		return nil, err
	}
	hooks, err := evmabi.AsAddress(m, "hooks")
	if err != nil {
		return nil, err
	}
	sqrtPrice, err := evmabi.AsBig(m, "sqrtPriceX96")
	if err != nil {
		return nil, err
	}
	tick, err := evmabi.AsBig(m, "tick")
	if err != nil {
		return nil, err
	}
	return &Initialize{
		PoolId:       id,
		Currency0:    currency0,
		Currency1:    currency1,
		Fee:          ctx.U64("fee", fee),
		TickSpacing:  ctx.I32("tickSpacing", tickSpacing),
		Hooks:        hooks,
		SqrtPriceX96: evmabi.DecimalString(sqrtPrice),
		Tick:         ctx.I32("tick", tick),
	}, nil
}

func decodeSwap(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	id, err := evmabi.AsBytes32(m, "id")
	if err != nil {
		return nil, err
	}
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	amount0, err := evmabi.AsBig(m, "amount0")
	if err != nil {
		return nil, err
	}
	amount1, err := evmabi.AsBig(m, "amount1")
	if err != nil {
		return nil, err
	}
	sqrtPrice, err := evmabi.AsBig(m, "sqrtPriceX96")
	if err != nil {
		return nil, err
	}
	liquidity, err := evmabi.AsBig(m, "liquidity")
	if err != nil {
		return nil, err
	}
	tick, err := evmabi.AsBig(m, "tick")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	return &Swap{
		PoolId:       id,
		Sender:       sender,
		Amount0:      evmabi.DecimalString(amount0),
		Amount1:      evmabi.DecimalString(amount1),
		SqrtPriceX96: evmabi.DecimalString(sqrtPrice),
		Liquidity:    evmabi.DecimalString(liquidity),
		Tick:         ctx.I32("tick", tick),
		Fee:          ctx.U64("fee", fee),
	}, nil
}

func decodeModifyLiquidity(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	id, err := evmabi.AsBytes32(m, "id")
	if err != nil {
		return nil, err
	}
	sender, err := evmabi.AsAddress(m, "sender")
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
	liquidityDelta, err := evmabi.AsBig(m, "liquidityDelta")
	if err != nil {
		return nil, err
	}
	salt, err := evmabi.AsBytes32(m, "salt")
	if err != nil {
		return nil, err
	}
	return &ModifyLiquidity{
		PoolId:         id,
		Sender:         sender,
		TickLower:      ctx.I32("tickLower", tickLower),
		TickUpper:      ctx.I32("tickUpper", tickUpper),
		LiquidityDelta: evmabi.DecimalString(liquidityDelta),
		Salt:           salt,
	}, nil
}

func decodeDonate(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	id, err := evmabi.AsBytes32(m, "id")
	if err != nil {
		return nil, err
	}
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	amount0, err := evmabi.AsBig(m, "amount0")
	if err != nil {
		return nil, err
	}
	amount1, err := evmabi.AsBig(m, "amount1")
	if err != nil {
		return nil, err
	}
	return &Donate{
		PoolId:  id,
		Sender:  sender,
		Amount0: evmabi.DecimalString(amount0),
		Amount1: evmabi.DecimalString(amount1),
	}, nil
}
