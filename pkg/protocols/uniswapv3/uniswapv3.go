// Package uniswapv3 decodes Uniswap v3 factory and pool events. Tick
// fields have a bounded semantic range (int24) and narrow to int32 after a
// range check.
package uniswapv3

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "uniswap_v3"

type PoolCreated struct {
	Token0      []byte
	Token1      []byte
	Fee         uint64
	TickSpacing int32
	Pool        []byte
}

type Swap struct {
	Sender       []byte
	Recipient    []byte
	Amount0      string
	Amount1      string
	SqrtPriceX96 string
	Liquidity    string
	Tick         int32
}

type Mint struct {
	Sender    []byte
	Owner     []byte
	TickLower int32
	TickUpper int32
	Amount    string
	Amount0   string
	Amount1   string
}

type Burn struct {
	Owner     []byte
	TickLower int32
	TickUpper int32
	Amount    string
	Amount0   string
	Amount1   string
}

type Collect struct {
	Owner     []byte
	Recipient []byte
	TickLower int32
	TickUpper int32
	Amount0   string
	Amount1   string
}

type Flash struct {
	Sender    []byte
	Recipient []byte
	Amount0   string
	Amount1   string
	Paid0     string
	Paid1     string
}

type Initialize struct {
	SqrtPriceX96 string
	Tick         int32
}

type SetFeeProtocol struct {
	FeeProtocol0Old uint64
	FeeProtocol1Old uint64
	FeeProtocol0New uint64
	FeeProtocol1New uint64
}

type CollectProtocol struct {
	Sender    []byte
	Recipient []byte
	Amount0   string
	Amount1   string
}

type IncreaseObservationCardinalityNext struct {
	ObservationCardinalityNextOld uint64
	ObservationCardinalityNextNew uint64
}

type OwnerChanged struct {
	OldOwner []byte
	NewOwner []byte
}

type FeeAmountEnabled struct {
	Fee         uint64
	TickSpacing int32
}

var (
	PoolCreatedEvent = evmabi.MustEvent("PoolCreated",
		evmabi.Field{Name: "token0", Type: "address", Indexed: true},
		evmabi.Field{Name: "token1", Type: "address", Indexed: true},
		evmabi.Field{Name: "fee", Type: "uint24", Indexed: true},
		evmabi.Field{Name: "tickSpacing", Type: "int24"},
		evmabi.Field{Name: "pool", Type: "address"},
	)
	SwapEvent = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "recipient", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "int256"},
		evmabi.Field{Name: "amount1", Type: "int256"},
		evmabi.Field{Name: "sqrtPriceX96", Type: "uint160"},
		evmabi.Field{Name: "liquidity", Type: "uint128"},
		evmabi.Field{Name: "tick", Type: "int24"},
	)
	MintEvent = evmabi.MustEvent("Mint",
		evmabi.Field{Name: "sender", Type: "address"},
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "tickLower", Type: "int24", Indexed: true},
		evmabi.Field{Name: "tickUpper", Type: "int24", Indexed: true},
		evmabi.Field{Name: "amount", Type: "uint128"},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
	)
	BurnEvent = evmabi.MustEvent("Burn",
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "tickLower", Type: "int24", Indexed: true},
		evmabi.Field{Name: "tickUpper", Type: "int24", Indexed: true},
		evmabi.Field{Name: "amount", Type: "uint128"},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
	)
	CollectEvent = evmabi.MustEvent("Collect",
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "recipient", Type: "address"},
		evmabi.Field{Name: "tickLower", Type: "int24", Indexed: true},
		evmabi.Field{Name: "tickUpper", Type: "int24", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint128"},
		evmabi.Field{Name: "amount1", Type: "uint128"},
	)
	FlashEvent = evmabi.MustEvent("Flash",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "recipient", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
		evmabi.Field{Name: "paid0", Type: "uint256"},
		evmabi.Field{Name: "paid1", Type: "uint256"},
	)
	InitializeEvent = evmabi.MustEvent("Initialize",
		evmabi.Field{Name: "sqrtPriceX96", Type: "uint160"},
		evmabi.Field{Name: "tick", Type: "int24"},
	)
	SetFeeProtocolEvent = evmabi.MustEvent("SetFeeProtocol",
		evmabi.Field{Name: "feeProtocol0Old", Type: "uint8"},
		evmabi.Field{Name: "feeProtocol1Old", Type: "uint8"},
		evmabi.Field{Name: "feeProtocol0New", Type: "uint8"},
		evmabi.Field{Name: "feeProtocol1New", Type: "uint8"},
	)
	CollectProtocolEvent = evmabi.MustEvent("CollectProtocol",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "recipient", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint128"},
		evmabi.Field{Name: "amount1", Type: "uint128"},
	)
	IncreaseObservationCardinalityNextEvent = evmabi.MustEvent("IncreaseObservationCardinalityNext",
		evmabi.Field{Name: "observationCardinalityNextOld", Type: "uint16"},
		evmabi.Field{Name: "observationCardinalityNextNew", Type: "uint16"},
	)
	OwnerChangedEvent = evmabi.MustEvent("OwnerChanged",
		evmabi.Field{Name: "oldOwner", Type: "address", Indexed: true},
		evmabi.Field{Name: "newOwner", Type: "address", Indexed: true},
	)
	FeeAmountEnabledEvent = evmabi.MustEvent("FeeAmountEnabled",
		evmabi.Field{Name: "fee", Type: "uint24", Indexed: true},
		evmabi.Field{Name: "tickSpacing", Type: "int24", Indexed: true},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: PoolCreatedEvent, Decode: decodePoolCreated},
	protocols.Handler{Event: SwapEvent, Decode: decodeSwap},
	protocols.Handler{Event: MintEvent, Decode: decodeMint},
	protocols.Handler{Event: BurnEvent, Decode: decodeBurn},
	protocols.Handler{Event: CollectEvent, Decode: decodeCollect},
	protocols.Handler{Event: FlashEvent, Decode: decodeFlash},
	protocols.Handler{Event: InitializeEvent, Decode: decodeInitialize},
	protocols.Handler{Event: SetFeeProtocolEvent, Decode: decodeSetFeeProtocol},
	protocols.Handler{Event: CollectProtocolEvent, Decode: decodeCollectProtocol},
	protocols.Handler{Event: IncreaseObservationCardinalityNextEvent, Decode: decodeIncreaseObservationCardinalityNext},
	protocols.Handler{Event: OwnerChangedEvent, Decode: decodeOwnerChanged},
	protocols.Handler{Event: FeeAmountEnabledEvent, Decode: decodeFeeAmountEnabled},
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
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	tickSpacing, err := evmabi.AsBig(m, "tickSpacing")
	if err != nil {
		return nil, err
	}
	pool, err := evmabi.AsAddress(m, "pool")
	if err != nil {
		return nil, err
	}
	return &PoolCreated{
		Token0:      token0,
		Token1:      token1,
		Fee:         ctx.U64("fee", fee),
		TickSpacing: ctx.I32("tickSpacing", tickSpacing),
		Pool:        pool,
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
	return &Swap{
		Sender:       sender,
		Recipient:    recipient,
		Amount0:      evmabi.DecimalString(amount0),
		Amount1:      evmabi.DecimalString(amount1),
		SqrtPriceX96: evmabi.DecimalString(sqrtPrice),
		Liquidity:    evmabi.DecimalString(liquidity),
		Tick:         ctx.I32("tick", tick),
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
	amount, err := evmabi.AsBig(m, "amount")
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
	return &Mint{
		Sender:    sender,
		Owner:     owner,
		TickLower: ctx.I32("tickLower", tickLower),
		TickUpper: ctx.I32("tickUpper", tickUpper),
		Amount:    evmabi.DecimalString(amount),
		Amount0:   evmabi.DecimalString(amount0),
		Amount1:   evmabi.DecimalString(amount1),
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
	amount, err := evmabi.AsBig(m, "amount")
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
	return &Burn{
		Owner:     owner,
		TickLower: ctx.I32("tickLower", tickLower),
		TickUpper: ctx.I32("tickUpper", tickUpper),
		Amount:    evmabi.DecimalString(amount),
		Amount0:   evmabi.DecimalString(amount0),
		Amount1:   evmabi.DecimalString(amount1),
	}, nil
}

func decodeCollect(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	recipient, err := evmabi.AsAddress(m, "recipient")
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
	amount0, err := evmabi.AsBig(m, "amount0")
	if err != nil {
		return nil, err
	}
	amount1, err := evmabi.AsBig(m, "amount1")
	if err != nil {
		return nil, err
	}
	return &Collect{
		Owner:     owner,
		Recipient: recipient,
		TickLower: ctx.I32("tickLower", tickLower),
		TickUpper: ctx.I32("tickUpper", tickUpper),
		Amount0:   evmabi.DecimalString(amount0),
		Amount1:   evmabi.DecimalString(amount1),
	}, nil
}

func decodeFlash(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	recipient, err := evmabi.AsAddress(m, "recipient")
	if err != nil {
		return nil, err
	}
	out := &Flash{Sender: sender, Recipient: recipient}
	for name, dst := range map[string]*string{
		"amount0": &out.Amount0,
		"amount1": &out.Amount1,
		"paid0":   &out.Paid0,
		"paid1":   &out.Paid1,
	} {
		v, err := evmabi.AsBig(m, name)
		if err != nil {
			return nil, err
		}
		*dst = evmabi.DecimalString(v)
	}
	return out, nil
}

func decodeInitialize(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sqrtPrice, err := evmabi.AsBig(m, "sqrtPriceX96")
	if err != nil {
		return nil, err
	}
	tick, err := evmabi.AsBig(m, "tick")
	if err != nil {
		return nil, err
	}
	return &Initialize{
		SqrtPriceX96: evmabi.DecimalString(sqrtPrice),
		Tick:         ctx.I32("tick", tick),
	}, nil
}

func decodeSetFeeProtocol(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	out := &SetFeeProtocol{}
	for name, dst := range map[string]*uint64{
		"feeProtocol0Old": &out.FeeProtocol0Old,
		"feeProtocol1Old": &out.FeeProtocol1Old,
		"feeProtocol0New": &out.FeeProtocol0New,
		"feeProtocol1New": &out.FeeProtocol1New,
	} {
		v, err := evmabi.AsBig(m, name)
		if err != nil {
			return nil, err
		}
		*dst = ctx.U64(name, v)
	}
	return out, nil
}

func decodeCollectProtocol(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	recipient, err := evmabi.AsAddress(m, "recipient")
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
	return &CollectProtocol{
		Sender:    sender,
		Recipient: recipient,
		Amount0:   evmabi.DecimalString(amount0),
		Amount1:   evmabi.DecimalString(amount1),
	}, nil
}

func decodeIncreaseObservationCardinalityNext(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	oldVal, err := evmabi.AsBig(m, "observationCardinalityNextOld")
	if err != nil {
		return nil, err
	}
	newVal, err := evmabi.AsBig(m, "observationCardinalityNextNew")
	if err != nil {
		return nil, err
	}
	return &IncreaseObservationCardinalityNext{
		ObservationCardinalityNextOld: ctx.U64("observationCardinalityNextOld", oldVal),
		ObservationCardinalityNextNew: ctx.U64("observationCardinalityNextNew", newVal),
	}, nil
}

func decodeOwnerChanged(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	oldOwner, err := evmabi.AsAddress(m, "oldOwner")
	if err != nil {
		return nil, err
	}
	newOwner, err := evmabi.AsAddress(m, "newOwner")
	if err != nil {
		return nil, err
	}
	return &OwnerChanged{OldOwner: oldOwner, NewOwner: newOwner}, nil
}

func decodeFeeAmountEnabled(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	tickSpacing, err := evmabi.AsBig(m, "tickSpacing")
	if err != nil {
		return nil, err
	}
	return &FeeAmountEnabled{
		Fee:         ctx.U64("fee", fee),
		TickSpacing: ctx.I32("tickSpacing", tickSpacing),
	}, nil
}
