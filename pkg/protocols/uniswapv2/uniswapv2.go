// Package uniswapv2 decodes Uniswap v2 factory and pair events. Most v2
// forks (SushiSwap, PancakeSwap v2) share these signatures and decode
// through this package unchanged.
package uniswapv2

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "uniswap_v2"

type PairCreated struct {
	Token0    []byte
	Token1    []byte
	Pair      []byte
	PairIndex string
}

type Swap struct {
	Sender     []byte
	To         []byte
	Amount0In  string
	Amount1In  string
	Amount0Out string
	Amount1Out string
}

type Mint struct {
	Sender  []byte
	Amount0 string
	Amount1 string
}

type Burn struct {
	Sender  []byte
	To      []byte
	Amount0 string
	Amount1 string
}

type Sync struct {
	Reserve0 string
	Reserve1 string
}

var (
	PairCreatedEvent = evmabi.MustEvent("PairCreated",
		evmabi.Field{Name: "token0", Type: "address", Indexed: true},
		evmabi.Field{Name: "token1", Type: "address", Indexed: true},
		evmabi.Field{Name: "pair", Type: "address"},
		evmabi.Field{Name: "pairIndex", Type: "uint256"},
	)
	SwapEvent = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0In", Type: "uint256"},
		evmabi.Field{Name: "amount1In", Type: "uint256"},
		evmabi.Field{Name: "amount0Out", Type: "uint256"},
		evmabi.Field{Name: "amount1Out", Type: "uint256"},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
	)
	MintEvent = evmabi.MustEvent("Mint",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
	)
	BurnEvent = evmabi.MustEvent("Burn",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
	)
	SyncEvent = evmabi.MustEvent("Sync",
		evmabi.Field{Name: "reserve0", Type: "uint112"},
		evmabi.Field{Name: "reserve1", Type: "uint112"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: PairCreatedEvent, Decode: decodePairCreated},
	protocols.Handler{Event: SwapEvent, Decode: decodeSwap},
	protocols.Handler{Event: MintEvent, Decode: decodeMint},
	protocols.Handler{Event: BurnEvent, Decode: decodeBurn},
	protocols.Handler{Event: SyncEvent, Decode: decodeSync},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodePairCreated(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	token0, err := evmabi.AsAddress(m, "token0")
	if err != nil {
		return nil, err
	}
	token1, err := evmabi.AsAddress(m, "token1")
	if err != nil {
		return nil, err
	}
	pair, err := evmabi.AsAddress(m, "pair")
	if err != nil {
		return nil, err
	}
	pairIndex, err := evmabi.AsBig(m, "pairIndex")
	if err != nil {
		return nil, err
	}
	return &PairCreated{
		Token0:    token0,
		Token1:    token1,
		Pair:      pair,
		PairIndex: evmabi.DecimalString(pairIndex),
	}, nil
}

func decodeSwap(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, err
	}
	out := &Swap{Sender: sender, To: to}
	for name, dst := range map[string]*string{
		"amount0In":  &out.Amount0In,
		"amount1In":  &out.Amount1In,
		"amount0Out": &out.Amount0Out,
		"amount1Out": &out.Amount1Out,
	} {
		v, err := evmabi.AsBig(m, name)
		if err != nil {
			return nil, err
		}
		*dst = evmabi.DecimalString(v)
	}
	return out, nil
}

func decodeMint(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
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
	return &Mint{
		Sender:  sender,
		Amount0: evmabi.DecimalString(amount0),
		Amount1: evmabi.DecimalString(amount1),
	}, nil
}

func decodeBurn(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	sender, err := evmabi.AsAddress(m, "sender")
	if err != nil {
		return nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
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
		Sender:  sender,
		To:      to,
		Amount0: evmabi.DecimalString(amount0),
		Amount1: evmabi.DecimalString(amount1),
	}, nil
}

func decodeSync(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	reserve0, err := evmabi.AsBig(m, "reserve0")
	if err != nil {
		return nil, err
	}
	reserve1, err := evmabi.AsBig(m, "reserve1")
	if err != nil {
		return nil, err
	}
	return &Sync{
		Reserve0: evmabi.DecimalString(reserve0),
		Reserve1: evmabi.DecimalString(reserve1),
	}, nil
}
