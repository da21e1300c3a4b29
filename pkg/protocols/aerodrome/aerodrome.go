// Package aerodrome decodes Aerodrome (Velodrome v2 family) factory and
// pool events. Pools come in stable and volatile flavors; the flag is part
// of the pool's identity.
package aerodrome

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "aerodrome"

type PoolCreated struct {
	Token0    []byte
	Token1    []byte
	Stable    bool
	Pool      []byte
	PoolIndex string
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
	poolCreatedEvent = evmabi.MustEvent("PoolCreated",
		evmabi.Field{Name: "token0", Type: "address", Indexed: true},
		evmabi.Field{Name: "token1", Type: "address", Indexed: true},
		evmabi.Field{Name: "stable", Type: "bool", Indexed: true},
		evmabi.Field{Name: "pool", Type: "address"},
		evmabi.Field{Name: "poolIndex", Type: "uint256"},
	)
	swapEvent = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0In", Type: "uint256"},
		evmabi.Field{Name: "amount1In", Type: "uint256"},
		evmabi.Field{Name: "amount0Out", Type: "uint256"},
		evmabi.Field{Name: "amount1Out", Type: "uint256"},
	)
	mintEvent = evmabi.MustEvent("Mint",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
	)
	burnEvent = evmabi.MustEvent("Burn",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0", Type: "uint256"},
		evmabi.Field{Name: "amount1", Type: "uint256"},
	)
	syncEvent = evmabi.MustEvent("Sync",
		evmabi.Field{Name: "reserve0", Type: "uint256"},
		evmabi.Field{Name: "reserve1", Type: "uint256"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: poolCreatedEvent, Decode: decodePoolCreated},
	protocols.Handler{Event: swapEvent, Decode: decodeSwap},
	protocols.Handler{Event: mintEvent, Decode: decodeMint},
	protocols.Handler{Event: burnEvent, Decode: decodeBurn},
	protocols.Handler{Event: syncEvent, Decode: decodeSync},
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
	stable, err := evmabi.AsBool(m, "stable")
	if err != nil {
		return nil, err
	}
	pool, err := evmabi.AsAddress(m, "pool")
	if err != nil {
		return nil, err
	}
	poolIndex, err := evmabi.AsBig(m, "poolIndex")
	if err != nil {
		return nil, err
	}
	return &PoolCreated{
		Token0:    token0,
		Token1:    token1,
		Stable:    stable,
		Pool:      pool,
		PoolIndex: evmabi.DecimalString(poolIndex),
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
