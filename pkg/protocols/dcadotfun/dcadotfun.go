// Package dcadotfun decodes dca.fun recurring-order events.
package dcadotfun

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "dcadotfun"

type CreateOrder struct {
	OrderId        []byte
	Owner          []byte
	SellToken      []byte
	BuyToken       []byte
	AmountPerCycle string
	CycleInterval  string
	TotalCycles    string
}

type FillOrder struct {
	OrderId    []byte
	Filler     []byte
	SellAmount string
	BuyAmount  string
	Cycle      string
}

type CancelOrder struct {
	OrderId []byte
	Owner   []byte
}

var (
	createOrderEvent = evmabi.MustEvent("CreateOrder",
		evmabi.Field{Name: "orderId", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "sellToken", Type: "address"},
		evmabi.Field{Name: "buyToken", Type: "address"},
		evmabi.Field{Name: "amountPerCycle", Type: "uint256"},
		evmabi.Field{Name: "cycleInterval", Type: "uint256"},
		evmabi.Field{Name: "totalCycles", Type: "uint256"},
	)
	fillOrderEvent = evmabi.MustEvent("FillOrder",
		evmabi.Field{Name: "orderId", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "filler", Type: "address", Indexed: true},
		evmabi.Field{Name: "sellAmount", Type: "uint256"},
		evmabi.Field{Name: "buyAmount", Type: "uint256"},
		evmabi.Field{Name: "cycle", Type: "uint256"},
	)
	cancelOrderEvent = evmabi.MustEvent("CancelOrder",
		evmabi.Field{Name: "orderId", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: createOrderEvent, Decode: decodeCreateOrder},
	protocols.Handler{Event: fillOrderEvent, Decode: decodeFillOrder},
	protocols.Handler{Event: cancelOrderEvent, Decode: decodeCancelOrder},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeCreateOrder(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	orderId, err := evmabi.AsBytes32(m, "orderId")
	if err != nil {
		return nil, err
	}
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	sellToken, err := evmabi.AsAddress(m, "sellToken")
	if err != nil {
		return nil, err
	}
	buyToken, err := evmabi.AsAddress(m, "buyToken")
	if err != nil {
		return nil, err
	}
	amountPerCycle, err := evmabi.AsBig(m, "amountPerCycle")
	if err != nil {
		return nil, err
	}
	cycleInterval, err := evmabi.AsBig(m, "cycleInterval")
	if err != nil {
		return nil, err
	}
	totalCycles, err := evmabi.AsBig(m, "totalCycles")
	if err != nil {
		return nil, err
	}
	return &CreateOrder{
		OrderId:        orderId,
		Owner:          owner,
		SellToken:      sellToken,
		BuyToken:       buyToken,
		AmountPerCycle: evmabi.DecimalString(amountPerCycle),
		CycleInterval:  evmabi.DecimalString(cycleInterval),
		TotalCycles:    evmabi.DecimalString(totalCycles),
	}, nil
}

func decodeFillOrder(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	orderId, err := evmabi.AsBytes32(m, "orderId")
	if err != nil {
		return nil, err
	}
	filler, err := evmabi.AsAddress(m, "filler")
	if err != nil {
		return nil, err
	}
	sellAmount, err := evmabi.AsBig(m, "sellAmount")
	if err != nil {
		return nil, err
	}
	buyAmount, err := evmabi.AsBig(m, "buyAmount")
	if err != nil {
		return nil, err
	}
	cycle, err := evmabi.AsBig(m, "cycle")
	if err != nil {
		return nil, err
	}
	return &FillOrder{
		OrderId:    orderId,
		Filler:     filler,
		SellAmount: evmabi.DecimalString(sellAmount),
		BuyAmount:  evmabi.DecimalString(buyAmount),
		Cycle:      evmabi.DecimalString(cycle),
	}, nil
}

func decodeCancelOrder(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	orderId, err := evmabi.AsBytes32(m, "orderId")
	if err != nil {
		return nil, err
	}
	owner, err := evmabi.AsAddress(m, "owner")
	if err != nil {
		return nil, err
	}
	return &CancelOrder{OrderId: orderId, Owner: owner}, nil
}
