// Package dodo decodes DODO v2 pool events.
package dodo

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "dodo"

type DODOSwap struct {
	FromToken  []byte
	ToToken    []byte
	FromAmount string
	ToAmount   string
	Trader     []byte
	Receiver   []byte
}

type BuyShares struct {
	To             []byte
	IncreaseShares string
	TotalShares    string
}

type SellShares struct {
	Payer          []byte
	To             []byte
	DecreaseShares string
	TotalShares    string
}

var (
	dodoSwapEvent = evmabi.MustEvent("DODOSwap",
		evmabi.Field{Name: "fromToken", Type: "address"},
		evmabi.Field{Name: "toToken", Type: "address"},
		evmabi.Field{Name: "fromAmount", Type: "uint256"},
		evmabi.Field{Name: "toAmount", Type: "uint256"},
		evmabi.Field{Name: "trader", Type: "address"},
		evmabi.Field{Name: "receiver", Type: "address"},
	)
	buySharesEvent = evmabi.MustEvent("BuyShares",
		evmabi.Field{Name: "to", Type: "address"},
		evmabi.Field{Name: "increaseShares", Type: "uint256"},
		evmabi.Field{Name: "totalShares", Type: "uint256"},
	)
	sellSharesEvent = evmabi.MustEvent("SellShares",
		evmabi.Field{Name: "payer", Type: "address"},
		evmabi.Field{Name: "to", Type: "address"},
		evmabi.Field{Name: "decreaseShares", Type: "uint256"},
		evmabi.Field{Name: "totalShares", Type: "uint256"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: dodoSwapEvent, Decode: decodeDODOSwap},
	protocols.Handler{Event: buySharesEvent, Decode: decodeBuyShares},
	protocols.Handler{Event: sellSharesEvent, Decode: decodeSellShares},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeDODOSwap(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	fromToken, err := evmabi.AsAddress(m, "fromToken")
	if err != nil {
		return nil, err
	}
	toToken, err := evmabi.AsAddress(m, "toToken")
	if err != nil {
		return nil, err
	}
	fromAmount, err := evmabi.AsBig(m, "fromAmount")
	if err != nil {
		return nil, err
	}
	toAmount, err := evmabi.AsBig(m, "toAmount")
	if err != nil {
		return nil, err
	}
	trader, err := evmabi.AsAddress(m, "trader")
	if err != nil {
		return nil, err
	}
	receiver, err := evmabi.AsAddress(m, "receiver")
	if err != nil {
		return nil, err
	}
	return &DODOSwap{
		FromToken:  fromToken,
		ToToken:    toToken,
		FromAmount: evmabi.DecimalString(fromAmount),
		ToAmount:   evmabi.DecimalString(toAmount),
		Trader:     trader,
		Receiver:   receiver,
	}, nil
}

func decodeBuyShares(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, err
	}
	increase, err := evmabi.AsBig(m, "increaseShares")
	if err != nil {
		return nil, err
	}
	total, err := evmabi.AsBig(m, "totalShares")
	if err != nil {
		return nil, err
	}
	return &BuyShares{
		To:             to,
		IncreaseShares: evmabi.DecimalString(increase),
		TotalShares:    evmabi.DecimalString(total),
	}, nil
}

func decodeSellShares(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	payer, err := evmabi.AsAddress(m, "payer")
	if err != nil {
		return nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, err
	}
	decrease, err := evmabi.AsBig(m, "decreaseShares")
	if err != nil {
		return nil, err
	}
	total, err := evmabi.AsBig(m, "totalShares")
	if err != nil {
		return nil, err
	}
	return &SellShares{
		Payer:          payer,
		To:             to,
		DecreaseShares: evmabi.DecimalString(decrease),
		TotalShares:    evmabi.DecimalString(total),
	}, nil
}
