// Package woofi decodes WOOFi swap pool events.
package woofi

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "woofi"

type WooSwap struct {
	FromToken  []byte
	ToToken    []byte
	FromAmount string
	ToAmount   string
	From       []byte
	To         []byte
	RebateTo   []byte
}

var wooSwapEvent = evmabi.MustEvent("WooSwap",
	evmabi.Field{Name: "fromToken", Type: "address", Indexed: true},
	evmabi.Field{Name: "toToken", Type: "address", Indexed: true},
	evmabi.Field{Name: "fromAmount", Type: "uint256"},
	evmabi.Field{Name: "toAmount", Type: "uint256"},
	evmabi.Field{Name: "from", Type: "address"},
	evmabi.Field{Name: "to", Type: "address", Indexed: true},
	evmabi.Field{Name: "rebateTo", Type: "address"},
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: wooSwapEvent, Decode: decodeWooSwap},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeWooSwap(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
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
	from, err := evmabi.AsAddress(m, "from")
	if err != nil {
		return nil, err
	}
	to, err := evmabi.AsAddress(m, "to")
	if err != nil {
		return nil, err
	}
	rebateTo, err := evmabi.AsAddress(m, "rebateTo")
	if err != nil {
		return nil, err
	}
	return &WooSwap{
		FromToken:  fromToken,
		ToToken:    toToken,
		FromAmount: evmabi.DecimalString(fromAmount),
		ToAmount:   evmabi.DecimalString(toAmount),
		From:       from,
		To:         to,
		RebateTo:   rebateTo,
	}, nil
}
