// Package cow decodes CoW Protocol (GPv2Settlement) events. Trades settle
// in batches, so a Settlement event closes each solver's batch while Trade
// events carry the per-order amounts.
package cow

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "cow"

type Trade struct {
	Owner      []byte
	SellToken  []byte
	BuyToken   []byte
	SellAmount string
	BuyAmount  string
	FeeAmount  string
	OrderUid   []byte
}

type Settlement struct {
	Solver []byte
}

var (
	tradeEvent = evmabi.MustEvent("Trade",
		evmabi.Field{Name: "owner", Type: "address", Indexed: true},
		evmabi.Field{Name: "sellToken", Type: "address"},
		evmabi.Field{Name: "buyToken", Type: "address"},
		evmabi.Field{Name: "sellAmount", Type: "uint256"},
		evmabi.Field{Name: "buyAmount", Type: "uint256"},
		evmabi.Field{Name: "feeAmount", Type: "uint256"},
		evmabi.Field{Name: "orderUid", Type: "bytes"},
	)
	settlementEvent = evmabi.MustEvent("Settlement",
		evmabi.Field{Name: "solver", Type: "address", Indexed: true},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: tradeEvent, Decode: decodeTrade},
	protocols.Handler{Event: settlementEvent, Decode: decodeSettlement},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeTrade(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
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
	sellAmount, err := evmabi.AsBig(m, "sellAmount")
	if err != nil {
		return nil, err
	}
	buyAmount, err := evmabi.AsBig(m, "buyAmount")
	if err != nil {
		return nil, err
	}
	feeAmount, err := evmabi.AsBig(m, "feeAmount")
	if err != nil {
		return nil, err
	}
	orderUid, err := evmabi.AsBytes(m, "orderUid")
	if err != nil {
		return nil, err
	}
	return &Trade{
		Owner:      owner,
		SellToken:  sellToken,
		BuyToken:   buyToken,
		SellAmount: evmabi.DecimalString(sellAmount),
		BuyAmount:  evmabi.DecimalString(buyAmount),
		FeeAmount:  evmabi.DecimalString(feeAmount),
		OrderUid:   orderUid,
	}, nil
}

func decodeSettlement(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	solver, err := evmabi.AsAddress(m, "solver")
	if err != nil {
		return nil, err
	}
	return &Settlement{Solver: solver}, nil
}
