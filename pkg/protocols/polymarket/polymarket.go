// Package polymarket decodes Polymarket CTF Exchange events. Outcome
// tokens are ERC-1155 positions, so token ids are uint256 values rather
// than contract addresses.
package polymarket

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "polymarket"

type TokenRegistered struct {
	Token0      string
	Token1      string
	ConditionId []byte
}

type OrderFilled struct {
	OrderHash         []byte
	Maker             []byte
	Taker             []byte
	MakerAssetId      string
	TakerAssetId      string
	MakerAmountFilled string
	TakerAmountFilled string
	Fee               string
}

type OrdersMatched struct {
	TakerOrderHash    []byte
	TakerOrderMaker   []byte
	MakerAssetId      string
	TakerAssetId      string
	MakerAmountFilled string
	TakerAmountFilled string
}

var (
	tokenRegisteredEvent = evmabi.MustEvent("TokenRegistered",
		evmabi.Field{Name: "token0", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "token1", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "conditionId", Type: "bytes32", Indexed: true},
	)
	orderFilledEvent = evmabi.MustEvent("OrderFilled",
		evmabi.Field{Name: "orderHash", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "maker", Type: "address", Indexed: true},
		evmabi.Field{Name: "taker", Type: "address", Indexed: true},
		evmabi.Field{Name: "makerAssetId", Type: "uint256"},
		evmabi.Field{Name: "takerAssetId", Type: "uint256"},
		evmabi.Field{Name: "makerAmountFilled", Type: "uint256"},
		evmabi.Field{Name: "takerAmountFilled", Type: "uint256"},
		evmabi.Field{Name: "fee", Type: "uint256"},
	)
	ordersMatchedEvent = evmabi.MustEvent("OrdersMatched",
		evmabi.Field{Name: "takerOrderHash", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "takerOrderMaker", Type: "address", Indexed: true},
		evmabi.Field{Name: "makerAssetId", Type: "uint256"},
		evmabi.Field{Name: "takerAssetId", Type: "uint256"},
		evmabi.Field{Name: "makerAmountFilled", Type: "uint256"},
		evmabi.Field{Name: "takerAmountFilled", Type: "uint256"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: tokenRegisteredEvent, Decode: decodeTokenRegistered},
	protocols.Handler{Event: orderFilledEvent, Decode: decodeOrderFilled},
	protocols.Handler{Event: ordersMatchedEvent, Decode: decodeOrdersMatched},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeTokenRegistered(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	token0, err := evmabi.AsBig(m, "token0")
	if err != nil {
		return nil, err
	}
	token1, err := evmabi.AsBig(m, "token1")
	if err != nil {
		return nil, err
	}
	conditionId, err := evmabi.AsBytes32(m, "conditionId")
	if err != nil {
		return nil, err
	}
	return &TokenRegistered{
		Token0:      evmabi.DecimalString(token0),
		Token1:      evmabi.DecimalString(token1),
		ConditionId: conditionId,
	}, nil
}

func decodeOrderFilled(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	orderHash, err := evmabi.AsBytes32(m, "orderHash")
	if err != nil {
		return nil, err
	}
	maker, err := evmabi.AsAddress(m, "maker")
	if err != nil {
		return nil, err
	}
	taker, err := evmabi.AsAddress(m, "taker")
	if err != nil {
		return nil, err
	}
	makerAssetId, err := evmabi.AsBig(m, "makerAssetId")
	if err != nil {
		return nil, err
	}
	takerAssetId, err := evmabi.AsBig(m, "takerAssetId")
	if err != nil {
		return nil, err
	}
	makerFilled, err := evmabi.AsBig(m, "makerAmountFilled")
	if err != nil {
		return nil, err
	}
	takerFilled, err := evmabi.AsBig(m, "takerAmountFilled")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	return &OrderFilled{
		OrderHash:         orderHash,
		Maker:             maker,
		Taker:             taker,
		MakerAssetId:      evmabi.DecimalString(makerAssetId),
		TakerAssetId:      evmabi.DecimalString(takerAssetId),
		MakerAmountFilled: evmabi.DecimalString(makerFilled),
		TakerAmountFilled: evmabi.DecimalString(takerFilled),
		Fee:               evmabi.DecimalString(fee),
	}, nil
}

func decodeOrdersMatched(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	takerOrderHash, err := evmabi.AsBytes32(m, "takerOrderHash")
	if err != nil {
		return nil, err
	}
	takerOrderMaker, err := evmabi.AsAddress(m, "takerOrderMaker")
	if err != nil {
		return nil, err
	}
	makerAssetId, err := evmabi.AsBig(m, "makerAssetId")
	if err != nil {
		return nil, err
	}
	takerAssetId, err := evmabi.AsBig(m, "takerAssetId")
	if err != nil {
		return nil, err
	}
	makerFilled, err := evmabi.AsBig(m, "makerAmountFilled")
	if err != nil {
		return nil, err
	}
	takerFilled, err := evmabi.AsBig(m, "takerAmountFilled")
	if err != nil {
		return nil, err
	}
	return &OrdersMatched{
		TakerOrderHash:    takerOrderHash,
		TakerOrderMaker:   takerOrderMaker,
		MakerAssetId:      evmabi.DecimalString(makerAssetId),
		TakerAssetId:      evmabi.DecimalString(takerAssetId),
		MakerAmountFilled: evmabi.DecimalString(makerFilled),
		TakerAmountFilled: evmabi.DecimalString(takerFilled),
	}, nil
}
