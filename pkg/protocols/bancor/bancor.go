// Package bancor decodes Bancor converter registry and converter events.
package bancor

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "bancor"

type NewConverter struct {
	ConverterType uint64
	Converter     []byte
	Owner         []byte
}

type FeaturesAddition struct {
	Address  []byte
	Features string
}

type Conversion struct {
	FromToken    []byte
	ToToken      []byte
	Trader       []byte
	Amount       string
	Return       string
	ConversionFee string
}

type LiquidityAdded struct {
	Provider     []byte
	ReserveToken []byte
	Amount       string
	NewBalance   string
	NewSupply    string
}

type LiquidityRemoved struct {
	Provider     []byte
	ReserveToken []byte
	Amount       string
	NewBalance   string
	NewSupply    string
}

var (
	newConverterEvent = evmabi.MustEvent("NewConverter",
		evmabi.Field{Name: "_type", Type: "uint16", Indexed: true},
		evmabi.Field{Name: "_converter", Type: "address", Indexed: true},
		evmabi.Field{Name: "_owner", Type: "address", Indexed: true},
	)
	featuresAdditionEvent = evmabi.MustEvent("FeaturesAddition",
		evmabi.Field{Name: "_address", Type: "address", Indexed: true},
		evmabi.Field{Name: "_features", Type: "uint256"},
	)
	conversionEvent = evmabi.MustEvent("Conversion",
		evmabi.Field{Name: "_fromToken", Type: "address", Indexed: true},
		evmabi.Field{Name: "_toToken", Type: "address", Indexed: true},
		evmabi.Field{Name: "_trader", Type: "address", Indexed: true},
		evmabi.Field{Name: "_amount", Type: "uint256"},
		evmabi.Field{Name: "_return", Type: "uint256"},
		evmabi.Field{Name: "_conversionFee", Type: "int256"},
	)
	liquidityAddedEvent = evmabi.MustEvent("LiquidityAdded",
		evmabi.Field{Name: "_provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "_reserveToken", Type: "address", Indexed: true},
		evmabi.Field{Name: "_amount", Type: "uint256"},
		evmabi.Field{Name: "_newBalance", Type: "uint256"},
		evmabi.Field{Name: "_newSupply", Type: "uint256"},
	)
	liquidityRemovedEvent = evmabi.MustEvent("LiquidityRemoved",
		evmabi.Field{Name: "_provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "_reserveToken", Type: "address", Indexed: true},
		evmabi.Field{Name: "_amount", Type: "uint256"},
		evmabi.Field{Name: "_newBalance", Type: "uint256"},
		evmabi.Field{Name: "_newSupply", Type: "uint256"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: newConverterEvent, Decode: decodeNewConverter},
	protocols.Handler{Event: featuresAdditionEvent, Decode: decodeFeaturesAddition},
	protocols.Handler{Event: conversionEvent, Decode: decodeConversion},
	protocols.Handler{Event: liquidityAddedEvent, Decode: decodeLiquidityAdded},
	protocols.Handler{Event: liquidityRemovedEvent, Decode: decodeLiquidityRemoved},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeNewConverter(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	converterType, err := evmabi.AsBig(m, "_type")
	if err != nil {
		return nil, err
	}
	converter, err := evmabi.AsAddress(m, "_converter")
	if err != nil {
		return nil, err
	}
	owner, err := evmabi.AsAddress(m, "_owner")
	if err != nil {
		return nil, err
	}
	return &NewConverter{
		ConverterType: ctx.U64("_type", converterType),
		Converter:     converter,
		Owner:         owner,
	}, nil
}

func decodeFeaturesAddition(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	address, err := evmabi.AsAddress(m, "_address")
	if err != nil {
		return nil, err
	}
	features, err := evmabi.AsBig(m, "_features")
	if err != nil {
		return nil, err
	}
	return &FeaturesAddition{Address: address, Features: evmabi.DecimalString(features)}, nil
}

func decodeConversion(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	fromToken, err := evmabi.AsAddress(m, "_fromToken")
	if err != nil {
		return nil, err
	}
	toToken, err := evmabi.AsAddress(m, "_toToken")
	if err != nil {
		return nil, err
	}
	trader, err := evmabi.AsAddress(m, "_trader")
	if err != nil {
		return nil, err
	}
	amount, err := evmabi.AsBig(m, "_amount")
	if err != nil {
		return nil, err
	}
	ret, err := evmabi.AsBig(m, "_return")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "_conversionFee")
	if err != nil {
		return nil, err
	}
	return &Conversion{
		FromToken:     fromToken,
		ToToken:       toToken,
		Trader:        trader,
		Amount:        evmabi.DecimalString(amount),
		Return:        evmabi.DecimalString(ret),
		ConversionFee: evmabi.DecimalString(fee),
	}, nil
}

func decodeLiquidityAdded(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, reserve, amount, newBalance, newSupply, err := decodeLiquidityCommon(m)
	if err != nil {
		return nil, err
	}
	return &LiquidityAdded{
		Provider:     provider,
		ReserveToken: reserve,
		Amount:       amount,
		NewBalance:   newBalance,
		NewSupply:    newSupply,
	}, nil
}

func decodeLiquidityRemoved(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, reserve, amount, newBalance, newSupply, err := decodeLiquidityCommon(m)
	if err != nil {
		return nil, err
	}
	return &LiquidityRemoved{
		Provider:     provider,
		ReserveToken: reserve,
		Amount:       amount,
		NewBalance:   newBalance,
		NewSupply:    newSupply,
	}, nil
}

func decodeLiquidityCommon(m map[string]interface{}) ([]byte, []byte, string, string, string, error) {
	provider, err := evmabi.AsAddress(m, "_provider")
	if err != nil {
		return nil, nil, "", "", "", err
	}
	reserve, err := evmabi.AsAddress(m, "_reserveToken")
	if err != nil {
		return nil, nil, "", "", "", err
	}
	amount, err := evmabi.AsBig(m, "_amount")
	if err != nil {
		return nil, nil, "", "", "", err
	}
	newBalance, err := evmabi.AsBig(m, "_newBalance")
	if err != nil {
		return nil, nil, "", "", "", err
	}
	newSupply, err := evmabi.AsBig(m, "_newSupply")
	if err != nil {
		return nil, nil, "", "", "", err
	}
	return provider, reserve, evmabi.DecimalString(amount),
		evmabi.DecimalString(newBalance), evmabi.DecimalString(newSupply), nil
}
