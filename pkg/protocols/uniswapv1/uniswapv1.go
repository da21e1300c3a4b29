// Package uniswapv1 decodes Uniswap v1 factory and exchange events. The v1
// Vyper contracts index the amount fields, so everything lives in topics.
package uniswapv1

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "uniswap_v1"

type NewExchange struct {
	Token    []byte
	Exchange []byte
}

type TokenPurchase struct {
	Buyer        []byte
	EthSold      string
	TokensBought string
}

type EthPurchase struct {
	Buyer      []byte
	TokensSold string
	EthBought  string
}

type AddLiquidity struct {
	Provider    []byte
	EthAmount   string
	TokenAmount string
}

type RemoveLiquidity struct {
	Provider    []byte
	EthAmount   string
	TokenAmount string
}

var (
	NewExchangeEvent = evmabi.MustEvent("NewExchange",
		evmabi.Field{Name: "token", Type: "address", Indexed: true},
		evmabi.Field{Name: "exchange", Type: "address", Indexed: true},
	)
	TokenPurchaseEvent = evmabi.MustEvent("TokenPurchase",
		evmabi.Field{Name: "buyer", Type: "address", Indexed: true},
		evmabi.Field{Name: "eth_sold", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "tokens_bought", Type: "uint256", Indexed: true},
	)
	EthPurchaseEvent = evmabi.MustEvent("EthPurchase",
		evmabi.Field{Name: "buyer", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokens_sold", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "eth_bought", Type: "uint256", Indexed: true},
	)
	AddLiquidityEvent = evmabi.MustEvent("AddLiquidity",
		evmabi.Field{Name: "provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "eth_amount", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "token_amount", Type: "uint256", Indexed: true},
	)
	RemoveLiquidityEvent = evmabi.MustEvent("RemoveLiquidity",
		evmabi.Field{Name: "provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "eth_amount", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "token_amount", Type: "uint256", Indexed: true},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: NewExchangeEvent, Decode: decodeNewExchange},
	protocols.Handler{Event: TokenPurchaseEvent, Decode: decodeTokenPurchase},
	protocols.Handler{Event: EthPurchaseEvent, Decode: decodeEthPurchase},
	protocols.Handler{Event: AddLiquidityEvent, Decode: decodeAddLiquidity},
	protocols.Handler{Event: RemoveLiquidityEvent, Decode: decodeRemoveLiquidity},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeNewExchange(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	token, err := evmabi.AsAddress(m, "token")
	if err != nil {
		return nil, err
	}
	exchange, err := evmabi.AsAddress(m, "exchange")
	if err != nil {
		return nil, err
	}
	return &NewExchange{Token: token, Exchange: exchange}, nil
}

func decodeTokenPurchase(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	buyer, err := evmabi.AsAddress(m, "buyer")
	if err != nil {
		return nil, err
	}
	ethSold, err := evmabi.AsBig(m, "eth_sold")
	if err != nil {
		return nil, err
	}
	tokensBought, err := evmabi.AsBig(m, "tokens_bought")
	if err != nil {
		return nil, err
	}
	return &TokenPurchase{
		Buyer:        buyer,
		EthSold:      evmabi.DecimalString(ethSold),
		TokensBought: evmabi.DecimalString(tokensBought),
	}, nil
}

func decodeEthPurchase(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	buyer, err := evmabi.AsAddress(m, "buyer")
	if err != nil {
		return nil, err
	}
	tokensSold, err := evmabi.AsBig(m, "tokens_sold")
	if err != nil {
		return nil, err
	}
	ethBought, err := evmabi.AsBig(m, "eth_bought")
	if err != nil {
		return nil, err
	}
	return &EthPurchase{
		Buyer:      buyer,
		TokensSold: evmabi.DecimalString(tokensSold),
		EthBought:  evmabi.DecimalString(ethBought),
	}, nil
}

func decodeAddLiquidity(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, err := evmabi.AsAddress(m, "provider")
	if err != nil {
		return nil, err
	}
	ethAmount, err := evmabi.AsBig(m, "eth_amount")
	if err != nil {
		return nil, err
	}
	tokenAmount, err := evmabi.AsBig(m, "token_amount")
	if err != nil {
		return nil, err
	}
	return &AddLiquidity{
		Provider:    provider,
		EthAmount:   evmabi.DecimalString(ethAmount),
		TokenAmount: evmabi.DecimalString(tokenAmount),
	}, nil
}

func decodeRemoveLiquidity(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, err := evmabi.AsAddress(m, "provider")
	if err != nil {
		return nil, err
	}
	ethAmount, err := evmabi.AsBig(m, "eth_amount")
	if err != nil {
		return nil, err
	}
	tokenAmount, err := evmabi.AsBig(m, "token_amount")
	if err != nil {
		return nil, err
	}
	return &RemoveLiquidity{
		Provider:    provider,
		EthAmount:   evmabi.DecimalString(ethAmount),
		TokenAmount: evmabi.DecimalString(tokenAmount),
	}, nil
}
