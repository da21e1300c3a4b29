// Package sunswap decodes SunSwap exchange and SunPump launchpad events on
// Tron. SunSwap v1 clones the Uniswap v1 exchange with TRX in place of
// ether; SunPump adds bonding-curve token launches.
package sunswap

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "sunswap"

type NewExchange struct {
	Token    []byte
	Exchange []byte
}

type TokenPurchase struct {
	Buyer        []byte
	TrxSold      string
	TokensBought string
}

type TrxPurchase struct {
	Buyer      []byte
	TokensSold string
	TrxBought  string
}

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

type Snapshot struct {
	Operator     []byte
	TrxBalance   string
	TokenBalance string
}

type TokenCreate struct {
	TokenAddress []byte
	TokenIndex   string
	Creator      []byte
}

type TokenPurchased struct {
	Token        []byte
	Buyer        []byte
	TrxAmount    string
	Fee          string
	TokenAmount  string
	TokenReserve string
}

type TokenSold struct {
	Token       []byte
	Seller      []byte
	TrxAmount   string
	Fee         string
	TokenAmount string
}

type LaunchPending struct {
	Token []byte
}

var (
	newExchangeEvent = evmabi.MustEvent("NewExchange",
		evmabi.Field{Name: "token", Type: "address", Indexed: true},
		evmabi.Field{Name: "exchange", Type: "address", Indexed: true},
	)
	tokenPurchaseEvent = evmabi.MustEvent("TokenPurchase",
		evmabi.Field{Name: "buyer", Type: "address", Indexed: true},
		evmabi.Field{Name: "trx_sold", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "tokens_bought", Type: "uint256", Indexed: true},
	)
	trxPurchaseEvent = evmabi.MustEvent("TrxPurchase",
		evmabi.Field{Name: "buyer", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokens_sold", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "trx_bought", Type: "uint256", Indexed: true},
	)
	pairCreatedEvent = evmabi.MustEvent("PairCreated",
		evmabi.Field{Name: "token0", Type: "address", Indexed: true},
		evmabi.Field{Name: "token1", Type: "address", Indexed: true},
		evmabi.Field{Name: "pair", Type: "address"},
		evmabi.Field{Name: "pairIndex", Type: "uint256"},
	)
	swapEvent = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "sender", Type: "address", Indexed: true},
		evmabi.Field{Name: "amount0In", Type: "uint256"},
		evmabi.Field{Name: "amount1In", Type: "uint256"},
		evmabi.Field{Name: "amount0Out", Type: "uint256"},
		evmabi.Field{Name: "amount1Out", Type: "uint256"},
		evmabi.Field{Name: "to", Type: "address", Indexed: true},
	)
	snapshotEvent = evmabi.MustEvent("Snapshot",
		evmabi.Field{Name: "operator", Type: "address", Indexed: true},
		evmabi.Field{Name: "trx_balance", Type: "uint256", Indexed: true},
		evmabi.Field{Name: "token_balance", Type: "uint256", Indexed: true},
	)
	tokenCreateEvent = evmabi.MustEvent("TokenCreate",
		evmabi.Field{Name: "tokenAddress", Type: "address"},
		evmabi.Field{Name: "tokenIndex", Type: "uint256"},
		evmabi.Field{Name: "creator", Type: "address"},
	)
	tokenPurchasedEvent = evmabi.MustEvent("TokenPurchased",
		evmabi.Field{Name: "token", Type: "address", Indexed: true},
		evmabi.Field{Name: "buyer", Type: "address", Indexed: true},
		evmabi.Field{Name: "trxAmount", Type: "uint256"},
		evmabi.Field{Name: "fee", Type: "uint256"},
		evmabi.Field{Name: "tokenAmount", Type: "uint256"},
		evmabi.Field{Name: "tokenReserve", Type: "uint256"},
	)
	tokenSoldEvent = evmabi.MustEvent("TokenSold",
		evmabi.Field{Name: "token", Type: "address", Indexed: true},
		evmabi.Field{Name: "seller", Type: "address", Indexed: true},
		evmabi.Field{Name: "trxAmount", Type: "uint256"},
		evmabi.Field{Name: "fee", Type: "uint256"},
		evmabi.Field{Name: "tokenAmount", Type: "uint256"},
	)
	launchPendingEvent = evmabi.MustEvent("LaunchPending",
		evmabi.Field{Name: "token", Type: "address", Indexed: true},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: newExchangeEvent, Decode: decodeNewExchange},
	protocols.Handler{Event: tokenPurchaseEvent, Decode: decodeTokenPurchase},
	protocols.Handler{Event: trxPurchaseEvent, Decode: decodeTrxPurchase},
	protocols.Handler{Event: pairCreatedEvent, Decode: decodePairCreated},
	protocols.Handler{Event: swapEvent, Decode: decodeSwap},
	protocols.Handler{Event: snapshotEvent, Decode: decodeSnapshot},
	protocols.Handler{Event: tokenCreateEvent, Decode: decodeTokenCreate},
	protocols.Handler{Event: tokenPurchasedEvent, Decode: decodeTokenPurchased},
	protocols.Handler{Event: tokenSoldEvent, Decode: decodeTokenSold},
	protocols.Handler{Event: launchPendingEvent, Decode: decodeLaunchPending},
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
	trxSold, err := evmabi.AsBig(m, "trx_sold")
	if err != nil {
		return nil, err
	}
	tokensBought, err := evmabi.AsBig(m, "tokens_bought")
	if err != nil {
		return nil, err
	}
	return &TokenPurchase{
		Buyer:        buyer,
		TrxSold:      evmabi.DecimalString(trxSold),
		TokensBought: evmabi.DecimalString(tokensBought),
	}, nil
}

func decodeTrxPurchase(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	buyer, err := evmabi.AsAddress(m, "buyer")
	if err != nil {
		return nil, err
	}
	tokensSold, err := evmabi.AsBig(m, "tokens_sold")
	if err != nil {
		return nil, err
	}
	trxBought, err := evmabi.AsBig(m, "trx_bought")
	if err != nil {
		return nil, err
	}
	return &TrxPurchase{
		Buyer:      buyer,
		TokensSold: evmabi.DecimalString(tokensSold),
		TrxBought:  evmabi.DecimalString(trxBought),
	}, nil
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

func decodeSnapshot(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	operator, err := evmabi.AsAddress(m, "operator")
	if err != nil {
		return nil, err
	}
	trxBalance, err := evmabi.AsBig(m, "trx_balance")
	if err != nil {
		return nil, err
	}
	tokenBalance, err := evmabi.AsBig(m, "token_balance")
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Operator:     operator,
		TrxBalance:   evmabi.DecimalString(trxBalance),
		TokenBalance: evmabi.DecimalString(tokenBalance),
	}, nil
}

func decodeTokenCreate(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	tokenAddress, err := evmabi.AsAddress(m, "tokenAddress")
	if err != nil {
		return nil, err
	}
	tokenIndex, err := evmabi.AsBig(m, "tokenIndex")
	if err != nil {
		return nil, err
	}
	creator, err := evmabi.AsAddress(m, "creator")
	if err != nil {
		return nil, err
	}
	return &TokenCreate{
		TokenAddress: tokenAddress,
		TokenIndex:   evmabi.DecimalString(tokenIndex),
		Creator:      creator,
	}, nil
}

func decodeTokenPurchased(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	token, err := evmabi.AsAddress(m, "token")
	if err != nil {
		return nil, err
	}
	buyer, err := evmabi.AsAddress(m, "buyer")
	if err != nil {
		return nil, err
	}
	trxAmount, err := evmabi.AsBig(m, "trxAmount")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	tokenAmount, err := evmabi.AsBig(m, "tokenAmount")
	if err != nil {
		return nil, err
	}
	tokenReserve, err := evmabi.AsBig(m, "tokenReserve")
	if err != nil {
		return nil, err
	}
	return &TokenPurchased{
		Token:        token,
		Buyer:        buyer,
		TrxAmount:    evmabi.DecimalString(trxAmount),
		Fee:          evmabi.DecimalString(fee),
		TokenAmount:  evmabi.DecimalString(tokenAmount),
		TokenReserve: evmabi.DecimalString(tokenReserve),
	}, nil
}

func decodeTokenSold(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	token, err := evmabi.AsAddress(m, "token")
	if err != nil {
		return nil, err
	}
	seller, err := evmabi.AsAddress(m, "seller")
	if err != nil {
		return nil, err
	}
	trxAmount, err := evmabi.AsBig(m, "trxAmount")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	tokenAmount, err := evmabi.AsBig(m, "tokenAmount")
	if err != nil {
		return nil, err
	}
	return &TokenSold{
		Token:       token,
		Seller:      seller,
		TrxAmount:   evmabi.DecimalString(trxAmount),
		Fee:         evmabi.DecimalString(fee),
		TokenAmount: evmabi.DecimalString(tokenAmount),
	}, nil
}

func decodeLaunchPending(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	token, err := evmabi.AsAddress(m, "token")
	if err != nil {
		return nil, err
	}
	return &LaunchPending{Token: token}, nil
}
