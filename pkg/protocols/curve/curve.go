// Package curve decodes Curve StableSwap pool and factory events. Pool
// contracts are Vyper and emit fixed-size coin arrays, so the liquidity
// events come in 2, 3 and 4 coin variants with distinct signatures that
// all decode into the same payloads.
package curve

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"
)

const ProtocolName = "curve"

type TokenExchange struct {
	Buyer        []byte
	SoldId       string
	TokensSold   string
	BoughtId     string
	TokensBought string
	Underlying   bool
}

type AddLiquidity struct {
	Provider     []byte
	TokenAmounts []string
	Fees         []string
	Invariant    string
	TokenSupply  string
}

type RemoveLiquidity struct {
	Provider     []byte
	TokenAmounts []string
	Fees         []string
	TokenSupply  string
}

type RemoveLiquidityImbalance struct {
	Provider     []byte
	TokenAmounts []string
	Fees         []string
	Invariant    string
	TokenSupply  string
}

type RemoveLiquidityOne struct {
	Provider    []byte
	TokenAmount string
	CoinAmount  string
}

type PlainPoolDeployed struct {
	Coins    [][]byte
	A        string
	Fee      string
	Deployer []byte
}

type MetaPoolDeployed struct {
	Coin     []byte
	BasePool []byte
	A        string
	Fee      string
	Deployer []byte
}

var (
	tokenExchangeEvent = evmabi.MustEvent("TokenExchange",
		evmabi.Field{Name: "buyer", Type: "address", Indexed: true},
		evmabi.Field{Name: "sold_id", Type: "int128"},
		evmabi.Field{Name: "tokens_sold", Type: "uint256"},
		evmabi.Field{Name: "bought_id", Type: "int128"},
		evmabi.Field{Name: "tokens_bought", Type: "uint256"},
	)
	tokenExchangeUnderlyingEvent = evmabi.MustEvent("TokenExchangeUnderlying",
		evmabi.Field{Name: "buyer", Type: "address", Indexed: true},
		evmabi.Field{Name: "sold_id", Type: "int128"},
		evmabi.Field{Name: "tokens_sold", Type: "uint256"},
		evmabi.Field{Name: "bought_id", Type: "int128"},
		evmabi.Field{Name: "tokens_bought", Type: "uint256"},
	)

	addLiquidity2Event = addLiquidityEvent(2)
	addLiquidity3Event = addLiquidityEvent(3)
	addLiquidity4Event = addLiquidityEvent(4)

	removeLiquidity2Event = removeLiquidityEvent(2)
	removeLiquidity3Event = removeLiquidityEvent(3)
	removeLiquidity4Event = removeLiquidityEvent(4)

	removeLiquidityImbalance2Event = removeLiquidityImbalanceEvent(2)
	removeLiquidityImbalance3Event = removeLiquidityImbalanceEvent(3)
	removeLiquidityImbalance4Event = removeLiquidityImbalanceEvent(4)

	removeLiquidityOneEvent = evmabi.MustEvent("RemoveLiquidityOne",
		evmabi.Field{Name: "provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "token_amount", Type: "uint256"},
		evmabi.Field{Name: "coin_amount", Type: "uint256"},
	)

	plainPoolDeployedEvent = evmabi.MustEvent("PlainPoolDeployed",
		evmabi.Field{Name: "coins", Type: "address[4]"},
		evmabi.Field{Name: "A", Type: "uint256"},
		evmabi.Field{Name: "fee", Type: "uint256"},
		evmabi.Field{Name: "deployer", Type: "address"},
	)
	metaPoolDeployedEvent = evmabi.MustEvent("MetaPoolDeployed",
		evmabi.Field{Name: "coin", Type: "address"},
		evmabi.Field{Name: "base_pool", Type: "address"},
		evmabi.Field{Name: "A", Type: "uint256"},
		evmabi.Field{Name: "fee", Type: "uint256"},
		evmabi.Field{Name: "deployer", Type: "address"},
	)
)

func addLiquidityEvent(coins int) *evmabi.Event {
	return evmabi.MustEvent("AddLiquidity",
		evmabi.Field{Name: "provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "token_amounts", Type: fixedUintArray(coins)},
		evmabi.Field{Name: "fees", Type: fixedUintArray(coins)},
		evmabi.Field{Name: "invariant", Type: "uint256"},
		evmabi.Field{Name: "token_supply", Type: "uint256"},
	)
}

func removeLiquidityEvent(coins int) *evmabi.Event {
	return evmabi.MustEvent("RemoveLiquidity",
		evmabi.Field{Name: "provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "token_amounts", Type: fixedUintArray(coins)},
		evmabi.Field{Name: "fees", Type: fixedUintArray(coins)},
		evmabi.Field{Name: "token_supply", Type: "uint256"},
	)
}

func removeLiquidityImbalanceEvent(coins int) *evmabi.Event {
	return evmabi.MustEvent("RemoveLiquidityImbalance",
		evmabi.Field{Name: "provider", Type: "address", Indexed: true},
		evmabi.Field{Name: "token_amounts", Type: fixedUintArray(coins)},
		evmabi.Field{Name: "fees", Type: fixedUintArray(coins)},
		evmabi.Field{Name: "invariant", Type: "uint256"},
		evmabi.Field{Name: "token_supply", Type: "uint256"},
	)
}

func fixedUintArray(n int) string {
	switch n {
	case 2:
		return "uint256[2]"
	case 3:
		return "uint256[3]"
	default:
		return "uint256[4]"
	}
}

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: tokenExchangeEvent, Decode: decodeTokenExchange(false)},
	protocols.Handler{Event: tokenExchangeUnderlyingEvent, Decode: decodeTokenExchange(true)},
	protocols.Handler{Event: addLiquidity2Event, Decode: decodeAddLiquidity},
	protocols.Handler{Event: addLiquidity3Event, Decode: decodeAddLiquidity},
	protocols.Handler{Event: addLiquidity4Event, Decode: decodeAddLiquidity},
	protocols.Handler{Event: removeLiquidity2Event, Decode: decodeRemoveLiquidity},
	protocols.Handler{Event: removeLiquidity3Event, Decode: decodeRemoveLiquidity},
	protocols.Handler{Event: removeLiquidity4Event, Decode: decodeRemoveLiquidity},
	protocols.Handler{Event: removeLiquidityImbalance2Event, Decode: decodeRemoveLiquidityImbalance},
	protocols.Handler{Event: removeLiquidityImbalance3Event, Decode: decodeRemoveLiquidityImbalance},
	protocols.Handler{Event: removeLiquidityImbalance4Event, Decode: decodeRemoveLiquidityImbalance},
	protocols.Handler{Event: removeLiquidityOneEvent, Decode: decodeRemoveLiquidityOne},
	protocols.Handler{Event: plainPoolDeployedEvent, Decode: decodePlainPoolDeployed},
	protocols.Handler{Event: metaPoolDeployedEvent, Decode: decodeMetaPoolDeployed},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeTokenExchange(underlying bool) protocols.DecodeFunc {
	return func(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
		buyer, err := evmabi.AsAddress(m, "buyer")
		if err != nil {
			return nil, err
		}
		soldId, err := evmabi.AsBig(m, "sold_id")
		if err != nil {
			return nil, err
		}
		tokensSold, err := evmabi.AsBig(m, "tokens_sold")
		if err != nil {
			return nil, err
		}
		boughtId, err := evmabi.AsBig(m, "bought_id")
		if err != nil {
			return nil, err
		}
		tokensBought, err := evmabi.AsBig(m, "tokens_bought")
		if err != nil {
			return nil, err
		}
		return &TokenExchange{
			Buyer:        buyer,
			SoldId:       evmabi.DecimalString(soldId),
			TokensSold:   evmabi.DecimalString(tokensSold),
			BoughtId:     evmabi.DecimalString(boughtId),
			TokensBought: evmabi.DecimalString(tokensBought),
			Underlying:   underlying,
		}, nil
	}
}

func decodeAddLiquidity(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, err := evmabi.AsAddress(m, "provider")
	if err != nil {
		return nil, err
	}
	amounts, err := evmabi.AsBigSlice(m, "token_amounts")
	if err != nil {
		return nil, err
	}
	fees, err := evmabi.AsBigSlice(m, "fees")
	if err != nil {
		return nil, err
	}
	invariant, err := evmabi.AsBig(m, "invariant")
	if err != nil {
		return nil, err
	}
	supply, err := evmabi.AsBig(m, "token_supply")
	if err != nil {
		return nil, err
	}
	return &AddLiquidity{
		Provider:     provider,
		TokenAmounts: evmabi.DecimalStrings(amounts),
		Fees:         evmabi.DecimalStrings(fees),
		Invariant:    evmabi.DecimalString(invariant),
		TokenSupply:  evmabi.DecimalString(supply),
	}, nil
}

func decodeRemoveLiquidity(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, err := evmabi.AsAddress(m, "provider")
	if err != nil {
		return nil, err
	}
	amounts, err := evmabi.AsBigSlice(m, "token_amounts")
	if err != nil {
		return nil, err
	}
	fees, err := evmabi.AsBigSlice(m, "fees")
	if err != nil {
		return nil, err
	}
	supply, err := evmabi.AsBig(m, "token_supply")
	if err != nil {
		return nil, err
	}
	return &RemoveLiquidity{
		Provider:     provider,
		TokenAmounts: evmabi.DecimalStrings(amounts),
		Fees:         evmabi.DecimalStrings(fees),
		TokenSupply:  evmabi.DecimalString(supply),
	}, nil
}

func decodeRemoveLiquidityImbalance(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, err := evmabi.AsAddress(m, "provider")
	if err != nil {
		return nil, err
	}
	amounts, err := evmabi.AsBigSlice(m, "token_amounts")
	if err != nil {
		return nil, err
	}
	fees, err := evmabi.AsBigSlice(m, "fees")
	if err != nil {
		return nil, err
	}
	invariant, err := evmabi.AsBig(m, "invariant")
	if err != nil {
		return nil, err
	}
	supply, err := evmabi.AsBig(m, "token_supply")
	if err != nil {
		return nil, err
	}
	return &RemoveLiquidityImbalance{
		Provider:     provider,
		TokenAmounts: evmabi.DecimalStrings(amounts),
		Fees:         evmabi.DecimalStrings(fees),
		Invariant:    evmabi.DecimalString(invariant),
		TokenSupply:  evmabi.DecimalString(supply),
	}, nil
}

func decodeRemoveLiquidityOne(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	provider, err := evmabi.AsAddress(m, "provider")
	if err != nil {
		return nil, err
	}
	tokenAmount, err := evmabi.AsBig(m, "token_amount")
	if err != nil {
		return nil, err
	}
	coinAmount, err := evmabi.AsBig(m, "coin_amount")
	if err != nil {
		return nil, err
	}
	return &RemoveLiquidityOne{
		Provider:    provider,
		TokenAmount: evmabi.DecimalString(tokenAmount),
		CoinAmount:  evmabi.DecimalString(coinAmount),
	}, nil
}

// PlainPoolDeployed does not carry the pool address. The store watcher
// recovers it from the receipt's created contract instead.
func decodePlainPoolDeployed(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	coins, err := evmabi.AsAddressSlice(m, "coins")
	if err != nil {
		return nil, err
	}
	a, err := evmabi.AsBig(m, "A")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	deployer, err := evmabi.AsAddress(m, "deployer")
	if err != nil {
		return nil, err
	}
	return &PlainPoolDeployed{
		Coins:    coins,
		A:        evmabi.DecimalString(a),
		Fee:      evmabi.DecimalString(fee),
		Deployer: deployer,
	}, nil
}

func decodeMetaPoolDeployed(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	coin, err := evmabi.AsAddress(m, "coin")
	if err != nil {
		return nil, err
	}
	basePool, err := evmabi.AsAddress(m, "base_pool")
	if err != nil {
		return nil, err
	}
	a, err := evmabi.AsBig(m, "A")
	if err != nil {
		return nil, err
	}
	fee, err := evmabi.AsBig(m, "fee")
	if err != nil {
		return nil, err
	}
	deployer, err := evmabi.AsAddress(m, "deployer")
	if err != nil {
		return nil, err
	}
	return &MetaPoolDeployed{
		Coin:     coin,
		BasePool: basePool,
		A:        evmabi.DecimalString(a),
		Fee:      evmabi.DecimalString(fee),
		Deployer: deployer,
	}, nil
}
