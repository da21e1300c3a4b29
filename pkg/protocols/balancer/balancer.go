// Package balancer decodes Balancer v2 Vault and v3 Vault events. The v2
// Vault routes every pool through one contract keyed by a 32-byte pool id;
// v3 returns to addressable pools but registers them through the Vault.
package balancer

import (
	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/evmabi"
	"github.com/tracelake/evmetl/pkg/protocols"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const ProtocolName = "balancer"

type SwapV2 struct {
	PoolId    []byte
	TokenIn   []byte
	TokenOut  []byte
	AmountIn  string
	AmountOut string
}

type PoolBalanceChanged struct {
	PoolId          []byte
	LiquidityProvider []byte
	Tokens          [][]byte
	Deltas          []string
	ProtocolFees    []string
}

type PoolRegisteredV2 struct {
	PoolId             []byte
	PoolAddress        []byte
	Specialization     uint64
}

type TokenConfig struct {
	Token         []byte
	TokenType     uint8
	RateProvider  []byte
	PaysYieldFees bool
}

type PoolRegisteredV3 struct {
	Pool                    []byte
	Factory                 []byte
	Tokens                  []TokenConfig
	SwapFeePercentage       string
	PauseWindowEndTime      uint64
	ProtocolFeeExempt       bool
	PauseManager            []byte
	SwapFeeManager          []byte
	PoolCreator             []byte
	DisableUnbalancedLiquidity bool
	EnableAddLiquidityCustom   bool
	EnableRemoveLiquidityCustom bool
	EnableDonation              bool
}

type SwapV3 struct {
	Pool              []byte
	TokenIn           []byte
	TokenOut          []byte
	AmountIn          string
	AmountOut         string
	SwapFeePercentage string
	SwapFeeAmount     string
}

type LiquidityAdded struct {
	Pool             []byte
	LiquidityProvider []byte
	Kind             uint8
	TotalSupply      string
	AmountsAddedRaw  []string
	SwapFeeAmountsRaw []string
}

type LiquidityRemoved struct {
	Pool              []byte
	LiquidityProvider []byte
	Kind              uint8
	TotalSupply       string
	AmountsRemovedRaw []string
	SwapFeeAmountsRaw []string
}

var (
	swapV2Event = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "poolId", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "tokenIn", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokenOut", Type: "address", Indexed: true},
		evmabi.Field{Name: "amountIn", Type: "uint256"},
		evmabi.Field{Name: "amountOut", Type: "uint256"},
	)
	poolBalanceChangedEvent = evmabi.MustEvent("PoolBalanceChanged",
		evmabi.Field{Name: "poolId", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "liquidityProvider", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokens", Type: "address[]"},
		evmabi.Field{Name: "deltas", Type: "int256[]"},
		evmabi.Field{Name: "protocolFeeAmounts", Type: "uint256[]"},
	)
	poolRegisteredV2Event = evmabi.MustEvent("PoolRegistered",
		evmabi.Field{Name: "poolId", Type: "bytes32", Indexed: true},
		evmabi.Field{Name: "poolAddress", Type: "address", Indexed: true},
		evmabi.Field{Name: "specialization", Type: "uint8"},
	)

	poolRegisteredV3Event = evmabi.MustEvent("PoolRegistered",
		evmabi.Field{Name: "pool", Type: "address", Indexed: true},
		evmabi.Field{Name: "factory", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokenConfig", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "token", Type: "address"},
			{Name: "tokenType", Type: "uint8"},
			{Name: "rateProvider", Type: "address"},
			{Name: "paysYieldFees", Type: "bool"},
		}},
		evmabi.Field{Name: "swapFeePercentage", Type: "uint256"},
		evmabi.Field{Name: "pauseWindowEndTime", Type: "uint32"},
		evmabi.Field{Name: "protocolFeeExempt", Type: "bool"},
		evmabi.Field{Name: "roleAccounts", Type: "tuple", Components: []abi.ArgumentMarshaling{
			{Name: "pauseManager", Type: "address"},
			{Name: "swapFeeManager", Type: "address"},
			{Name: "poolCreator", Type: "address"},
		}},
		evmabi.Field{Name: "liquidityManagement", Type: "tuple", Components: []abi.ArgumentMarshaling{
			{Name: "disableUnbalancedLiquidity", Type: "bool"},
			{Name: "enableAddLiquidityCustom", Type: "bool"},
			{Name: "enableRemoveLiquidityCustom", Type: "bool"},
			{Name: "enableDonation", Type: "bool"},
		}},
	)
	swapV3Event = evmabi.MustEvent("Swap",
		evmabi.Field{Name: "pool", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokenIn", Type: "address", Indexed: true},
		evmabi.Field{Name: "tokenOut", Type: "address", Indexed: true},
		evmabi.Field{Name: "amountIn", Type: "uint256"},
		evmabi.Field{Name: "amountOut", Type: "uint256"},
		evmabi.Field{Name: "swapFeePercentage", Type: "uint256"},
		evmabi.Field{Name: "swapFeeAmount", Type: "uint256"},
	)
	liquidityAddedEvent = evmabi.MustEvent("LiquidityAdded",
		evmabi.Field{Name: "pool", Type: "address", Indexed: true},
		evmabi.Field{Name: "liquidityProvider", Type: "address", Indexed: true},
		evmabi.Field{Name: "kind", Type: "uint8", Indexed: true},
		evmabi.Field{Name: "totalSupply", Type: "uint256"},
		evmabi.Field{Name: "amountsAddedRaw", Type: "uint256[]"},
		evmabi.Field{Name: "swapFeeAmountsRaw", Type: "uint256[]"},
	)
	liquidityRemovedEvent = evmabi.MustEvent("LiquidityRemoved",
		evmabi.Field{Name: "pool", Type: "address", Indexed: true},
		evmabi.Field{Name: "liquidityProvider", Type: "address", Indexed: true},
		evmabi.Field{Name: "kind", Type: "uint8", Indexed: true},
		evmabi.Field{Name: "totalSupply", Type: "uint256"},
		evmabi.Field{Name: "amountsRemovedRaw", Type: "uint256[]"},
		evmabi.Field{Name: "swapFeeAmountsRaw", Type: "uint256[]"},
	)
)

var Registry = protocols.NewRegistry(ProtocolName,
	protocols.Handler{Event: swapV2Event, Decode: decodeSwapV2},
	protocols.Handler{Event: poolBalanceChangedEvent, Decode: decodePoolBalanceChanged},
	protocols.Handler{Event: poolRegisteredV2Event, Decode: decodePoolRegisteredV2},
	protocols.Handler{Event: poolRegisteredV3Event, Decode: decodePoolRegisteredV3},
	protocols.Handler{Event: swapV3Event, Decode: decodeSwapV3},
	protocols.Handler{Event: liquidityAddedEvent, Decode: decodeLiquidityAdded},
	protocols.Handler{Event: liquidityRemovedEvent, Decode: decodeLiquidityRemoved},
)

func Decode(block *chaindata.Block, l *zap.Logger, mc *metrics.MetricsClient) *protocols.Events {
	return Registry.Decode(block, l, mc)
}

func decodeSwapV2(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	poolId, err := evmabi.AsBytes32(m, "poolId")
	if err != nil {
		return nil, err
	}
	tokenIn, err := evmabi.AsAddress(m, "tokenIn")
	if err != nil {
		return nil, err
	}
	tokenOut, err := evmabi.AsAddress(m, "tokenOut")
	if err != nil {
		return nil, err
	}
	amountIn, err := evmabi.AsBig(m, "amountIn")
	if err != nil {
		return nil, err
	}
	amountOut, err := evmabi.AsBig(m, "amountOut")
	if err != nil {
		return nil, err
	}
	return &SwapV2{
		PoolId:    poolId,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  evmabi.DecimalString(amountIn),
		AmountOut: evmabi.DecimalString(amountOut),
	}, nil
}

func decodePoolBalanceChanged(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	poolId, err := evmabi.AsBytes32(m, "poolId")
	if err != nil {
		return nil, err
	}
	provider, err := evmabi.AsAddress(m, "liquidityProvider")
	if err != nil {
		return nil, err
	}
	tokens, err := evmabi.AsAddressSlice(m, "tokens")
	if err != nil {
		return nil, err
	}
	deltas, err := evmabi.AsBigSlice(m, "deltas")
	if err != nil {
		return nil, err
	}
	fees, err := evmabi.AsBigSlice(m, "protocolFeeAmounts")
	if err != nil {
		return nil, err
	}
	return &PoolBalanceChanged{
		PoolId:            poolId,
		LiquidityProvider: provider,
		Tokens:            tokens,
		Deltas:            evmabi.DecimalStrings(deltas),
		ProtocolFees:      evmabi.DecimalStrings(fees),
	}, nil
}

func decodePoolRegisteredV2(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	poolId, err := evmabi.AsBytes32(m, "poolId")
	if err != nil {
		return nil, err
	}
	poolAddress, err := evmabi.AsAddress(m, "poolAddress")
	if err != nil {
		return nil, err
	}
	specialization, err := evmabi.AsBig(m, "specialization")
	if err != nil {
		return nil, err
	}
	return &PoolRegisteredV2{
		PoolId:         poolId,
		PoolAddress:    poolAddress,
		Specialization: ctx.U64("specialization", specialization),
	}, nil
}

func decodePoolRegisteredV3(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	pool, err := evmabi.AsAddress(m, "pool")
	if err != nil {
		return nil, err
	}
	factory, err := evmabi.AsAddress(m, "factory")
	if err != nil {
		return nil, err
	}
	rawTokens, err := evmabi.TupleSlice(m, "tokenConfig")
	if err != nil {
		return nil, err
	}
	tokens := make([]TokenConfig, 0, len(rawTokens))
	for _, t := range rawTokens {
		token, err := evmabi.AsAddress(t, "token")
		if err != nil {
			return nil, err
		}
		tokenType, err := evmabi.AsBig(t, "tokenType")
		if err != nil {
			return nil, err
		}
		rateProvider, err := evmabi.AsAddress(t, "rateProvider")
		if err != nil {
			return nil, err
		}
		paysYieldFees, err := evmabi.AsBool(t, "paysYieldFees")
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, TokenConfig{
			Token:         token,
			TokenType:     uint8(ctx.U64("tokenType", tokenType)),
			RateProvider:  rateProvider,
			PaysYieldFees: paysYieldFees,
		})
	}
	swapFee, err := evmabi.AsBig(m, "swapFeePercentage")
	if err != nil {
		return nil, err
	}
	pauseWindow, err := evmabi.AsBig(m, "pauseWindowEndTime")
	if err != nil {
		return nil, err
	}
	feeExempt, err := evmabi.AsBool(m, "protocolFeeExempt")
	if err != nil {
		return nil, err
	}
	roles, err := evmabi.Tuple(m, "roleAccounts")
	if err != nil {
		return nil, err
	}
	pauseManager, err := evmabi.AsAddress(roles, "pauseManager")
	if err != nil {
		return nil, err
	}
	swapFeeManager, err := evmabi.AsAddress(roles, "swapFeeManager")
	if err != nil {
		return nil, err
	}
	poolCreator, err := evmabi.AsAddress(roles, "poolCreator")
	if err != nil {
		return nil, err
	}
	lm, err := evmabi.Tuple(m, "liquidityManagement")
	if err != nil {
		return nil, err
	}
	disableUnbalanced, err := evmabi.AsBool(lm, "disableUnbalancedLiquidity")
	if err != nil {
		return nil, err
	}
	addCustom, err := evmabi.AsBool(lm, "enableAddLiquidityCustom")
	if err != nil {
		return nil, err
	}
	removeCustom, err := evmabi.AsBool(lm, "enableRemoveLiquidityCustom")
	if err != nil {
		return nil, err
	}
	donation, err := evmabi.AsBool(lm, "enableDonation")
	if err != nil {
		return nil, err
	}
	return &PoolRegisteredV3{
		Pool:                        pool,
		Factory:                     factory,
		Tokens:                      tokens,
		SwapFeePercentage:           evmabi.DecimalString(swapFee),
		PauseWindowEndTime:          ctx.U64("pauseWindowEndTime", pauseWindow),
		ProtocolFeeExempt:           feeExempt,
		PauseManager:                pauseManager,
		SwapFeeManager:              swapFeeManager,
		PoolCreator:                 poolCreator,
		DisableUnbalancedLiquidity:  disableUnbalanced,
		EnableAddLiquidityCustom:    addCustom,
		EnableRemoveLiquidityCustom: removeCustom,
		EnableDonation:              donation,
	}, nil
}

func decodeSwapV3(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	pool, err := evmabi.AsAddress(m, "pool")
	if err != nil {
		return nil, err
	}
	tokenIn, err := evmabi.AsAddress(m, "tokenIn")
	if err != nil {
		return nil, err
	}
	tokenOut, err := evmabi.AsAddress(m, "tokenOut")
	if err != nil {
		return nil, err
	}
	amountIn, err := evmabi.AsBig(m, "amountIn")
	if err != nil {
		return nil, err
	}
	amountOut, err := evmabi.AsBig(m, "amountOut")
	if err != nil {
		return nil, err
	}
	swapFeePct, err := evmabi.AsBig(m, "swapFeePercentage")
	if err != nil {
		return nil, err
	}
	swapFeeAmount, err := evmabi.AsBig(m, "swapFeeAmount")
	if err != nil {
		return nil, err
	}
	return &SwapV3{
		Pool:              pool,
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          evmabi.DecimalString(amountIn),
		AmountOut:         evmabi.DecimalString(amountOut),
		SwapFeePercentage: evmabi.DecimalString(swapFeePct),
		SwapFeeAmount:     evmabi.DecimalString(swapFeeAmount),
	}, nil
}

func decodeLiquidityAdded(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	pool, provider, kind, totalSupply, amounts, fees, err := decodeLiquidityCommon(ctx, m, "amountsAddedRaw")
	if err != nil {
		return nil, err
	}
	return &LiquidityAdded{
		Pool:              pool,
		LiquidityProvider: provider,
		Kind:              kind,
		TotalSupply:       totalSupply,
		AmountsAddedRaw:   amounts,
		SwapFeeAmountsRaw: fees,
	}, nil
}

func decodeLiquidityRemoved(ctx *protocols.DecodeCtx, m map[string]interface{}, lg *chaindata.Log) (interface{}, error) {
	pool, provider, kind, totalSupply, amounts, fees, err := decodeLiquidityCommon(ctx, m, "amountsRemovedRaw")
	if err != nil {
		return nil, err
	}
	return &LiquidityRemoved{
		Pool:              pool,
		LiquidityProvider: provider,
		Kind:              kind,
		TotalSupply:       totalSupply,
		AmountsRemovedRaw: amounts,
		SwapFeeAmountsRaw: fees,
	}, nil
}

func decodeLiquidityCommon(ctx *protocols.DecodeCtx, m map[string]interface{}, amountsField string) ([]byte, []byte, uint8, string, []string, []string, error) {
	pool, err := evmabi.AsAddress(m, "pool")
	if err != nil {
		return nil, nil, 0, "", nil, nil, err
	}
	provider, err := evmabi.AsAddress(m, "liquidityProvider")
	if err != nil {
		return nil, nil, 0, "", nil, nil, err
	}
	kind, err := evmabi.AsBig(m, "kind")
	if err != nil {
		return nil, nil, 0, "", nil, nil, err
	}
	totalSupply, err := evmabi.AsBig(m, "totalSupply")
	if err != nil {
		return nil, nil, 0, "", nil, nil, err
	}
	amounts, err := evmabi.AsBigSlice(m, amountsField)
	if err != nil {
		return nil, nil, 0, "", nil, nil, err
	}
	fees, err := evmabi.AsBigSlice(m, "swapFeeAmountsRaw")
	if err != nil {
		return nil, nil, 0, "", nil, nil, err
	}
	return pool, provider, uint8(ctx.U64("kind", kind)), evmabi.DecimalString(totalSupply),
		evmabi.DecimalStrings(amounts), evmabi.DecimalStrings(fees), nil
}
