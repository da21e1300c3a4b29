package pooltracker

import (
	"strconv"

	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/aerodrome"
	"github.com/tracelake/evmetl/pkg/protocols/balancer"
	"github.com/tracelake/evmetl/pkg/protocols/bancor"
	"github.com/tracelake/evmetl/pkg/protocols/curve"
	"github.com/tracelake/evmetl/pkg/protocols/dcadotfun"
	"github.com/tracelake/evmetl/pkg/protocols/kyberelastic"
	"github.com/tracelake/evmetl/pkg/protocols/polymarket"
	"github.com/tracelake/evmetl/pkg/protocols/sunswap"
	"github.com/tracelake/evmetl/pkg/protocols/traderjoe"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv1"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv2"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv3"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv4"
)

// Watch records every pool-creation event in the decoded block into the
// store. The emitting log's address is the factory. Writes are set-once,
// so replaying a block is harmless.
func Watch(events *protocols.Events, store Store) {
	if events == nil {
		return
	}
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			watchLog(tx, lg, store)
		}
	}
}

func watchLog(tx *protocols.Transaction, lg *protocols.DecodedLog, store Store) {
	switch p := lg.Payload.(type) {
	case *uniswapv1.NewExchange:
		store.SetIfAbsent(Key(p.Exchange), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.Token,
		})
	case *uniswapv2.PairCreated:
		store.SetIfAbsent(Key(p.Pair), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.Token0,
			Currency1: p.Token1,
		})
	case *uniswapv3.PoolCreated:
		store.SetIfAbsent(Key(p.Pool), &PoolRecord{
			Factory:     lg.Address,
			Currency0:   p.Token0,
			Currency1:   p.Token1,
			Fee:         p.Fee,
			TickSpacing: p.TickSpacing,
		})
	case *uniswapv4.Initialize:
		store.SetIfAbsent(Key(p.PoolId), &PoolRecord{
			Factory:     lg.Address,
			Currency0:   p.Currency0,
			Currency1:   p.Currency1,
			Fee:         p.Fee,
			TickSpacing: p.TickSpacing,
			Extras:      map[string]string{"hooks": Key(p.Hooks)},
		})
	case *sunswap.NewExchange:
		store.SetIfAbsent(Key(p.Exchange), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.Token,
		})
	case *sunswap.PairCreated:
		store.SetIfAbsent(Key(p.Pair), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.Token0,
			Currency1: p.Token1,
		})
	case *sunswap.TokenCreate:
		store.SetIfAbsent(Key(p.TokenAddress), &PoolRecord{
			Factory: lg.Address,
			Extras: map[string]string{
				"creator":     Key(p.Creator),
				"token_index": p.TokenIndex,
			},
		})
	case *aerodrome.PoolCreated:
		store.SetIfAbsent(Key(p.Pool), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.Token0,
			Currency1: p.Token1,
			Stable:    p.Stable,
		})
	case *kyberelastic.PoolCreated:
		store.SetIfAbsent(Key(p.Pool), &PoolRecord{
			Factory:     lg.Address,
			Currency0:   p.Token0,
			Currency1:   p.Token1,
			Fee:         p.SwapFeeUnits,
			TickSpacing: p.TickDistance,
		})
	case *traderjoe.LBPairCreated:
		store.SetIfAbsent(Key(p.LBPair), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.TokenX,
			Currency1: p.TokenY,
			BinStep:   uint32(p.BinStep),
		})
	case *balancer.PoolRegisteredV2:
		store.SetIfAbsent(Key(p.PoolId), &PoolRecord{
			Factory: lg.Address,
			Extras: map[string]string{
				"pool_address":   Key(p.PoolAddress),
				"specialization": strconv.FormatUint(p.Specialization, 10),
			},
		})
	case *balancer.PoolRegisteredV3:
		rec := &PoolRecord{Factory: p.Factory, Extras: map[string]string{}}
		if len(p.Tokens) > 0 {
			rec.Currency0 = p.Tokens[0].Token
		}
		if len(p.Tokens) > 1 {
			rec.Currency1 = p.Tokens[1].Token
		}
		for i, t := range p.Tokens {
			rec.Extras["token"+strconv.Itoa(i)] = Key(t.Token)
		}
		rec.Extras["swap_fee_percentage"] = p.SwapFeePercentage
		store.SetIfAbsent(Key(p.Pool), rec)
	case *bancor.NewConverter:
		store.SetIfAbsent(Key(p.Converter), &PoolRecord{
			Factory: lg.Address,
			Extras: map[string]string{
				"converter_type": strconv.FormatUint(p.ConverterType, 10),
				"owner":          Key(p.Owner),
			},
		})
	case *bancor.FeaturesAddition:
		store.SetIfAbsent(Key(p.Address), &PoolRecord{
			Factory: lg.Address,
			Extras:  map[string]string{"features": p.Features},
		})
	case *curve.PlainPoolDeployed:
		// Vyper factories omit the pool address from the event; the
		// deployed contract from the creation receipt stands in.
		if len(tx.ContractAddress) == 0 {
			return
		}
		rec := &PoolRecord{Factory: lg.Address, Extras: map[string]string{
			"amplification": p.A,
			"fee":           p.Fee,
			"deployer":      Key(p.Deployer),
		}}
		if len(p.Coins) > 0 {
			rec.Currency0 = p.Coins[0]
		}
		if len(p.Coins) > 1 {
			rec.Currency1 = p.Coins[1]
		}
		for i, c := range p.Coins {
			rec.Extras["coin"+strconv.Itoa(i)] = Key(c)
		}
		store.SetIfAbsent(Key(tx.ContractAddress), rec)
	case *curve.MetaPoolDeployed:
		if len(tx.ContractAddress) == 0 {
			return
		}
		store.SetIfAbsent(Key(tx.ContractAddress), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.Coin,
			Currency1: p.BasePool,
			Extras: map[string]string{
				"amplification": p.A,
				"fee":           p.Fee,
				"deployer":      Key(p.Deployer),
				"base_pool":     Key(p.BasePool),
			},
		})
	case *dcadotfun.CreateOrder:
		store.SetIfAbsent(Key(p.OrderId), &PoolRecord{
			Factory:   lg.Address,
			Currency0: p.SellToken,
			Currency1: p.BuyToken,
			Extras: map[string]string{
				"owner":            Key(p.Owner),
				"amount_per_cycle": p.AmountPerCycle,
				"cycle_interval":   p.CycleInterval,
				"total_cycles":     p.TotalCycles,
			},
		})
	case *polymarket.TokenRegistered:
		store.SetIfAbsent(Key(p.ConditionId), &PoolRecord{
			Factory: lg.Address,
			Extras: map[string]string{
				"token0": p.Token0,
				"token1": p.Token1,
			},
		})
	}
}
