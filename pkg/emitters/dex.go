package emitters

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/pooltracker"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/aerodrome"
	"github.com/tracelake/evmetl/pkg/protocols/balancer"
	"github.com/tracelake/evmetl/pkg/protocols/bancor"
	"github.com/tracelake/evmetl/pkg/protocols/cow"
	"github.com/tracelake/evmetl/pkg/protocols/curve"
	"github.com/tracelake/evmetl/pkg/protocols/dcadotfun"
	"github.com/tracelake/evmetl/pkg/protocols/dodo"
	"github.com/tracelake/evmetl/pkg/protocols/kyberelastic"
	"github.com/tracelake/evmetl/pkg/protocols/polymarket"
	"github.com/tracelake/evmetl/pkg/protocols/sunswap"
	"github.com/tracelake/evmetl/pkg/protocols/traderjoe"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv1"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv2"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv3"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv4"
	"github.com/tracelake/evmetl/pkg/protocols/woofi"
	"github.com/tracelake/evmetl/pkg/tables"
)

// dexRow is the intermediate form of one dex row before enrichment.
// poolKey selects the identity-store record; requirePool skips the row
// entirely on a store miss. A nil poolKey emits without pool columns.
type dexRow struct {
	table       string
	data        []string
	poolKey     []byte
	requirePool bool
}

// EmitDex renders every decoded dex event in the block into per-event
// tables, enriched from the pool identity store.
func (e *Emitter) EmitDex(block *chaindata.Block, events *protocols.Events, store pooltracker.Store, t *tables.Tables) error {
	if events == nil || len(events.Transactions) == 0 {
		return nil
	}
	env, err := e.relationalEnvelope(block)
	if err != nil {
		return err
	}
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			row := e.dexRowFor(tx, lg)
			if row == nil {
				continue
			}
			cols := append(e.envelope(tx, lg), env...)
			if row.poolKey != nil {
				rec, ok := store.GetFirst(pooltracker.Key(row.poolKey))
				if !ok && row.requirePool {
					if e.Logger != nil {
						e.Logger.Sugar().Debugw("Skipping row, pool unknown",
							zap.String("protocol", events.Protocol),
							zap.String("event", lg.Event),
							zap.String("pool", pooltracker.Key(row.poolKey)),
						)
					}
					continue
				}
				cols = append(cols, e.poolCols(rec)...)
			}
			cols = append(cols, row.data...)
			key, err := e.logKey(block, tx.Index, lg.Index)
			if err != nil {
				return err
			}
			t.AppendRow(row.table, key, tables.Cols(cols...))
		}
	}
	return nil
}

func (e *Emitter) dexRowFor(tx *protocols.Transaction, lg *protocols.DecodedLog) *dexRow {
	switch p := lg.Payload.(type) {

	case *uniswapv1.NewExchange:
		return &dexRow{table: "uniswap_v1_new_exchange", data: []string{
			"token", e.addr(p.Token),
			"exchange", e.addr(p.Exchange),
		}}
	case *uniswapv1.TokenPurchase:
		return &dexRow{table: "uniswap_v1_token_purchase", poolKey: lg.Address, requirePool: true, data: []string{
			"buyer", e.addr(p.Buyer),
			"eth_sold", p.EthSold,
			"tokens_bought", p.TokensBought,
		}}
	case *uniswapv1.EthPurchase:
		return &dexRow{table: "uniswap_v1_eth_purchase", poolKey: lg.Address, requirePool: true, data: []string{
			"buyer", e.addr(p.Buyer),
			"tokens_sold", p.TokensSold,
			"eth_bought", p.EthBought,
		}}
	case *uniswapv1.AddLiquidity:
		return &dexRow{table: "uniswap_v1_add_liquidity", poolKey: lg.Address, requirePool: true, data: []string{
			"provider", e.addr(p.Provider),
			"eth_amount", p.EthAmount,
			"token_amount", p.TokenAmount,
		}}
	case *uniswapv1.RemoveLiquidity:
		return &dexRow{table: "uniswap_v1_remove_liquidity", poolKey: lg.Address, requirePool: true, data: []string{
			"provider", e.addr(p.Provider),
			"eth_amount", p.EthAmount,
			"token_amount", p.TokenAmount,
		}}

	case *uniswapv2.PairCreated:
		return &dexRow{table: "uniswap_v2_pair_created", data: []string{
			"token0", e.addr(p.Token0),
			"token1", e.addr(p.Token1),
			"pair", e.addr(p.Pair),
			"pair_index", p.PairIndex,
		}}
	case *uniswapv2.Swap:
		return &dexRow{table: "uniswap_v2_swap", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"amount0_in", p.Amount0In,
			"amount1_in", p.Amount1In,
			"amount0_out", p.Amount0Out,
			"amount1_out", p.Amount1Out,
		}}
	case *uniswapv2.Mint:
		return &dexRow{table: "uniswap_v2_mint", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *uniswapv2.Burn:
		return &dexRow{table: "uniswap_v2_burn", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *uniswapv2.Sync:
		return &dexRow{table: "uniswap_v2_sync", poolKey: lg.Address, requirePool: true, data: []string{
			"reserve0", p.Reserve0,
			"reserve1", p.Reserve1,
		}}

	case *uniswapv3.PoolCreated:
		return &dexRow{table: "uniswap_v3_pool_created", data: []string{
			"token0", e.addr(p.Token0),
			"token1", e.addr(p.Token1),
			"fee", strconv.FormatUint(p.Fee, 10),
			"tick_spacing", strconv.FormatInt(int64(p.TickSpacing), 10),
			"pool", e.addr(p.Pool),
		}}
	case *uniswapv3.Swap:
		return &dexRow{table: "uniswap_v3_swap", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"recipient", e.addr(p.Recipient),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
			"sqrt_price_x96", p.SqrtPriceX96,
			"liquidity", p.Liquidity,
			"tick", strconv.FormatInt(int64(p.Tick), 10),
		}}
	case *uniswapv3.Mint:
		return &dexRow{table: "uniswap_v3_mint", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"owner", e.addr(p.Owner),
			"tick_lower", strconv.FormatInt(int64(p.TickLower), 10),
			"tick_upper", strconv.FormatInt(int64(p.TickUpper), 10),
			"amount", p.Amount,
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *uniswapv3.Burn:
		return &dexRow{table: "uniswap_v3_burn", poolKey: lg.Address, requirePool: true, data: []string{
			"owner", e.addr(p.Owner),
			"tick_lower", strconv.FormatInt(int64(p.TickLower), 10),
			"tick_upper", strconv.FormatInt(int64(p.TickUpper), 10),
			"amount", p.Amount,
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *uniswapv3.Collect:
		return &dexRow{table: "uniswap_v3_collect", poolKey: lg.Address, requirePool: true, data: []string{
			"owner", e.addr(p.Owner),
			"recipient", e.addr(p.Recipient),
			"tick_lower", strconv.FormatInt(int64(p.TickLower), 10),
			"tick_upper", strconv.FormatInt(int64(p.TickUpper), 10),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *uniswapv3.Flash:
		return &dexRow{table: "uniswap_v3_flash", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"recipient", e.addr(p.Recipient),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
			"paid0", p.Paid0,
			"paid1", p.Paid1,
		}}
	case *uniswapv3.Initialize:
		return &dexRow{table: "uniswap_v3_initialize", poolKey: lg.Address, data: []string{
			"sqrt_price_x96", p.SqrtPriceX96,
			"tick", strconv.FormatInt(int64(p.Tick), 10),
		}}
	case *uniswapv3.SetFeeProtocol:
		return &dexRow{table: "uniswap_v3_set_fee_protocol", poolKey: lg.Address, data: []string{
			"fee_protocol0_old", strconv.FormatUint(p.FeeProtocol0Old, 10),
			"fee_protocol1_old", strconv.FormatUint(p.FeeProtocol1Old, 10),
			"fee_protocol0_new", strconv.FormatUint(p.FeeProtocol0New, 10),
			"fee_protocol1_new", strconv.FormatUint(p.FeeProtocol1New, 10),
		}}
	case *uniswapv3.CollectProtocol:
		return &dexRow{table: "uniswap_v3_collect_protocol", poolKey: lg.Address, data: []string{
			"sender", e.addr(p.Sender),
			"recipient", e.addr(p.Recipient),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *uniswapv3.IncreaseObservationCardinalityNext:
		return &dexRow{table: "uniswap_v3_increase_observation_cardinality_next", poolKey: lg.Address, data: []string{
			"observation_cardinality_next_old", strconv.FormatUint(p.ObservationCardinalityNextOld, 10),
			"observation_cardinality_next_new", strconv.FormatUint(p.ObservationCardinalityNextNew, 10),
		}}
	case *uniswapv3.OwnerChanged:
		return &dexRow{table: "uniswap_v3_owner_changed", data: []string{
			"old_owner", e.addr(p.OldOwner),
			"new_owner", e.addr(p.NewOwner),
		}}
	case *uniswapv3.FeeAmountEnabled:
		return &dexRow{table: "uniswap_v3_fee_amount_enabled", data: []string{
			"fee", strconv.FormatUint(p.Fee, 10),
			"tick_spacing", strconv.FormatInt(int64(p.TickSpacing), 10),
		}}

	case *uniswapv4.Initialize:
		return &dexRow{table: "uniswap_v4_initialize", data: []string{
			"pool_id", e.id(p.PoolId),
			"currency0", e.addr(p.Currency0),
			"currency1", e.addr(p.Currency1),
			"fee", strconv.FormatUint(p.Fee, 10),
			"tick_spacing", strconv.FormatInt(int64(p.TickSpacing), 10),
			"hooks", e.addr(p.Hooks),
			"sqrt_price_x96", p.SqrtPriceX96,
			"tick", strconv.FormatInt(int64(p.Tick), 10),
		}}
	case *uniswapv4.Swap:
		return &dexRow{table: "uniswap_v4_swap", poolKey: p.PoolId, requirePool: true, data: []string{
			"pool_id", e.id(p.PoolId),
			"sender", e.addr(p.Sender),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
			"sqrt_price_x96", p.SqrtPriceX96,
			"liquidity", p.Liquidity,
			"tick", strconv.FormatInt(int64(p.Tick), 10),
			"fee", strconv.FormatUint(p.Fee, 10),
		}}
	case *uniswapv4.ModifyLiquidity:
		return &dexRow{table: "uniswap_v4_modify_liquidity", poolKey: p.PoolId, requirePool: true, data: []string{
			"pool_id", e.id(p.PoolId),
			"sender", e.addr(p.Sender),
			"tick_lower", strconv.FormatInt(int64(p.TickLower), 10),
			"tick_upper", strconv.FormatInt(int64(p.TickUpper), 10),
			"liquidity_delta", p.LiquidityDelta,
			"salt", e.id(p.Salt),
		}}
	case *uniswapv4.Donate:
		return &dexRow{table: "uniswap_v4_donate", poolKey: p.PoolId, requirePool: true, data: []string{
			"pool_id", e.id(p.PoolId),
			"sender", e.addr(p.Sender),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}

	case *balancer.PoolRegisteredV2:
		return &dexRow{table: "balancer_v2_pool_registered", data: []string{
			"pool_id", e.id(p.PoolId),
			"pool_address", e.addr(p.PoolAddress),
			"specialization", strconv.FormatUint(p.Specialization, 10),
		}}
	case *balancer.SwapV2:
		return &dexRow{table: "balancer_v2_swap", poolKey: p.PoolId, data: []string{
			"pool_id", e.id(p.PoolId),
			"token_in", e.addr(p.TokenIn),
			"token_out", e.addr(p.TokenOut),
			"amount_in", p.AmountIn,
			"amount_out", p.AmountOut,
		}}
	case *balancer.PoolBalanceChanged:
		return &dexRow{table: "balancer_v2_pool_balance_changed", poolKey: p.PoolId, data: []string{
			"pool_id", e.id(p.PoolId),
			"liquidity_provider", e.addr(p.LiquidityProvider),
			"tokens", joinAddrs(e, p.Tokens),
			"deltas", joinStrings(p.Deltas),
			"protocol_fees", joinStrings(p.ProtocolFees),
		}}
	case *balancer.PoolRegisteredV3:
		return &dexRow{table: "balancer_v3_pool_registered", data: []string{
			"pool", e.addr(p.Pool),
			"pool_factory", e.addr(p.Factory),
			"swap_fee_percentage", p.SwapFeePercentage,
			"token_count", strconv.Itoa(len(p.Tokens)),
		}}
	case *balancer.SwapV3:
		return &dexRow{table: "balancer_v3_swap", poolKey: p.Pool, data: []string{
			"pool", e.addr(p.Pool),
			"token_in", e.addr(p.TokenIn),
			"token_out", e.addr(p.TokenOut),
			"amount_in", p.AmountIn,
			"amount_out", p.AmountOut,
			"swap_fee_percentage", p.SwapFeePercentage,
			"swap_fee_amount", p.SwapFeeAmount,
		}}
	case *balancer.LiquidityAdded:
		return &dexRow{table: "balancer_v3_liquidity_added", poolKey: p.Pool, data: []string{
			"pool", e.addr(p.Pool),
			"liquidity_provider", e.addr(p.LiquidityProvider),
			"kind", strconv.FormatUint(uint64(p.Kind), 10),
			"total_supply", p.TotalSupply,
			"amounts_added_raw", joinStrings(p.AmountsAddedRaw),
			"swap_fee_amounts_raw", joinStrings(p.SwapFeeAmountsRaw),
		}}
	case *balancer.LiquidityRemoved:
		return &dexRow{table: "balancer_v3_liquidity_removed", poolKey: p.Pool, data: []string{
			"pool", e.addr(p.Pool),
			"liquidity_provider", e.addr(p.LiquidityProvider),
			"kind", strconv.FormatUint(uint64(p.Kind), 10),
			"total_supply", p.TotalSupply,
			"amounts_removed_raw", joinStrings(p.AmountsRemovedRaw),
			"swap_fee_amounts_raw", joinStrings(p.SwapFeeAmountsRaw),
		}}

	case *curve.PlainPoolDeployed:
		return &dexRow{table: "curve_plain_pool_deployed", data: []string{
			"coins", joinAddrs(e, p.Coins),
			"amplification", p.A,
			"fee", p.Fee,
			"deployer", e.addr(p.Deployer),
			"pool", e.addr(tx.ContractAddress),
		}}
	case *curve.MetaPoolDeployed:
		return &dexRow{table: "curve_meta_pool_deployed", data: []string{
			"coin", e.addr(p.Coin),
			"base_pool", e.addr(p.BasePool),
			"amplification", p.A,
			"fee", p.Fee,
			"deployer", e.addr(p.Deployer),
			"pool", e.addr(tx.ContractAddress),
		}}
	case *curve.TokenExchange:
		return &dexRow{table: "curve_token_exchange", poolKey: lg.Address, data: []string{
			"buyer", e.addr(p.Buyer),
			"sold_id", p.SoldId,
			"tokens_sold", p.TokensSold,
			"bought_id", p.BoughtId,
			"tokens_bought", p.TokensBought,
			"underlying", boolString(p.Underlying),
		}}
	case *curve.AddLiquidity:
		return &dexRow{table: "curve_add_liquidity", poolKey: lg.Address, data: []string{
			"provider", e.addr(p.Provider),
			"token_amounts", joinStrings(p.TokenAmounts),
			"fees", joinStrings(p.Fees),
			"invariant", p.Invariant,
			"token_supply", p.TokenSupply,
		}}
	case *curve.RemoveLiquidity:
		return &dexRow{table: "curve_remove_liquidity", poolKey: lg.Address, data: []string{
			"provider", e.addr(p.Provider),
			"token_amounts", joinStrings(p.TokenAmounts),
			"fees", joinStrings(p.Fees),
			"token_supply", p.TokenSupply,
		}}
	case *curve.RemoveLiquidityImbalance:
		return &dexRow{table: "curve_remove_liquidity_imbalance", poolKey: lg.Address, data: []string{
			"provider", e.addr(p.Provider),
			"token_amounts", joinStrings(p.TokenAmounts),
			"fees", joinStrings(p.Fees),
			"invariant", p.Invariant,
			"token_supply", p.TokenSupply,
		}}
	case *curve.RemoveLiquidityOne:
		return &dexRow{table: "curve_remove_liquidity_one", poolKey: lg.Address, data: []string{
			"provider", e.addr(p.Provider),
			"token_amount", p.TokenAmount,
			"coin_amount", p.CoinAmount,
		}}

	case *bancor.NewConverter:
		return &dexRow{table: "bancor_new_converter", data: []string{
			"converter_type", strconv.FormatUint(p.ConverterType, 10),
			"converter", e.addr(p.Converter),
			"owner", e.addr(p.Owner),
		}}
	case *bancor.FeaturesAddition:
		return &dexRow{table: "bancor_features_addition", data: []string{
			"address", e.addr(p.Address),
			"features", p.Features,
		}}
	case *bancor.Conversion:
		return &dexRow{table: "bancor_conversion", poolKey: lg.Address, data: []string{
			"from_token", e.addr(p.FromToken),
			"to_token", e.addr(p.ToToken),
			"trader", e.addr(p.Trader),
			"amount", p.Amount,
			"return", p.Return,
			"conversion_fee", p.ConversionFee,
		}}
	case *bancor.LiquidityAdded:
		return &dexRow{table: "bancor_liquidity_added", poolKey: lg.Address, data: []string{
			"provider", e.addr(p.Provider),
			"reserve_token", e.addr(p.ReserveToken),
			"amount", p.Amount,
			"new_balance", p.NewBalance,
			"new_supply", p.NewSupply,
		}}
	case *bancor.LiquidityRemoved:
		return &dexRow{table: "bancor_liquidity_removed", poolKey: lg.Address, data: []string{
			"provider", e.addr(p.Provider),
			"reserve_token", e.addr(p.ReserveToken),
			"amount", p.Amount,
			"new_balance", p.NewBalance,
			"new_supply", p.NewSupply,
		}}

	case *aerodrome.PoolCreated:
		return &dexRow{table: "aerodrome_pool_created", data: []string{
			"token0", e.addr(p.Token0),
			"token1", e.addr(p.Token1),
			"stable", boolString(p.Stable),
			"pool", e.addr(p.Pool),
			"pool_index", p.PoolIndex,
		}}
	case *aerodrome.Swap:
		return &dexRow{table: "aerodrome_swap", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"amount0_in", p.Amount0In,
			"amount1_in", p.Amount1In,
			"amount0_out", p.Amount0Out,
			"amount1_out", p.Amount1Out,
		}}
	case *aerodrome.Mint:
		return &dexRow{table: "aerodrome_mint", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *aerodrome.Burn:
		return &dexRow{table: "aerodrome_burn", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"amount0", p.Amount0,
			"amount1", p.Amount1,
		}}
	case *aerodrome.Sync:
		return &dexRow{table: "aerodrome_sync", poolKey: lg.Address, requirePool: true, data: []string{
			"reserve0", p.Reserve0,
			"reserve1", p.Reserve1,
		}}

	case *kyberelastic.PoolCreated:
		return &dexRow{table: "kyber_elastic_pool_created", data: []string{
			"token0", e.addr(p.Token0),
			"token1", e.addr(p.Token1),
			"swap_fee_units", strconv.FormatUint(p.SwapFeeUnits, 10),
			"tick_distance", strconv.FormatInt(int64(p.TickDistance), 10),
			"pool", e.addr(p.Pool),
		}}
	case *kyberelastic.Swap:
		return &dexRow{table: "kyber_elastic_swap", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"recipient", e.addr(p.Recipient),
			"delta_qty0", p.DeltaQty0,
			"delta_qty1", p.DeltaQty1,
			"sqrt_p", p.SqrtP,
			"liquidity", p.Liquidity,
			"current_tick", strconv.FormatInt(int64(p.CurrentTick), 10),
		}}
	case *kyberelastic.Mint:
		return &dexRow{table: "kyber_elastic_mint", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"owner", e.addr(p.Owner),
			"tick_lower", strconv.FormatInt(int64(p.TickLower), 10),
			"tick_upper", strconv.FormatInt(int64(p.TickUpper), 10),
			"qty", p.Qty,
			"qty0", p.Qty0,
			"qty1", p.Qty1,
		}}
	case *kyberelastic.Burn:
		return &dexRow{table: "kyber_elastic_burn", poolKey: lg.Address, requirePool: true, data: []string{
			"owner", e.addr(p.Owner),
			"tick_lower", strconv.FormatInt(int64(p.TickLower), 10),
			"tick_upper", strconv.FormatInt(int64(p.TickUpper), 10),
			"qty", p.Qty,
			"qty0", p.Qty0,
			"qty1", p.Qty1,
		}}
	case *kyberelastic.BurnRTokens:
		return &dexRow{table: "kyber_elastic_burn_rtokens", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"qty", p.Qty,
			"qty0", p.Qty0,
			"qty1", p.Qty1,
		}}

	case *traderjoe.LBPairCreated:
		return &dexRow{table: "traderjoe_lb_pair_created", data: []string{
			"token_x", e.addr(p.TokenX),
			"token_y", e.addr(p.TokenY),
			"bin_step", strconv.FormatUint(p.BinStep, 10),
			"lb_pair", e.addr(p.LBPair),
			"pid", p.Pid,
		}}
	case *traderjoe.Swap:
		return &dexRow{table: "traderjoe_swap", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"bin_id", strconv.FormatUint(uint64(p.Id), 10),
			"amount_in_x", p.AmountInX,
			"amount_in_y", p.AmountInY,
			"amount_out_x", p.AmountOutX,
			"amount_out_y", p.AmountOutY,
			"volatility_accumulator", strconv.FormatUint(uint64(p.VolatilityAccumulator), 10),
			"total_fee_x", p.TotalFeeX,
			"total_fee_y", p.TotalFeeY,
			"protocol_fee_x", p.ProtocolFeeX,
			"protocol_fee_y", p.ProtocolFeeY,
		}}
	case *traderjoe.DepositedToBins:
		return &dexRow{table: "traderjoe_deposited_to_bins", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"ids", joinStrings(p.Ids),
			"amounts_x", joinStrings(p.AmountsX),
			"amounts_y", joinStrings(p.AmountsY),
		}}
	case *traderjoe.WithdrawnFromBins:
		return &dexRow{table: "traderjoe_withdrawn_from_bins", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"ids", joinStrings(p.Ids),
			"amounts_x", joinStrings(p.AmountsX),
			"amounts_y", joinStrings(p.AmountsY),
		}}

	case *dodo.DODOSwap:
		return &dexRow{table: "dodo_swap", data: []string{
			"from_token", e.addr(p.FromToken),
			"to_token", e.addr(p.ToToken),
			"from_amount", p.FromAmount,
			"to_amount", p.ToAmount,
			"trader", e.addr(p.Trader),
			"receiver", e.addr(p.Receiver),
		}}
	case *dodo.BuyShares:
		return &dexRow{table: "dodo_buy_shares", data: []string{
			"to", e.addr(p.To),
			"increase_shares", p.IncreaseShares,
			"total_shares", p.TotalShares,
		}}
	case *dodo.SellShares:
		return &dexRow{table: "dodo_sell_shares", data: []string{
			"payer", e.addr(p.Payer),
			"to", e.addr(p.To),
			"decrease_shares", p.DecreaseShares,
			"total_shares", p.TotalShares,
		}}

	case *woofi.WooSwap:
		return &dexRow{table: "woofi_swap", data: []string{
			"from_token", e.addr(p.FromToken),
			"to_token", e.addr(p.ToToken),
			"from_amount", p.FromAmount,
			"to_amount", p.ToAmount,
			"from", e.addr(p.From),
			"to", e.addr(p.To),
			"rebate_to", e.addr(p.RebateTo),
		}}

	case *cow.Trade:
		// Settlement contract pools are never registered; the row emits
		// standalone with empty pool columns.
		return &dexRow{table: "cow_trade", poolKey: lg.Address, data: []string{
			"owner", e.addr(p.Owner),
			"sell_token", e.addr(p.SellToken),
			"buy_token", e.addr(p.BuyToken),
			"sell_amount", p.SellAmount,
			"buy_amount", p.BuyAmount,
			"fee_amount", p.FeeAmount,
			"order_uid", e.id(p.OrderUid),
		}}
	case *cow.Settlement:
		return &dexRow{table: "cow_settlement", data: []string{
			"solver", e.addr(p.Solver),
		}}

	case *polymarket.TokenRegistered:
		return &dexRow{table: "polymarket_token_registered", data: []string{
			"token0", p.Token0,
			"token1", p.Token1,
			"condition_id", e.id(p.ConditionId),
		}}
	case *polymarket.OrderFilled:
		return &dexRow{table: "polymarket_order_filled", data: []string{
			"order_hash", e.id(p.OrderHash),
			"maker", e.addr(p.Maker),
			"taker", e.addr(p.Taker),
			"maker_asset_id", p.MakerAssetId,
			"taker_asset_id", p.TakerAssetId,
			"maker_amount_filled", p.MakerAmountFilled,
			"taker_amount_filled", p.TakerAmountFilled,
			"fee", p.Fee,
		}}
	case *polymarket.OrdersMatched:
		return &dexRow{table: "polymarket_orders_matched", data: []string{
			"taker_order_hash", e.id(p.TakerOrderHash),
			"taker_order_maker", e.addr(p.TakerOrderMaker),
			"maker_asset_id", p.MakerAssetId,
			"taker_asset_id", p.TakerAssetId,
			"maker_amount_filled", p.MakerAmountFilled,
			"taker_amount_filled", p.TakerAmountFilled,
		}}

	case *sunswap.NewExchange:
		return &dexRow{table: "sunswap_new_exchange", data: []string{
			"token", e.addr(p.Token),
			"exchange", e.addr(p.Exchange),
		}}
	case *sunswap.PairCreated:
		return &dexRow{table: "sunswap_pair_created", data: []string{
			"token0", e.addr(p.Token0),
			"token1", e.addr(p.Token1),
			"pair", e.addr(p.Pair),
			"pair_index", p.PairIndex,
		}}
	case *sunswap.Swap:
		return &dexRow{table: "sunswap_swap", poolKey: lg.Address, requirePool: true, data: []string{
			"sender", e.addr(p.Sender),
			"to", e.addr(p.To),
			"amount0_in", p.Amount0In,
			"amount1_in", p.Amount1In,
			"amount0_out", p.Amount0Out,
			"amount1_out", p.Amount1Out,
		}}
	case *sunswap.TokenPurchase:
		return &dexRow{table: "sunswap_token_purchase", poolKey: lg.Address, requirePool: true, data: []string{
			"buyer", e.addr(p.Buyer),
			"trx_sold", p.TrxSold,
			"tokens_bought", p.TokensBought,
		}}
	case *sunswap.TrxPurchase:
		return &dexRow{table: "sunswap_trx_purchase", poolKey: lg.Address, requirePool: true, data: []string{
			"buyer", e.addr(p.Buyer),
			"tokens_sold", p.TokensSold,
			"trx_bought", p.TrxBought,
		}}
	case *sunswap.Snapshot:
		return &dexRow{table: "sunswap_snapshot", poolKey: lg.Address, requirePool: true, data: []string{
			"operator", e.addr(p.Operator),
			"trx_balance", p.TrxBalance,
			"token_balance", p.TokenBalance,
		}}
	case *sunswap.TokenCreate:
		return &dexRow{table: "sunpump_token_create", data: []string{
			"token_address", e.addr(p.TokenAddress),
			"token_index", p.TokenIndex,
			"creator", e.addr(p.Creator),
		}}
	case *sunswap.TokenPurchased:
		return &dexRow{table: "sunpump_token_purchased", poolKey: p.Token, requirePool: true, data: []string{
			"token", e.addr(p.Token),
			"buyer", e.addr(p.Buyer),
			"trx_amount", p.TrxAmount,
			"fee", p.Fee,
			"token_amount", p.TokenAmount,
			"token_reserve", p.TokenReserve,
		}}
	case *sunswap.TokenSold:
		return &dexRow{table: "sunpump_token_sold", poolKey: p.Token, requirePool: true, data: []string{
			"token", e.addr(p.Token),
			"seller", e.addr(p.Seller),
			"trx_amount", p.TrxAmount,
			"fee", p.Fee,
			"token_amount", p.TokenAmount,
		}}
	case *sunswap.LaunchPending:
		return &dexRow{table: "sunpump_launch_pending", data: []string{
			"token", e.addr(p.Token),
		}}

	case *dcadotfun.CreateOrder:
		return &dexRow{table: "dcadotfun_create_order", data: []string{
			"order_id", e.id(p.OrderId),
			"owner", e.addr(p.Owner),
			"sell_token", e.addr(p.SellToken),
			"buy_token", e.addr(p.BuyToken),
			"amount_per_cycle", p.AmountPerCycle,
			"cycle_interval", p.CycleInterval,
			"total_cycles", p.TotalCycles,
		}}
	case *dcadotfun.FillOrder:
		return &dexRow{table: "dcadotfun_fill_order", poolKey: p.OrderId, data: []string{
			"order_id", e.id(p.OrderId),
			"filler", e.addr(p.Filler),
			"sell_amount", p.SellAmount,
			"buy_amount", p.BuyAmount,
			"cycle", p.Cycle,
		}}
	case *dcadotfun.CancelOrder:
		return &dexRow{table: "dcadotfun_cancel_order", poolKey: p.OrderId, data: []string{
			"order_id", e.id(p.OrderId),
			"owner", e.addr(p.Owner),
		}}
	}
	return nil
}

func joinStrings(vs []string) string {
	return "[" + strings.Join(vs, ",") + "]"
}

func joinAddrs(e *Emitter, addrs [][]byte) string {
	rendered := make([]string, 0, len(addrs))
	for _, a := range addrs {
		rendered = append(rendered, e.addr(a))
	}
	return joinStrings(rendered)
}
