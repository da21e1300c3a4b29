package emitters

import (
	"github.com/shopspring/decimal"

	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/ohlcv"
	"github.com/tracelake/evmetl/pkg/pooltracker"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/aerodrome"
	"github.com/tracelake/evmetl/pkg/protocols/kyberelastic"
	"github.com/tracelake/evmetl/pkg/protocols/sunswap"
	"github.com/tracelake/evmetl/pkg/protocols/traderjoe"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv2"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv3"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv4"
	"github.com/tracelake/evmetl/pkg/tables"
)

// swapFlow is one swap's pool-relative token movement before token-order
// canonicalization. Positive amounts flow into the pool.
type swapFlow struct {
	protocol string
	poolKey  []byte
	amount0  decimal.Decimal
	amount1  decimal.Decimal
	sender   []byte
}

// EmitOhlcv folds the block's swaps into per-pool candles. Swaps on pools
// the store has never seen are dropped: without token identities the
// candle key cannot be canonicalized.
func (e *Emitter) EmitOhlcv(block *chaindata.Block, events *protocols.Events, store pooltracker.Store, t *tables.Tables) error {
	if events == nil || len(events.Transactions) == 0 {
		return nil
	}
	env, err := blockEnvelope(block)
	if err != nil {
		return err
	}
	acc := ohlcv.NewAccumulator()
	for _, tx := range events.Transactions {
		for _, lg := range tx.Logs {
			flow := flowFor(lg)
			if flow == nil {
				continue
			}
			rec, ok := store.GetFirst(pooltracker.Key(flow.poolKey))
			if !ok {
				continue
			}
			key, flipped := ohlcv.NewKey(flow.protocol, rec.Factory, flow.poolKey, rec.Currency0, rec.Currency1)
			a0, a1 := flow.amount0, flow.amount1
			if flipped {
				a0, a1 = a1, a0
			}
			acc.Observe(key, a0, a1, flow.sender, tx.From)
		}
	}
	acc.Rows(block.Number, env, t)
	return nil
}

func flowFor(lg *protocols.DecodedLog) *swapFlow {
	switch p := lg.Payload.(type) {
	case *uniswapv2.Swap:
		return pairFlow("uniswap_v2", lg.Address, p.Sender, p.Amount0In, p.Amount1In, p.Amount0Out, p.Amount1Out)
	case *aerodrome.Swap:
		return pairFlow("aerodrome", lg.Address, p.Sender, p.Amount0In, p.Amount1In, p.Amount0Out, p.Amount1Out)
	case *sunswap.Swap:
		return pairFlow("sunswap_v2", lg.Address, p.Sender, p.Amount0In, p.Amount1In, p.Amount0Out, p.Amount1Out)
	case *traderjoe.Swap:
		return pairFlow("traderjoe_lb", lg.Address, p.Sender, p.AmountInX, p.AmountInY, p.AmountOutX, p.AmountOutY)
	case *uniswapv3.Swap:
		return signedFlow("uniswap_v3", lg.Address, p.Sender, p.Amount0, p.Amount1)
	case *uniswapv4.Swap:
		return signedFlow("uniswap_v4", p.PoolId, p.Sender, p.Amount0, p.Amount1)
	case *kyberelastic.Swap:
		return signedFlow("kyberelastic", lg.Address, p.Sender, p.DeltaQty0, p.DeltaQty1)
	}
	return nil
}

// pairFlow converts in/out amount pairs to signed pool-relative flows.
func pairFlow(protocol string, poolKey, sender []byte, in0, in1, out0, out1 string) *swapFlow {
	a0, err := netAmount(in0, out0)
	if err != nil {
		return nil
	}
	a1, err := netAmount(in1, out1)
	if err != nil {
		return nil
	}
	return &swapFlow{protocol: protocol, poolKey: poolKey, amount0: a0, amount1: a1, sender: sender}
}

func signedFlow(protocol string, poolKey, sender []byte, amount0, amount1 string) *swapFlow {
	a0, err := decimal.NewFromString(amount0)
	if err != nil {
		return nil
	}
	a1, err := decimal.NewFromString(amount1)
	if err != nil {
		return nil
	}
	return &swapFlow{protocol: protocol, poolKey: poolKey, amount0: a0, amount1: a1, sender: sender}
}

func netAmount(in, out string) (decimal.Decimal, error) {
	inD, err := decimal.NewFromString(in)
	if err != nil {
		return decimal.Decimal{}, err
	}
	outD, err := decimal.NewFromString(out)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return inD.Sub(outD), nil
}
