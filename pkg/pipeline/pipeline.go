// Package pipeline runs the per-block processing order: decoders first,
// then store watchers, then emitters. One block at a time with owned
// inputs; the identity store is the only state carried across blocks.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/emitters"
	"github.com/tracelake/evmetl/pkg/pooltracker"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/aerodrome"
	"github.com/tracelake/evmetl/pkg/protocols/balancer"
	"github.com/tracelake/evmetl/pkg/protocols/bancor"
	"github.com/tracelake/evmetl/pkg/protocols/cow"
	"github.com/tracelake/evmetl/pkg/protocols/curve"
	"github.com/tracelake/evmetl/pkg/protocols/dcadotfun"
	"github.com/tracelake/evmetl/pkg/protocols/dodo"
	"github.com/tracelake/evmetl/pkg/protocols/erc1155"
	"github.com/tracelake/evmetl/pkg/protocols/erc20"
	"github.com/tracelake/evmetl/pkg/protocols/erc721"
	"github.com/tracelake/evmetl/pkg/protocols/kyberelastic"
	"github.com/tracelake/evmetl/pkg/protocols/nftmarkets"
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

// dexRegistries is the deterministic decoder order for DEX and market
// protocols. First-writer-wins in the identity store depends on this
// order staying fixed.
var dexRegistries = []*protocols.Registry{
	uniswapv1.Registry,
	uniswapv2.Registry,
	uniswapv3.Registry,
	uniswapv4.Registry,
	sunswap.Registry,
	aerodrome.Registry,
	kyberelastic.Registry,
	traderjoe.Registry,
	balancer.Registry,
	bancor.Registry,
	curve.Registry,
	dodo.Registry,
	woofi.Registry,
	cow.Registry,
	polymarket.Registry,
	dcadotfun.Registry,
}

var transferRegistries = []*protocols.Registry{
	erc20.Registry,
	erc721.Registry,
	erc1155.Registry,
}

// Pipeline wires the decoders, the identity store and the emitters for
// one configured target.
type Pipeline struct {
	Logger  *zap.Logger
	Metrics *metrics.MetricsClient
	Emitter *emitters.Emitter
	Store   pooltracker.Store

	// TokenReader and NativeReader are nil when no RPC endpoint is
	// configured; the corresponding emitters are then skipped.
	TokenReader  emitters.TokenReader
	NativeReader emitters.NativeReader
	ChunkSize    int

	EnableOhlcv bool
}

// ProcessBlock runs one block through the full decode/store/emit order
// and returns the accumulated database changes. Processing the same
// block twice against the same store state yields identical output.
func (p *Pipeline) ProcessBlock(ctx context.Context, block *chaindata.Block) (*tables.DatabaseChanges, error) {
	dexEvents := make([]*protocols.Events, 0, len(dexRegistries))
	for _, r := range dexRegistries {
		dexEvents = append(dexEvents, r.Decode(block, p.Logger, p.Metrics))
	}
	transferEvents := make([]*protocols.Events, 0, len(transferRegistries))
	for _, r := range transferRegistries {
		transferEvents = append(transferEvents, r.Decode(block, p.Logger, p.Metrics))
	}
	nftEvents := nftmarkets.Registry.Decode(block, p.Logger, p.Metrics)

	for _, events := range dexEvents {
		pooltracker.Watch(events, p.Store)
	}

	t := tables.New()
	for _, events := range dexEvents {
		if err := p.Emitter.EmitDex(block, events, p.Store, t); err != nil {
			return nil, err
		}
	}
	for _, events := range transferEvents {
		if err := p.Emitter.EmitTransfers(block, events, t); err != nil {
			return nil, err
		}
		if err := p.Emitter.EmitTransferBatches(block, events, t); err != nil {
			return nil, err
		}
	}
	if err := p.Emitter.EmitNfts(block, nftEvents, t); err != nil {
		return nil, err
	}
	if err := p.Emitter.EmitContracts(block, t); err != nil {
		return nil, err
	}
	if p.TokenReader != nil {
		erc20Events := transferEvents[0]
		if err := p.Emitter.EmitTokenBalances(ctx, block, erc20Events, p.TokenReader, p.ChunkSize, t); err != nil {
			return nil, err
		}
		if err := p.Emitter.EmitTokenSupply(ctx, block, erc20Events, p.TokenReader, p.ChunkSize, t); err != nil {
			return nil, err
		}
	}
	if err := p.Emitter.EmitNative(ctx, block, p.NativeReader, p.ChunkSize, t); err != nil {
		return nil, err
	}
	if p.EnableOhlcv {
		for _, events := range dexEvents {
			if err := p.Emitter.EmitOhlcv(block, events, p.Store, t); err != nil {
				return nil, err
			}
		}
	}

	if p.Logger != nil {
		p.Logger.Sugar().Debugw("Processed block",
			zap.Uint64("block", block.Number),
			zap.Int("rows", t.RowCount()),
		)
	}
	return t.ToDatabaseChanges(block)
}
