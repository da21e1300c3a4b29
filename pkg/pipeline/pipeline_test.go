package pipeline

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/config"
	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/emitters"
	"github.com/tracelake/evmetl/pkg/encoding"
	"github.com/tracelake/evmetl/pkg/pooltracker"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv2"
)

func newTestPipeline() *Pipeline {
	return &Pipeline{
		Emitter: emitters.NewEmitter(config.Target_Columnar, encoding.Encoding_Hex, nil),
		Store:   pooltracker.NewMemoryStore(),
	}
}

func pairCreatedBlock(number uint64, factory, token0, token1, pair []byte) *chaindata.Block {
	lg := tests.NewLog(factory, 0,
		[][]byte{uniswapv2.PairCreatedEvent.ID(), tests.AddressWord(token0), tests.AddressWord(token1)},
		tests.Concat(tests.AddressWord(pair), tests.Word(big.NewInt(1))),
	)
	return tests.NewBlock(number, tests.NewTx(0, tests.Addr(0x01), factory, lg))
}

func swapBlock(number uint64, pair []byte) *chaindata.Block {
	lg := tests.NewLog(pair, 0,
		[][]byte{uniswapv2.SwapEvent.ID(), tests.AddressWord(tests.Addr(0x05)), tests.AddressWord(tests.Addr(0x06))},
		tests.Concat(
			tests.Word(big.NewInt(1000)),
			tests.Word(big.NewInt(0)),
			tests.Word(big.NewInt(0)),
			tests.Word(big.NewInt(997)),
		),
	)
	return tests.NewBlock(number, tests.NewTx(0, tests.Addr(0x05), pair, lg))
}

func Test_ProcessBlock_EmptyBlockEmitsNothing(t *testing.T) {
	p := newTestPipeline()
	changes, err := p.ProcessBlock(context.Background(), tests.NewBlock(100))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(changes.Ops))
}

func Test_ProcessBlock_PoolCreationPropagatesEnrichment(t *testing.T) {
	p := newTestPipeline()
	factory := tests.Addr(0xfa)
	token0 := tests.Addr(0xa0)
	token1 := tests.Addr(0xa1)
	pair := tests.Addr(0xcc)

	_, err := p.ProcessBlock(context.Background(), pairCreatedBlock(100, factory, token0, token1, pair))
	assert.Nil(t, err)

	changes, err := p.ProcessBlock(context.Background(), swapBlock(101, pair))
	assert.Nil(t, err)

	var swapRow map[string]string
	for _, op := range changes.Ops {
		if op.Table == "uniswap_v2_swap" {
			swapRow = op.Columns
		}
	}
	assert.NotNil(t, swapRow)
	assert.Equal(t, encoding.RenderAddress(encoding.Encoding_Hex, factory), swapRow["factory"])
	assert.Equal(t, encoding.RenderAddress(encoding.Encoding_Hex, token0), swapRow["token0"])
	assert.Equal(t, encoding.RenderAddress(encoding.Encoding_Hex, token1), swapRow["token1"])
}

func Test_ProcessBlock_SwapWithoutCreationIsSkipped(t *testing.T) {
	p := newTestPipeline()
	changes, err := p.ProcessBlock(context.Background(), swapBlock(101, tests.Addr(0xcc)))
	assert.Nil(t, err)

	for _, op := range changes.Ops {
		assert.NotEqual(t, "uniswap_v2_swap", op.Table)
	}
}

func Test_ProcessBlock_Idempotent(t *testing.T) {
	p := newTestPipeline()
	factory := tests.Addr(0xfa)
	pair := tests.Addr(0xcc)
	block := pairCreatedBlock(100, factory, tests.Addr(0xa0), tests.Addr(0xa1), pair)

	first, err := p.ProcessBlock(context.Background(), block)
	assert.Nil(t, err)
	second, err := p.ProcessBlock(context.Background(), block)
	assert.Nil(t, err)

	a, err := json.Marshal(first)
	assert.Nil(t, err)
	b, err := json.Marshal(second)
	assert.Nil(t, err)
	assert.Equal(t, string(a), string(b))
}
