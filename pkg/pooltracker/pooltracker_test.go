package pooltracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv2"
	"github.com/tracelake/evmetl/pkg/protocols/uniswapv3"
)

func Test_MemoryStore_SetOnce(t *testing.T) {
	store := NewMemoryStore()
	key := Key(tests.Addr(0xcc))

	first := &PoolRecord{Factory: tests.Addr(0xfa)}
	second := &PoolRecord{Factory: tests.Addr(0xfb)}

	store.SetIfAbsent(key, first)
	store.SetIfAbsent(key, second)

	rec, ok := store.GetFirst(key)
	assert.True(t, ok)
	assert.Equal(t, first.Factory, rec.Factory)
	assert.Equal(t, 1, store.Len())
}

func Test_Watch_PairCreated(t *testing.T) {
	store := NewMemoryStore()
	factory := tests.Addr(0xfa)
	pair := tests.Addr(0xcc)

	events := &protocols.Events{
		Protocol: uniswapv2.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Logs: []*protocols.DecodedLog{{
				Address: factory,
				Payload: &uniswapv2.PairCreated{
					Token0: tests.Addr(0xa0),
					Token1: tests.Addr(0xa1),
					Pair:   pair,
				},
			}},
		}},
	}
	Watch(events, store)

	rec, ok := store.GetFirst(Key(pair))
	assert.True(t, ok)
	assert.Equal(t, factory, rec.Factory)
	assert.Equal(t, tests.Addr(0xa0), rec.Currency0)
	assert.Equal(t, tests.Addr(0xa1), rec.Currency1)
}

func Test_Watch_PoolCreatedCarriesFeeAndSpacing(t *testing.T) {
	store := NewMemoryStore()
	pool := tests.Addr(0xcd)

	events := &protocols.Events{
		Protocol: uniswapv3.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Logs: []*protocols.DecodedLog{{
				Address: tests.Addr(0xfa),
				Payload: &uniswapv3.PoolCreated{
					Token0:      tests.Addr(0xa0),
					Token1:      tests.Addr(0xa1),
					Fee:         3000,
					TickSpacing: 60,
					Pool:        pool,
				},
			}},
		}},
	}
	Watch(events, store)

	rec, ok := store.GetFirst(Key(pool))
	assert.True(t, ok)
	assert.Equal(t, uint64(3000), rec.Fee)
	assert.Equal(t, int32(60), rec.TickSpacing)
}

func Test_Watch_ReobservationIsNoop(t *testing.T) {
	store := NewMemoryStore()
	pair := tests.Addr(0xcc)

	creation := func(factory []byte, token0 []byte) *protocols.Events {
		return &protocols.Events{
			Protocol: uniswapv2.ProtocolName,
			Transactions: []*protocols.Transaction{{
				Logs: []*protocols.DecodedLog{{
					Address: factory,
					Payload: &uniswapv2.PairCreated{
						Token0: token0,
						Token1: tests.Addr(0xa1),
						Pair:   pair,
					},
				}},
			}},
		}
	}

	Watch(creation(tests.Addr(0xfa), tests.Addr(0xa0)), store)
	Watch(creation(tests.Addr(0xfb), tests.Addr(0xb0)), store)

	rec, _ := store.GetFirst(Key(pair))
	assert.Equal(t, tests.Addr(0xfa), rec.Factory)
	assert.Equal(t, tests.Addr(0xa0), rec.Currency0)
}
