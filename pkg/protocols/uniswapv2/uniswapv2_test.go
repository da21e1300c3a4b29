package uniswapv2

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
)

func Test_Decode_PairCreated(t *testing.T) {
	factory := tests.Addr(0xfa)
	token0 := tests.Addr(0xa0)
	token1 := tests.Addr(0xa1)
	pair := tests.Addr(0xcc)

	lg := tests.NewLog(factory, 0,
		[][]byte{PairCreatedEvent.ID(), tests.AddressWord(token0), tests.AddressWord(token1)},
		tests.Concat(tests.AddressWord(pair), tests.Word(big.NewInt(42))),
	)
	block := tests.NewBlock(100, tests.NewTx(0, tests.Addr(0x01), factory, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 1, len(events.Transactions))
	assert.Equal(t, 1, len(events.Transactions[0].Logs))

	decoded := events.Transactions[0].Logs[0]
	assert.Equal(t, "PairCreated", decoded.Event)

	payload := decoded.Payload.(*PairCreated)
	assert.Equal(t, token0, payload.Token0)
	assert.Equal(t, token1, payload.Token1)
	assert.Equal(t, pair, payload.Pair)
	assert.Equal(t, "42", payload.PairIndex)
}

func Test_Decode_Swap(t *testing.T) {
	pair := tests.Addr(0xcc)
	sender := tests.Addr(0x05)
	to := tests.Addr(0x06)

	lg := tests.NewLog(pair, 0,
		[][]byte{SwapEvent.ID(), tests.AddressWord(sender), tests.AddressWord(to)},
		tests.Concat(
			tests.Word(big.NewInt(1000)),
			tests.Word(big.NewInt(0)),
			tests.Word(big.NewInt(0)),
			tests.Word(big.NewInt(997)),
		),
	)
	block := tests.NewBlock(101, tests.NewTx(0, sender, pair, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 1, len(events.Transactions))

	payload := events.Transactions[0].Logs[0].Payload.(*Swap)
	assert.Equal(t, sender, payload.Sender)
	assert.Equal(t, to, payload.To)
	assert.Equal(t, "1000", payload.Amount0In)
	assert.Equal(t, "0", payload.Amount1In)
	assert.Equal(t, "0", payload.Amount0Out)
	assert.Equal(t, "997", payload.Amount1Out)
}

func Test_Decode_MalformedPayloadSkipsLog(t *testing.T) {
	pair := tests.Addr(0xcc)
	lg := tests.NewLog(pair, 0,
		[][]byte{SwapEvent.ID(), tests.AddressWord(tests.Addr(0x05)), tests.AddressWord(tests.Addr(0x06))},
		[]byte{0x01, 0x02},
	)
	block := tests.NewBlock(102, tests.NewTx(0, tests.Addr(0x05), pair, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 0, len(events.Transactions))
}

func Test_Decode_UnmatchedTopicCount(t *testing.T) {
	// A Swap topic0 with a missing indexed topic must not decode.
	pair := tests.Addr(0xcc)
	lg := tests.NewLog(pair, 0,
		[][]byte{SwapEvent.ID(), tests.AddressWord(tests.Addr(0x05))},
		tests.Concat(
			tests.Word(big.NewInt(1)),
			tests.Word(big.NewInt(0)),
			tests.Word(big.NewInt(0)),
			tests.Word(big.NewInt(1)),
		),
	)
	block := tests.NewBlock(103, tests.NewTx(0, tests.Addr(0x05), pair, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 0, len(events.Transactions))
}
