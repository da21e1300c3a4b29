package uniswapv3

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
)

func Test_Decode_PoolCreated(t *testing.T) {
	factory := tests.Addr(0xfa)
	token0 := tests.Addr(0xa0)
	token1 := tests.Addr(0xa1)
	pool := tests.Addr(0xcc)

	lg := tests.NewLog(factory, 0,
		[][]byte{
			PoolCreatedEvent.ID(),
			tests.AddressWord(token0),
			tests.AddressWord(token1),
			tests.Word(big.NewInt(3000)),
		},
		tests.Concat(tests.Word(big.NewInt(60)), tests.AddressWord(pool)),
	)
	block := tests.NewBlock(200, tests.NewTx(0, tests.Addr(0x01), factory, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 1, len(events.Transactions))

	payload := events.Transactions[0].Logs[0].Payload.(*PoolCreated)
	assert.Equal(t, token0, payload.Token0)
	assert.Equal(t, token1, payload.Token1)
	assert.Equal(t, uint64(3000), payload.Fee)
	assert.Equal(t, int32(60), payload.TickSpacing)
	assert.Equal(t, pool, payload.Pool)
}

func Test_Decode_Swap_NegativeAmountAndTick(t *testing.T) {
	pool := tests.Addr(0xcc)
	sender := tests.Addr(0x05)
	recipient := tests.Addr(0x06)

	sqrtPrice, _ := new(big.Int).SetString("79228162514264337593543", 10)
	lg := tests.NewLog(pool, 0,
		[][]byte{SwapEvent.ID(), tests.AddressWord(sender), tests.AddressWord(recipient)},
		tests.Concat(
			tests.Word(big.NewInt(500000)),
			tests.Word(big.NewInt(-499000)),
			tests.Word(sqrtPrice),
			tests.Word(big.NewInt(12345678)),
			tests.Word(big.NewInt(-887272)),
		),
	)
	block := tests.NewBlock(201, tests.NewTx(0, sender, pool, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 1, len(events.Transactions))

	payload := events.Transactions[0].Logs[0].Payload.(*Swap)
	assert.Equal(t, "500000", payload.Amount0)
	assert.Equal(t, "-499000", payload.Amount1)
	assert.Equal(t, "79228162514264337593543", payload.SqrtPriceX96)
	assert.Equal(t, int32(-887272), payload.Tick)
}

func Test_Decode_Swap_TickOverflowCoercesToZero(t *testing.T) {
	pool := tests.Addr(0xcc)
	lg := tests.NewLog(pool, 0,
		[][]byte{SwapEvent.ID(), tests.AddressWord(tests.Addr(0x05)), tests.AddressWord(tests.Addr(0x06))},
		tests.Concat(
			tests.Word(big.NewInt(1)),
			tests.Word(big.NewInt(-1)),
			tests.Word(big.NewInt(1)),
			tests.Word(big.NewInt(1)),
			tests.Word(new(big.Int).Lsh(big.NewInt(1), 33)),
		),
	)
	block := tests.NewBlock(202, tests.NewTx(0, tests.Addr(0x05), pool, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 1, len(events.Transactions))

	payload := events.Transactions[0].Logs[0].Payload.(*Swap)
	assert.Equal(t, int32(0), payload.Tick)
}
