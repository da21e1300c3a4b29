package erc20

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
)

func Test_Decode_Transfer(t *testing.T) {
	token := tests.Addr(0xee)
	from := tests.Addr(0x01)
	to := tests.Addr(0x02)

	lg := tests.NewLog(token, 0,
		[][]byte{transferEvent.ID(), tests.AddressWord(from), tests.AddressWord(to)},
		tests.Word(big.NewInt(1500)),
	)
	block := tests.NewBlock(300, tests.NewTx(0, from, token, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 1, len(events.Transactions))

	payload := events.Transactions[0].Logs[0].Payload.(*Transfer)
	assert.Equal(t, from, payload.From)
	assert.Equal(t, to, payload.To)
	assert.Equal(t, "1500", payload.Amount)
}

func Test_Decode_IgnoresIndexedTokenIdTransfer(t *testing.T) {
	// The ERC-721 Transfer shares topic0 but indexes the token id: four
	// topics instead of three. The arity check must reject it here.
	token := tests.Addr(0xee)
	lg := tests.NewLog(token, 0,
		[][]byte{
			transferEvent.ID(),
			tests.AddressWord(tests.Addr(0x01)),
			tests.AddressWord(tests.Addr(0x02)),
			tests.Word(big.NewInt(7)),
		},
		nil,
	)
	block := tests.NewBlock(301, tests.NewTx(0, tests.Addr(0x01), token, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 0, len(events.Transactions))
}

func Test_Decode_Approval(t *testing.T) {
	token := tests.Addr(0xee)
	owner := tests.Addr(0x01)
	spender := tests.Addr(0x03)

	lg := tests.NewLog(token, 0,
		[][]byte{approvalEvent.ID(), tests.AddressWord(owner), tests.AddressWord(spender)},
		tests.Word(new(big.Int).Lsh(big.NewInt(1), 255)),
	)
	block := tests.NewBlock(302, tests.NewTx(0, owner, token, lg))

	events := Decode(block, nil, nil)
	assert.Equal(t, 1, len(events.Transactions))

	payload := events.Transactions[0].Logs[0].Payload.(*Approval)
	assert.Equal(t, owner, payload.Owner)
	assert.Equal(t, spender, payload.Spender)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 255).String(), payload.Amount)
}
