package emitters

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/protocols"
	"github.com/tracelake/evmetl/pkg/protocols/erc1155"
	"github.com/tracelake/evmetl/pkg/protocols/erc20"
	"github.com/tracelake/evmetl/pkg/rpcbatch"
	"github.com/tracelake/evmetl/pkg/tables"
)

func transferEvents(token, from, to []byte, amount string) *protocols.Events {
	return &protocols.Events{
		Protocol: erc20.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Hash:  tests.Hash(0x10),
			From:  from,
			To:    token,
			Index: 0,
			Logs: []*protocols.DecodedLog{{
				Address: token,
				Index:   0,
				Event:   "Transfer",
				Payload: &erc20.Transfer{From: from, To: to, Amount: amount},
			}},
		}},
	}
}

func Test_EmitTransfers_Erc20(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	events := transferEvents(tests.Addr(0xee), tests.Addr(0x01), tests.Addr(0x02), "1500")
	err := e.EmitTransfers(tests.NewBlock(100), events, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("erc20_transfers")
	assert.Equal(t, 1, len(rows))
	amount, _ := rows[0].Columns.Get("amount")
	assert.Equal(t, "1500", amount)
	contract, _ := rows[0].Columns.Get("contract")
	assert.Equal(t, e.addr(tests.Addr(0xee)), contract)
}

func Test_EmitTransferBatches_OneRowPerEntry(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	events := &protocols.Events{
		Protocol: erc1155.ProtocolName,
		Transactions: []*protocols.Transaction{{
			Hash:  tests.Hash(0x10),
			From:  tests.Addr(0x01),
			To:    tests.Addr(0xee),
			Index: 0,
			Logs: []*protocols.DecodedLog{{
				Address: tests.Addr(0xee),
				Index:   0,
				Event:   "TransferBatch",
				Payload: &erc1155.TransferBatch{
					Operator: tests.Addr(0x01),
					From:     tests.Addr(0x01),
					To:       tests.Addr(0x02),
					Ids:      []string{"7", "8", "9"},
					Amounts:  []string{"1", "2", "3"},
				},
			}},
		}},
	}

	err := e.EmitTransferBatches(tests.NewBlock(100), events, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("erc1155_transfers")
	assert.Equal(t, 3, len(rows))

	// batch_index extends the key so rows within one log stay unique.
	seen := make(map[string]bool)
	for _, row := range rows {
		idx, ok := row.Keys.Get("batch_index")
		assert.True(t, ok)
		assert.False(t, seen[idx])
		seen[idx] = true
	}
	lastId, _ := rows[2].Columns.Get("token_id")
	assert.Equal(t, "9", lastId)
}

type stubTokenReader struct {
	balances map[string]*big.Int
	supplies map[string]*big.Int
}

func (s *stubTokenReader) BalanceOf(ctx context.Context, pairs []rpcbatch.BalancePair, chunkSize int) (map[string]*big.Int, error) {
	return s.balances, nil
}

func (s *stubTokenReader) TotalSupply(ctx context.Context, contracts [][]byte, chunkSize int) (map[string]*big.Int, error) {
	return s.supplies, nil
}

func Test_EmitTokenBalances_AbsenceMeansUnknown(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	token := tests.Addr(0xee)
	holderA := tests.Addr(0x01)
	holderB := tests.Addr(0x02)

	reader := &stubTokenReader{balances: map[string]*big.Int{
		rpcbatch.PairKey(token, holderA): big.NewInt(8500),
		// holderB unresolved: no row, never zero.
	}}

	events := transferEvents(token, holderA, holderB, "1500")
	err := e.EmitTokenBalances(context.Background(), tests.NewBlock(100), events, reader, 50, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("erc20_balances")
	assert.Equal(t, 1, len(rows))
	assert.Equal(t, tables.OpUpsert, rows[0].Op)
	amount, _ := rows[0].Columns.Get("amount")
	assert.Equal(t, "8500", amount)
	holder, _ := rows[0].Keys.Get("address")
	assert.Equal(t, e.addr(holderA), holder)
}

func Test_EmitTokenBalances_SkipsZeroAddress(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	token := tests.Addr(0xee)
	zero := make([]byte, 20)
	holder := tests.Addr(0x02)

	reader := &stubTokenReader{balances: map[string]*big.Int{
		rpcbatch.PairKey(token, zero):   big.NewInt(1),
		rpcbatch.PairKey(token, holder): big.NewInt(2),
	}}

	// A mint: from the zero address.
	events := transferEvents(token, zero, holder, "2")
	err := e.EmitTokenBalances(context.Background(), tests.NewBlock(100), events, reader, 50, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("erc20_balances")
	assert.Equal(t, 1, len(rows))
	holderCol, _ := rows[0].Keys.Get("address")
	assert.Equal(t, e.addr(holder), holderCol)
}

func Test_EmitTokenSupply(t *testing.T) {
	e := newTestEmitter()
	acc := tables.New()

	token := tests.Addr(0xee)
	reader := &stubTokenReader{supplies: map[string]*big.Int{
		hex.EncodeToString(token): big.NewInt(1000000),
	}}

	events := transferEvents(token, tests.Addr(0x01), tests.Addr(0x02), "5")
	err := e.EmitTokenSupply(context.Background(), tests.NewBlock(100), events, reader, 50, acc)
	assert.Nil(t, err)

	rows := acc.RowsFor("erc20_supply")
	assert.Equal(t, 1, len(rows))
	supply, _ := rows[0].Columns.Get("total_supply")
	assert.Equal(t, "1000000", supply)
}
