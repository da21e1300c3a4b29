package tables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tracelake/evmetl/internal/tests"
	"github.com/tracelake/evmetl/pkg/encoding"
)

func Test_AppendRow_PreservesOrder(t *testing.T) {
	acc := New()
	acc.AppendRow("swaps", Cols("block_num", "1", "log_index", "0"), Cols("amount", "10"))
	acc.AppendRow("swaps", Cols("block_num", "1", "log_index", "1"), Cols("amount", "20"))
	acc.AppendRow("mints", Cols("block_num", "1", "log_index", "2"), Cols("amount", "30"))

	assert.Equal(t, 3, acc.RowCount())
	rows := acc.RowsFor("swaps")
	assert.Equal(t, 2, len(rows))
	first, _ := rows[0].Columns.Get("amount")
	assert.Equal(t, "10", first)
}

func Test_UpsertRow_LastWinsWithinBlock(t *testing.T) {
	acc := New()
	key := Cols("contract", "0xaa", "address", "0xbb")
	acc.UpsertRow("erc20_balances", key, Cols("balance", "100"))
	acc.UpsertRow("erc20_balances", Cols("contract", "0xaa", "address", "0xbb"), Cols("balance", "250"))
	acc.UpsertRow("erc20_balances", Cols("contract", "0xaa", "address", "0xcc"), Cols("balance", "1"))

	assert.Equal(t, 2, acc.RowCount())
	rows := acc.RowsFor("erc20_balances")
	assert.Equal(t, 2, len(rows))
	balance, _ := rows[0].Columns.Get("balance")
	assert.Equal(t, "250", balance)
}

func Test_ToDatabaseChanges_EmptyBlockYieldsNoRows(t *testing.T) {
	acc := New()
	changes, err := acc.ToDatabaseChanges(tests.NewBlock(500))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(changes.Ops))
}

func Test_ToDatabaseChanges_PrependsBlocksRow(t *testing.T) {
	acc := New()
	acc.AppendRow("swaps", Cols("block_num", "500", "log_index", "0"), Cols("amount", "10"))

	block := tests.NewBlock(500)
	changes, err := acc.ToDatabaseChanges(block)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(changes.Ops))

	blocksRow := changes.Ops[0]
	assert.Equal(t, "blocks", blocksRow.Table)
	assert.Equal(t, "500", blocksRow.Keys["block_num"])
	assert.Equal(t, "1700000040", blocksRow.Columns["timestamp"])
}

func Test_ToDatabaseChanges_MissingTimestampIsFatal(t *testing.T) {
	acc := New()
	acc.AppendRow("swaps", Cols("block_num", "7"), Cols("amount", "10"))

	block := tests.NewBlock(7)
	block.Timestamp = time.Time{}
	_, err := acc.ToDatabaseChanges(block)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing timestamp")
}

func Test_LogKeyColumnar_MinutePartition(t *testing.T) {
	block := tests.NewBlock(42)
	key, err := LogKeyColumnar(block, 3, 9)
	assert.Nil(t, err)

	minute, _ := key.Get("minute")
	assert.Equal(t, "28333334", minute)
	txIndex, _ := key.Get("tx_index")
	assert.Equal(t, "3", txIndex)
	blockHash, _ := key.Get("block_hash")
	assert.Equal(t, encoding.RenderHash(tests.Hash(0xbb)), blockHash)
}
